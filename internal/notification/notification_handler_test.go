package notification_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-payroll/internal/notification"
	notificationerrors "go-payroll/internal/notification/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

type fakeNotificationService struct {
	GenerateMessagesFn   func(ctx context.Context, month, year int) (int, error)
	SendPendingFn        func(ctx context.Context) (int, int, error)
	GetByEmployeeEmailFn func(ctx context.Context, email string) ([]notification.MessageResponse, error)
}

func (f *fakeNotificationService) GenerateMessages(ctx context.Context, month, year int) (int, error) {
	return f.GenerateMessagesFn(ctx, month, year)
}
func (f *fakeNotificationService) SendPending(ctx context.Context) (int, int, error) {
	return f.SendPendingFn(ctx)
}
func (f *fakeNotificationService) GetByEmployeeEmail(ctx context.Context, email string) ([]notification.MessageResponse, error) {
	return f.GetByEmployeeEmailFn(ctx, email)
}

func TestNotificationHandler_Dispatch(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("reports sent and failed counts", func(t *testing.T) {
		svc := &fakeNotificationService{
			SendPendingFn: func(ctx context.Context) (int, int, error) {
				return 3, 1, nil
			},
		}

		h := notification.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		c.Request = httptest.NewRequest(http.MethodPost, "/notifications/dispatch", nil)

		h.Dispatch(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var env apiEnvelope
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.True(t, env.Ok)

		var report notification.DispatchReport
		assert.NoError(t, json.Unmarshal(env.Data, &report))
		assert.Equal(t, 3, report.Sent)
		assert.Equal(t, 1, report.Failed)
	})

	t.Run("repository failure surfaces as internal error", func(t *testing.T) {
		svc := &fakeNotificationService{
			SendPendingFn: func(ctx context.Context) (int, int, error) {
				return 0, 0, errors.New("db error")
			},
		}

		h := notification.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		c.Request = httptest.NewRequest(http.MethodPost, "/notifications/dispatch", nil)

		h.Dispatch(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var env apiEnvelope
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.Equal(t, "INTERNAL_ERROR", env.Error.Code)
	})
}

func TestNotificationHandler_GetByEmployee_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeNotificationService{
		GetByEmployeeEmailFn: func(ctx context.Context, email string) ([]notification.MessageResponse, error) {
			return nil, notificationerrors.EmployeeNotFound(email)
		},
	}

	h := notification.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest(http.MethodGet, "/notifications/employee/ghost@example.com", nil)
	c.Params = gin.Params{{Key: "email", Value: "ghost@example.com"}}

	h.GetByEmployee(c)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var env apiEnvelope
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
	assert.Contains(t, env.Error.Message, "ghost@example.com")
}
