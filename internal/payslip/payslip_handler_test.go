package payslip_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-payroll/internal/payslip"
	paysliperrors "go-payroll/internal/payslip/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
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

func mustDecodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakePayslipService struct {
	GenerateFn               func(ctx context.Context, month, year int) ([]payslip.PaySlipResponse, error)
	GetByPeriodFn            func(ctx context.Context, month, year int) ([]payslip.PaySlipResponse, error)
	GetByEmployeeEmailFn     func(ctx context.Context, email string) ([]payslip.PaySlipResponse, error)
	GetByEmployeeAndPeriodFn func(ctx context.Context, email string, month, year int) (payslip.PaySlipResponse, error)
	ApproveOneFn             func(ctx context.Context, id string) (payslip.PaySlipResponse, error)
	ApproveAllFn             func(ctx context.Context, month, year int) ([]payslip.PaySlipResponse, error)
}

func (f *fakePayslipService) Generate(ctx context.Context, month, year int) ([]payslip.PaySlipResponse, error) {
	return f.GenerateFn(ctx, month, year)
}
func (f *fakePayslipService) GetByPeriod(ctx context.Context, month, year int) ([]payslip.PaySlipResponse, error) {
	return f.GetByPeriodFn(ctx, month, year)
}
func (f *fakePayslipService) GetByEmployeeEmail(ctx context.Context, email string) ([]payslip.PaySlipResponse, error) {
	return f.GetByEmployeeEmailFn(ctx, email)
}
func (f *fakePayslipService) GetByEmployeeAndPeriod(ctx context.Context, email string, month, year int) (payslip.PaySlipResponse, error) {
	return f.GetByEmployeeAndPeriodFn(ctx, email, month, year)
}
func (f *fakePayslipService) ApproveOne(ctx context.Context, id string) (payslip.PaySlipResponse, error) {
	return f.ApproveOneFn(ctx, id)
}
func (f *fakePayslipService) ApproveAll(ctx context.Context, month, year int) ([]payslip.PaySlipResponse, error) {
	return f.ApproveAllFn(ctx, month, year)
}

type fakeNotifier struct {
	generateCalls int
	sendCalls     int
	generateErr   error
}

func (f *fakeNotifier) GenerateMessages(ctx context.Context, month, year int) (int, error) {
	f.generateCalls++
	return 2, f.generateErr
}

func (f *fakeNotifier) SendPending(ctx context.Context) (int, int, error) {
	f.sendCalls++
	return 2, 0, nil
}

func TestPayslipHandler_Generate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("success", func(t *testing.T) {
		svc := &fakePayslipService{
			GenerateFn: func(ctx context.Context, month, year int) ([]payslip.PaySlipResponse, error) {
				assert.Equal(t, 3, month)
				assert.Equal(t, 2026, year)
				return []payslip.PaySlipResponse{{ID: uuid.New().String(), Month: month, Year: year, Status: "PENDING"}}, nil
			},
		}

		h := payslip.NewHandler(svc, nil, nil)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		c.Request = httptest.NewRequest(http.MethodPost, "/payroll/generate",
			strings.NewReader(`{"month":3,"year":2026}`))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Generate(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := mustDecodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
	})

	t.Run("month out of range", func(t *testing.T) {
		h := payslip.NewHandler(&fakePayslipService{}, nil, nil)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		c.Request = httptest.NewRequest(http.MethodPost, "/payroll/generate",
			strings.NewReader(`{"month":13,"year":2026}`))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Generate(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := mustDecodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})
}

func TestPayslipHandler_GetByPeriod_InvalidMonth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := payslip.NewHandler(&fakePayslipService{}, nil, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest(http.MethodGet, "/payroll/period/14/2026", nil)
	c.Params = gin.Params{{Key: "month", Value: "14"}, {Key: "year", Value: "2026"}}

	h.GetByPeriod(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPayslipHandler_GetByEmployeeAndPeriod_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakePayslipService{
		GetByEmployeeAndPeriodFn: func(ctx context.Context, email string, month, year int) (payslip.PaySlipResponse, error) {
			return payslip.PaySlipResponse{}, paysliperrors.NotFoundForPeriod(email, month, year)
		},
	}

	h := payslip.NewHandler(svc, nil, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest(http.MethodGet, "/payroll/employee/bob@example.com/3/2026", nil)
	c.Params = gin.Params{
		{Key: "email", Value: "bob@example.com"},
		{Key: "month", Value: "3"},
		{Key: "year", Value: "2026"},
	}

	h.GetByEmployeeAndPeriod(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
	assert.Contains(t, env.Error.Message, "bob@example.com")
}

func TestPayslipHandler_ApproveAll_TriggersNotifications(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakePayslipService{
		ApproveAllFn: func(ctx context.Context, month, year int) ([]payslip.PaySlipResponse, error) {
			return []payslip.PaySlipResponse{{ID: uuid.New().String(), Month: month, Year: year, Status: "PAID"}}, nil
		},
	}
	notifier := &fakeNotifier{}

	h := payslip.NewHandler(svc, notifier, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest(http.MethodPatch, "/payroll/approve/3/2026", nil)
	c.Params = gin.Params{{Key: "month", Value: "3"}, {Key: "year", Value: "2026"}}

	h.ApproveAll(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, notifier.generateCalls)
	assert.Equal(t, 1, notifier.sendCalls)
}

func TestPayslipHandler_ApproveAll_NotificationFailureDoesNotFailApproval(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakePayslipService{
		ApproveAllFn: func(ctx context.Context, month, year int) ([]payslip.PaySlipResponse, error) {
			return []payslip.PaySlipResponse{}, nil
		},
	}
	notifier := &fakeNotifier{generateErr: errors.New("smtp down")}

	h := payslip.NewHandler(svc, notifier, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest(http.MethodPatch, "/payroll/approve/3/2026", nil)
	c.Params = gin.Params{{Key: "month", Value: "3"}, {Key: "year", Value: "2026"}}

	h.ApproveAll(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, notifier.generateCalls)
	assert.Equal(t, 0, notifier.sendCalls)
}

func TestPayslipHandler_ApproveOne_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakePayslipService{
		ApproveOneFn: func(ctx context.Context, id string) (payslip.PaySlipResponse, error) {
			return payslip.PaySlipResponse{}, paysliperrors.NotFoundByID(id)
		},
	}

	h := payslip.NewHandler(svc, nil, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	id := uuid.New().String()
	c.Request = httptest.NewRequest(http.MethodPatch, "/payroll/slips/"+id+"/approve", nil)
	c.Params = gin.Params{{Key: "id", Value: id}}

	h.ApproveOne(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
