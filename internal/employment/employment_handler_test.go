package employment_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-payroll/internal/employment"
	employmenterrors "go-payroll/internal/employment/errors"

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

type fakeEmploymentService struct {
	CreateFn             func(ctx context.Context, req employment.CreateEmploymentRequest) (employment.EmploymentResponse, error)
	GetAllFn             func(ctx context.Context) ([]employment.EmploymentResponse, error)
	GetActiveFn          func(ctx context.Context) ([]employment.EmploymentResponse, error)
	GetByCodeFn          func(ctx context.Context, code string) (employment.EmploymentResponse, error)
	GetByEmployeeEmailFn func(ctx context.Context, email string) (employment.EmploymentResponse, error)
	UpdateFn             func(ctx context.Context, code string, req employment.UpdateEmploymentRequest) (employment.EmploymentResponse, error)
	SetStatusFn          func(ctx context.Context, code string, active bool) (employment.EmploymentResponse, error)
}

func (f *fakeEmploymentService) Create(ctx context.Context, req employment.CreateEmploymentRequest) (employment.EmploymentResponse, error) {
	return f.CreateFn(ctx, req)
}
func (f *fakeEmploymentService) GetAll(ctx context.Context) ([]employment.EmploymentResponse, error) {
	return f.GetAllFn(ctx)
}
func (f *fakeEmploymentService) GetActive(ctx context.Context) ([]employment.EmploymentResponse, error) {
	return f.GetActiveFn(ctx)
}
func (f *fakeEmploymentService) GetByCode(ctx context.Context, code string) (employment.EmploymentResponse, error) {
	return f.GetByCodeFn(ctx, code)
}
func (f *fakeEmploymentService) GetByEmployeeEmail(ctx context.Context, email string) (employment.EmploymentResponse, error) {
	return f.GetByEmployeeEmailFn(ctx, email)
}
func (f *fakeEmploymentService) Update(ctx context.Context, code string, req employment.UpdateEmploymentRequest) (employment.EmploymentResponse, error) {
	return f.UpdateFn(ctx, code, req)
}
func (f *fakeEmploymentService) SetStatus(ctx context.Context, code string, active bool) (employment.EmploymentResponse, error) {
	return f.SetStatusFn(ctx, code, active)
}

func TestEmploymentHandler_Create(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("success", func(t *testing.T) {
		svc := &fakeEmploymentService{
			CreateFn: func(ctx context.Context, req employment.CreateEmploymentRequest) (employment.EmploymentResponse, error) {
				assert.Equal(t, "alice@example.com", req.EmployeeEmail)
				return employment.EmploymentResponse{
					ID:            uuid.New().String(),
					Code:          "EMP-000012",
					EmployeeEmail: req.EmployeeEmail,
					Status:        string(employment.StatusActive),
				}, nil
			},
		}

		h := employment.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		body := `{"employee_email":"alice@example.com","department":"Finance","position":"Accountant","base_salary":1000000,"joining_date":"2026-03-01"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/employments", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := mustDecodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)

		var got employment.EmploymentResponse
		assert.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, "EMP-000012", got.Code)
	})

	t.Run("negative base salary rejected", func(t *testing.T) {
		h := employment.NewHandler(&fakeEmploymentService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		body := `{"employee_email":"alice@example.com","department":"Finance","position":"Accountant","base_salary":-5,"joining_date":"2026-03-01"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/employments", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := mustDecodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})
}

func TestEmploymentHandler_SetStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("disable", func(t *testing.T) {
		svc := &fakeEmploymentService{
			SetStatusFn: func(ctx context.Context, code string, active bool) (employment.EmploymentResponse, error) {
				assert.Equal(t, "EMP-000012", code)
				assert.False(t, active)
				return employment.EmploymentResponse{Code: code, Status: string(employment.StatusDisabled)}, nil
			},
		}

		h := employment.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		c.Request = httptest.NewRequest(http.MethodPatch, "/employments/EMP-000012/status?active=false", nil)
		c.Params = gin.Params{{Key: "code", Value: "EMP-000012"}}

		h.SetStatus(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing active flag", func(t *testing.T) {
		h := employment.NewHandler(&fakeEmploymentService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		c.Request = httptest.NewRequest(http.MethodPatch, "/employments/EMP-000012/status", nil)
		c.Params = gin.Params{{Key: "code", Value: "EMP-000012"}}

		h.SetStatus(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestEmploymentHandler_GetByCode_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeEmploymentService{
		GetByCodeFn: func(ctx context.Context, code string) (employment.EmploymentResponse, error) {
			return employment.EmploymentResponse{}, employmenterrors.NotFoundByCode(code)
		},
	}

	h := employment.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest(http.MethodGet, "/employments/EMP-404404", nil)
	c.Params = gin.Params{{Key: "code", Value: "EMP-404404"}}

	h.GetByCode(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
	assert.Contains(t, env.Error.Message, "EMP-404404")
}
