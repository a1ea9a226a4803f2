package deduction_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-payroll/internal/deduction"
	deductionerrors "go-payroll/internal/deduction/errors"

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

type fakeDeductionService struct {
	CreateFn         func(ctx context.Context, req deduction.DeductionRequest) (deduction.DeductionResponse, error)
	GetAllFn         func(ctx context.Context) ([]deduction.DeductionResponse, error)
	GetByCodeFn      func(ctx context.Context, code string) (deduction.DeductionResponse, error)
	GetByNameFn      func(ctx context.Context, name string) (deduction.DeductionResponse, error)
	UpdateFn         func(ctx context.Context, code string, req deduction.DeductionRequest) (deduction.DeductionResponse, error)
	DeleteFn         func(ctx context.Context, code string) error
	EnsureDefaultsFn func(ctx context.Context) error
	SnapshotFn       func(ctx context.Context) (deduction.RuleSet, error)
}

func (f *fakeDeductionService) Create(ctx context.Context, req deduction.DeductionRequest) (deduction.DeductionResponse, error) {
	return f.CreateFn(ctx, req)
}
func (f *fakeDeductionService) GetAll(ctx context.Context) ([]deduction.DeductionResponse, error) {
	return f.GetAllFn(ctx)
}
func (f *fakeDeductionService) GetByCode(ctx context.Context, code string) (deduction.DeductionResponse, error) {
	return f.GetByCodeFn(ctx, code)
}
func (f *fakeDeductionService) GetByName(ctx context.Context, name string) (deduction.DeductionResponse, error) {
	return f.GetByNameFn(ctx, name)
}
func (f *fakeDeductionService) Update(ctx context.Context, code string, req deduction.DeductionRequest) (deduction.DeductionResponse, error) {
	return f.UpdateFn(ctx, code, req)
}
func (f *fakeDeductionService) Delete(ctx context.Context, code string) error {
	return f.DeleteFn(ctx, code)
}
func (f *fakeDeductionService) EnsureDefaults(ctx context.Context) error {
	return f.EnsureDefaultsFn(ctx)
}
func (f *fakeDeductionService) Snapshot(ctx context.Context) (deduction.RuleSet, error) {
	return f.SnapshotFn(ctx)
}

func TestDeductionHandler_Create(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("success", func(t *testing.T) {
		svc := &fakeDeductionService{
			CreateFn: func(ctx context.Context, req deduction.DeductionRequest) (deduction.DeductionResponse, error) {
				assert.Equal(t, "CommunityFund", req.Name)
				return deduction.DeductionResponse{
					ID:         uuid.New().String(),
					Code:       "DED-000007",
					Name:       req.Name,
					Percentage: req.Percentage,
				}, nil
			},
		}

		h := deduction.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		c.Request = httptest.NewRequest(http.MethodPost, "/deductions",
			strings.NewReader(`{"name":"CommunityFund","percentage":2.5}`))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := mustDecodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)

		var got deduction.DeductionResponse
		assert.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, "DED-000007", got.Code)
		assert.Equal(t, 2.5, got.Percentage)
	})

	t.Run("validation error", func(t *testing.T) {
		h := deduction.NewHandler(&fakeDeductionService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		c.Request = httptest.NewRequest(http.MethodPost, "/deductions", strings.NewReader(`{}`))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := mustDecodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})

	t.Run("conflict from service", func(t *testing.T) {
		svc := &fakeDeductionService{
			CreateFn: func(ctx context.Context, req deduction.DeductionRequest) (deduction.DeductionResponse, error) {
				return deduction.DeductionResponse{}, deductionerrors.NameTaken(req.Name)
			},
		}

		h := deduction.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		c.Request = httptest.NewRequest(http.MethodPost, "/deductions",
			strings.NewReader(`{"name":"Pension","percentage":6}`))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		env := mustDecodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "CONFLICT", env.Error.Code)
	})
}

func TestDeductionHandler_GetByCode_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeDeductionService{
		GetByCodeFn: func(ctx context.Context, code string) (deduction.DeductionResponse, error) {
			return deduction.DeductionResponse{}, deductionerrors.NotFoundByCode(code)
		},
	}

	h := deduction.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest(http.MethodGet, "/deductions/DED-999999", nil)
	c.Params = gin.Params{{Key: "code", Value: "DED-999999"}}

	h.GetByCode(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.False(t, env.Ok)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
	assert.Contains(t, env.Error.Message, "DED-999999")
}

func TestDeductionHandler_Initialize(t *testing.T) {
	gin.SetMode(gin.TestMode)

	called := false
	svc := &fakeDeductionService{
		EnsureDefaultsFn: func(ctx context.Context) error {
			called = true
			return nil
		},
	}

	h := deduction.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest(http.MethodPost, "/deductions/initialize", nil)

	h.Initialize(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)
}
