package payslip

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Notifier hands freshly approved payslips to the notification
// pipeline. Delivery problems are reported to the caller's log only;
// they never undo an approval.
type Notifier interface {
	GenerateMessages(ctx context.Context, month, year int) (int, error)
	SendPending(ctx context.Context) (sent, failed int, err error)
}

type Handler struct {
	service  Service
	notifier Notifier
	rdb      *redis.Client
	logger   *zap.Logger
}

func NewHandler(service Service, notifier Notifier, rdb *redis.Client, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("payslip.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payslip.handler")
	}
	return &Handler{service: service, notifier: notifier, rdb: rdb, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("payslip request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Generate(c *gin.Context) {
	var req GeneratePaySlipsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http generate payslips validation failed", zap.Error(err))
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", err.Error())
		return
	}

	resp, err := h.service.Generate(c.Request.Context(), req.Month, req.Year)
	if err != nil {
		h.releaseIdempotencyLock(c)
		h.writeServiceError(c, err)
		return
	}

	h.storeIdempotentResponse(c, resp)
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetByPeriod(c *gin.Context) {
	month, year, ok := h.parsePeriod(c)
	if !ok {
		return
	}

	resp, err := h.service.GetByPeriod(c.Request.Context(), month, year)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetByEmployee(c *gin.Context) {
	email := c.Param("email")

	resp, err := h.service.GetByEmployeeEmail(c.Request.Context(), email)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetByEmployeeAndPeriod(c *gin.Context) {
	email := c.Param("email")
	month, year, ok := h.parsePeriod(c)
	if !ok {
		return
	}

	resp, err := h.service.GetByEmployeeAndPeriod(c.Request.Context(), email, month, year)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ApproveOne(c *gin.Context) {
	id := c.Param("id")

	resp, err := h.service.ApproveOne(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ApproveAll(c *gin.Context) {
	month, year, ok := h.parsePeriod(c)
	if !ok {
		return
	}

	resp, err := h.service.ApproveAll(c.Request.Context(), month, year)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	h.notifyApproved(c.Request.Context(), month, year)

	response.Success(c, http.StatusOK, resp, nil)
}

// notifyApproved runs the notification steps after a bulk approval.
// Both steps are best-effort; a broken mailer must not make the
// approval look failed.
func (h *Handler) notifyApproved(ctx context.Context, month, year int) {
	if h.notifier == nil {
		return
	}

	generated, err := h.notifier.GenerateMessages(ctx, month, year)
	if err != nil {
		h.logger.Error("post-approval message generation failed",
			zap.Int("month", month),
			zap.Int("year", year),
			zap.Error(err),
		)
		return
	}

	sent, failed, err := h.notifier.SendPending(ctx)
	if err != nil {
		h.logger.Error("post-approval message dispatch failed",
			zap.Int("month", month),
			zap.Int("year", year),
			zap.Error(err),
		)
		return
	}

	h.logger.Info("post-approval notifications dispatched",
		zap.Int("month", month),
		zap.Int("year", year),
		zap.Int("generated", generated),
		zap.Int("sent", sent),
		zap.Int("failed", failed),
	)
}

func (h *Handler) parsePeriod(c *gin.Context) (int, int, bool) {
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil || month < 1 || month > 12 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR",
			"Invalid input", "month must be an integer between 1 and 12")
		return 0, 0, false
	}

	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 2000 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR",
			"Invalid input", "year must be an integer of 2000 or later")
		return 0, 0, false
	}

	return month, year, true
}

// storeIdempotentResponse caches a successful generation so a retry
// with the same Idempotency-Key replays it instead of re-running.
func (h *Handler) storeIdempotentResponse(c *gin.Context, resp any) {
	if h.rdb == nil {
		return
	}

	cacheKey, ok := c.Get("idempotency_cache_key")
	if !ok {
		return
	}
	lockKey, _ := c.Get("idempotency_lock_key")

	payload, err := json.Marshal(resp)
	if err != nil {
		return
	}

	ctx := c.Request.Context()
	h.rdb.Set(ctx, cacheKey.(string), payload, 24*time.Hour)
	if lk, ok := lockKey.(string); ok {
		h.rdb.Del(ctx, lk)
	}
}

func (h *Handler) releaseIdempotencyLock(c *gin.Context) {
	if h.rdb == nil {
		return
	}
	if lockKey, ok := c.Get("idempotency_lock_key"); ok {
		if lk, ok := lockKey.(string); ok {
			h.rdb.Del(c.Request.Context(), lk)
		}
	}
}
