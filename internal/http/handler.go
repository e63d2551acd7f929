package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nurpe/contractor-payments/internal/http/middleware"
	"github.com/nurpe/contractor-payments/internal/metrics"
	"github.com/nurpe/contractor-payments/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// HealthCheck reports whether the backing store is reachable.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	contracts       *service.ContractService
	payments        *service.PaymentService
	reports         *service.ReportService
	health          HealthCheck
	log             zerolog.Logger
	emptyAsNotFound bool
}

type Services struct {
	Contracts *service.ContractService
	Payments  *service.PaymentService
	Reports   *service.ReportService
	Health    HealthCheck
}

func NewHandler(services Services, log zerolog.Logger, emptyAsNotFound bool) *Handler {
	return &Handler{
		contracts:       services.Contracts,
		payments:        services.Payments,
		reports:         services.Reports,
		health:          services.Health,
		log:             log,
		emptyAsNotFound: emptyAsNotFound,
	}
}

func (h *Handler) Register(router *gin.Engine, mw Middlewares) {
	router.GET("/healthz", h.healthz)

	profile := router.Group("/", chain(mw.Profile)...)
	profile.GET("/contracts/:id", h.getContract)
	profile.GET("/contracts", h.listContracts)
	profile.GET("/jobs/unpaid", h.listUnpaidJobs)
	profile.GET("/jobs/:job_id/receipt", h.jobReceipt)

	writes := profile.Group("/", chain(mw.Idempotency)...)
	writes.POST("/jobs/:job_id/pay", h.payJob)
	writes.POST("/balances/deposit/:userId", h.deposit)

	admin := router.Group("/admin", chain(mw.Admin)...)
	admin.GET("/best-profession", h.bestProfession)
	admin.GET("/best-clients", h.bestClients)
	admin.GET("/report/export", h.exportReport)
}

func (h *Handler) getContract(c *gin.Context) {
	caller, ok := middleware.MustProfile(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	contract, err := h.contracts.GetContract(c.Request.Context(), id, caller)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

func (h *Handler) listContracts(c *gin.Context) {
	caller, ok := middleware.MustProfile(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	contracts, err := h.contracts.ListContracts(c.Request.Context(), caller)
	if err != nil {
		h.handleError(c, err)
		return
	}
	if len(contracts) == 0 && h.emptyAsNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "no contracts found"})
		return
	}
	c.JSON(http.StatusOK, contracts)
}

func (h *Handler) listUnpaidJobs(c *gin.Context) {
	caller, ok := middleware.MustProfile(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	jobs, err := h.contracts.ListUnpaidJobs(c.Request.Context(), caller)
	if err != nil {
		h.handleError(c, err)
		return
	}
	if len(jobs) == 0 && h.emptyAsNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "no unpaid jobs found"})
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *Handler) payJob(c *gin.Context) {
	caller, ok := middleware.MustProfile(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	jobID, err := parseID(c.Param("job_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	payment, err := h.payments.Pay(c.Request.Context(), service.PayInput{JobID: jobID, Caller: caller})
	if err != nil {
		metrics.RecordPayment(resultLabel(err), 0)
		h.handleError(c, err)
		return
	}

	metrics.RecordPayment("ok", payment.Job.Price.InexactFloat64())
	h.log.Info().
		Uint("job_id", payment.Job.ID).
		Uint("client_id", payment.Client.ID).
		Uint("contractor_id", payment.Contractor.ID).
		Str("amount", payment.Job.Price.String()).
		Msg("job paid")
	c.JSON(http.StatusOK, gin.H{"message": "Payment successful", "job": payment.Job})
}

func (h *Handler) jobReceipt(c *gin.Context) {
	caller, ok := middleware.MustProfile(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	jobID, err := parseID(c.Param("job_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	result, err := h.payments.Receipt(c.Request.Context(), jobID, caller)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

type depositRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) deposit(c *gin.Context) {
	caller, ok := middleware.MustProfile(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	targetID, err := parseID(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}

	profile, err := h.payments.Deposit(c.Request.Context(), service.DepositInput{
		TargetID: targetID,
		Caller:   caller,
		Amount:   req.Amount,
	})
	if err != nil {
		metrics.RecordDeposit(resultLabel(err), 0)
		h.handleError(c, err)
		return
	}

	metrics.RecordDeposit("ok", req.Amount.InexactFloat64())
	h.log.Info().
		Uint("profile_id", profile.ID).
		Str("amount", req.Amount.String()).
		Msg("deposit accepted")
	c.JSON(http.StatusOK, gin.H{"message": "Deposit successful", "balance": profile.Balance})
}

func (h *Handler) bestProfession(c *gin.Context) {
	input, err := parseReportQuery(c)
	if err != nil {
		h.handleError(c, err)
		return
	}

	rows, err := h.reports.BestProfession(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *Handler) bestClients(c *gin.Context) {
	input, err := parseReportQuery(c)
	if err != nil {
		h.handleError(c, err)
		return
	}

	rows, err := h.reports.BestClients(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *Handler) exportReport(c *gin.Context) {
	input, err := parseReportQuery(c)
	if err != nil {
		h.handleError(c, err)
		return
	}

	result, err := h.reports.ExportReport(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, xlsxContentType, result.Content)
}

func (h *Handler) healthz(c *gin.Context) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.health(ctx); err != nil {
			h.log.Warn().Err(err).Msg("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrAlreadyPaid):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotPaid):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidOperation),
		errors.Is(err, service.ErrInsufficientBalance),
		errors.Is(err, service.ErrLimitExceeded):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		return "forbidden"
	case errors.Is(err, service.ErrNotFound):
		return "not_found"
	case errors.Is(err, service.ErrAlreadyPaid):
		return "already_paid"
	case errors.Is(err, service.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, service.ErrLimitExceeded):
		return "limit_exceeded"
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidOperation):
		return "invalid"
	default:
		return "error"
	}
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, service.ErrInvalidInput
	}
	return uint(id), nil
}

func parseReportQuery(c *gin.Context) (service.ReportInput, error) {
	var input service.ReportInput

	start, _, err := parseDate(c.Query("start"))
	if err != nil {
		return input, invalidParam("start")
	}
	end, dateOnly, err := parseDate(c.Query("end"))
	if err != nil {
		return input, invalidParam("end")
	}
	if dateOnly {
		end = end.Add(24*time.Hour - time.Nanosecond)
	}
	input.PeriodStart = start
	input.PeriodEnd = end

	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return input, invalidParam("limit")
		}
		input.Limit = limit
	}
	if raw := strings.TrimSpace(c.Query("aggregate")); raw != "" {
		aggregate, err := strconv.ParseBool(raw)
		if err != nil {
			return input, invalidParam("aggregate")
		}
		input.Aggregate = aggregate
	}
	return input, nil
}

func invalidParam(name string) error {
	return fmt.Errorf("%w: invalid %s", service.ErrInvalidInput, name)
}

// parseDate also reports whether raw carried only a calendar date.
func parseDate(raw string) (time.Time, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false, service.ErrInvalidInput
	}
	if parsed, err := time.Parse("2006-01-02", raw); err == nil {
		return parsed, true, nil
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, false, nil
		}
	}
	return time.Time{}, false, service.ErrInvalidInput
}
