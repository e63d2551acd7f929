package service

import (
	"context"
	"fmt"
	"time"

	"github.com/nurpe/contractor-payments/internal/config"
	"github.com/nurpe/contractor-payments/internal/model"
)

const maxReportLimit = 100

type ReportStore interface {
	ProfessionEarnings(ctx context.Context, from, to time.Time, limit int) ([]model.ProfessionEarnings, error)
	TopPaidJobs(ctx context.Context, from, to time.Time, limit int) ([]model.ClientPayment, error)
	TopPayingClients(ctx context.Context, from, to time.Time, limit int) ([]model.ClientPayment, error)
}

type ExcelGenerator interface {
	Generate(report model.AdminReport) ([]byte, error)
}

type ReportService struct {
	repo         ReportStore
	excel        ExcelGenerator
	defaultLimit int
	now          func() time.Time
}

func NewReportService(repo ReportStore, excel ExcelGenerator, cfg *config.Config) *ReportService {
	return &ReportService{
		repo:         repo,
		excel:        excel,
		defaultLimit: cfg.API.BestClientsLimit,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// ReportInput describes an inclusive payment window. Limit 0 means the
// configured default.
type ReportInput struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	Limit       int
	Aggregate   bool
}

type ExportResult struct {
	FileName string
	Content  []byte
}

func (s *ReportService) BestProfession(ctx context.Context, input ReportInput) ([]model.ProfessionEarnings, error) {
	if err := validatePeriod(input); err != nil {
		return nil, err
	}
	rows, err := s.repo.ProfessionEarnings(ctx, input.PeriodStart, input.PeriodEnd, 1)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []model.ProfessionEarnings{}
	}
	return rows, nil
}

// BestClients ranks clients by their highest single paid job in the window,
// or by their total paid when input.Aggregate is set.
func (s *ReportService) BestClients(ctx context.Context, input ReportInput) ([]model.ClientPayment, error) {
	if err := validatePeriod(input); err != nil {
		return nil, err
	}
	limit, err := s.resolveLimit(input.Limit)
	if err != nil {
		return nil, err
	}

	var rows []model.ClientPayment
	if input.Aggregate {
		rows, err = s.repo.TopPayingClients(ctx, input.PeriodStart, input.PeriodEnd, limit)
	} else {
		rows, err = s.repo.TopPaidJobs(ctx, input.PeriodStart, input.PeriodEnd, limit)
	}
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []model.ClientPayment{}
	}
	return rows, nil
}

// ExportReport builds the xlsx workbook with every profession and the top
// clients by total paid.
func (s *ReportService) ExportReport(ctx context.Context, input ReportInput) (*ExportResult, error) {
	if err := validatePeriod(input); err != nil {
		return nil, err
	}
	limit, err := s.resolveLimit(input.Limit)
	if err != nil {
		return nil, err
	}

	professions, err := s.repo.ProfessionEarnings(ctx, input.PeriodStart, input.PeriodEnd, 0)
	if err != nil {
		return nil, err
	}
	clients, err := s.repo.TopPayingClients(ctx, input.PeriodStart, input.PeriodEnd, limit)
	if err != nil {
		return nil, err
	}

	report := model.AdminReport{
		PeriodStart: input.PeriodStart,
		PeriodEnd:   input.PeriodEnd,
		GeneratedAt: s.now(),
		Professions: professions,
		Clients:     clients,
	}
	content, err := s.excel.Generate(report)
	if err != nil {
		return nil, err
	}

	return &ExportResult{
		FileName: fmt.Sprintf("payments-report-%s-%s.xlsx",
			report.PeriodStart.Format("20060102"), report.PeriodEnd.Format("20060102")),
		Content: content,
	}, nil
}

func (s *ReportService) resolveLimit(limit int) (int, error) {
	if limit == 0 {
		return s.defaultLimit, nil
	}
	if limit < 0 || limit > maxReportLimit {
		return 0, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidInput, maxReportLimit)
	}
	return limit, nil
}

func validatePeriod(input ReportInput) error {
	if input.PeriodStart.IsZero() || input.PeriodEnd.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrInvalidInput)
	}
	if input.PeriodStart.After(input.PeriodEnd) {
		return fmt.Errorf("%w: start must be before or equal to end", ErrInvalidInput)
	}
	return nil
}
