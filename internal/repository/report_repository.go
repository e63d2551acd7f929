package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nurpe/contractor-payments/internal/model"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// ProfessionEarnings sums paid jobs in [from, to] by contractor profession,
// highest first. A non-positive limit returns every profession.
func (r *ReportRepository) ProfessionEarnings(ctx context.Context, from, to time.Time, limit int) ([]model.ProfessionEarnings, error) {
	baseQuery := `
		SELECT
			p.profession,
			SUM(j.price) AS total_earned
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles p ON p.id = c.contractor_id
		WHERE j.paid IS TRUE
			AND j.payment_date >= ?
			AND j.payment_date <= ?
		GROUP BY p.profession
		ORDER BY total_earned DESC, p.profession ASC
	`
	args := []interface{}{from, to}
	baseQuery, args = appendLimit(baseQuery, args, limit)

	var rows []model.ProfessionEarnings
	if err := r.db.WithContext(ctx).Raw(baseQuery, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// TopPaidJobs lists the clients behind the highest-priced paid jobs in
// [from, to], one row per job.
func (r *ReportRepository) TopPaidJobs(ctx context.Context, from, to time.Time, limit int) ([]model.ClientPayment, error) {
	baseQuery := `
		SELECT
			p.id,
			TRIM(p.first_name || ' ' || p.last_name) AS full_name,
			j.price AS paid
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles p ON p.id = c.client_id
		WHERE j.paid IS TRUE
			AND j.payment_date >= ?
			AND j.payment_date <= ?
		ORDER BY j.price DESC, j.id ASC
	`
	args := []interface{}{from, to}
	baseQuery, args = appendLimit(baseQuery, args, limit)

	var rows []model.ClientPayment
	if err := r.db.WithContext(ctx).Raw(baseQuery, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// TopPayingClients ranks clients by their total paid in [from, to].
func (r *ReportRepository) TopPayingClients(ctx context.Context, from, to time.Time, limit int) ([]model.ClientPayment, error) {
	baseQuery := `
		SELECT
			p.id,
			TRIM(p.first_name || ' ' || p.last_name) AS full_name,
			SUM(j.price) AS paid
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles p ON p.id = c.client_id
		WHERE j.paid IS TRUE
			AND j.payment_date >= ?
			AND j.payment_date <= ?
		GROUP BY p.id, p.first_name, p.last_name
		ORDER BY paid DESC, p.id ASC
	`
	args := []interface{}{from, to}
	baseQuery, args = appendLimit(baseQuery, args, limit)

	var rows []model.ClientPayment
	if err := r.db.WithContext(ctx).Raw(baseQuery, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func appendLimit(baseQuery string, args []interface{}, limit int) (string, []interface{}) {
	if limit <= 0 {
		return baseQuery, args
	}
	return baseQuery + " LIMIT ?", append(args, limit)
}
