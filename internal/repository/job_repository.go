package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/contractor-payments/internal/model"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// ListUnpaidForProfile returns unpaid jobs on in-progress contracts where
// the profile is the client or the contractor.
func (r *JobRepository) ListUnpaidForProfile(ctx context.Context, profileID uint) ([]model.Job, error) {
	var jobs []model.Job
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			j.id,
			j.description,
			j.price,
			j.paid,
			j.payment_date,
			j.contract_id,
			j.created_at,
			j.updated_at
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		WHERE j.paid IS NOT TRUE
			AND c.status = ?
			AND (c.client_id = ? OR c.contractor_id = ?)
		ORDER BY j.id ASC
	`, model.ContractStatusInProgress, profileID, profileID).Scan(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

type jobContractRow struct {
	JobID             uint
	JobDescription    string
	JobPrice          decimal.Decimal
	JobPaid           *bool
	JobPaymentDate    *time.Time
	JobCreatedAt      time.Time
	JobUpdatedAt      time.Time
	ContractID        uint
	ContractTerms     string
	ContractStatus    model.ContractStatus
	ClientID          uint
	ContractorID      uint
	ContractCreatedAt time.Time
	ContractUpdatedAt time.Time
}

const jobContractQuery = `
	SELECT
		j.id AS job_id,
		j.description AS job_description,
		j.price AS job_price,
		j.paid AS job_paid,
		j.payment_date AS job_payment_date,
		j.created_at AS job_created_at,
		j.updated_at AS job_updated_at,
		c.id AS contract_id,
		c.terms AS contract_terms,
		c.status AS contract_status,
		c.client_id,
		c.contractor_id,
		c.created_at AS contract_created_at,
		c.updated_at AS contract_updated_at
	FROM jobs j
	JOIN contracts c ON c.id = j.contract_id
	WHERE j.id = ?
`

// loadPayment reads a job with its contract and both parties. With lock set
// the job row and both profile rows stay locked until tx ends.
func loadPayment(tx *gorm.DB, jobID uint, lock bool) (*model.Payment, error) {
	query := jobContractQuery
	if lock {
		query += " FOR UPDATE OF j"
	}

	var row jobContractRow
	if err := tx.Raw(query, jobID).Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.JobID == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	profiles, err := loadProfiles(tx, []uint{row.ClientID, row.ContractorID}, lock)
	if err != nil {
		return nil, err
	}
	client, ok := profiles[row.ClientID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	contractor, ok := profiles[row.ContractorID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	return &model.Payment{
		Job: model.Job{
			ID:          row.JobID,
			Description: row.JobDescription,
			Price:       row.JobPrice,
			Paid:        row.JobPaid,
			PaymentDate: row.JobPaymentDate,
			ContractID:  row.ContractID,
			CreatedAt:   row.JobCreatedAt,
			UpdatedAt:   row.JobUpdatedAt,
		},
		Contract: model.Contract{
			ID:           row.ContractID,
			Terms:        row.ContractTerms,
			Status:       row.ContractStatus,
			ClientID:     row.ClientID,
			ContractorID: row.ContractorID,
			CreatedAt:    row.ContractCreatedAt,
			UpdatedAt:    row.ContractUpdatedAt,
		},
		Client:     client,
		Contractor: contractor,
	}, nil
}

// GetPayment loads a job with its contract and parties without locking.
func (r *JobRepository) GetPayment(ctx context.Context, jobID uint) (*model.Payment, error) {
	return loadPayment(r.db.WithContext(ctx), jobID, false)
}

// PayJob locks the job and both parties, lets check veto the payment, then
// moves the price from client to contractor and marks the job paid, all in
// one transaction. Any error from check rolls the transaction back.
func (r *JobRepository) PayJob(
	ctx context.Context,
	jobID uint,
	paidAt time.Time,
	check func(model.Payment) error,
) (*model.Payment, error) {
	var result *model.Payment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment, err := loadPayment(tx, jobID, true)
		if err != nil {
			return err
		}
		if err := check(*payment); err != nil {
			return err
		}

		price := payment.Job.Price
		if err := tx.Exec(`
			UPDATE profiles
			SET balance = balance - ?, updated_at = ?
			WHERE id = ?
		`, price, paidAt, payment.Client.ID).Error; err != nil {
			return err
		}
		if err := tx.Exec(`
			UPDATE profiles
			SET balance = balance + ?, updated_at = ?
			WHERE id = ?
		`, price, paidAt, payment.Contractor.ID).Error; err != nil {
			return err
		}
		if err := tx.Exec(`
			UPDATE jobs
			SET paid = TRUE, payment_date = ?, updated_at = ?
			WHERE id = ?
		`, paidAt, paidAt, payment.Job.ID).Error; err != nil {
			return err
		}

		paid := true
		payment.Job.Paid = &paid
		payment.Job.PaymentDate = &paidAt
		payment.Job.UpdatedAt = paidAt
		payment.Client.Balance = payment.Client.Balance.Sub(price)
		payment.Contractor.Balance = payment.Contractor.Balance.Add(price)
		result = payment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DepositToProfile locks the profile, sums the unpaid work where it is the
// client, lets check veto the deposit and then credits amount.
func (r *JobRepository) DepositToProfile(
	ctx context.Context,
	profileID uint,
	amount decimal.Decimal,
	check func(profile model.Profile, unpaidTotal decimal.Decimal) error,
) (*model.Profile, error) {
	var result *model.Profile
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profiles, err := loadProfiles(tx, []uint{profileID}, true)
		if err != nil {
			return err
		}
		profile, ok := profiles[profileID]
		if !ok {
			return gorm.ErrRecordNotFound
		}

		var unpaidTotal decimal.Decimal
		if err := tx.Raw(`
			SELECT COALESCE(SUM(j.price), 0)
			FROM jobs j
			JOIN contracts c ON c.id = j.contract_id
			WHERE c.client_id = ?
				AND j.paid IS NOT TRUE
		`, profileID).Row().Scan(&unpaidTotal); err != nil {
			return err
		}

		if err := check(profile, unpaidTotal); err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := tx.Exec(`
			UPDATE profiles
			SET balance = balance + ?, updated_at = ?
			WHERE id = ?
		`, amount, now, profileID).Error; err != nil {
			return err
		}

		profile.Balance = profile.Balance.Add(amount)
		profile.UpdatedAt = now
		result = &profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
