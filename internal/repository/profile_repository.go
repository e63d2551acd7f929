package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nurpe/contractor-payments/internal/model"
)

const profileColumns = `id, first_name, last_name, profession, balance, type, created_at, updated_at`

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetProfile(ctx context.Context, id uint) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+profileColumns+`
		FROM profiles
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&profile).Error
	if err != nil {
		return nil, err
	}
	if profile.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &profile, nil
}

// loadProfiles reads the given profiles keyed by id. With lock set the rows
// are selected FOR UPDATE in id order so concurrent transfers touching the
// same pair of profiles cannot deadlock.
func loadProfiles(tx *gorm.DB, ids []uint, lock bool) (map[uint]model.Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE id IN ?
		ORDER BY id ASC
	`
	if lock {
		query += " FOR UPDATE"
	}

	var rows []model.Profile
	if err := tx.Raw(query, ids).Scan(&rows).Error; err != nil {
		return nil, err
	}

	result := make(map[uint]model.Profile, len(rows))
	for _, row := range rows {
		result[row.ID] = row
	}
	return result, nil
}
