package token

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// RefreshToken is the single durable copy of the upstream refresh
// credential. One row; the durable value is the source of truth across
// process restarts and instances.
type RefreshToken struct {
	ID        int64      `gorm:"primaryKey"`
	Token     string     `gorm:"not null"`
	ExpiresAt *time.Time `gorm:""`
	RotatedAt time.Time  `gorm:"not null"`
	CreatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

const currentTokenRowID = 1

type Store interface {
	Load(ctx context.Context, db *gorm.DB) (*RefreshToken, error)
	Save(ctx context.Context, db *gorm.DB, token string, expiresAt *time.Time, now time.Time) error
}

type store struct{}

func NewStore() Store {
	return &store{}
}

func (s *store) Load(ctx context.Context, db *gorm.DB) (*RefreshToken, error) {
	var row RefreshToken
	err := db.WithContext(ctx).Raw(
		`SELECT id, token, expires_at, rotated_at, created_at, updated_at
		 FROM refresh_tokens WHERE id = ?`,
		currentTokenRowID,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 || row.Token == "" {
		return nil, nil
	}
	return &row, nil
}

func (s *store) Save(ctx context.Context, db *gorm.DB, token string, expiresAt *time.Time, now time.Time) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE refresh_tokens
		 SET token = ?, expires_at = ?, rotated_at = ?, updated_at = ?
		 WHERE id = ?`,
		token,
		expiresAt,
		now,
		now,
		currentTokenRowID,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}
	return db.WithContext(ctx).Exec(
		`INSERT INTO refresh_tokens (id, token, expires_at, rotated_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		currentTokenRowID,
		token,
		expiresAt,
		now,
		now,
		now,
	).Error
}
