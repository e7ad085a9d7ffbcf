package repository

import (
	"context"
	"time"

	"petshop/internal/domain/model"
	repo "petshop/internal/repository"

	"gorm.io/gorm"
)

type sessionGormRepository struct {
	db *gorm.DB
}

func NewSessionGormRepository(db *gorm.DB) repo.SessionRepository {
	return &sessionGormRepository{db: db}
}

func (r *sessionGormRepository) Create(ctx context.Context, s model.Session) error {
	return mapErr(r.db.WithContext(ctx).Create(&s).Error)
}

func (r *sessionGormRepository) FindActiveByID(ctx context.Context, id string, now time.Time) (model.Session, error) {
	var s model.Session
	err := r.db.WithContext(ctx).
		Where("id = ? AND revoked_at IS NULL AND expires_at > ?", id, now).
		First(&s).Error
	if err != nil {
		return model.Session{}, mapErr(err)
	}
	return s, nil
}

func (r *sessionGormRepository) Touch(ctx context.Context, id string, seenAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("id = ?", id).
		Update("last_seen_at", seenAt).Error
}

func (r *sessionGormRepository) Revoke(ctx context.Context, id string, revokedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", revokedAt)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *sessionGormRepository) RevokeAllByUserID(ctx context.Context, userID string, exceptID string, revokedAt time.Time) error {
	q := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("user_id = ? AND revoked_at IS NULL", userID)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	return q.Update("revoked_at", revokedAt).Error
}
