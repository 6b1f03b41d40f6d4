package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/kiwiz-app/kiwiz-backend/internal/domain"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/logger"
)

type UserRepo interface {
	UpsertByExternalID(ctx context.Context, tx *gorm.DB, u *types.User) (*types.User, error)
	GetByExternalID(ctx context.Context, tx *gorm.DB, externalID string) (*types.User, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.User, error)
	List(ctx context.Context, tx *gorm.DB, limit int) ([]*types.User, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
	CountActiveSince(ctx context.Context, tx *gorm.DB, since time.Time) (int64, error)
	IncrementGenerationCount(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	SetPlan(ctx context.Context, tx *gorm.DB, id uuid.UUID, plan types.Plan) error
	SetNewsletterSubscribed(ctx context.Context, tx *gorm.DB, id uuid.UUID, subscribed bool) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx == nil {
		tx = ur.db
	}
	return tx.WithContext(ctx)
}

// UpsertByExternalID refreshes email and name of an existing account and
// creates it otherwise. Image is only written on create.
func (ur *userRepo) UpsertByExternalID(ctx context.Context, tx *gorm.DB, u *types.User) (*types.User, error) {
	var out *types.User
	err := ur.conn(ctx, tx).Transaction(func(t *gorm.DB) error {
		var existing types.User
		err := t.Where("external_id = ?", u.ExternalID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := t.Create(u).Error; err != nil {
				return err
			}
			out = u
			return nil
		case err != nil:
			return err
		}
		if err := t.Model(&existing).Updates(map[string]any{
			"email": u.Email,
			"name":  u.Name,
		}).Error; err != nil {
			return err
		}
		out = &existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (ur *userRepo) GetByExternalID(ctx context.Context, tx *gorm.DB, externalID string) (*types.User, error) {
	var u types.User
	if err := ur.conn(ctx, tx).Where("external_id = ?", externalID).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (ur *userRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.User, error) {
	var u types.User
	if err := ur.conn(ctx, tx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (ur *userRepo) List(ctx context.Context, tx *gorm.DB, limit int) ([]*types.User, error) {
	var results []*types.User
	q := ur.conn(ctx, tx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	err := ur.conn(ctx, tx).Model(&types.User{}).Count(&count).Error
	return count, err
}

func (ur *userRepo) CountActiveSince(ctx context.Context, tx *gorm.DB, since time.Time) (int64, error) {
	var count int64
	err := ur.conn(ctx, tx).Model(&types.User{}).Where("updated_at >= ?", since).Count(&count).Error
	return count, err
}

func (ur *userRepo) IncrementGenerationCount(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return ur.conn(ctx, tx).
		Model(&types.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"generation_count": gorm.Expr("generation_count + ?", 1),
			"updated_at":       time.Now(),
		}).Error
}

func (ur *userRepo) SetPlan(ctx context.Context, tx *gorm.DB, id uuid.UUID, plan types.Plan) error {
	res := ur.conn(ctx, tx).Model(&types.User{}).Where("id = ?", id).Update("plan", plan)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (ur *userRepo) SetNewsletterSubscribed(ctx context.Context, tx *gorm.DB, id uuid.UUID, subscribed bool) error {
	return ur.conn(ctx, tx).
		Model(&types.User{}).
		Where("id = ?", id).
		Update("newsletter_subscribed", subscribed).Error
}
