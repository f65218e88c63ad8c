package repo

import (
	"context"
	"errors"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"eventlink/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if err := conn(ctx, r.db).Create(u).Error; err != nil {
		if isDupKey(err) {
			return domain.ErrEmailTaken
		}
		return pkgerrors.Wrap(err, "create user")
	}
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := conn(ctx, r.db).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "find user by id")
	}
	return &u, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := conn(ctx, r.db).First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "find user by email")
	}
	return &u, nil
}

func (r *UserRepo) UpdateRoleFromPending(ctx context.Context, id string, role domain.Role) (bool, error) {
	res := conn(ctx, r.db).Model(&domain.User{}).
		Where("id = ? AND role = ?", id, domain.RolePending).
		Update("role", role)
	if res.Error != nil {
		return false, pkgerrors.Wrap(res.Error, "update role")
	}
	return res.RowsAffected == 1, nil
}

func (r *UserRepo) UpdatePaymentMethod(ctx context.Context, id, masked, lastFour string) error {
	res := conn(ctx, r.db).Model(&domain.User{}).Where("id = ?", id).
		Updates(map[string]any{"payment_method": masked, "card_last_four": lastFour})
	return pkgerrors.Wrap(res.Error, "update payment method")
}
