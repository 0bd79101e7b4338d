package repository

import (
	"context"
	"errors"

	"github.com/mkurosawa/marketplace-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrDBNotReady = errors.New("database not initialized")

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByUID(ctx context.Context, uid string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Upsert(ctx context.Context, user *model.User) error
	SetFlag(ctx context.Context, uid, column string, value bool) error
	DeleteWithListings(ctx context.Context, uid string) error
	List(ctx context.Context, limit, offset int) ([]model.User, int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByUID(ctx context.Context, uid string) (*model.User, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var u model.User
	if err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var u model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// Upsert creates the row on first sign-in and refreshes name/avatar on
// subsequent ones. Role flags are never touched here.
func (r *userRepository) Upsert(ctx context.Context, user *model.User) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uid"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "avatar_url"}),
	}).Create(user).Error
}

// SetFlag flips a role/status column. Existence is the caller's concern;
// a same-value update reports zero affected rows on MySQL and must not
// read as missing.
func (r *userRepository) SetFlag(ctx context.Context, uid, column string, value bool) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Model(&model.User{}).Where("uid = ?", uid).Update(column, value).Error
}

// DeleteWithListings removes the user and their listings in one
// transaction (admin cascade path).
func (r *userRepository) DeleteWithListings(ctx context.Context, uid string) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("seller_uid = ?", uid).Delete(&model.Listing{}).Error; err != nil {
			return err
		}
		res := tx.Where("uid = ?", uid).Delete(&model.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]model.User, int64, error) {
	if r.db == nil {
		return nil, 0, ErrDBNotReady
	}
	var (
		users []model.User
		total int64
	)
	if err := r.db.WithContext(ctx).Model(&model.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := r.db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
