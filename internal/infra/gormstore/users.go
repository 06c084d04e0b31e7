package gormstore

import (
	"context"
	"errors"
	"strconv"

	"gorm.io/gorm"

	"github.com/casadocigano/fidelidade-api/internal/domain"
)

// CreateUser inserts a new operator account. A duplicate email surfaces as
// ErrConflict.
func (d *DB) CreateUser(ctx context.Context, u *domain.User) error {
	err := d.gorm.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &domain.ErrConflict{Message: "email já existe"}
	}
	return err
}

// GetUserByEmail returns (nil, nil) when no account matches.
func (d *DB) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := d.gorm.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByID returns (nil, nil) when no account matches.
func (d *DB) GetUserByID(ctx context.Context, id uint) (*domain.User, error) {
	var u domain.User
	err := d.gorm.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUsers returns every operator account, newest first.
func (d *DB) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := d.gorm.WithContext(ctx).Order("id desc").Find(&users).Error
	return users, err
}

// UpdateUser saves the full row. A duplicate email surfaces as ErrConflict.
func (d *DB) UpdateUser(ctx context.Context, u *domain.User) error {
	err := d.gorm.WithContext(ctx).Save(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &domain.ErrConflict{Message: "email já existe"}
	}
	return err
}

// DeleteUser removes the account, erroring when it does not exist.
func (d *DB) DeleteUser(ctx context.Context, id uint) error {
	res := d.gorm.WithContext(ctx).Delete(&domain.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &domain.ErrNotFound{Resource: "user", ID: strconv.FormatUint(uint64(id), 10)}
	}
	return nil
}
