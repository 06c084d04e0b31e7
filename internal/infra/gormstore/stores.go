package gormstore

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/casadocigano/fidelidade-api/internal/domain"
)

// ListStores returns the full store catalog ordered by name.
func (d *DB) ListStores(ctx context.Context) ([]domain.Store, error) {
	var stores []domain.Store
	err := d.gorm.WithContext(ctx).Order("name asc").Find(&stores).Error
	return stores, err
}

// GetStore returns (nil, nil) when the store does not exist.
func (d *DB) GetStore(ctx context.Context, id uint) (*domain.Store, error) {
	var s domain.Store
	err := d.gorm.WithContext(ctx).First(&s, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FirstStore returns the store with the lowest id, the fallback scope for
// actors bound to no store. (nil, nil) when the catalog is empty.
func (d *DB) FirstStore(ctx context.Context) (*domain.Store, error) {
	var s domain.Store
	err := d.gorm.WithContext(ctx).Order("id asc").First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
