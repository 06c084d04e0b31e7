package gormstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/casadocigano/fidelidade-api/internal/domain"
)

// CreateClient inserts a loyalty member. A duplicate CPF surfaces as
// ErrConflict.
func (d *DB) CreateClient(ctx context.Context, c *domain.Client) error {
	err := d.gorm.WithContext(ctx).Create(c).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &domain.ErrConflict{Message: "CPF já cadastrado"}
	}
	return err
}

// GetClientByCPF returns (nil, nil) when no member matches.
func (d *DB) GetClientByCPF(ctx context.Context, cpf string) (*domain.Client, error) {
	var c domain.Client
	err := d.gorm.WithContext(ctx).Where("cpf = ?", cpf).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListClients pages through the member roster, newest first. An exact-CPF
// query bypasses the store scope; otherwise a non-nil scope limits the
// listing to that store.
func (d *DB) ListClients(ctx context.Context, q domain.ClientQuery) ([]domain.Client, int64, error) {
	base := d.gorm.WithContext(ctx).Model(&domain.Client{})
	if q.CPF != "" {
		base = base.Where("cpf = ?", q.CPF)
	} else if q.StoreScope != nil {
		base = base.Where("store_id = ?", *q.StoreScope)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var clients []domain.Client
	err := base.
		Order("created_at desc, id desc").
		Offset((q.Page - 1) * q.PerPage).
		Limit(q.PerPage).
		Find(&clients).Error
	if err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

// BirthdayClients lists members whose birthday falls in the given month,
// optionally scoped to one store. Month extraction is dialect-specific.
func (d *DB) BirthdayClients(ctx context.Context, month time.Month, storeScope *uint) ([]domain.Client, error) {
	tx := d.gorm.WithContext(ctx).Where("birthday IS NOT NULL")
	if d.postgres() {
		tx = tx.Where("EXTRACT(MONTH FROM birthday) = ?", int(month))
	} else {
		tx = tx.Where("CAST(strftime('%m', birthday) AS INTEGER) = ?", int(month))
	}
	if storeScope != nil {
		tx = tx.Where("store_id = ?", *storeScope)
	}

	var clients []domain.Client
	err := tx.Order("name asc").Find(&clients).Error
	return clients, err
}

// CountClients counts the roster, optionally scoped to one store.
func (d *DB) CountClients(ctx context.Context, storeScope *uint) (int64, error) {
	tx := d.gorm.WithContext(ctx).Model(&domain.Client{})
	if storeScope != nil {
		tx = tx.Where("store_id = ?", *storeScope)
	}
	var total int64
	err := tx.Count(&total).Error
	return total, err
}
