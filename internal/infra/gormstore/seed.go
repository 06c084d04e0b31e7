package gormstore

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/casadocigano/fidelidade-api/internal/domain"
)

// The default catalog and bootstrap accounts. Seeding is idempotent: rows
// that already exist are left untouched, so the endpoint is safe to call
// on every deploy.
var seedStoreNames = []string{
	"Mega Loja – Jabaquara",
	"Mascote",
	"Indianopolis",
	"Tatuape",
	"Praia Grande",
	"Bertioga",
	"Osasco",
}

const (
	seedAdminEmail   = "admin@cdc.com"
	seedManagerEmail = "gerente.mascote@cdc.com"
	seedPassword     = "123456"
)

// Seed provisions the default stores, the global admin and an example
// store-locked manager.
func (d *DB) Seed(ctx context.Context) (*domain.SeedResult, error) {
	if err := d.AutoMigrate(ctx); err != nil {
		return nil, err
	}

	err := d.gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, name := range seedStoreNames {
			var s domain.Store
			err := tx.Where("name = ?", name).First(&s).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				if err := tx.Create(&domain.Store{Name: name, GoalThreshold: 10}).Error; err != nil {
					return err
				}
				continue
			}
			if err != nil {
				return err
			}
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		var admin domain.User
		err = tx.Where("email = ?", seedAdminEmail).First(&admin).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = tx.Create(&domain.User{
				Name:         "Admin",
				Email:        seedAdminEmail,
				PasswordHash: string(hash),
				Role:         domain.RoleAdmin,
				StoreLocked:  false,
			}).Error
		}
		if err != nil {
			return err
		}

		var mascote domain.Store
		if err := tx.Where("name = ?", "Mascote").First(&mascote).Error; err != nil {
			return err
		}

		var manager domain.User
		err = tx.Where("email = ?", seedManagerEmail).First(&manager).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = tx.Create(&domain.User{
				Name:         "Gerente Mascote",
				Email:        seedManagerEmail,
				PasswordHash: string(hash),
				Role:         domain.RoleManager,
				StoreLocked:  true,
				StoreID:      &mascote.ID,
			}).Error
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	d.log.Info("seed completed", zap.Int("stores", len(seedStoreNames)))
	return &domain.SeedResult{OK: true, AdminLogin: seedAdminEmail, Password: seedPassword}, nil
}
