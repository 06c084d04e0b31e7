package gormstore

import (
	"context"
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/casadocigano/fidelidade-api/internal/domain"
)

// AddVisit appends one visit row. Counts are always derived from the rows,
// never from a stored counter.
func (d *DB) AddVisit(ctx context.Context, v *domain.Visit) error {
	return d.gorm.WithContext(ctx).Create(v).Error
}

// CountVisits returns the client's current visit count.
func (d *DB) CountVisits(ctx context.Context, clientID uint) (int64, error) {
	var count int64
	err := d.gorm.WithContext(ctx).
		Model(&domain.Visit{}).
		Where("client_id = ?", clientID).
		Count(&count).Error
	return count, err
}

// Redeem records a gift hand-over and resets the client's progress. The
// goal is re-checked inside the transaction under a row lock on the client
// (Postgres; SQLite serializes write transactions on its own), so two
// concurrent redemptions cannot both succeed on the same balance. When the
// count is short, ErrGoalNotReached is returned and nothing is written.
func (d *DB) Redeem(ctx context.Context, clientID uint, storeID *uint, giftName string, goal int) (*domain.Redemption, error) {
	var red *domain.Redemption
	err := d.gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked := tx
		if d.postgres() {
			locked = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var client domain.Client
		if err := locked.First(&client, clientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &domain.ErrNotFound{Resource: "client", ID: strconv.FormatUint(uint64(clientID), 10)}
			}
			return err
		}

		var count int64
		if err := tx.Model(&domain.Visit{}).Where("client_id = ?", clientID).Count(&count).Error; err != nil {
			return err
		}
		if count < int64(goal) {
			return &domain.ErrGoalNotReached{VisitsCount: count, GoalThreshold: goal}
		}

		red = &domain.Redemption{ClientID: clientID, StoreID: storeID, GiftName: giftName}
		if err := tx.Create(red).Error; err != nil {
			return err
		}
		return tx.Where("client_id = ?", clientID).Delete(&domain.Visit{}).Error
	})
	if err != nil {
		return nil, err
	}
	return red, nil
}

// CountVisitsSince counts visits recorded at or after the cutoff,
// optionally scoped to one store.
func (d *DB) CountVisitsSince(ctx context.Context, since time.Time, storeScope *uint) (int64, error) {
	tx := d.gorm.WithContext(ctx).Model(&domain.Visit{}).Where("created_at >= ?", since)
	if storeScope != nil {
		tx = tx.Where("store_id = ?", *storeScope)
	}
	var count int64
	err := tx.Count(&count).Error
	return count, err
}

// CountRedemptionsSince counts redemptions at or after the cutoff,
// optionally scoped to one store.
func (d *DB) CountRedemptionsSince(ctx context.Context, since time.Time, storeScope *uint) (int64, error) {
	tx := d.gorm.WithContext(ctx).Model(&domain.Redemption{}).Where("created_at >= ?", since)
	if storeScope != nil {
		tx = tx.Where("store_id = ?", *storeScope)
	}
	var count int64
	err := tx.Count(&count).Error
	return count, err
}
