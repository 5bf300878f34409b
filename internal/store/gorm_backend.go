package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// snapshotRow is the single versioned record per vertical key.
type snapshotRow struct {
	Key       string    `gorm:"primaryKey;size:64;column:snapshot_key"`
	Payload   []byte    `gorm:"type:blob"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (snapshotRow) TableName() string { return "snapshots" }

// GormBackend persists snapshots as one JSON blob row, written inside
// a transaction so a save is all-or-nothing.
type GormBackend struct{ db *gorm.DB }

func NewGormBackend(db *gorm.DB) (*GormBackend, error) {
	if err := db.AutoMigrate(&snapshotRow{}); err != nil {
		return nil, err
	}
	return &GormBackend{db: db}, nil
}

func (b *GormBackend) Load(ctx context.Context, key string) ([]byte, error) {
	var row snapshotRow
	res := b.db.WithContext(ctx).Where("snapshot_key = ?", key).First(&row)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, res.Error
	}
	return row.Payload, nil
}

func (b *GormBackend) Save(ctx context.Context, key string, payload []byte) error {
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := snapshotRow{Key: key, Payload: payload}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "snapshot_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).Create(&row).Error
	})
}
