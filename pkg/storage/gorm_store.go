package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// snapshotRecord is the relational row backing one cart key.
type snapshotRecord struct {
	Key        string `gorm:"primaryKey;size:255"`
	Snapshot   []byte
	SnapshotID string
	UpdatedAt  time.Time
}

func (snapshotRecord) TableName() string {
	return "cart_snapshots"
}

// GormStore persists serialized records through a gorm.DB, one row per cart
// key. The table is migrated on construction.
type GormStore[T any] struct {
	db *gorm.DB
}

func NewGormStore[T any](db *gorm.DB) (*GormStore[T], error) {
	if db == nil {
		return nil, fmt.Errorf("storage: gorm db is required")
	}
	if err := db.AutoMigrate(&snapshotRecord{}); err != nil {
		return nil, fmt.Errorf("storage: migrate cart_snapshots: %w", err)
	}
	return &GormStore[T]{db: db}, nil
}

// OpenPostgres opens a Postgres-backed gorm.DB suitable for NewGormStore.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("storage: open postgres: %w", err)
	}
	return db, nil
}

func (s *GormStore[T]) Load(ctx context.Context, ref Ref) (T, Meta, bool, error) {
	var zero T
	key, err := ref.Identifier()
	if err != nil {
		return zero, Meta{}, false, err
	}

	var row snapshotRecord
	err = s.db.WithContext(ctx).First(&row, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return zero, Meta{}, false, nil
	}
	if err != nil {
		return zero, Meta{}, false, fmt.Errorf("storage: select %q: %w", key, err)
	}

	snapshot, meta, err := decodeRecord[T]("gorm", key, row.Snapshot)
	if err != nil {
		return zero, Meta{}, false, err
	}
	if meta.SnapshotID == "" {
		meta.SnapshotID = row.SnapshotID
	}
	if meta.UpdatedAt.IsZero() {
		meta.UpdatedAt = row.UpdatedAt
	}
	return snapshot, meta, true, nil
}

func (s *GormStore[T]) Save(ctx context.Context, ref Ref, snapshot T, meta Meta) (Meta, error) {
	key, err := ref.Identifier()
	if err != nil {
		return Meta{}, err
	}
	if meta.UpdatedAt.IsZero() {
		meta.UpdatedAt = time.Now()
	}
	raw, err := encodeRecord(snapshot, meta)
	if err != nil {
		return Meta{}, err
	}

	row := snapshotRecord{
		Key:        key,
		Snapshot:   raw,
		SnapshotID: meta.SnapshotID,
		UpdatedAt:  meta.UpdatedAt,
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			UpdateAll: true,
		}).
		Create(&row).Error
	if err != nil {
		return Meta{}, fmt.Errorf("storage: upsert %q: %w", key, err)
	}
	return meta, nil
}
