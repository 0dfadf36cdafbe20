package localstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ginzapet/storefront/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// localStateRow is one named document in the local_state table.
type localStateRow struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     string    `gorm:"column:value"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (localStateRow) TableName() string { return "local_state" }

// Database persists documents in a relational table, one row per key.
type Database struct {
	client *db.Client
}

func NewDatabase(client *db.Client) (*Database, error) {
	if client == nil {
		return nil, fmt.Errorf("db client is required")
	}
	return &Database{client: client}, nil
}

func (d *Database) Load(ctx context.Context, key string) ([]byte, error) {
	var row localStateRow
	err := d.client.DB().WithContext(ctx).First(&row, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading %s: %w", key, err)
	}
	return []byte(row.Value), nil
}

func (d *Database) Save(ctx context.Context, key string, value []byte) error {
	row := localStateRow{Key: key, Value: string(value), UpdatedAt: time.Now().UTC()}
	err := d.client.DB().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

func (d *Database) Clear(ctx context.Context, key string) error {
	err := d.client.DB().WithContext(ctx).Delete(&localStateRow{}, "key = ?", key).Error
	if err != nil {
		return fmt.Errorf("clearing %s: %w", key, err)
	}
	return nil
}
