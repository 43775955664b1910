package remote

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SJJP-F-2025/requests-service/internal/models"
)

// Store is the capability the rest of the system holds on the remote data
// store: select, idempotent upsert, and delete against named tables. The
// sync engine and the workflow services depend on this interface so they can
// run against a fake in tests and degrade to local-only when no remote is
// configured.
type Store interface {
	// Select fetches up to limit rows (limit <= 0 means no bound).
	Select(ctx context.Context, table string, limit int) ([]Row, error)

	// Upsert pushes rows into the table. When the table spec declares a conflict
	// key, matching remote rows are replaced and new ones inserted; without
	// one the rows are appended as-is.
	Upsert(ctx context.Context, spec TableSpec, rows []Row) error

	// Delete removes the rows whose key column matches one of ids.
	Delete(ctx context.Context, table, key string, ids []string) error

	// DeleteAll clears every keyed row in the table. Only the destructive
	// replace path of the sync engine reaches this.
	DeleteAll(ctx context.Context, table, key string) error
}

// Client implements Store on a GORM connection.
type Client struct {
	db *gorm.DB
}

func NewClient(db *gorm.DB) *Client {
	return &Client{db: db}
}

// EnsureSchema creates the remote tables when they do not exist yet, the
// moral equivalent of the original bootstrap SQL script.
func (c *Client) EnsureSchema(ctx context.Context) error {
	return c.db.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Coach{},
		&models.School{},
		&models.Material{},
		&models.Request{},
		&models.StockRow{},
	)
}

func (c *Client) Select(ctx context.Context, table string, limit int) ([]Row, error) {
	var rows []Row
	q := c.db.WithContext(ctx).Table(table)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("select from %s failed: %w", table, err)
	}
	return rows, nil
}

func (c *Client) Upsert(ctx context.Context, spec TableSpec, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}

	q := c.db.WithContext(ctx).Table(spec.Name)
	if spec.ConflictKey != "" {
		q = q.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: spec.ConflictKey}},
			UpdateAll: true,
		})
	}
	if err := q.Create(&rows).Error; err != nil {
		return fmt.Errorf("upsert into %s failed: %w", spec.Name, err)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, table, key string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	// Table and key names come from the fixed table specs, never from input.
	sql := fmt.Sprintf("DELETE FROM %s WHERE %s IN ?", table, key)
	if err := c.db.WithContext(ctx).Exec(sql, ids).Error; err != nil {
		return fmt.Errorf("delete from %s failed: %w", table, err)
	}
	return nil
}

func (c *Client) DeleteAll(ctx context.Context, table, key string) error {
	sql := fmt.Sprintf("DELETE FROM %s WHERE %s IS NOT NULL", table, key)
	if err := c.db.WithContext(ctx).Exec(sql).Error; err != nil {
		return fmt.Errorf("clear of %s failed: %w", table, err)
	}
	return nil
}
