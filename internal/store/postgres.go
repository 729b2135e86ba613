package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitPostgres opens the database named by dsn and migrates the document
// tables used by the storage containers.
func InitPostgres(dsn string, containers ...string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	for _, container := range containers {
		if err := db.Table(container).AutoMigrate(&documentRow{}); err != nil {
			return nil, fmt.Errorf("migrating %s: %w", container, err)
		}
	}
	return db, nil
}

// documentRow is the relational shape of a stored record: the composite key
// columns plus the full record as jsonb. MemberIDs is extracted from group
// records so membership lookups can run in SQL.
type documentRow struct {
	ID        string         `gorm:"primaryKey;size:256"`
	TenantID  string         `gorm:"primaryKey;size:128;index"`
	Type      string         `gorm:"size:32"`
	MemberIDs pq.StringArray `gorm:"type:text[]"`
	Data      []byte         `gorm:"type:jsonb"`
	UpdatedAt time.Time
}

// Postgres stores each container in its own document table.
type Postgres[T Item] struct {
	db    *gorm.DB
	table string
}

func NewPostgres[T Item](db *gorm.DB, table string) *Postgres[T] {
	return &Postgres[T]{db: db, table: table}
}

func (p *Postgres[T]) Get(ctx context.Context, id, tenantID string) (T, bool, error) {
	var value T
	var row documentRow
	err := p.db.WithContext(ctx).Table(p.table).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return value, false, nil
	}
	if err != nil {
		return value, false, err
	}
	if err := json.Unmarshal(row.Data, &value); err != nil {
		return value, false, err
	}
	return value, true, nil
}

func (p *Postgres[T]) Set(ctx context.Context, value T) error {
	if value.ItemTenant() == "" {
		return ErrTenantRequired
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	row := documentRow{
		ID:        value.ItemID(),
		TenantID:  value.ItemTenant(),
		Data:      data,
		UpdatedAt: time.Now(),
	}
	if typed, ok := any(value).(interface{ ItemType() string }); ok {
		row.Type = typed.ItemType()
	}
	if lister, ok := any(value).(memberLister); ok {
		row.MemberIDs = lister.Members()
	}

	return p.db.WithContext(ctx).Table(p.table).Save(&row).Error
}

func (p *Postgres[T]) Delete(ctx context.Context, id, tenantID string) error {
	return p.db.WithContext(ctx).Table(p.table).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Delete(&documentRow{}).Error
}

func (p *Postgres[T]) QueryByTenant(ctx context.Context, tenantID string) ([]T, error) {
	var rows []documentRow
	err := p.db.WithContext(ctx).Table(p.table).
		Where("tenant_id = ?", tenantID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return decodeRows[T](rows)
}

// QueryByMember returns records whose membership roster contains userID.
// Only meaningful for containers holding group records.
func (p *Postgres[T]) QueryByMember(ctx context.Context, tenantID, userID string) ([]T, error) {
	var rows []documentRow
	err := p.db.WithContext(ctx).Table(p.table).
		Where("tenant_id = ? AND ? = ANY(member_ids)", tenantID, userID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return decodeRows[T](rows)
}

func decodeRows[T Item](rows []documentRow) ([]T, error) {
	var results []T
	for _, row := range rows {
		var value T
		if err := json.Unmarshal(row.Data, &value); err != nil {
			return nil, err
		}
		results = append(results, value)
	}
	return results, nil
}
