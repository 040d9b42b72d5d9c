package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schedule-visualizer/backend/internal/model"
	pkgerrors "schedule-visualizer/backend/pkg/errors"
)

// Gorm 基于关系库 kv_entries 表的存储（PostgreSQL 或 SQLite）
type Gorm struct {
	db *gorm.DB
}

// NewGorm 创建关系库存储
func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (g *Gorm) Get(ctx context.Context, key string) ([]byte, error) {
	var entry model.KVEntry
	err := g.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: 查询 kv_entries 失败: %v", pkgerrors.ErrStoreUnavailable, err)
	}
	return []byte(entry.Value), nil
}

// Set 按主键 upsert
func (g *Gorm) Set(ctx context.Context, key string, value []byte) error {
	now := time.Now()
	entry := model.KVEntry{
		Key:       key,
		Value:     string(value),
		BaseModel: model.BaseModel{CreatedAt: now, UpdatedAt: now},
	}
	err := g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("%w: 写入 kv_entries 失败: %v", pkgerrors.ErrStoreUnavailable, err)
	}
	return nil
}

func (g *Gorm) Delete(ctx context.Context, key string) error {
	if err := g.db.WithContext(ctx).Where("key = ?", key).Delete(&model.KVEntry{}).Error; err != nil {
		return fmt.Errorf("%w: 删除 kv_entries 失败: %v", pkgerrors.ErrStoreUnavailable, err)
	}
	return nil
}
