// Package repository provides a generic gorm-backed CRUD repository and the
// gorm model of the messages table.
package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/roach88/msgstore/internal/message"
)

// ErrNotFound is returned by Get when no entity has the given key.
var ErrNotFound = errors.New("entity not found")

// GormRepository is a CRUD repository over one gorm model type.
type GormRepository[T any] struct {
	db *gorm.DB
}

func NewGormRepository[T any](db *gorm.DB) (*GormRepository[T], error) {
	if db == nil {
		return nil, fmt.Errorf("%w: gorm db is nil", message.ErrInvalidArgument)
	}
	return &GormRepository[T]{db: db}, nil
}

func (r *GormRepository[T]) Add(ctx context.Context, entity *T) error {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return fmt.Errorf("add entity: %w", err)
	}
	return nil
}

func (r *GormRepository[T]) AddRange(ctx context.Context, entities []T) error {
	if len(entities) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&entities).Error; err != nil {
		return fmt.Errorf("add entities: %w", err)
	}
	return nil
}

// Find returns the entities matching a gorm Where condition, e.g.
// Find(ctx, "status = ?", 3).
func (r *GormRepository[T]) Find(ctx context.Context, query any, args ...any) ([]T, error) {
	out := []T{}
	if err := r.db.WithContext(ctx).Where(query, args...).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("find entities: %w", err)
	}
	return out, nil
}

// Get loads the entity with primary key id. Returns ErrNotFound on a miss.
func (r *GormRepository[T]) Get(ctx context.Context, id any) (*T, error) {
	var out T
	err := r.db.WithContext(ctx).First(&out, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("get entity %v: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get entity %v: %w", id, err)
	}
	return &out, nil
}

func (r *GormRepository[T]) GetAll(ctx context.Context) ([]T, error) {
	out := []T{}
	if err := r.db.WithContext(ctx).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("get all entities: %w", err)
	}
	return out, nil
}

// Remove deletes entity by its primary key.
func (r *GormRepository[T]) Remove(ctx context.Context, entity *T) error {
	if err := r.db.WithContext(ctx).Delete(entity).Error; err != nil {
		return fmt.Errorf("remove entity: %w", err)
	}
	return nil
}

func (r *GormRepository[T]) RemoveRange(ctx context.Context, entities []T) error {
	if len(entities) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Delete(&entities).Error; err != nil {
		return fmt.Errorf("remove entities: %w", err)
	}
	return nil
}
