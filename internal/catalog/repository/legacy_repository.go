package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/navisol/navisol-erp/internal/catalog/entity"
)

type LegacyMappingRepository struct {
	db *gorm.DB
}

func NewLegacyMappingRepository(db *gorm.DB) *LegacyMappingRepository {
	return &LegacyMappingRepository{db: db}
}

func (r *LegacyMappingRepository) Create(ctx context.Context, m *entity.LegacyPartMapping) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *LegacyMappingRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.LegacyPartMapping{}, "id = ?", id).Error
}

func (r *LegacyMappingRepository) List(ctx context.Context) ([]entity.LegacyPartMapping, error) {
	var mappings []entity.LegacyPartMapping
	err := r.db.WithContext(ctx).Order("legacy_name ASC").Find(&mappings).Error
	return mappings, err
}

// Table loads all mappings keyed by lowercased legacy name, the form the
// BOM engine consumes. One legacy name may map to several parts.
func (r *LegacyMappingRepository) Table(ctx context.Context) (map[string][]entity.LegacyPartMapping, error) {
	mappings, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	table := make(map[string][]entity.LegacyPartMapping, len(mappings))
	for _, m := range mappings {
		key := strings.ToLower(m.LegacyName)
		table[key] = append(table[key], m)
	}
	return table, nil
}

// Count is used at startup to decide whether seeding is needed.
func (r *LegacyMappingRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.LegacyPartMapping{}).Count(&count).Error
	return count, err
}
