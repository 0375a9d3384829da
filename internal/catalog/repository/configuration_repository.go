package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/navisol/navisol-erp/internal/catalog/entity"
)

type ConfigurationRepository struct {
	db *gorm.DB
}

func NewConfigurationRepository(db *gorm.DB) *ConfigurationRepository {
	return &ConfigurationRepository{db: db}
}

func (r *ConfigurationRepository) Create(ctx context.Context, c *entity.Configuration) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ConfigurationRepository) FindByID(ctx context.Context, id string) (*entity.Configuration, error) {
	var c entity.Configuration
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		First(&c, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *ConfigurationRepository) ListByProject(ctx context.Context, projectID string) ([]entity.Configuration, error) {
	var configs []entity.Configuration
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&configs).Error
	return configs, err
}

func (r *ConfigurationRepository) CreateItem(ctx context.Context, item *entity.ConfigurationItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *ConfigurationRepository) FindItemByID(ctx context.Context, id string) (*entity.ConfigurationItem, error) {
	var item entity.ConfigurationItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (r *ConfigurationRepository) UpdateItem(ctx context.Context, item *entity.ConfigurationItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *ConfigurationRepository) DeleteItem(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.ConfigurationItem{}, "id = ?", id).Error
}

func (r *ConfigurationRepository) ListItems(ctx context.Context, configurationID string) ([]entity.ConfigurationItem, error) {
	var items []entity.ConfigurationItem
	err := r.db.WithContext(ctx).
		Where("configuration_id = ?", configurationID).
		Order("sort_order ASC").
		Find(&items).Error
	return items, err
}
