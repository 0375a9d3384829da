package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/navisol/navisol-erp/internal/catalog/entity"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, c *entity.Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*entity.Category, error) {
	var c entity.Category
	err := r.db.WithContext(ctx).
		Preload("Subcategories", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		First(&c, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// List returns the category tree ordered for display.
func (r *CategoryRepository) List(ctx context.Context) ([]entity.Category, error) {
	var categories []entity.Category
	err := r.db.WithContext(ctx).
		Preload("Subcategories", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Order("sort_order ASC").
		Find(&categories).Error
	return categories, err
}

func (r *CategoryRepository) CreateSubcategory(ctx context.Context, s *entity.Subcategory) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *CategoryRepository) FindSubcategoryByID(ctx context.Context, id string) (*entity.Subcategory, error) {
	var s entity.Subcategory
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}
