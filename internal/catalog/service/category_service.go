package service

import (
	"context"
	"fmt"

	"github.com/navisol/navisol-erp/internal/catalog/entity"
	"github.com/navisol/navisol-erp/internal/catalog/repository"
)

// CategoryService manages the two-level category tree. Categories are plain
// metadata, not versioned.
type CategoryService struct {
	repo  *repository.CategoryRepository
	audit *auditor
}

func NewCategoryService(repo *repository.CategoryRepository, audit *auditor) *CategoryService {
	return &CategoryService{repo: repo, audit: audit}
}

type CreateCategoryRequest struct {
	Name      string `json:"name" binding:"required"`
	SortOrder int    `json:"sort_order"`
}

type CreateSubcategoryRequest struct {
	CategoryID string `json:"category_id"`
	Name       string `json:"name" binding:"required"`
	SortOrder  int    `json:"sort_order"`
}

func (s *CategoryService) Create(ctx context.Context, audit AuditContext, req *CreateCategoryRequest) (*entity.Category, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	c := &entity.Category{
		ID:        newID(),
		Name:      req.Name,
		SortOrder: req.SortOrder,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.audit.record(ctx, audit, "category.create", "category", c.ID, map[string]interface{}{"name": c.Name})
	return c, nil
}

func (s *CategoryService) CreateSubcategory(ctx context.Context, audit AuditContext, req *CreateSubcategoryRequest) (*entity.Subcategory, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if _, err := s.repo.FindByID(ctx, req.CategoryID); err != nil {
		return nil, fmt.Errorf("resolve category: %w", err)
	}
	sub := &entity.Subcategory{
		ID:         newID(),
		CategoryID: req.CategoryID,
		Name:       req.Name,
		SortOrder:  req.SortOrder,
	}
	if err := s.repo.CreateSubcategory(ctx, sub); err != nil {
		return nil, fmt.Errorf("create subcategory: %w", err)
	}
	s.audit.record(ctx, audit, "category.create_subcategory", "category", req.CategoryID, map[string]interface{}{"name": sub.Name})
	return sub, nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (*entity.Category, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *CategoryService) List(ctx context.Context) ([]entity.Category, error) {
	return s.repo.List(ctx)
}
