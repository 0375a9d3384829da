package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/navisol/navisol-erp/internal/catalog/entity"
	"github.com/navisol/navisol-erp/internal/catalog/repository"
)

// ConfigurationService manages boat configurations and their line items.
// Line totals are maintained on every write so downstream consumers (BOM
// expansion, quotation) never recompute them.
type ConfigurationService struct {
	repo        *repository.ConfigurationRepository
	articleRepo *repository.ArticleRepository
	kitRepo     *repository.KitRepository
	audit       *auditor
}

func NewConfigurationService(repo *repository.ConfigurationRepository, articleRepo *repository.ArticleRepository, kitRepo *repository.KitRepository, audit *auditor) *ConfigurationService {
	return &ConfigurationService{repo: repo, articleRepo: articleRepo, kitRepo: kitRepo, audit: audit}
}

type CreateConfigurationRequest struct {
	ProjectID string `json:"project_id"`
	Name      string `json:"name" binding:"required"`
}

// ConfigurationItemInput is one line of a configuration. For article and kit
// lines the version reference pins pricing; a missing unit price defaults to
// the pinned version's sell price.
type ConfigurationItemInput struct {
	ItemType         string           `json:"item_type" binding:"required"`
	Name             string           `json:"name" binding:"required"`
	Category         string           `json:"category"`
	Unit             string           `json:"unit"`
	Quantity         decimal.Decimal  `json:"quantity" binding:"required"`
	UnitPriceExclVat *decimal.Decimal `json:"unit_price_excl_vat"`
	IsIncluded       *bool            `json:"is_included"`
	ArticleVersionID *string          `json:"article_version_id"`
	KitVersionID     *string          `json:"kit_version_id"`
	SortOrder        int              `json:"sort_order"`
}

func (s *ConfigurationService) Create(ctx context.Context, audit AuditContext, req *CreateConfigurationRequest) (*entity.Configuration, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	c := &entity.Configuration{
		ID:        newID(),
		ProjectID: req.ProjectID,
		Name:      req.Name,
		CreatedBy: audit.UserID,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create configuration: %w", err)
	}
	s.audit.record(ctx, audit, "configuration.create", "configuration", c.ID, map[string]interface{}{"name": c.Name})
	return c, nil
}

func (s *ConfigurationService) Get(ctx context.Context, id string) (*entity.Configuration, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ConfigurationService) ListByProject(ctx context.Context, projectID string) ([]entity.Configuration, error) {
	return s.repo.ListByProject(ctx, projectID)
}

func (s *ConfigurationService) ListItems(ctx context.Context, configurationID string) ([]entity.ConfigurationItem, error) {
	return s.repo.ListItems(ctx, configurationID)
}

// resolveItem validates the type-specific references and fills the catalog
// back-links. It returns the default unit price for article and kit lines.
func (s *ConfigurationService) resolveItem(ctx context.Context, in *ConfigurationItemInput, item *entity.ConfigurationItem) (decimal.Decimal, error) {
	switch in.ItemType {
	case entity.ItemTypeArticle:
		if in.ArticleVersionID == nil {
			return decimal.Zero, fmt.Errorf("%w: article items require article_version_id", ErrValidation)
		}
		av, err := s.articleRepo.FindVersionByID(ctx, *in.ArticleVersionID)
		if err != nil {
			return decimal.Zero, fmt.Errorf("resolve article version: %w", err)
		}
		item.ArticleID = &av.ArticleID
		item.ArticleVersionID = &av.ID
		return av.SellPrice, nil
	case entity.ItemTypeKit:
		if in.KitVersionID == nil {
			return decimal.Zero, fmt.Errorf("%w: kit items require kit_version_id", ErrValidation)
		}
		kv, err := s.kitRepo.FindVersionByID(ctx, *in.KitVersionID)
		if err != nil {
			return decimal.Zero, fmt.Errorf("resolve kit version: %w", err)
		}
		item.KitID = &kv.KitID
		item.KitVersionID = &kv.ID
		return kv.SellPrice, nil
	case entity.ItemTypeLegacy, entity.ItemTypeCustom:
		return decimal.Zero, nil
	default:
		return decimal.Zero, fmt.Errorf("%w: unknown item_type %q", ErrValidation, in.ItemType)
	}
}

// AddItem appends one line, resolving catalog references and computing the
// line total as quantity times unit price.
func (s *ConfigurationService) AddItem(ctx context.Context, audit AuditContext, configurationID string, in *ConfigurationItemInput) (*entity.ConfigurationItem, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !in.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	if _, err := s.repo.FindByID(ctx, configurationID); err != nil {
		return nil, fmt.Errorf("resolve configuration: %w", err)
	}

	unit := in.Unit
	if unit == "" {
		unit = "pcs"
	}
	included := true
	if in.IsIncluded != nil {
		included = *in.IsIncluded
	}
	item := &entity.ConfigurationItem{
		ID:              newID(),
		ConfigurationID: configurationID,
		ItemType:        in.ItemType,
		Name:            in.Name,
		Category:        in.Category,
		Unit:            unit,
		Quantity:        in.Quantity,
		IsIncluded:      included,
		SortOrder:       in.SortOrder,
	}
	defaultPrice, err := s.resolveItem(ctx, in, item)
	if err != nil {
		return nil, err
	}
	item.UnitPriceExclVat = defaultPrice
	if in.UnitPriceExclVat != nil {
		if in.UnitPriceExclVat.IsNegative() {
			return nil, fmt.Errorf("%w: unit_price_excl_vat must not be negative", ErrValidation)
		}
		item.UnitPriceExclVat = *in.UnitPriceExclVat
	}
	item.LineTotalExclVat = item.Quantity.Mul(item.UnitPriceExclVat)

	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("create configuration item: %w", err)
	}
	s.audit.record(ctx, audit, "configuration.add_item", "configuration", configurationID, map[string]interface{}{"name": item.Name, "item_type": item.ItemType})
	return item, nil
}

// UpdateItem replaces a line's payload; the line total is recomputed.
func (s *ConfigurationService) UpdateItem(ctx context.Context, audit AuditContext, itemID string, in *ConfigurationItemInput) (*entity.ConfigurationItem, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !in.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	item, err := s.repo.FindItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	item.ItemType = in.ItemType
	item.Name = in.Name
	item.Category = in.Category
	if in.Unit != "" {
		item.Unit = in.Unit
	}
	item.Quantity = in.Quantity
	if in.IsIncluded != nil {
		item.IsIncluded = *in.IsIncluded
	}
	item.SortOrder = in.SortOrder
	item.ArticleID = nil
	item.ArticleVersionID = nil
	item.KitID = nil
	item.KitVersionID = nil

	defaultPrice, err := s.resolveItem(ctx, in, item)
	if err != nil {
		return nil, err
	}
	item.UnitPriceExclVat = defaultPrice
	if in.UnitPriceExclVat != nil {
		if in.UnitPriceExclVat.IsNegative() {
			return nil, fmt.Errorf("%w: unit_price_excl_vat must not be negative", ErrValidation)
		}
		item.UnitPriceExclVat = *in.UnitPriceExclVat
	}
	item.LineTotalExclVat = item.Quantity.Mul(item.UnitPriceExclVat)

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("update configuration item: %w", err)
	}
	s.audit.record(ctx, audit, "configuration.update_item", "configuration", item.ConfigurationID, map[string]interface{}{"item_id": item.ID})
	return item, nil
}

func (s *ConfigurationService) DeleteItem(ctx context.Context, audit AuditContext, itemID string) error {
	item, err := s.repo.FindItemByID(ctx, itemID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteItem(ctx, itemID); err != nil {
		return fmt.Errorf("delete configuration item: %w", err)
	}
	s.audit.record(ctx, audit, "configuration.delete_item", "configuration", item.ConfigurationID, map[string]interface{}{"item_id": itemID})
	return nil
}
