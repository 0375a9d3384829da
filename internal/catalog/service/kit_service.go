package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/navisol/navisol-erp/internal/catalog/costing"
	"github.com/navisol/navisol-erp/internal/catalog/entity"
	"github.com/navisol/navisol-erp/internal/catalog/repository"
)

const kitCostCacheTTL = 24 * time.Hour

// KitService manages kits and their versions. Component pins always target
// approved article versions; that is enforced at creation time, not deferred
// to BOM expansion.
type KitService struct {
	repo        *repository.KitRepository
	articleRepo *repository.ArticleRepository
	catRepo     *repository.CategoryRepository
	rdb         *redis.Client
	audit       *auditor
}

func NewKitService(repo *repository.KitRepository, articleRepo *repository.ArticleRepository, catRepo *repository.CategoryRepository, rdb *redis.Client, audit *auditor) *KitService {
	return &KitService{repo: repo, articleRepo: articleRepo, catRepo: catRepo, rdb: rdb, audit: audit}
}

// ComponentInput pins one article version with a quantity per kit.
type ComponentInput struct {
	ArticleVersionID string          `json:"article_version_id" binding:"required"`
	Qty              decimal.Decimal `json:"qty" binding:"required"`
}

// KitVersionInput carries the payload of one kit version. An empty component
// list is legal: a kit under assembly.
type KitVersionInput struct {
	SellPrice       decimal.Decimal  `json:"sell_price" binding:"required"`
	ManualCostPrice *decimal.Decimal `json:"manual_cost_price"`
	ExplodeInBOM    *bool            `json:"explode_in_bom"`
	SalesOnly       bool             `json:"sales_only"`
	Notes           string           `json:"notes"`
	Components      []ComponentInput `json:"components"`
}

type CreateKitRequest struct {
	Code           string `json:"code" binding:"required"`
	Name           string `json:"name" binding:"required"`
	SubcategoryID  string `json:"subcategory_id" binding:"required"`
	CostRollupMode string `json:"cost_rollup_mode"`
	KitVersionInput
}

func (in *KitVersionInput) validate() error {
	if in.SellPrice.IsNegative() {
		return fmt.Errorf("%w: sell_price must not be negative", ErrValidation)
	}
	if in.ManualCostPrice != nil && in.ManualCostPrice.IsNegative() {
		return fmt.Errorf("%w: manual_cost_price must not be negative", ErrValidation)
	}
	for _, c := range in.Components {
		if !c.Qty.IsPositive() {
			return fmt.Errorf("%w: component qty must be positive", ErrValidation)
		}
	}
	return nil
}

func (in *KitVersionInput) toVersion(createdBy string) *entity.KitVersion {
	explode := true
	if in.ExplodeInBOM != nil {
		explode = *in.ExplodeInBOM
	}
	v := &entity.KitVersion{
		ID:           newID(),
		SellPrice:    in.SellPrice,
		ExplodeInBOM: explode,
		SalesOnly:    in.SalesOnly,
		Notes:        in.Notes,
		CreatedBy:    createdBy,
	}
	if in.ManualCostPrice != nil {
		v.ManualCostPrice = decimal.NewNullDecimal(*in.ManualCostPrice)
	}
	return v
}

// resolveComponents verifies every pinned article version exists and is
// approved. Kits must never be built on draft or deprecated pricing.
func (s *KitService) resolveComponents(ctx context.Context, inputs []ComponentInput) ([]entity.KitComponent, error) {
	components := make([]entity.KitComponent, 0, len(inputs))
	for _, in := range inputs {
		av, err := s.articleRepo.FindVersionByID(ctx, in.ArticleVersionID)
		if err != nil {
			return nil, fmt.Errorf("resolve component %s: %w", in.ArticleVersionID, err)
		}
		if av.Status != entity.VersionApproved {
			return nil, fmt.Errorf("%w: article version %s is %s", ErrComponentNotApproved, av.ID, av.Status)
		}
		components = append(components, entity.KitComponent{
			ID:               newID(),
			ArticleVersionID: av.ID,
			Qty:              in.Qty,
		})
	}
	return components, nil
}

// Create validates the subcategory and every component pin, then persists
// the header with a draft version 1.
func (s *KitService) Create(ctx context.Context, audit AuditContext, req *CreateKitRequest) (*entity.Kit, error) {
	if req.Code == "" || req.Name == "" {
		return nil, fmt.Errorf("%w: code and name are required", ErrValidation)
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	mode := req.CostRollupMode
	if mode == "" {
		mode = entity.RollupSumComponents
	}
	if mode != entity.RollupSumComponents && mode != entity.RollupManual {
		return nil, fmt.Errorf("%w: unknown cost_rollup_mode %q", ErrValidation, mode)
	}
	if _, err := s.catRepo.FindSubcategoryByID(ctx, req.SubcategoryID); err != nil {
		return nil, fmt.Errorf("resolve subcategory: %w", err)
	}
	if _, err := s.repo.FindByCode(ctx, req.Code); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateCode, req.Code)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check code uniqueness: %w", err)
	}
	components, err := s.resolveComponents(ctx, req.Components)
	if err != nil {
		return nil, err
	}

	kit := &entity.Kit{
		ID:             newID(),
		Code:           req.Code,
		Name:           req.Name,
		SubcategoryID:  req.SubcategoryID,
		CostRollupMode: mode,
		CreatedBy:      audit.UserID,
	}
	if err := s.repo.Create(ctx, kit, req.KitVersionInput.toVersion(audit.UserID), components); err != nil {
		return nil, fmt.Errorf("create kit: %w", err)
	}
	s.audit.record(ctx, audit, "kit.create", "kit", kit.ID, map[string]interface{}{"code": kit.Code})
	return kit, nil
}

func (s *KitService) Get(ctx context.Context, id string) (*entity.Kit, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *KitService) Search(ctx context.Context, query string) ([]entity.Kit, error) {
	return s.repo.Search(ctx, query)
}

func (s *KitService) GetVersion(ctx context.Context, versionID string) (*entity.KitVersion, error) {
	return s.repo.FindVersionWithComponents(ctx, versionID)
}

func (s *KitService) ListVersions(ctx context.Context, kitID string) ([]entity.KitVersion, error) {
	return s.repo.ListVersions(ctx, kitID)
}

// CreateVersion appends a fresh draft version; component pins are validated
// the same way as at creation.
func (s *KitService) CreateVersion(ctx context.Context, audit AuditContext, kitID string, req *KitVersionInput) (*entity.KitVersion, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	components, err := s.resolveComponents(ctx, req.Components)
	if err != nil {
		return nil, err
	}
	v := req.toVersion(audit.UserID)
	if err := s.repo.CreateVersion(ctx, kitID, v, components); err != nil {
		return nil, fmt.Errorf("create kit version: %w", err)
	}
	s.audit.record(ctx, audit, "kit.create_version", "kit", kitID, map[string]interface{}{"version_number": v.VersionNumber})
	return v, nil
}

func (s *KitService) ApproveVersion(ctx context.Context, audit AuditContext, versionID string) (*entity.KitVersion, error) {
	v, err := s.repo.ApproveVersion(ctx, versionID, audit.UserID)
	if err != nil {
		return nil, fmt.Errorf("approve kit version: %w", err)
	}
	s.audit.record(ctx, audit, "kit.approve_version", "kit", v.KitID, map[string]interface{}{"version_number": v.VersionNumber})
	return v, nil
}

func (s *KitService) CurrentVersion(ctx context.Context, kitID string) (*entity.KitVersion, error) {
	return s.repo.CurrentVersion(ctx, kitID)
}

// UpdateKitRequest mutates header metadata under the optimistic lock.
type UpdateKitRequest struct {
	Name        *string `json:"name"`
	LockVersion *int    `json:"lock_version"`
}

// UpdateHeader mutates header metadata; a stale lock version is rejected.
func (s *KitService) UpdateHeader(ctx context.Context, audit AuditContext, id string, req *UpdateKitRequest) (*entity.Kit, error) {
	kit, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.LockVersion != nil {
		kit.LockVersion = *req.LockVersion
	}
	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if len(fields) == 0 {
		return kit, nil
	}
	if err := s.repo.UpdateHeader(ctx, kit, fields); err != nil {
		return nil, fmt.Errorf("update kit header: %w", err)
	}
	s.audit.record(ctx, audit, "kit.update", "kit", id, nil)
	return s.repo.FindByID(ctx, id)
}

// UpdateDraftVersion replaces a draft's payload, including its component
// pins. Approved and deprecated versions reject the write.
func (s *KitService) UpdateDraftVersion(ctx context.Context, audit AuditContext, versionID string, req *KitVersionInput) (*entity.KitVersion, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	v, err := s.repo.FindVersionByID(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if v.Status != entity.VersionDraft {
		return nil, fmt.Errorf("update kit version: %w", repository.ErrImmutable)
	}
	components, err := s.resolveComponents(ctx, req.Components)
	if err != nil {
		return nil, err
	}

	v.SellPrice = req.SellPrice
	v.ManualCostPrice = decimal.NullDecimal{}
	if req.ManualCostPrice != nil {
		v.ManualCostPrice = decimal.NewNullDecimal(*req.ManualCostPrice)
	}
	if req.ExplodeInBOM != nil {
		v.ExplodeInBOM = *req.ExplodeInBOM
	}
	v.SalesOnly = req.SalesOnly
	v.Notes = req.Notes
	if err := s.repo.UpdateDraftVersion(ctx, v, components); err != nil {
		return nil, fmt.Errorf("update kit version: %w", err)
	}
	s.audit.record(ctx, audit, "kit.update_version", "kit", v.KitID, map[string]interface{}{"version_number": v.VersionNumber})
	return v, nil
}

// CalculateCost rolls up a kit version's cost. Results for approved versions
// are cached: pinned article versions are immutable, so the rollup of an
// approved kit version can never change.
func (s *KitService) CalculateCost(ctx context.Context, kitVersionID string) (*costing.Result, error) {
	cacheKey := "kitcost:" + kitVersionID
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached costing.Result
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	v, err := s.repo.FindVersionWithComponents(ctx, kitVersionID)
	if err != nil {
		return nil, fmt.Errorf("load kit version: %w", err)
	}
	res := costing.Rollup(v)

	if s.rdb != nil && v.Status == entity.VersionApproved {
		if b, err := json.Marshal(res); err == nil {
			s.rdb.Set(ctx, cacheKey, b, kitCostCacheTTL)
		}
	}
	return &res, nil
}
