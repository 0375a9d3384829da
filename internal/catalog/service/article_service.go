package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/navisol/navisol-erp/internal/catalog/entity"
	"github.com/navisol/navisol-erp/internal/catalog/repository"
)

// ArticleService manages articles and their versions.
type ArticleService struct {
	repo        *repository.ArticleRepository
	catRepo     *repository.CategoryRepository
	attachments AttachmentStore
	audit       *auditor
}

func NewArticleService(repo *repository.ArticleRepository, catRepo *repository.CategoryRepository, attachments AttachmentStore, audit *auditor) *ArticleService {
	return &ArticleService{repo: repo, catRepo: catRepo, attachments: attachments, audit: audit}
}

// ArticleVersionInput carries the full pricing payload of one version.
// Nothing is inherited from earlier versions; every field is supplied fresh.
type ArticleVersionInput struct {
	SellPrice    decimal.Decimal  `json:"sell_price" binding:"required"`
	CostPrice    *decimal.Decimal `json:"cost_price"`
	VATRate      decimal.Decimal  `json:"vat_rate"`
	WeightKg     *decimal.Decimal `json:"weight_kg"`
	LeadTimeDays int              `json:"lead_time_days"`
	Notes        string           `json:"notes"`
}

// CreateArticleRequest creates the header plus version 1 (draft).
type CreateArticleRequest struct {
	Code          string   `json:"code" binding:"required"`
	Name          string   `json:"name" binding:"required"`
	SubcategoryID string   `json:"subcategory_id" binding:"required"`
	Unit          string   `json:"unit"`
	Tags          []string `json:"tags"`
	ArticleVersionInput
}

// UpdateArticleRequest mutates header metadata under the optimistic lock.
type UpdateArticleRequest struct {
	Name        *string  `json:"name"`
	Tags        []string `json:"tags"`
	LockVersion *int     `json:"lock_version"`
}

func (in *ArticleVersionInput) validate() error {
	if in.SellPrice.IsNegative() {
		return fmt.Errorf("%w: sell_price must not be negative", ErrValidation)
	}
	if in.CostPrice != nil && in.CostPrice.IsNegative() {
		return fmt.Errorf("%w: cost_price must not be negative", ErrValidation)
	}
	return nil
}

func (in *ArticleVersionInput) toVersion(createdBy string) *entity.ArticleVersion {
	v := &entity.ArticleVersion{
		ID:           newID(),
		SellPrice:    in.SellPrice,
		VATRate:      in.VATRate,
		LeadTimeDays: in.LeadTimeDays,
		Notes:        in.Notes,
		Attachments:  []byte("[]"),
		CreatedBy:    createdBy,
	}
	if in.CostPrice != nil {
		v.CostPrice = decimal.NewNullDecimal(*in.CostPrice)
	}
	if in.WeightKg != nil {
		v.WeightKg = decimal.NewNullDecimal(*in.WeightKg)
	}
	return v
}

// Create validates code uniqueness and creates the header together with a
// draft version 1. Approval is an explicit separate step.
func (s *ArticleService) Create(ctx context.Context, audit AuditContext, req *CreateArticleRequest) (*entity.Article, error) {
	if req.Code == "" || req.Name == "" {
		return nil, fmt.Errorf("%w: code and name are required", ErrValidation)
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	if _, err := s.catRepo.FindSubcategoryByID(ctx, req.SubcategoryID); err != nil {
		return nil, fmt.Errorf("resolve subcategory: %w", err)
	}
	if _, err := s.repo.FindByCode(ctx, req.Code); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateCode, req.Code)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check code uniqueness: %w", err)
	}

	unit := req.Unit
	if unit == "" {
		unit = "pcs"
	}
	article := &entity.Article{
		ID:            newID(),
		Code:          req.Code,
		Name:          req.Name,
		SubcategoryID: req.SubcategoryID,
		Unit:          unit,
		Tags:          marshalTags(req.Tags),
		CreatedBy:     audit.UserID,
	}
	if err := s.repo.Create(ctx, article, req.ArticleVersionInput.toVersion(audit.UserID)); err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}

	s.audit.record(ctx, audit, "article.create", "article", article.ID, map[string]interface{}{"code": article.Code})
	return article, nil
}

func (s *ArticleService) Get(ctx context.Context, id string) (*entity.Article, error) {
	return s.repo.FindByID(ctx, id)
}

// Search matches code and name case-insensitively by substring.
func (s *ArticleService) Search(ctx context.Context, query string) ([]entity.Article, error) {
	return s.repo.Search(ctx, query)
}

// CreateVersion appends a fresh draft version numbered after the latest one.
func (s *ArticleService) CreateVersion(ctx context.Context, audit AuditContext, articleID string, req *ArticleVersionInput) (*entity.ArticleVersion, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	v := req.toVersion(audit.UserID)
	if err := s.repo.CreateVersion(ctx, articleID, v); err != nil {
		return nil, fmt.Errorf("create article version: %w", err)
	}
	s.audit.record(ctx, audit, "article.create_version", "article", articleID, map[string]interface{}{"version_number": v.VersionNumber})
	return v, nil
}

// ApproveVersion freezes a draft as the article's current approved version,
// deprecating the previous one in the same transaction.
func (s *ArticleService) ApproveVersion(ctx context.Context, audit AuditContext, versionID string) (*entity.ArticleVersion, error) {
	v, err := s.repo.ApproveVersion(ctx, versionID, audit.UserID)
	if err != nil {
		return nil, fmt.Errorf("approve article version: %w", err)
	}
	s.audit.record(ctx, audit, "article.approve_version", "article", v.ArticleID, map[string]interface{}{"version_number": v.VersionNumber})
	return v, nil
}

func (s *ArticleService) CurrentVersion(ctx context.Context, articleID string) (*entity.ArticleVersion, error) {
	return s.repo.CurrentVersion(ctx, articleID)
}

func (s *ArticleService) GetVersion(ctx context.Context, versionID string) (*entity.ArticleVersion, error) {
	return s.repo.FindVersionByID(ctx, versionID)
}

func (s *ArticleService) ListVersions(ctx context.Context, articleID string) ([]entity.ArticleVersion, error) {
	return s.repo.ListVersions(ctx, articleID)
}

// UpdateDraftVersion replaces the pricing payload of a draft. Approved and
// deprecated versions reject the write.
func (s *ArticleService) UpdateDraftVersion(ctx context.Context, audit AuditContext, versionID string, req *ArticleVersionInput) (*entity.ArticleVersion, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	v, err := s.repo.FindVersionByID(ctx, versionID)
	if err != nil {
		return nil, err
	}
	v.SellPrice = req.SellPrice
	v.CostPrice = decimal.NullDecimal{}
	if req.CostPrice != nil {
		v.CostPrice = decimal.NewNullDecimal(*req.CostPrice)
	}
	v.VATRate = req.VATRate
	v.WeightKg = decimal.NullDecimal{}
	if req.WeightKg != nil {
		v.WeightKg = decimal.NewNullDecimal(*req.WeightKg)
	}
	v.LeadTimeDays = req.LeadTimeDays
	v.Notes = req.Notes
	if err := s.repo.UpdateDraftVersion(ctx, v); err != nil {
		return nil, fmt.Errorf("update draft version: %w", err)
	}
	s.audit.record(ctx, audit, "article.update_version", "article", v.ArticleID, map[string]interface{}{"version_number": v.VersionNumber})
	return v, nil
}

// UpdateHeader mutates header metadata; a stale lock version is rejected.
func (s *ArticleService) UpdateHeader(ctx context.Context, audit AuditContext, id string, req *UpdateArticleRequest) (*entity.Article, error) {
	article, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.LockVersion != nil {
		article.LockVersion = *req.LockVersion
	}
	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Tags != nil {
		fields["tags"] = marshalTags(req.Tags)
	}
	if len(fields) == 0 {
		return article, nil
	}
	if err := s.repo.UpdateHeader(ctx, article, fields); err != nil {
		return nil, fmt.Errorf("update article header: %w", err)
	}
	s.audit.record(ctx, audit, "article.update", "article", id, nil)
	return s.repo.FindByID(ctx, id)
}

// AddAttachment appends file metadata to a draft version, uploading the
// content to the blob store when one is configured. Non-draft versions
// reject the call and their attachment list stays untouched — approved
// documentation snapshots can never be silently altered.
func (s *ArticleService) AddAttachment(ctx context.Context, audit AuditContext, versionID string, att entity.Attachment, content io.Reader) (*entity.ArticleVersion, error) {
	v, err := s.repo.FindVersionByID(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if v.Status != entity.VersionDraft {
		return nil, fmt.Errorf("add attachment: %w", repository.ErrImmutable)
	}
	if att.Filename == "" {
		return nil, fmt.Errorf("%w: attachment filename is required", ErrValidation)
	}

	if content != nil && s.attachments != nil {
		key := fmt.Sprintf("articles/%s/%s/%s", v.ArticleID, v.ID, att.Filename)
		url, err := s.attachments.Put(ctx, key, content, att.Size, att.ContentType)
		if err != nil {
			return nil, fmt.Errorf("store attachment: %w", err)
		}
		att.URL = url
	}

	var list []entity.Attachment
	if len(v.Attachments) > 0 {
		if err := json.Unmarshal(v.Attachments, &list); err != nil {
			return nil, fmt.Errorf("decode attachments: %w", err)
		}
	}
	list = append(list, att)
	b, err := json.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("encode attachments: %w", err)
	}
	v.Attachments = b

	if err := s.repo.UpdateDraftVersion(ctx, v); err != nil {
		return nil, fmt.Errorf("save attachment metadata: %w", err)
	}
	s.audit.record(ctx, audit, "article.add_attachment", "article", v.ArticleID, map[string]interface{}{"filename": att.Filename})
	return v, nil
}
