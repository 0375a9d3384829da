package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/navisol/navisol-erp/internal/catalog/entity"
)

type ArticleRepository struct {
	db    *gorm.DB
	store *VersionedStore[*entity.Article, *entity.ArticleVersion]
}

func NewArticleRepository(db *gorm.DB) *ArticleRepository {
	return &ArticleRepository{
		db: db,
		store: NewVersionedStore(db, "article_id",
			func() *entity.Article { return &entity.Article{} },
			func() *entity.ArticleVersion { return &entity.ArticleVersion{} }),
	}
}

// Create persists the header together with its first version in one
// transaction. The version arrives as draft; approval is a separate step.
func (r *ArticleRepository) Create(ctx context.Context, article *entity.Article, first *entity.ArticleVersion) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(article).Error; err != nil {
			return err
		}
		first.ArticleID = article.ID
		return r.store.withDB(tx).CreateVersion(ctx, article.ID, first)
	})
}

func (r *ArticleRepository) FindByID(ctx context.Context, id string) (*entity.Article, error) {
	var article entity.Article
	err := r.db.WithContext(ctx).
		Preload("Subcategory").
		First(&article, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &article, nil
}

// FindByCode does an exact-match lookup, used for duplicate detection.
func (r *ArticleRepository) FindByCode(ctx context.Context, code string) (*entity.Article, error) {
	var article entity.Article
	err := r.db.WithContext(ctx).First(&article, "code = ?", code).Error
	if err != nil {
		return nil, translate(err)
	}
	return &article, nil
}

// Search matches code and name case-insensitively by substring.
func (r *ArticleRepository) Search(ctx context.Context, query string) ([]entity.Article, error) {
	like := "%" + strings.ToLower(query) + "%"
	var articles []entity.Article
	err := r.db.WithContext(ctx).
		Where("LOWER(code) LIKE ? OR LOWER(name) LIKE ?", like, like).
		Order("code ASC").
		Find(&articles).Error
	return articles, err
}

func (r *ArticleRepository) CreateVersion(ctx context.Context, articleID string, v *entity.ArticleVersion) error {
	v.ArticleID = articleID
	return r.store.CreateVersion(ctx, articleID, v)
}

func (r *ArticleRepository) ApproveVersion(ctx context.Context, versionID, approvedBy string) (*entity.ArticleVersion, error) {
	return r.store.ApproveVersion(ctx, versionID, approvedBy)
}

func (r *ArticleRepository) CurrentVersion(ctx context.Context, articleID string) (*entity.ArticleVersion, error) {
	return r.store.CurrentVersion(ctx, articleID)
}

func (r *ArticleRepository) FindVersionByID(ctx context.Context, id string) (*entity.ArticleVersion, error) {
	return r.store.FindVersion(ctx, id)
}

// FindVersionWithArticle loads a version together with its header, which the
// BOM engine needs for code/name/unit on output lines.
func (r *ArticleRepository) FindVersionWithArticle(ctx context.Context, id string) (*entity.ArticleVersion, error) {
	var v entity.ArticleVersion
	err := r.db.WithContext(ctx).Preload("Article").First(&v, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func (r *ArticleRepository) ListVersions(ctx context.Context, articleID string) ([]entity.ArticleVersion, error) {
	var versions []entity.ArticleVersion
	err := r.db.WithContext(ctx).
		Where("article_id = ?", articleID).
		Order("version_number DESC").
		Find(&versions).Error
	return versions, err
}

func (r *ArticleRepository) UpdateDraftVersion(ctx context.Context, v *entity.ArticleVersion) error {
	return r.store.UpdateDraft(ctx, v)
}

func (r *ArticleRepository) UpdateHeader(ctx context.Context, article *entity.Article, fields map[string]interface{}) error {
	return r.store.UpdateHeader(ctx, article, fields)
}
