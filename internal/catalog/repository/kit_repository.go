package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/navisol/navisol-erp/internal/catalog/entity"
)

type KitRepository struct {
	db    *gorm.DB
	store *VersionedStore[*entity.Kit, *entity.KitVersion]
}

func NewKitRepository(db *gorm.DB) *KitRepository {
	return &KitRepository{
		db: db,
		store: NewVersionedStore(db, "kit_id",
			func() *entity.Kit { return &entity.Kit{} },
			func() *entity.KitVersion { return &entity.KitVersion{} }),
	}
}

// Create persists the header, its first draft version and the component
// pins in one transaction.
func (r *KitRepository) Create(ctx context.Context, kit *entity.Kit, first *entity.KitVersion, components []entity.KitComponent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(kit).Error; err != nil {
			return err
		}
		first.KitID = kit.ID
		if err := r.store.withDB(tx).CreateVersion(ctx, kit.ID, first); err != nil {
			return err
		}
		return createComponents(tx, first.ID, components)
	})
}

func (r *KitRepository) CreateVersion(ctx context.Context, kitID string, v *entity.KitVersion, components []entity.KitComponent) error {
	v.KitID = kitID
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.store.withDB(tx).CreateVersion(ctx, kitID, v); err != nil {
			return err
		}
		return createComponents(tx, v.ID, components)
	})
}

func createComponents(tx *gorm.DB, kitVersionID string, components []entity.KitComponent) error {
	if len(components) == 0 {
		return nil
	}
	for i := range components {
		components[i].KitVersionID = kitVersionID
	}
	return tx.Create(&components).Error
}

func (r *KitRepository) FindByID(ctx context.Context, id string) (*entity.Kit, error) {
	var kit entity.Kit
	err := r.db.WithContext(ctx).
		Preload("Subcategory").
		First(&kit, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &kit, nil
}

func (r *KitRepository) FindByCode(ctx context.Context, code string) (*entity.Kit, error) {
	var kit entity.Kit
	err := r.db.WithContext(ctx).First(&kit, "code = ?", code).Error
	if err != nil {
		return nil, translate(err)
	}
	return &kit, nil
}

func (r *KitRepository) Search(ctx context.Context, query string) ([]entity.Kit, error) {
	like := "%" + strings.ToLower(query) + "%"
	var kits []entity.Kit
	err := r.db.WithContext(ctx).
		Where("LOWER(code) LIKE ? OR LOWER(name) LIKE ?", like, like).
		Order("code ASC").
		Find(&kits).Error
	return kits, err
}

// FindVersionWithComponents loads a kit version with its component pins and
// the pinned article versions (plus their headers).
func (r *KitRepository) FindVersionWithComponents(ctx context.Context, id string) (*entity.KitVersion, error) {
	var v entity.KitVersion
	err := r.db.WithContext(ctx).
		Preload("Kit").
		Preload("Components").
		Preload("Components.ArticleVersion").
		Preload("Components.ArticleVersion.Article").
		First(&v, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func (r *KitRepository) ApproveVersion(ctx context.Context, versionID, approvedBy string) (*entity.KitVersion, error) {
	return r.store.ApproveVersion(ctx, versionID, approvedBy)
}

func (r *KitRepository) CurrentVersion(ctx context.Context, kitID string) (*entity.KitVersion, error) {
	return r.store.CurrentVersion(ctx, kitID)
}

func (r *KitRepository) FindVersionByID(ctx context.Context, id string) (*entity.KitVersion, error) {
	return r.store.FindVersion(ctx, id)
}

func (r *KitRepository) ListVersions(ctx context.Context, kitID string) ([]entity.KitVersion, error) {
	var versions []entity.KitVersion
	err := r.db.WithContext(ctx).
		Where("kit_id = ?", kitID).
		Order("version_number DESC").
		Find(&versions).Error
	return versions, err
}

// UpdateDraftVersion saves a draft's payload and replaces its component pins
// in one transaction.
func (r *KitRepository) UpdateDraftVersion(ctx context.Context, v *entity.KitVersion, components []entity.KitComponent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.store.withDB(tx).UpdateDraft(ctx, v); err != nil {
			return err
		}
		if err := tx.Delete(&entity.KitComponent{}, "kit_version_id = ?", v.ID).Error; err != nil {
			return err
		}
		return createComponents(tx, v.ID, components)
	})
}

func (r *KitRepository) UpdateHeader(ctx context.Context, kit *entity.Kit, fields map[string]interface{}) error {
	return r.store.UpdateHeader(ctx, kit, fields)
}
