package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kit is a bundle of article-version components sold and costed as a unit.
type Kit struct {
	ID               string    `json:"id" gorm:"primaryKey;size:32"`
	Code             string    `json:"code" gorm:"size:64;not null;uniqueIndex"`
	Name             string    `json:"name" gorm:"size:128;not null"`
	SubcategoryID    string    `json:"subcategory_id" gorm:"size:32;not null;index"`
	CostRollupMode   string    `json:"cost_rollup_mode" gorm:"size:16;not null;default:sum_components"`
	CurrentVersionID *string   `json:"current_version_id,omitempty" gorm:"size:32"`
	LockVersion      int       `json:"lock_version" gorm:"not null;default:0"`
	CreatedBy        string    `json:"created_by" gorm:"size:32;not null"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	// Relations
	Subcategory *Subcategory `json:"subcategory,omitempty" gorm:"foreignKey:SubcategoryID"`
	Versions    []KitVersion `json:"versions,omitempty" gorm:"foreignKey:KitID"`
}

func (Kit) TableName() string {
	return "kits"
}

func (k *Kit) GetID() string { return k.ID }
func (k *Kit) GetLockVersion() int { return k.LockVersion }
func (k *Kit) SetCurrentVersionID(id string) { k.CurrentVersionID = &id }
func (k *Kit) CurrentVersion() *string { return k.CurrentVersionID }

// KitVersion pins its components to specific immutable ArticleVersions so
// that quotations computed against it stay reproducible as the catalog moves.
//
// SalesOnly and ExplodeInBOM overlap: sales-only kits never explode in the
// BOM regardless of ExplodeInBOM. They are kept as separate signals because
// sales document rendering consumes SalesOnly on its own.
type KitVersion struct {
	ID              string              `json:"id" gorm:"primaryKey;size:32"`
	KitID           string              `json:"kit_id" gorm:"size:32;not null;index"`
	VersionNumber   int                 `json:"version_number" gorm:"not null"`
	Status          VersionStatus       `json:"status" gorm:"size:16;not null;default:draft"`
	SellPrice       decimal.Decimal     `json:"sell_price" gorm:"type:numeric(15,4);not null"`
	ManualCostPrice decimal.NullDecimal `json:"manual_cost_price" gorm:"type:numeric(15,4)"`
	ExplodeInBOM    bool                `json:"explode_in_bom" gorm:"not null;default:true"`
	SalesOnly       bool                `json:"sales_only" gorm:"not null;default:false"`
	Notes           string              `json:"notes,omitempty" gorm:"type:text"`
	ApprovalStamp
	CreatedBy string    `json:"created_by" gorm:"size:32;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Kit        *Kit           `json:"kit,omitempty" gorm:"foreignKey:KitID"`
	Components []KitComponent `json:"components,omitempty" gorm:"foreignKey:KitVersionID"`
}

func (KitVersion) TableName() string {
	return "kit_versions"
}

func (v *KitVersion) GetID() string { return v.ID }
func (v *KitVersion) ParentID() string { return v.KitID }
func (v *KitVersion) GetStatus() VersionStatus { return v.Status }
func (v *KitVersion) SetStatus(s VersionStatus) { v.Status = s }
func (v *KitVersion) GetVersionNumber() int { return v.VersionNumber }
func (v *KitVersion) SetVersionNumber(n int) { v.VersionNumber = n }

func (v *KitVersion) Approve(by string, at time.Time) {
	v.Status = VersionApproved
	v.ApprovedBy = &by
	v.ApprovedAt = &at
}

// Explodes reports whether BOM expansion should break this kit version into
// its components.
func (v *KitVersion) Explodes() bool {
	return v.ExplodeInBOM && !v.SalesOnly
}

// KitComponent references one pinned ArticleVersion with a quantity per kit.
type KitComponent struct {
	ID               string          `json:"id" gorm:"primaryKey;size:32"`
	KitVersionID     string          `json:"kit_version_id" gorm:"size:32;not null;index"`
	ArticleVersionID string          `json:"article_version_id" gorm:"size:32;not null"`
	Qty              decimal.Decimal `json:"qty" gorm:"type:numeric(15,4);not null;default:1"`
	CreatedAt        time.Time       `json:"created_at"`

	ArticleVersion *ArticleVersion `json:"article_version,omitempty" gorm:"foreignKey:ArticleVersionID"`
}

func (KitComponent) TableName() string {
	return "kit_components"
}
