package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Article tags are qualitative labels carried on the header, not on versions.
const (
	TagCECritical     = "CE_CRITICAL"
	TagSafetyCritical = "SAFETY_CRITICAL"
	TagOptional       = "OPTIONAL"
	TagStandard       = "STANDARD"
)

// Article is an atomic purchasable/sellable part. The header stays mutable;
// pricing and documents live on immutable ArticleVersions.
type Article struct {
	ID               string         `json:"id" gorm:"primaryKey;size:32"`
	Code             string         `json:"code" gorm:"size:64;not null;uniqueIndex"`
	Name             string         `json:"name" gorm:"size:128;not null"`
	SubcategoryID    string         `json:"subcategory_id" gorm:"size:32;not null;index"`
	Unit             string         `json:"unit" gorm:"size:16;not null;default:pcs"`
	Tags             datatypes.JSON `json:"tags" gorm:"type:jsonb;default:'[]'"`
	CurrentVersionID *string        `json:"current_version_id,omitempty" gorm:"size:32"`
	LockVersion      int            `json:"lock_version" gorm:"not null;default:0"`
	CreatedBy        string         `json:"created_by" gorm:"size:32;not null"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`

	// Relations
	Subcategory *Subcategory     `json:"subcategory,omitempty" gorm:"foreignKey:SubcategoryID"`
	Versions    []ArticleVersion `json:"versions,omitempty" gorm:"foreignKey:ArticleID"`
}

func (Article) TableName() string {
	return "articles"
}

func (a *Article) GetID() string { return a.ID }
func (a *Article) GetLockVersion() int { return a.LockVersion }
func (a *Article) SetCurrentVersionID(id string) { a.CurrentVersionID = &id }
func (a *Article) CurrentVersion() *string { return a.CurrentVersionID }

// ArticleVersion is one immutable-once-approved revision of an article.
// A missing cost price is a legitimate, UI-surfaced warning state.
type ArticleVersion struct {
	ID            string              `json:"id" gorm:"primaryKey;size:32"`
	ArticleID     string              `json:"article_id" gorm:"size:32;not null;index"`
	VersionNumber int                 `json:"version_number" gorm:"not null"`
	Status        VersionStatus       `json:"status" gorm:"size:16;not null;default:draft"`
	SellPrice     decimal.Decimal     `json:"sell_price" gorm:"type:numeric(15,4);not null"`
	CostPrice     decimal.NullDecimal `json:"cost_price" gorm:"type:numeric(15,4)"`
	VATRate       decimal.Decimal     `json:"vat_rate" gorm:"type:numeric(5,2)"`
	WeightKg      decimal.NullDecimal `json:"weight_kg" gorm:"type:numeric(10,3)"`
	LeadTimeDays  int                 `json:"lead_time_days"`
	Attachments   datatypes.JSON      `json:"attachments" gorm:"type:jsonb;default:'[]'"`
	Notes         string              `json:"notes,omitempty" gorm:"type:text"`
	ApprovalStamp
	CreatedBy string    `json:"created_by" gorm:"size:32;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Article *Article `json:"article,omitempty" gorm:"foreignKey:ArticleID"`
}

func (ArticleVersion) TableName() string {
	return "article_versions"
}

func (v *ArticleVersion) GetID() string { return v.ID }
func (v *ArticleVersion) ParentID() string { return v.ArticleID }
func (v *ArticleVersion) GetStatus() VersionStatus { return v.Status }
func (v *ArticleVersion) SetStatus(s VersionStatus) { v.Status = s }
func (v *ArticleVersion) GetVersionNumber() int { return v.VersionNumber }
func (v *ArticleVersion) SetVersionNumber(n int) { v.VersionNumber = n }

func (v *ArticleVersion) Approve(by string, at time.Time) {
	v.Status = VersionApproved
	v.ApprovedBy = &by
	v.ApprovedAt = &at
}

// Attachment is file metadata stored on a version. Binary content lives in
// object storage (or inline as a data URL for small files); the catalog only
// keeps the descriptor.
type Attachment struct {
	Kind        string `json:"kind"`
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type,omitempty"`
	URL         string `json:"url,omitempty"`
}
