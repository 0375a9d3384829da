package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConfigurationItem types. The engine matches on these exhaustively; adding
// a type means touching the expansion switch.
const (
	ItemTypeArticle = "article"
	ItemTypeKit     = "kit"
	ItemTypeLegacy  = "legacy"
	ItemTypeCustom  = "custom"
)

// Configuration is the equipment list of one boat project. Its items feed
// BOM expansion and quotation totals.
type Configuration struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	ProjectID string    `json:"project_id" gorm:"size:32;index"`
	Name      string    `json:"name" gorm:"size:128;not null"`
	CreatedBy string    `json:"created_by" gorm:"size:32;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []ConfigurationItem `json:"items,omitempty" gorm:"foreignKey:ConfigurationID"`
}

func (Configuration) TableName() string {
	return "configurations"
}

// ConfigurationItem is one line of a configuration. Exactly one of the
// reference pairs is set depending on ItemType; legacy and custom lines
// carry only free text. LineTotalExclVat is maintained on write and trusted
// by the engine as the quoted sell-side total.
type ConfigurationItem struct {
	ID               string          `json:"id" gorm:"primaryKey;size:32"`
	ConfigurationID  string          `json:"configuration_id" gorm:"size:32;not null;index"`
	ItemType         string          `json:"item_type" gorm:"size:16;not null"`
	Name             string          `json:"name" gorm:"size:256;not null"`
	Category         string          `json:"category,omitempty" gorm:"size:64"`
	Unit             string          `json:"unit" gorm:"size:16;not null;default:pcs"`
	Quantity         decimal.Decimal `json:"quantity" gorm:"type:numeric(15,4);not null;default:1"`
	UnitPriceExclVat decimal.Decimal `json:"unit_price_excl_vat" gorm:"type:numeric(15,4);not null;default:0"`
	LineTotalExclVat decimal.Decimal `json:"line_total_excl_vat" gorm:"type:numeric(15,4);not null;default:0"`
	IsIncluded       bool            `json:"is_included" gorm:"not null;default:true"`

	ArticleID        *string `json:"article_id,omitempty" gorm:"size:32"`
	ArticleVersionID *string `json:"article_version_id,omitempty" gorm:"size:32"`
	KitID            *string `json:"kit_id,omitempty" gorm:"size:32"`
	KitVersionID     *string `json:"kit_version_id,omitempty" gorm:"size:32"`

	SortOrder int       `json:"sort_order" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ConfigurationItem) TableName() string {
	return "configuration_items"
}

// LegacyPartMapping maps a free-text legacy catalog name to a real part at a
// known unit cost. One legacy name may expand to several rows. The table is
// regular data, seeded once and editable, so legacy entries can migrate into
// the catalog over time without code changes.
type LegacyPartMapping struct {
	ID            string          `json:"id" gorm:"primaryKey;size:32"`
	LegacyName    string          `json:"legacy_name" gorm:"size:256;not null;index"`
	PartName      string          `json:"part_name" gorm:"size:256;not null"`
	ArticleNumber string          `json:"article_number,omitempty" gorm:"size:64"`
	Unit          string          `json:"unit" gorm:"size:16;not null;default:pcs"`
	UnitCost      decimal.Decimal `json:"unit_cost" gorm:"type:numeric(15,4);not null"`
	QtyPer        decimal.Decimal `json:"qty_per" gorm:"type:numeric(15,4);not null;default:1"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (LegacyPartMapping) TableName() string {
	return "legacy_part_mappings"
}
