package entity

import "time"

// Category is a top-level catalog grouping (e.g. Propulsion, Rigging).
type Category struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	Name      string    `json:"name" gorm:"size:128;not null"`
	SortOrder int       `json:"sort_order" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Subcategories []Subcategory `json:"subcategories,omitempty" gorm:"foreignKey:CategoryID"`
}

func (Category) TableName() string {
	return "categories"
}

// Subcategory groups articles and kits under a category (e.g. Motors).
type Subcategory struct {
	ID         string    `json:"id" gorm:"primaryKey;size:32"`
	CategoryID string    `json:"category_id" gorm:"size:32;not null;index"`
	Name       string    `json:"name" gorm:"size:128;not null"`
	SortOrder  int       `json:"sort_order" gorm:"default:0"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

func (Subcategory) TableName() string {
	return "subcategories"
}
