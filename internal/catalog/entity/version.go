package entity

import "time"

// VersionStatus is the lifecycle state of a catalog version.
// Drafts are mutable; approved and deprecated versions are frozen forever.
type VersionStatus string

const (
	VersionDraft      VersionStatus = "draft"
	VersionApproved   VersionStatus = "approved"
	VersionDeprecated VersionStatus = "deprecated"
)

// ApprovalStamp records who approved a version and when.
type ApprovalStamp struct {
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	ApprovedBy *string    `json:"approved_by,omitempty" gorm:"size:32"`
}

// CostRollupMode selects how a kit's cost price is derived.
const (
	RollupSumComponents = "sum_components"
	RollupManual        = "manual"
)
