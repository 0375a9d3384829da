package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/navisol/navisol-erp/internal/catalog/entity"
)

// Header is the mutable head record of a versioned catalog entity.
type Header interface {
	GetID() string
	GetLockVersion() int
	SetCurrentVersionID(string)
	CurrentVersion() *string
}

// Version is one revision of a versioned catalog entity.
type Version interface {
	GetID() string
	ParentID() string
	GetStatus() entity.VersionStatus
	SetStatus(entity.VersionStatus)
	GetVersionNumber() int
	SetVersionNumber(int)
	Approve(by string, at time.Time)
}

// VersionedStore implements the header + immutable-versions persistence
// contract shared by articles and kits. Version numbers are 1-based and
// monotonic per parent; at most one version per parent is approved at any
// time.
type VersionedStore[H Header, V Version] struct {
	db         *gorm.DB
	parentCol  string
	newHeader  func() H
	newVersion func() V
}

// NewVersionedStore builds a store for one entity kind. parentCol is the
// version table's foreign-key column (e.g. "article_id").
func NewVersionedStore[H Header, V Version](db *gorm.DB, parentCol string, newHeader func() H, newVersion func() V) *VersionedStore[H, V] {
	return &VersionedStore[H, V]{
		db:         db,
		parentCol:  parentCol,
		newHeader:  newHeader,
		newVersion: newVersion,
	}
}

func (s *VersionedStore[H, V]) withDB(db *gorm.DB) *VersionedStore[H, V] {
	c := *s
	c.db = db
	return &c
}

// CreateHeader persists a new header with no versions.
func (s *VersionedStore[H, V]) CreateHeader(ctx context.Context, h H) error {
	return s.db.WithContext(ctx).Create(h).Error
}

// FindHeader loads a header by id.
func (s *VersionedStore[H, V]) FindHeader(ctx context.Context, id string) (H, error) {
	h := s.newHeader()
	if err := s.db.WithContext(ctx).First(h, "id = ?", id).Error; err != nil {
		var zero H
		return zero, translate(err)
	}
	return h, nil
}

// CreateVersion appends a new draft version to the parent, numbering it
// max(existing)+1. Fails with ErrNotFound when the parent does not exist.
func (s *VersionedStore[H, V]) CreateVersion(ctx context.Context, parentID string, v V) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		h := s.newHeader()
		if err := tx.First(h, "id = ?", parentID).Error; err != nil {
			return translate(err)
		}
		var max int
		if err := tx.Model(s.newVersion()).
			Where(s.parentCol+" = ?", parentID).
			Select("COALESCE(MAX(version_number), 0)").
			Scan(&max).Error; err != nil {
			return err
		}
		v.SetVersionNumber(max + 1)
		v.SetStatus(entity.VersionDraft)
		return tx.Create(v).Error
	})
}

// ApproveVersion transitions a draft to approved, stamps the approver,
// demotes the previously approved version of the same parent to deprecated
// and repoints the header — all in one transaction, so no reader ever sees
// two approved versions of one parent, nor zero.
func (s *VersionedStore[H, V]) ApproveVersion(ctx context.Context, versionID, approvedBy string) (V, error) {
	v := s.newVersion()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(v, "id = ?", versionID).Error; err != nil {
			return translate(err)
		}
		if v.GetStatus() != entity.VersionDraft {
			return ErrInvalidState
		}
		if err := tx.Model(s.newVersion()).
			Where(s.parentCol+" = ? AND status = ? AND id <> ?", v.ParentID(), entity.VersionApproved, v.GetID()).
			Update("status", entity.VersionDeprecated).Error; err != nil {
			return err
		}
		v.Approve(approvedBy, time.Now())
		if err := tx.Save(v).Error; err != nil {
			return err
		}
		h := s.newHeader()
		if err := tx.First(h, "id = ?", v.ParentID()).Error; err != nil {
			return translate(err)
		}
		res := tx.Model(h).
			Where("id = ? AND lock_version = ?", h.GetID(), h.GetLockVersion()).
			Updates(map[string]interface{}{
				"current_version_id": v.GetID(),
				"lock_version":       h.GetLockVersion() + 1,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}
		return nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v, nil
}

// CurrentVersion returns the version the header currently points at, or the
// zero value when the parent has never been approved.
func (s *VersionedStore[H, V]) CurrentVersion(ctx context.Context, parentID string) (V, error) {
	var zero V
	h, err := s.FindHeader(ctx, parentID)
	if err != nil {
		return zero, err
	}
	cur := h.CurrentVersion()
	if cur == nil || *cur == "" {
		return zero, nil
	}
	v := s.newVersion()
	if err := s.db.WithContext(ctx).First(v, "id = ?", *cur).Error; err != nil {
		return zero, translate(err)
	}
	return v, nil
}

// FindVersion loads a version by id.
func (s *VersionedStore[H, V]) FindVersion(ctx context.Context, id string) (V, error) {
	v := s.newVersion()
	if err := s.db.WithContext(ctx).First(v, "id = ?", id).Error; err != nil {
		var zero V
		return zero, translate(err)
	}
	return v, nil
}

// UpdateDraft saves changes to a draft version. Approved and deprecated
// versions are frozen; the persisted status decides, not the one the caller
// happens to hold.
func (s *VersionedStore[H, V]) UpdateDraft(ctx context.Context, v V) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur := s.newVersion()
		if err := tx.First(cur, "id = ?", v.GetID()).Error; err != nil {
			return translate(err)
		}
		if cur.GetStatus() != entity.VersionDraft {
			return ErrImmutable
		}
		v.SetStatus(entity.VersionDraft)
		v.SetVersionNumber(cur.GetVersionNumber())
		return tx.Save(v).Error
	})
}

// UpdateHeader applies field updates to the header under the optimistic
// lock. A stale lock version fails with ErrConflict instead of silently
// winning the write.
func (s *VersionedStore[H, V]) UpdateHeader(ctx context.Context, h H, fields map[string]interface{}) error {
	fields["lock_version"] = h.GetLockVersion() + 1
	res := s.db.WithContext(ctx).Model(h).
		Where("id = ? AND lock_version = ?", h.GetID(), h.GetLockVersion()).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}
