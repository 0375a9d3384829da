package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/navisol/navisol-erp/internal/catalog/entity"
	"github.com/navisol/navisol-erp/internal/catalog/repository"
	"github.com/navisol/navisol-erp/internal/catalog/testutil"
)

func seedArticle(t *testing.T, repo *repository.ArticleRepository, subID, code string) (*entity.Article, *entity.ArticleVersion) {
	t.Helper()
	article := &entity.Article{
		ID:            "art-" + code,
		Code:          code,
		Name:          "Article " + code,
		SubcategoryID: subID,
		Unit:          "pcs",
		Tags:          []byte("[]"),
		CreatedBy:     "tester",
	}
	first := &entity.ArticleVersion{
		ID:          "ver-" + code + "-1",
		SellPrice:   decimal.NewFromInt(100),
		Attachments: []byte("[]"),
		CreatedBy:   "tester",
	}
	if err := repo.Create(context.Background(), article, first); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return article, first
}

func TestVersionNumbersAreMonotonic(t *testing.T) {
	db := testutil.SetupTestDB(t)
	subID := testutil.SeedSubcategory(t, db, "Propulsion", "Motors")
	repo := repository.NewArticleRepository(db)
	ctx := context.Background()

	article, first := seedArticle(t, repo, subID, "EM-10-001")
	if first.VersionNumber != 1 {
		t.Fatalf("first version number = %d, want 1", first.VersionNumber)
	}
	if first.Status != entity.VersionDraft {
		t.Fatalf("first version status = %s, want draft", first.Status)
	}

	second := &entity.ArticleVersion{
		ID:          "ver-EM-10-001-2",
		SellPrice:   decimal.NewFromInt(110),
		Attachments: []byte("[]"),
		CreatedBy:   "tester",
	}
	if err := repo.CreateVersion(ctx, article.ID, second); err != nil {
		t.Fatalf("CreateVersion failed: %v", err)
	}
	if second.VersionNumber != 2 {
		t.Fatalf("second version number = %d, want 2", second.VersionNumber)
	}
}

func TestCreateVersionForMissingParent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewArticleRepository(db)

	v := &entity.ArticleVersion{
		ID:          "ver-orphan",
		SellPrice:   decimal.NewFromInt(10),
		Attachments: []byte("[]"),
		CreatedBy:   "tester",
	}
	err := repo.CreateVersion(context.Background(), "no-such-article", v)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("CreateVersion error = %v, want ErrNotFound", err)
	}
}

func TestApproveRepointsHeaderAndDeprecatesPrevious(t *testing.T) {
	db := testutil.SetupTestDB(t)
	subID := testutil.SeedSubcategory(t, db, "Propulsion", "Motors")
	repo := repository.NewArticleRepository(db)
	ctx := context.Background()

	article, first := seedArticle(t, repo, subID, "EM-10-002")

	approved, err := repo.ApproveVersion(ctx, first.ID, "approver")
	if err != nil {
		t.Fatalf("ApproveVersion failed: %v", err)
	}
	if approved.Status != entity.VersionApproved {
		t.Fatalf("status = %s, want approved", approved.Status)
	}
	if approved.ApprovedBy == nil || *approved.ApprovedBy != "approver" {
		t.Fatalf("approved_by not stamped: %v", approved.ApprovedBy)
	}
	if approved.ApprovedAt == nil {
		t.Fatal("approved_at not stamped")
	}

	head, err := repo.FindByID(ctx, article.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if head.CurrentVersionID == nil || *head.CurrentVersionID != first.ID {
		t.Fatalf("header current_version_id = %v, want %s", head.CurrentVersionID, first.ID)
	}
	if head.LockVersion != article.LockVersion+1 {
		t.Fatalf("lock_version = %d, want %d", head.LockVersion, article.LockVersion+1)
	}

	// Approving a second version demotes the first.
	second := &entity.ArticleVersion{
		ID:          "ver-EM-10-002-2",
		SellPrice:   decimal.NewFromInt(120),
		Attachments: []byte("[]"),
		CreatedBy:   "tester",
	}
	if err := repo.CreateVersion(ctx, article.ID, second); err != nil {
		t.Fatalf("CreateVersion failed: %v", err)
	}
	if _, err := repo.ApproveVersion(ctx, second.ID, "approver"); err != nil {
		t.Fatalf("ApproveVersion failed: %v", err)
	}

	old, err := repo.FindVersionByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("FindVersionByID failed: %v", err)
	}
	if old.Status != entity.VersionDeprecated {
		t.Fatalf("previous version status = %s, want deprecated", old.Status)
	}

	cur, err := repo.CurrentVersion(ctx, article.ID)
	if err != nil {
		t.Fatalf("CurrentVersion failed: %v", err)
	}
	if cur.ID != second.ID {
		t.Fatalf("current version = %s, want %s", cur.ID, second.ID)
	}
}

func TestApproveRejectsNonDraft(t *testing.T) {
	db := testutil.SetupTestDB(t)
	subID := testutil.SeedSubcategory(t, db, "Propulsion", "Motors")
	repo := repository.NewArticleRepository(db)
	ctx := context.Background()

	_, first := seedArticle(t, repo, subID, "EM-10-003")
	if _, err := repo.ApproveVersion(ctx, first.ID, "approver"); err != nil {
		t.Fatalf("ApproveVersion failed: %v", err)
	}

	_, err := repo.ApproveVersion(ctx, first.ID, "approver")
	if !errors.Is(err, repository.ErrInvalidState) {
		t.Fatalf("second approve error = %v, want ErrInvalidState", err)
	}
}

func TestUpdateDraftRejectsApprovedVersion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	subID := testutil.SeedSubcategory(t, db, "Propulsion", "Motors")
	repo := repository.NewArticleRepository(db)
	ctx := context.Background()

	_, first := seedArticle(t, repo, subID, "EM-10-004")
	if _, err := repo.ApproveVersion(ctx, first.ID, "approver"); err != nil {
		t.Fatalf("ApproveVersion failed: %v", err)
	}

	first.SellPrice = decimal.NewFromInt(999)
	err := repo.UpdateDraftVersion(ctx, first)
	if !errors.Is(err, repository.ErrImmutable) {
		t.Fatalf("UpdateDraftVersion error = %v, want ErrImmutable", err)
	}

	reloaded, err := repo.FindVersionByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("FindVersionByID failed: %v", err)
	}
	if !reloaded.SellPrice.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("sell price changed to %s despite rejection", reloaded.SellPrice)
	}
}

func TestUpdateHeaderRejectsStaleLockVersion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	subID := testutil.SeedSubcategory(t, db, "Propulsion", "Motors")
	repo := repository.NewArticleRepository(db)
	ctx := context.Background()

	article, _ := seedArticle(t, repo, subID, "EM-10-005")

	// First writer wins.
	if err := repo.UpdateHeader(ctx, article, map[string]interface{}{"name": "Updated"}); err != nil {
		t.Fatalf("UpdateHeader failed: %v", err)
	}

	// Second writer still holds lock_version 0 and must lose.
	stale := &entity.Article{ID: article.ID, LockVersion: 0}
	err := repo.UpdateHeader(ctx, stale, map[string]interface{}{"name": "Conflicting"})
	if !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("stale UpdateHeader error = %v, want ErrConflict", err)
	}

	head, err := repo.FindByID(ctx, article.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if head.Name != "Updated" {
		t.Fatalf("name = %q, want the first writer's value", head.Name)
	}
}

func TestCurrentVersionBeforeAnyApproval(t *testing.T) {
	db := testutil.SetupTestDB(t)
	subID := testutil.SeedSubcategory(t, db, "Propulsion", "Motors")
	repo := repository.NewArticleRepository(db)

	article, _ := seedArticle(t, repo, subID, "EM-10-006")

	cur, err := repo.CurrentVersion(context.Background(), article.ID)
	if err != nil {
		t.Fatalf("CurrentVersion failed: %v", err)
	}
	if cur != nil {
		t.Fatalf("current version = %v, want nil before first approval", cur)
	}
}
