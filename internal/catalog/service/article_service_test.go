package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/navisol/navisol-erp/internal/catalog/entity"
	"github.com/navisol/navisol-erp/internal/catalog/repository"
	"github.com/navisol/navisol-erp/internal/catalog/service"
	"github.com/navisol/navisol-erp/internal/catalog/testutil"
)

var testAudit = service.AuditContext{UserID: "tester", UserName: "Tester"}

func setupServices(t *testing.T) (*service.Services, *repository.Repositories, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svcs := service.NewServices(repos, nil, nil, zap.NewNop())
	return svcs, repos, db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func createArticle(t *testing.T, svcs *service.Services, subID, code string, sell string, cost *string) *entity.Article {
	t.Helper()
	req := &service.CreateArticleRequest{
		Code:          code,
		Name:          "Article " + code,
		SubcategoryID: subID,
	}
	req.SellPrice = dec(sell)
	if cost != nil {
		req.CostPrice = decPtr(*cost)
	}
	article, err := svcs.Article.Create(context.Background(), testAudit, req)
	if err != nil {
		t.Fatalf("Create article %s failed: %v", code, err)
	}
	return article
}

func TestCreateArticleRejectsDuplicateCode(t *testing.T) {
	svcs, _, db := setupServices(t)
	subID := testutil.SeedSubcategory(t, db, "Electrical", "Batteries")

	createArticle(t, svcs, subID, "BAT-12-100", "450", nil)

	req := &service.CreateArticleRequest{
		Code:          "BAT-12-100",
		Name:          "Another battery",
		SubcategoryID: subID,
	}
	req.SellPrice = dec("500")
	_, err := svcs.Article.Create(context.Background(), testAudit, req)
	if !errors.Is(err, service.ErrDuplicateCode) {
		t.Fatalf("duplicate create error = %v, want ErrDuplicateCode", err)
	}
}

func TestCreateArticleRejectsNegativePrice(t *testing.T) {
	svcs, _, db := setupServices(t)
	subID := testutil.SeedSubcategory(t, db, "Electrical", "Batteries")

	req := &service.CreateArticleRequest{
		Code:          "BAT-12-101",
		Name:          "Battery",
		SubcategoryID: subID,
	}
	req.SellPrice = dec("-1")
	_, err := svcs.Article.Create(context.Background(), testAudit, req)
	if !errors.Is(err, service.ErrValidation) {
		t.Fatalf("create error = %v, want ErrValidation", err)
	}
}

func TestCreateArticleRequiresExistingSubcategory(t *testing.T) {
	svcs, _, _ := setupServices(t)

	req := &service.CreateArticleRequest{
		Code:          "BAT-12-102",
		Name:          "Battery",
		SubcategoryID: "no-such-subcategory",
	}
	req.SellPrice = dec("450")
	_, err := svcs.Article.Create(context.Background(), testAudit, req)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("create error = %v, want ErrNotFound", err)
	}
}

func TestArticleLifecycle(t *testing.T) {
	svcs, _, db := setupServices(t)
	subID := testutil.SeedSubcategory(t, db, "Electrical", "Batteries")
	ctx := context.Background()

	article := createArticle(t, svcs, subID, "BAT-12-103", "450", nil)

	versions, err := svcs.Article.ListVersions(ctx, article.ID)
	if err != nil {
		t.Fatalf("ListVersions failed: %v", err)
	}
	if len(versions) != 1 || versions[0].Status != entity.VersionDraft {
		t.Fatalf("expected a single draft version, got %+v", versions)
	}

	approved, err := svcs.Article.ApproveVersion(ctx, testAudit, versions[0].ID)
	if err != nil {
		t.Fatalf("ApproveVersion failed: %v", err)
	}

	cur, err := svcs.Article.CurrentVersion(ctx, article.ID)
	if err != nil {
		t.Fatalf("CurrentVersion failed: %v", err)
	}
	if cur == nil || cur.ID != approved.ID {
		t.Fatalf("current version = %v, want %s", cur, approved.ID)
	}

	// New versions start from scratch; nothing is inherited.
	in := &service.ArticleVersionInput{SellPrice: dec("475")}
	v2, err := svcs.Article.CreateVersion(ctx, testAudit, article.ID, in)
	if err != nil {
		t.Fatalf("CreateVersion failed: %v", err)
	}
	if v2.VersionNumber != 2 || v2.Status != entity.VersionDraft {
		t.Fatalf("v2 = number %d status %s, want draft number 2", v2.VersionNumber, v2.Status)
	}

	// The approved version still serves until v2 is approved.
	cur, err = svcs.Article.CurrentVersion(ctx, article.ID)
	if err != nil {
		t.Fatalf("CurrentVersion failed: %v", err)
	}
	if cur.ID != approved.ID {
		t.Fatalf("current version moved to %s before approval", cur.ID)
	}
}

func TestUpdateHeaderStaleLockVersion(t *testing.T) {
	svcs, _, db := setupServices(t)
	subID := testutil.SeedSubcategory(t, db, "Electrical", "Batteries")
	ctx := context.Background()

	article := createArticle(t, svcs, subID, "BAT-12-104", "450", nil)

	name1 := "AGM battery 100Ah"
	if _, err := svcs.Article.UpdateHeader(ctx, testAudit, article.ID, &service.UpdateArticleRequest{Name: &name1}); err != nil {
		t.Fatalf("UpdateHeader failed: %v", err)
	}

	// A writer that read the header before the first update must be rejected.
	name2 := "Lithium battery 100Ah"
	stale := 0
	_, err := svcs.Article.UpdateHeader(ctx, testAudit, article.ID, &service.UpdateArticleRequest{Name: &name2, LockVersion: &stale})
	if !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("stale update error = %v, want ErrConflict", err)
	}

	head, err := svcs.Article.Get(ctx, article.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if head.Name != name1 {
		t.Fatalf("name = %q, want %q", head.Name, name1)
	}
}

func TestAddAttachmentRejectedOnApprovedVersion(t *testing.T) {
	svcs, _, db := setupServices(t)
	subID := testutil.SeedSubcategory(t, db, "Electrical", "Batteries")
	ctx := context.Background()

	article := createArticle(t, svcs, subID, "BAT-12-105", "450", nil)
	versions, _ := svcs.Article.ListVersions(ctx, article.ID)
	if _, err := svcs.Article.ApproveVersion(ctx, testAudit, versions[0].ID); err != nil {
		t.Fatalf("ApproveVersion failed: %v", err)
	}

	att := entity.Attachment{Kind: "datasheet", Filename: "battery.pdf"}
	_, err := svcs.Article.AddAttachment(ctx, testAudit, versions[0].ID, att, nil)
	if !errors.Is(err, repository.ErrImmutable) {
		t.Fatalf("AddAttachment error = %v, want ErrImmutable", err)
	}

	// The attachment list must be untouched by the rejected call.
	v, err := svcs.Article.GetVersion(ctx, versions[0].ID)
	if err != nil {
		t.Fatalf("GetVersion failed: %v", err)
	}
	if string(v.Attachments) != "[]" {
		t.Fatalf("attachments = %s, want unchanged empty list", v.Attachments)
	}
}

func TestAddAttachmentOnDraft(t *testing.T) {
	svcs, _, db := setupServices(t)
	subID := testutil.SeedSubcategory(t, db, "Electrical", "Batteries")
	ctx := context.Background()

	article := createArticle(t, svcs, subID, "BAT-12-106", "450", nil)
	versions, _ := svcs.Article.ListVersions(ctx, article.ID)

	att := entity.Attachment{Kind: "datasheet", Filename: "battery.pdf", Size: 1024}
	v, err := svcs.Article.AddAttachment(ctx, testAudit, versions[0].ID, att, nil)
	if err != nil {
		t.Fatalf("AddAttachment failed: %v", err)
	}
	if string(v.Attachments) == "[]" {
		t.Fatal("attachment metadata not recorded")
	}
}
