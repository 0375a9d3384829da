package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/navisol/navisol-erp/internal/catalog/entity"
	"github.com/navisol/navisol-erp/internal/catalog/repository"
	"github.com/navisol/navisol-erp/internal/catalog/service"
	"github.com/navisol/navisol-erp/internal/catalog/testutil"
)

// approveFirstVersion approves version 1 of the article and returns it.
func approveFirstVersion(t *testing.T, svcs *service.Services, articleID string) *entity.ArticleVersion {
	t.Helper()
	ctx := context.Background()
	versions, err := svcs.Article.ListVersions(ctx, articleID)
	if err != nil || len(versions) == 0 {
		t.Fatalf("ListVersions failed: %v", err)
	}
	v, err := svcs.Article.ApproveVersion(ctx, testAudit, versions[len(versions)-1].ID)
	if err != nil {
		t.Fatalf("ApproveVersion failed: %v", err)
	}
	return v
}

func TestCreateKitRejectsUnapprovedComponent(t *testing.T) {
	svcs, _, db := setupServices(t)
	subID := testutil.SeedSubcategory(t, db, "Propulsion", "Motors")

	motor := createArticle(t, svcs, subID, "EM-20-001", "10000", strPtr("6000"))
	versions, _ := svcs.Article.ListVersions(context.Background(), motor.ID)

	req := &service.CreateKitRequest{
		Code:          "KIT-PROP-01",
		Name:          "Propulsion package",
		SubcategoryID: subID,
	}
	req.SellPrice = dec("25000")
	req.Components = []service.ComponentInput{
		{ArticleVersionID: versions[0].ID, Qty: dec("2")},
	}
	_, err := svcs.Kit.Create(context.Background(), testAudit, req)
	if !errors.Is(err, service.ErrComponentNotApproved) {
		t.Fatalf("create error = %v, want ErrComponentNotApproved", err)
	}
}

func TestCreateKitWithEmptyComponentList(t *testing.T) {
	svcs, _, db := setupServices(t)
	subID := testutil.SeedSubcategory(t, db, "Propulsion", "Motors")

	req := &service.CreateKitRequest{
		Code:          "KIT-PROP-02",
		Name:          "Package under assembly",
		SubcategoryID: subID,
	}
	req.SellPrice = dec("0")
	kit, err := svcs.Kit.Create(context.Background(), testAudit, req)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	versions, err := svcs.Kit.ListVersions(context.Background(), kit.ID)
	if err != nil || len(versions) != 1 {
		t.Fatalf("expected one draft version, got %v (%v)", versions, err)
	}
}

func TestKitCostRollupSumComponents(t *testing.T) {
	svcs, _, db := setupServices(t)
	subID := testutil.SeedSubcategory(t, db, "Propulsion", "Motors")
	ctx := context.Background()

	motor := createArticle(t, svcs, subID, "EM-20-001", "10000", strPtr("6000"))
	motorV := approveFirstVersion(t, svcs, motor.ID)

	req := &service.CreateKitRequest{
		Code:          "KIT-PROP-03",
		Name:          "Twin motor package",
		SubcategoryID: subID,
	}
	req.SellPrice = dec("25000")
	req.Components = []service.ComponentInput{
		{ArticleVersionID: motorV.ID, Qty: dec("2")},
	}
	kit, err := svcs.Kit.Create(ctx, testAudit, req)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	versions, _ := svcs.Kit.ListVersions(ctx, kit.ID)
	res, err := svcs.Kit.CalculateCost(ctx, versions[0].ID)
	if err != nil {
		t.Fatalf("CalculateCost failed: %v", err)
	}
	if !res.Cost.Equal(dec("12000")) {
		t.Fatalf("cost = %s, want 12000", res.Cost)
	}
	if len(res.MissingCosts) != 0 {
		t.Fatalf("missing costs = %v, want none", res.MissingCosts)
	}
}

func TestKitCostRollupReportsMissingCosts(t *testing.T) {
	svcs, _, db := setupServices(t)
	subID := testutil.SeedSubcategory(t, db, "Propulsion", "Motors")
	ctx := context.Background()

	motor := createArticle(t, svcs, subID, "EM-20-002", "10000", strPtr("6000"))
	motorV := approveFirstVersion(t, svcs, motor.ID)
	// No cost price on the prop; it must be reported, not silently zeroed in.
	prop := createArticle(t, svcs, subID, "PROP-17-3B", "900", nil)
	propV := approveFirstVersion(t, svcs, prop.ID)

	req := &service.CreateKitRequest{
		Code:          "KIT-PROP-04",
		Name:          "Motor with prop",
		SubcategoryID: subID,
	}
	req.SellPrice = dec("14000")
	req.Components = []service.ComponentInput{
		{ArticleVersionID: motorV.ID, Qty: dec("1")},
		{ArticleVersionID: propV.ID, Qty: dec("1")},
	}
	kit, err := svcs.Kit.Create(ctx, testAudit, req)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	versions, _ := svcs.Kit.ListVersions(ctx, kit.ID)
	res, err := svcs.Kit.CalculateCost(ctx, versions[0].ID)
	if err != nil {
		t.Fatalf("CalculateCost failed: %v", err)
	}
	if !res.Cost.Equal(dec("6000")) {
		t.Fatalf("cost = %s, want 6000 (prop contributes zero)", res.Cost)
	}
	if len(res.MissingCosts) != 1 || res.MissingCosts[0] != "PROP-17-3B" {
		t.Fatalf("missing costs = %v, want [PROP-17-3B]", res.MissingCosts)
	}
}

func TestKitCostRollupManualMode(t *testing.T) {
	svcs, _, db := setupServices(t)
	subID := testutil.SeedSubcategory(t, db, "Propulsion", "Motors")
	ctx := context.Background()

	motor := createArticle(t, svcs, subID, "EM-20-003", "10000", strPtr("6000"))
	motorV := approveFirstVersion(t, svcs, motor.ID)

	req := &service.CreateKitRequest{
		Code:           "KIT-PROP-05",
		Name:           "Negotiated package",
		SubcategoryID:  subID,
		CostRollupMode: entity.RollupManual,
	}
	req.SellPrice = dec("25000")
	req.ManualCostPrice = decPtr("11500")
	req.Components = []service.ComponentInput{
		{ArticleVersionID: motorV.ID, Qty: dec("2")},
	}
	kit, err := svcs.Kit.Create(ctx, testAudit, req)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	versions, _ := svcs.Kit.ListVersions(ctx, kit.ID)
	res, err := svcs.Kit.CalculateCost(ctx, versions[0].ID)
	if err != nil {
		t.Fatalf("CalculateCost failed: %v", err)
	}
	if !res.Cost.Equal(dec("11500")) {
		t.Fatalf("cost = %s, want the manual 11500", res.Cost)
	}
}

// Kit components pin article versions, so approving a repriced article
// version must not change an existing kit's cost.
func TestKitCostPinnedAgainstRepricing(t *testing.T) {
	svcs, _, db := setupServices(t)
	subID := testutil.SeedSubcategory(t, db, "Propulsion", "Motors")
	ctx := context.Background()

	motor := createArticle(t, svcs, subID, "EM-20-004", "10000", strPtr("6000"))
	motorV := approveFirstVersion(t, svcs, motor.ID)

	req := &service.CreateKitRequest{
		Code:          "KIT-PROP-06",
		Name:          "Pinned package",
		SubcategoryID: subID,
	}
	req.SellPrice = dec("25000")
	req.Components = []service.ComponentInput{
		{ArticleVersionID: motorV.ID, Qty: dec("2")},
	}
	kit, err := svcs.Kit.Create(ctx, testAudit, req)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Reprice the motor with a new approved version.
	in := &service.ArticleVersionInput{SellPrice: dec("12000"), CostPrice: decPtr("8000")}
	v2, err := svcs.Article.CreateVersion(ctx, testAudit, motor.ID, in)
	if err != nil {
		t.Fatalf("CreateVersion failed: %v", err)
	}
	if _, err := svcs.Article.ApproveVersion(ctx, testAudit, v2.ID); err != nil {
		t.Fatalf("ApproveVersion failed: %v", err)
	}

	versions, _ := svcs.Kit.ListVersions(ctx, kit.ID)
	res, err := svcs.Kit.CalculateCost(ctx, versions[0].ID)
	if err != nil {
		t.Fatalf("CalculateCost failed: %v", err)
	}
	if !res.Cost.Equal(dec("12000")) {
		t.Fatalf("cost = %s, want 12000 from the pinned version", res.Cost)
	}
}

func TestCreateKitRejectsNonPositiveComponentQty(t *testing.T) {
	svcs, _, db := setupServices(t)
	subID := testutil.SeedSubcategory(t, db, "Propulsion", "Motors")

	motor := createArticle(t, svcs, subID, "EM-20-005", "10000", strPtr("6000"))
	motorV := approveFirstVersion(t, svcs, motor.ID)

	req := &service.CreateKitRequest{
		Code:          "KIT-PROP-07",
		Name:          "Bad quantities",
		SubcategoryID: subID,
	}
	req.SellPrice = dec("25000")
	req.Components = []service.ComponentInput{
		{ArticleVersionID: motorV.ID, Qty: dec("0")},
	}
	_, err := svcs.Kit.Create(context.Background(), testAudit, req)
	if !errors.Is(err, service.ErrValidation) {
		t.Fatalf("create error = %v, want ErrValidation", err)
	}
}

// CalculateCost must be idempotent: same pinned inputs, same result.
func TestKitCostIsIdempotent(t *testing.T) {
	svcs, _, db := setupServices(t)
	subID := testutil.SeedSubcategory(t, db, "Propulsion", "Motors")
	ctx := context.Background()

	motor := createArticle(t, svcs, subID, "EM-20-006", "10000", strPtr("6000"))
	motorV := approveFirstVersion(t, svcs, motor.ID)

	req := &service.CreateKitRequest{
		Code:          "KIT-PROP-08",
		Name:          "Stable package",
		SubcategoryID: subID,
	}
	req.SellPrice = dec("25000")
	req.Components = []service.ComponentInput{
		{ArticleVersionID: motorV.ID, Qty: dec("2")},
	}
	kit, err := svcs.Kit.Create(ctx, testAudit, req)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	versions, _ := svcs.Kit.ListVersions(ctx, kit.ID)
	first, err := svcs.Kit.CalculateCost(ctx, versions[0].ID)
	if err != nil {
		t.Fatalf("CalculateCost failed: %v", err)
	}
	second, err := svcs.Kit.CalculateCost(ctx, versions[0].ID)
	if err != nil {
		t.Fatalf("CalculateCost failed: %v", err)
	}
	if !first.Cost.Equal(second.Cost) || len(first.MissingCosts) != len(second.MissingCosts) {
		t.Fatalf("cost changed between calls: %+v vs %+v", first, second)
	}
}

// Draft kit versions can be edited, approved ones cannot.
func TestUpdateDraftKitVersion(t *testing.T) {
	svcs, _, db := setupServices(t)
	subID := testutil.SeedSubcategory(t, db, "Propulsion", "Motors")
	ctx := context.Background()

	req := &service.CreateKitRequest{
		Code:          "KIT-PROP-09",
		Name:          "Editable package",
		SubcategoryID: subID,
	}
	req.SellPrice = dec("1000")
	kit, err := svcs.Kit.Create(ctx, testAudit, req)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	versions, _ := svcs.Kit.ListVersions(ctx, kit.ID)

	in := &service.KitVersionInput{SellPrice: dec("1200")}
	v, err := svcs.Kit.UpdateDraftVersion(ctx, testAudit, versions[0].ID, in)
	if err != nil {
		t.Fatalf("UpdateDraftVersion failed: %v", err)
	}
	if !v.SellPrice.Equal(dec("1200")) {
		t.Fatalf("sell price = %s, want 1200", v.SellPrice)
	}

	if _, err := svcs.Kit.ApproveVersion(ctx, testAudit, versions[0].ID); err != nil {
		t.Fatalf("ApproveVersion failed: %v", err)
	}
	_, err = svcs.Kit.UpdateDraftVersion(ctx, testAudit, versions[0].ID, in)
	if !errors.Is(err, repository.ErrImmutable) {
		t.Fatalf("update after approval error = %v, want ErrImmutable", err)
	}
}

func strPtr(s string) *string { return &s }
