package handler_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/navisol/navisol-erp/internal/bom"
	"github.com/navisol/navisol-erp/internal/catalog/handler"
	"github.com/navisol/navisol-erp/internal/catalog/repository"
	"github.com/navisol/navisol-erp/internal/catalog/service"
	"github.com/navisol/navisol-erp/internal/catalog/testutil"
)

func setupAPI(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	subID := testutil.SeedSubcategory(t, db, "Electrical", "Batteries")

	repos := repository.NewRepositories(db)
	svcs := service.NewServices(repos, nil, nil, zap.NewNop())
	engine := bom.NewEngine(repos.Article, repos.Kit, repos.Legacy, zap.NewNop())
	h := handler.NewHandlers(svcs, repos, engine)

	r := testutil.SetupRouter()
	v1 := testutil.AuthGroup(r, "/api/v1")
	v1.POST("/articles", h.Article.Create)
	v1.GET("/articles/:id", h.Article.Get)
	v1.GET("/articles/:id/versions", h.Article.ListVersions)
	v1.POST("/articles/:id/versions/:versionId/approve", h.Article.ApproveVersion)
	v1.POST("/configurations", h.Configuration.Create)
	v1.POST("/configurations/:id/items", h.Configuration.AddItem)
	v1.POST("/configurations/:id/bom", h.Configuration.ExpandBOM)

	return r, subID
}

func TestCreateArticleRequiresAuth(t *testing.T) {
	router, subID := setupAPI(t)

	body := map[string]interface{}{
		"code":           "BAT-12-200",
		"name":           "AGM battery",
		"subcategory_id": subID,
		"sell_price":     "450",
	}
	w := testutil.DoRequest(router, http.MethodPost, "/api/v1/articles", body, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestCreateAndApproveArticleOverHTTP(t *testing.T) {
	router, subID := setupAPI(t)
	token := testutil.DefaultTestToken()

	body := map[string]interface{}{
		"code":           "BAT-12-201",
		"name":           "AGM battery",
		"subcategory_id": subID,
		"sell_price":     "450",
		"cost_price":     "300",
	}
	w := testutil.DoRequest(router, http.MethodPost, "/api/v1/articles", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	created := testutil.ParseResponse(w)
	data := created["data"].(map[string]interface{})
	articleID := data["id"].(string)

	w = testutil.DoRequest(router, http.MethodGet, "/api/v1/articles/"+articleID+"/versions", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("list versions status = %d", w.Code)
	}
	versions := testutil.ParseResponse(w)["data"].(map[string]interface{})["items"].([]interface{})
	if len(versions) != 1 {
		t.Fatalf("got %d versions, want 1", len(versions))
	}
	versionID := versions[0].(map[string]interface{})["id"].(string)

	w = testutil.DoRequest(router, http.MethodPost,
		"/api/v1/articles/"+articleID+"/versions/"+versionID+"/approve", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("approve status = %d, body %s", w.Code, w.Body.String())
	}

	// A second approve attempt must be rejected as a state conflict.
	w = testutil.DoRequest(router, http.MethodPost,
		"/api/v1/articles/"+articleID+"/versions/"+versionID+"/approve", nil, token)
	if w.Code != http.StatusConflict {
		t.Fatalf("re-approve status = %d, want 409", w.Code)
	}
}

func TestDuplicateArticleCodeConflictsOverHTTP(t *testing.T) {
	router, subID := setupAPI(t)
	token := testutil.DefaultTestToken()

	body := map[string]interface{}{
		"code":           "BAT-12-202",
		"name":           "AGM battery",
		"subcategory_id": subID,
		"sell_price":     "450",
	}
	if w := testutil.DoRequest(router, http.MethodPost, "/api/v1/articles", body, token); w.Code != http.StatusCreated {
		t.Fatalf("create status = %d", w.Code)
	}

	w := testutil.DoRequest(router, http.MethodPost, "/api/v1/articles", body, token)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want 409", w.Code)
	}
	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 40901 {
		t.Fatalf("error code = %v, want 40901", resp["code"])
	}
}

func TestGetMissingArticleReturns404(t *testing.T) {
	router, _ := setupAPI(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(router, http.MethodGet, "/api/v1/articles/no-such-id", nil, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestExpandConfigurationBOMOverHTTP(t *testing.T) {
	router, _ := setupAPI(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(router, http.MethodPost, "/api/v1/configurations",
		map[string]interface{}{"name": "Hull 042", "project_id": "proj-042"}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create configuration status = %d", w.Code)
	}
	confID := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)

	item := map[string]interface{}{
		"item_type":           "custom",
		"name":                "Custom teak table",
		"quantity":            "1",
		"unit_price_excl_vat": "1000",
	}
	if w := testutil.DoRequest(router, http.MethodPost, "/api/v1/configurations/"+confID+"/items", item, token); w.Code != http.StatusCreated {
		t.Fatalf("add item status = %d, body %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(router, http.MethodPost, "/api/v1/configurations/"+confID+"/bom?mode=resolved", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expand status = %d, body %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	lines := data["lines"].([]interface{})
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	line := lines[0].(map[string]interface{})
	if line["cost_source"] != "estimated" {
		t.Fatalf("cost_source = %v, want estimated", line["cost_source"])
	}
	if line["unit_cost"] != "600" {
		t.Fatalf("unit_cost = %v, want 600", line["unit_cost"])
	}
}
