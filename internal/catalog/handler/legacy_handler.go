package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/navisol/navisol-erp/internal/catalog/entity"
	"github.com/navisol/navisol-erp/internal/catalog/repository"
)

// LegacyMappingHandler administers the legacy part mapping table. Mappings
// are plain rows, so the handler talks to the repository directly.
type LegacyMappingHandler struct {
	repo *repository.LegacyMappingRepository
	logs *repository.OperationLogRepository
}

func NewLegacyMappingHandler(repo *repository.LegacyMappingRepository, logs *repository.OperationLogRepository) *LegacyMappingHandler {
	return &LegacyMappingHandler{repo: repo, logs: logs}
}

type CreateLegacyMappingRequest struct {
	LegacyName    string           `json:"legacy_name" binding:"required"`
	PartName      string           `json:"part_name" binding:"required"`
	ArticleNumber string           `json:"article_number"`
	Unit          string           `json:"unit"`
	UnitCost      decimal.Decimal  `json:"unit_cost" binding:"required"`
	QtyPer        *decimal.Decimal `json:"qty_per"`
}

// List GET /legacy-mappings
func (h *LegacyMappingHandler) List(c *gin.Context) {
	mappings, err := h.repo.List(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"items": mappings})
}

// Create POST /legacy-mappings
func (h *LegacyMappingHandler) Create(c *gin.Context) {
	var req CreateLegacyMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	unit := req.Unit
	if unit == "" {
		unit = "pcs"
	}
	qtyPer := decimal.NewFromInt(1)
	if req.QtyPer != nil {
		qtyPer = *req.QtyPer
	}
	m := &entity.LegacyPartMapping{
		ID:            uuid.New().String()[:32],
		LegacyName:    req.LegacyName,
		PartName:      req.PartName,
		ArticleNumber: req.ArticleNumber,
		Unit:          unit,
		UnitCost:      req.UnitCost,
		QtyPer:        qtyPer,
	}
	if err := h.repo.Create(c.Request.Context(), m); err != nil {
		Fail(c, err)
		return
	}
	Created(c, m)
}

// Delete DELETE /legacy-mappings/:id
func (h *LegacyMappingHandler) Delete(c *gin.Context) {
	if err := h.repo.Delete(c.Request.Context(), c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}

// OperationLogs GET /operation-logs?entity_type=...&entity_id=...&limit=...
func (h *LegacyMappingHandler) OperationLogs(c *gin.Context) {
	limit := 50
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = v
		}
	}
	logs, err := h.logs.ListByEntity(c.Request.Context(), c.Query("entity_type"), c.Query("entity_id"), limit)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"items": logs})
}
