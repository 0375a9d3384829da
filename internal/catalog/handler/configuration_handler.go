package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/navisol/navisol-erp/internal/bom"
	"github.com/navisol/navisol-erp/internal/catalog/service"
)

type ConfigurationHandler struct {
	svc    *service.ConfigurationService
	engine *bom.Engine
}

func NewConfigurationHandler(svc *service.ConfigurationService, engine *bom.Engine) *ConfigurationHandler {
	return &ConfigurationHandler{svc: svc, engine: engine}
}

// Create POST /configurations
func (h *ConfigurationHandler) Create(c *gin.Context) {
	var req service.CreateConfigurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	conf, err := h.svc.Create(c.Request.Context(), auditFrom(c), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, conf)
}

// Get GET /configurations/:id
func (h *ConfigurationHandler) Get(c *gin.Context) {
	conf, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, conf)
}

// ListByProject GET /configurations?project_id=...
func (h *ConfigurationHandler) ListByProject(c *gin.Context) {
	configs, err := h.svc.ListByProject(c.Request.Context(), c.Query("project_id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"items": configs})
}

// AddItem POST /configurations/:id/items
func (h *ConfigurationHandler) AddItem(c *gin.Context) {
	var req service.ConfigurationItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	item, err := h.svc.AddItem(c.Request.Context(), auditFrom(c), c.Param("id"), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, item)
}

// UpdateItem PUT /configurations/:id/items/:itemId
func (h *ConfigurationHandler) UpdateItem(c *gin.Context) {
	var req service.ConfigurationItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	item, err := h.svc.UpdateItem(c.Request.Context(), auditFrom(c), c.Param("itemId"), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, item)
}

// DeleteItem DELETE /configurations/:id/items/:itemId
func (h *ConfigurationHandler) DeleteItem(c *gin.Context) {
	if err := h.svc.DeleteItem(c.Request.Context(), auditFrom(c), c.Param("itemId")); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}

// ExpandBOM POST /configurations/:id/bom?mode=resolved|offline
// Expands the configuration into an aggregated bill of materials.
func (h *ConfigurationHandler) ExpandBOM(c *gin.Context) {
	conf, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}

	var lines []bom.Line
	switch c.DefaultQuery("mode", "resolved") {
	case "resolved":
		lines, err = h.engine.Expand(c.Request.Context(), conf.Items)
		if err != nil {
			Fail(c, err)
			return
		}
	case "offline":
		lines = h.engine.ExpandOffline(conf.Items)
	default:
		BadRequest(c, "Invalid request: mode must be resolved or offline")
		return
	}

	Success(c, gin.H{
		"lines":      lines,
		"total_cost": bom.TotalCost(lines),
	})
}
