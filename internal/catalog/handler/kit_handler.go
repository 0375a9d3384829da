package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/navisol/navisol-erp/internal/catalog/service"
)

type KitHandler struct {
	svc *service.KitService
}

func NewKitHandler(svc *service.KitService) *KitHandler {
	return &KitHandler{svc: svc}
}

// Create POST /kits
func (h *KitHandler) Create(c *gin.Context) {
	var req service.CreateKitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	kit, err := h.svc.Create(c.Request.Context(), auditFrom(c), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, kit)
}

// Get GET /kits/:id
func (h *KitHandler) Get(c *gin.Context) {
	kit, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, kit)
}

// Search GET /kits?q=...
func (h *KitHandler) Search(c *gin.Context) {
	kits, err := h.svc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"items": kits})
}

// Update PUT /kits/:id
func (h *KitHandler) Update(c *gin.Context) {
	var req service.UpdateKitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	kit, err := h.svc.UpdateHeader(c.Request.Context(), auditFrom(c), c.Param("id"), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, kit)
}

// UpdateVersion PUT /kits/:id/versions/:versionId
func (h *KitHandler) UpdateVersion(c *gin.Context) {
	var req service.KitVersionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	v, err := h.svc.UpdateDraftVersion(c.Request.Context(), auditFrom(c), c.Param("versionId"), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, v)
}

// CreateVersion POST /kits/:id/versions
func (h *KitHandler) CreateVersion(c *gin.Context) {
	var req service.KitVersionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	v, err := h.svc.CreateVersion(c.Request.Context(), auditFrom(c), c.Param("id"), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, v)
}

// ListVersions GET /kits/:id/versions
func (h *KitHandler) ListVersions(c *gin.Context) {
	versions, err := h.svc.ListVersions(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"items": versions})
}

// CurrentVersion GET /kits/:id/versions/current
func (h *KitHandler) CurrentVersion(c *gin.Context) {
	v, err := h.svc.CurrentVersion(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, v)
}

// GetVersion GET /kits/:id/versions/:versionId
func (h *KitHandler) GetVersion(c *gin.Context) {
	v, err := h.svc.GetVersion(c.Request.Context(), c.Param("versionId"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, v)
}

// ApproveVersion POST /kits/:id/versions/:versionId/approve
func (h *KitHandler) ApproveVersion(c *gin.Context) {
	v, err := h.svc.ApproveVersion(c.Request.Context(), auditFrom(c), c.Param("versionId"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, v)
}

// Cost GET /kits/:id/versions/:versionId/cost
func (h *KitHandler) Cost(c *gin.Context) {
	res, err := h.svc.CalculateCost(c.Request.Context(), c.Param("versionId"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, res)
}
