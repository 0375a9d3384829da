package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/navisol/navisol-erp/internal/catalog/service"
)

type CategoryHandler struct {
	svc *service.CategoryService
}

func NewCategoryHandler(svc *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

// List GET /categories
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.svc.List(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"items": categories})
}

// Get GET /categories/:id
func (h *CategoryHandler) Get(c *gin.Context) {
	category, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, category)
}

// Create POST /categories
func (h *CategoryHandler) Create(c *gin.Context) {
	var req service.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	category, err := h.svc.Create(c.Request.Context(), auditFrom(c), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, category)
}

// CreateSubcategory POST /categories/:id/subcategories
func (h *CategoryHandler) CreateSubcategory(c *gin.Context) {
	var req service.CreateSubcategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	req.CategoryID = c.Param("id")
	sub, err := h.svc.CreateSubcategory(c.Request.Context(), auditFrom(c), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, sub)
}
