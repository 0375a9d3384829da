package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/navisol/navisol-erp/internal/catalog/entity"
	"github.com/navisol/navisol-erp/internal/catalog/service"
)

type ArticleHandler struct {
	svc *service.ArticleService
}

func NewArticleHandler(svc *service.ArticleService) *ArticleHandler {
	return &ArticleHandler{svc: svc}
}

// Create POST /articles
func (h *ArticleHandler) Create(c *gin.Context) {
	var req service.CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	article, err := h.svc.Create(c.Request.Context(), auditFrom(c), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, article)
}

// Get GET /articles/:id
func (h *ArticleHandler) Get(c *gin.Context) {
	article, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, article)
}

// Search GET /articles?q=...
func (h *ArticleHandler) Search(c *gin.Context) {
	articles, err := h.svc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"items": articles})
}

// Update PUT /articles/:id
func (h *ArticleHandler) Update(c *gin.Context) {
	var req service.UpdateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	article, err := h.svc.UpdateHeader(c.Request.Context(), auditFrom(c), c.Param("id"), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, article)
}

// CreateVersion POST /articles/:id/versions
func (h *ArticleHandler) CreateVersion(c *gin.Context) {
	var req service.ArticleVersionInput
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

// ListVersions GET /articles/:id/versions
func (h *ArticleHandler) ListVersions(c *gin.Context) {
	versions, err := h.svc.ListVersions(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"items": versions})
}

// CurrentVersion GET /articles/:id/versions/current
func (h *ArticleHandler) CurrentVersion(c *gin.Context) {
	v, err := h.svc.CurrentVersion(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, v)
}

// UpdateVersion PUT /articles/:id/versions/:versionId
func (h *ArticleHandler) UpdateVersion(c *gin.Context) {
	var req service.ArticleVersionInput
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

// ApproveVersion POST /articles/:id/versions/:versionId/approve
func (h *ArticleHandler) ApproveVersion(c *gin.Context) {
	v, err := h.svc.ApproveVersion(c.Request.Context(), auditFrom(c), c.Param("versionId"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, v)
}

// AddAttachment POST /articles/:id/versions/:versionId/attachments
// Accepts multipart form data with a "file" part.
func (h *ArticleHandler) AddAttachment(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "Invalid request: file part is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	defer file.Close()

	att := entity.Attachment{
		Kind:        c.PostForm("kind"),
		Filename:    fileHeader.Filename,
		Size:        fileHeader.Size,
		ContentType: fileHeader.Header.Get("Content-Type"),
	}
	v, err := h.svc.AddAttachment(c.Request.Context(), auditFrom(c), c.Param("versionId"), att, file)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, v)
}
