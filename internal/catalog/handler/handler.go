package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/navisol/navisol-erp/internal/bom"
	"github.com/navisol/navisol-erp/internal/catalog/repository"
	"github.com/navisol/navisol-erp/internal/catalog/service"
)

// Handlers bundles the HTTP handlers.
type Handlers struct {
	Article       *ArticleHandler
	Kit           *KitHandler
	Category      *CategoryHandler
	Configuration *ConfigurationHandler
	Legacy        *LegacyMappingHandler
}

func NewHandlers(svc *service.Services, repos *repository.Repositories, engine *bom.Engine) *Handlers {
	return &Handlers{
		Article:       NewArticleHandler(svc.Article),
		Kit:           NewKitHandler(svc.Kit),
		Category:      NewCategoryHandler(svc.Category),
		Configuration: NewConfigurationHandler(svc.Configuration, engine),
		Legacy:        NewLegacyMappingHandler(repos.Legacy, repos.OperationLog),
	}
}

// Response is the envelope of every reply. Code 0 means success; error codes
// are the HTTP status times 100 plus a discriminator.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{Code: 0, Message: "success", Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{Code: 0, Message: "success", Data: data})
}

func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{Code: code, Message: message})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// Fail maps the catalog's closed error set onto HTTP statuses. Everything the
// services return wraps one of these sentinels; anything else is a 500.
func Fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		Error(c, 40400, err.Error())
	case errors.Is(err, service.ErrValidation):
		Error(c, 40000, err.Error())
	case errors.Is(err, service.ErrDuplicateCode):
		Error(c, 40901, err.Error())
	case errors.Is(err, repository.ErrConflict):
		Error(c, 40902, err.Error())
	case errors.Is(err, repository.ErrInvalidState):
		Error(c, 40903, err.Error())
	case errors.Is(err, repository.ErrImmutable):
		Error(c, 40904, err.Error())
	case errors.Is(err, service.ErrComponentNotApproved):
		Error(c, 42200, err.Error())
	default:
		Error(c, 50000, err.Error())
	}
}

// auditFrom builds the audit context from the authenticated request.
func auditFrom(c *gin.Context) service.AuditContext {
	return service.AuditContext{
		UserID:   c.GetString("user_id"),
		UserName: c.GetString("user_name"),
	}
}
