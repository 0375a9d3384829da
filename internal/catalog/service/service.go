package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/navisol/navisol-erp/internal/catalog/entity"
	"github.com/navisol/navisol-erp/internal/catalog/repository"
)

// Business-rule failures. Together with the repository sentinels these form
// the closed error set the HTTP layer translates; none of them is fatal.
var (
	ErrDuplicateCode        = errors.New("code already exists")
	ErrComponentNotApproved = errors.New("component references an article version that is not approved")
	ErrValidation           = errors.New("validation failed")
)

// AuditContext identifies who performs a mutating call. It is passed
// explicitly on every mutation; nothing is read from ambient session state.
type AuditContext struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
}

// Services bundles the catalog services.
type Services struct {
	Article       *ArticleService
	Kit           *KitService
	Category      *CategoryService
	Configuration *ConfigurationService
}

// NewServices wires the services. rdb and attachments may be nil; caching
// and blob upload are then skipped.
func NewServices(repos *repository.Repositories, rdb *redis.Client, attachments AttachmentStore, logger *zap.Logger) *Services {
	aud := &auditor{repo: repos.OperationLog, logger: logger}
	return &Services{
		Article:       NewArticleService(repos.Article, repos.Category, attachments, aud),
		Kit:           NewKitService(repos.Kit, repos.Article, repos.Category, rdb, aud),
		Category:      NewCategoryService(repos.Category, aud),
		Configuration: NewConfigurationService(repos.Configuration, repos.Article, repos.Kit, aud),
	}
}

// auditor writes operation log rows. Logging is best effort; a failed audit
// write never fails the operation it describes.
type auditor struct {
	repo   *repository.OperationLogRepository
	logger *zap.Logger
}

func (a *auditor) record(ctx context.Context, audit AuditContext, action, entityType, entityID string, detail map[string]interface{}) {
	if a == nil || a.repo == nil {
		return
	}
	var detailJSON datatypes.JSON
	if detail != nil {
		if b, err := json.Marshal(detail); err == nil {
			detailJSON = b
		}
	}
	log := &entity.OperationLog{
		ID:         newID(),
		UserID:     audit.UserID,
		UserName:   audit.UserName,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     detailJSON,
		CreatedAt:  time.Now(),
	}
	if err := a.repo.Create(ctx, log); err != nil && a.logger != nil {
		a.logger.Warn("operation log write failed",
			zap.String("action", action),
			zap.String("entity_id", entityID),
			zap.Error(err))
	}
}

func newID() string {
	return uuid.New().String()[:32]
}

func marshalTags(tags []string) datatypes.JSON {
	if tags == nil {
		tags = []string{}
	}
	b, _ := json.Marshal(tags)
	return b
}
