package repository

import (
	"errors"

	"gorm.io/gorm"
)

// Persistence-level failures. Services add their own business errors on top;
// together they form the closed error set handlers translate for clients.
var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidState = errors.New("version is not in draft state")
	ErrImmutable    = errors.New("version is approved or deprecated and can no longer be modified")
	ErrConflict     = errors.New("record was modified concurrently")
)

// Repositories bundles all catalog repositories.
type Repositories struct {
	Article       *ArticleRepository
	Kit           *KitRepository
	Category      *CategoryRepository
	Configuration *ConfigurationRepository
	Legacy        *LegacyMappingRepository
	OperationLog  *OperationLogRepository
}

// NewRepositories wires every repository to the shared DB handle.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Article:       NewArticleRepository(db),
		Kit:           NewKitRepository(db),
		Category:      NewCategoryRepository(db),
		Configuration: NewConfigurationRepository(db),
		Legacy:        NewLegacyMappingRepository(db),
		OperationLog:  NewOperationLogRepository(db),
	}
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
