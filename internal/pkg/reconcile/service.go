package reconcile

import (
	"gorm.io/gorm"
)

// Service resolves external payment references onto local billing entities
// and applies their idempotent state transitions.
type Service struct {
	repo Repository
}

// NewService creates a reconcile service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a reconcile service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}
