package repository

import (
	"context"
	"time"

	"github.com/alexivanou/checkout-address/internal/config"
	"github.com/alexivanou/checkout-address/internal/model"
	"github.com/jmoiron/sqlx"
)

// DraftRepository persists checkout form drafts, one per cart
type DraftRepository interface {
	// GetDraft returns nil without error when the cart has no draft
	GetDraft(ctx context.Context, cartID string) (*model.Draft, error)
	SaveDraft(ctx context.Context, draft model.Draft) error
	DeleteDraft(ctx context.Context, cartID string) error
	// CountDraftsByType returns the number of drafts per address type
	CountDraftsByType(ctx context.Context) (map[string]int64, error)
	PurgeDrafts(ctx context.Context, before time.Time) (int64, error)
}

// Container holds all repositories
type Container struct {
	Draft DraftRepository
}

// NewRepositories creates repository implementations based on DB type
func NewRepositories(db *sqlx.DB, dbType config.DBType) *Container {
	if dbType == config.DBTypePostgreSQL {
		return &Container{
			Draft: &pgDraftRepository{db: db},
		}
	}

	// Default to SQLite
	return &Container{
		Draft: &sqliteDraftRepository{db: db},
	}
}
