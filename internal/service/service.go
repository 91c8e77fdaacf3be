package service

import (
	"context"
	"sync"

	"github.com/alexivanou/checkout-address/internal/checkout"
	"github.com/alexivanou/checkout-address/internal/model"
	"github.com/alexivanou/checkout-address/internal/repository"
	"go.uber.org/zap"
)

// CartUpdater sends a finished address to the cart
type CartUpdater interface {
	UpdateShippingAddress(ctx context.Context, cartID string, sub model.Submission) error
}

// Options configures the service
type Options struct {
	DefaultProvider string
	Search          checkout.SessionOptions
}

// Service hosts the address step of open checkouts, one session per cart
type Service struct {
	searcher  checkout.Searcher
	carts     CartUpdater
	drafts    repository.DraftRepository
	validator *checkout.AddressValidator
	opts      Options
	logger    *zap.Logger

	mu       sync.Mutex
	sessions map[string]*checkout.Session
}

// NewService creates a new service instance
func NewService(
	searcher checkout.Searcher,
	carts CartUpdater,
	drafts repository.DraftRepository,
	opts Options,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Search.Logger == nil {
		opts.Search.Logger = logger
	}
	return &Service{
		searcher:  searcher,
		carts:     carts,
		drafts:    drafts,
		validator: checkout.NewAddressValidator(),
		opts:      opts,
		logger:    logger,
		sessions:  make(map[string]*checkout.Session),
	}
}

// ActiveSessions returns the number of open sessions
func (s *Service) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close stops every session's pending searches
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		sess.Close()
		delete(s.sessions, id)
	}
}
