package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/alexivanou/checkout-address/internal/checkout"
	"github.com/alexivanou/checkout-address/internal/model"
	"github.com/alexivanou/checkout-address/internal/shipping"
	"go.uber.org/zap"
)

// Open starts the address step of a cart, or restarts it when the shipping
// option changed. A saved draft for the same courier is restored; otherwise
// the form is prefilled from the request.
func (s *Service) Open(ctx context.Context, cartID string, req model.OpenCheckoutRequest) (model.CheckoutState, error) {
	cartID = strings.TrimSpace(cartID)
	if cartID == "" {
		return model.CheckoutState{}, ErrInvalidCartID
	}

	option := requestedOption(req)
	mode := shipping.AddressType(option)
	provider := shipping.ProviderID(option)
	if provider == "" {
		provider = s.opts.DefaultProvider
	}

	s.mu.Lock()
	if existing, ok := s.sessions[cartID]; ok {
		st := existing.State()
		if st.AddressType == mode && st.ProviderID == provider {
			s.mu.Unlock()
			return st, nil
		}
		existing.Close()
		delete(s.sessions, cartID)
	}
	s.mu.Unlock()

	form := s.loadDraft(ctx, cartID, mode, provider)
	if form == nil {
		form = checkout.NewForm(mode, provider, s.validator)
		form.Prefill(req.Address, req.Email, req.CustomerEmail)
		form.SetSameAsBilling(checkout.SameAddress(req.Address, req.BillingAddress))
	} else if form.Email() == "" {
		form.Prefill(nil, req.Email, req.CustomerEmail)
	}

	sess := checkout.NewSession(cartID, form, s.searcher, s.opts.Search)

	s.mu.Lock()
	if raced, ok := s.sessions[cartID]; ok {
		raced.Close()
	}
	s.sessions[cartID] = sess
	s.mu.Unlock()

	s.logger.Info("Checkout session opened",
		zap.String("cart_id", cartID),
		zap.String("address_type", string(mode)),
		zap.String("provider", provider),
	)

	s.saveDraft(ctx, sess)
	return sess.State(), nil
}

// requestedOption is the option sent with the request, or the cart's selected
// option looked up among the available ones.
func requestedOption(req model.OpenCheckoutRequest) *model.ShippingOption {
	if req.ShippingOption != nil {
		return req.ShippingOption
	}
	id := req.ShippingMethodOptionID
	if id == "" {
		id = req.SelectedOptionID
	}
	return shipping.FindOption(req.AvailableOptions, id)
}

// State returns the current state of a cart's address step
func (s *Service) State(ctx context.Context, cartID string) (model.CheckoutState, error) {
	sess, err := s.session(cartID)
	if err != nil {
		return model.CheckoutState{}, err
	}
	return sess.State(), nil
}

// Type feeds a keystroke to an autocomplete field
func (s *Service) Type(ctx context.Context, cartID, field, query string) (model.CheckoutState, error) {
	return s.mutate(ctx, cartID, func(sess *checkout.Session) error {
		return sess.Type(field, query)
	})
}

// Select picks a search result of an autocomplete field; an empty id clears it
func (s *Service) Select(ctx context.Context, cartID, field, id string) (model.CheckoutState, error) {
	return s.mutate(ctx, cartID, func(sess *checkout.Session) error {
		return sess.Select(field, id)
	})
}

// SetField updates a free-text field
func (s *Service) SetField(ctx context.Context, cartID, name, value string) (model.CheckoutState, error) {
	return s.mutate(ctx, cartID, func(sess *checkout.Session) error {
		return sess.SetField(name, value)
	})
}

// Submit validates the form and sends it to the cart. On success the
// session and its draft are removed. An invalid form returns a
// *ValidationError and leaves the session untouched.
func (s *Service) Submit(ctx context.Context, cartID string) (checkout.ValidationOutcome, error) {
	sess, err := s.session(cartID)
	if err != nil {
		return checkout.ValidationOutcome{}, err
	}

	result := sess.Validate()
	if !result.Valid {
		s.saveDraft(ctx, sess)
		return result, &ValidationError{Outcome: result}
	}

	sub, err := sess.Submission()
	if err != nil {
		return result, fmt.Errorf("failed to build submission: %w", err)
	}

	if err := s.carts.UpdateShippingAddress(ctx, cartID, sub); err != nil {
		return result, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}

	s.remove(cartID, sess)
	if err := s.drafts.DeleteDraft(ctx, cartID); err != nil {
		s.logger.Warn("Failed to delete draft", zap.String("cart_id", cartID), zap.Error(err))
	}

	s.logger.Info("Shipping address submitted",
		zap.String("cart_id", cartID),
		zap.String("address_type", string(sub.AddressType)),
	)
	return result, nil
}

// Discard drops a cart's session and draft
func (s *Service) Discard(ctx context.Context, cartID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[cartID]
	if ok {
		sess.Close()
		delete(s.sessions, cartID)
	}
	s.mu.Unlock()

	if err := s.drafts.DeleteDraft(ctx, cartID); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

// PurgeDrafts removes drafts not touched within maxAge
func (s *Service) PurgeDrafts(ctx context.Context, maxAge time.Duration) (int64, error) {
	n, err := s.drafts.PurgeDrafts(ctx, time.Now().Add(-maxAge))
	if err != nil {
		return 0, fmt.Errorf("failed to purge drafts: %w", err)
	}
	return n, nil
}

func (s *Service) mutate(ctx context.Context, cartID string, fn func(*checkout.Session) error) (model.CheckoutState, error) {
	sess, err := s.session(cartID)
	if err != nil {
		return model.CheckoutState{}, err
	}
	if err := fn(sess); err != nil {
		return model.CheckoutState{}, err
	}
	s.saveDraft(ctx, sess)
	return sess.State(), nil
}

func (s *Service) session(cartID string) (*checkout.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[cartID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *Service) remove(cartID string, sess *checkout.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.sessions[cartID]; ok && current == sess {
		delete(s.sessions, cartID)
	}
	sess.Close()
}

// loadDraft restores a form saved for the same courier. Draft storage is a
// convenience, so read failures only get logged.
func (s *Service) loadDraft(ctx context.Context, cartID string, mode model.AddressType, provider string) *checkout.Form {
	draft, err := s.drafts.GetDraft(ctx, cartID)
	if err != nil {
		s.logger.Warn("Failed to load draft", zap.String("cart_id", cartID), zap.Error(err))
		return nil
	}
	if draft == nil || draft.ProviderID != provider {
		return nil
	}

	var snap checkout.FormSnapshot
	if err := json.Unmarshal(draft.Payload, &snap); err != nil {
		s.logger.Warn("Discarding unreadable draft", zap.String("cart_id", cartID), zap.Error(err))
		return nil
	}
	return checkout.RestoreForm(mode, provider, s.validator, snap)
}

func (s *Service) saveDraft(ctx context.Context, sess *checkout.Session) {
	mode, provider, snap := sess.Snapshot()
	payload, err := json.Marshal(snap)
	if err != nil {
		s.logger.Warn("Failed to encode draft", zap.String("cart_id", sess.CartID()), zap.Error(err))
		return
	}

	draft := model.Draft{
		CartID:      sess.CartID(),
		AddressType: string(mode),
		ProviderID:  provider,
		Payload:     payload,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := s.drafts.SaveDraft(ctx, draft); err != nil {
		s.logger.Warn("Failed to save draft", zap.String("cart_id", sess.CartID()), zap.Error(err))
	}
}
