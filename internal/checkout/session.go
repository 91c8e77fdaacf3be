package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alexivanou/checkout-address/internal/autocomplete"
	"github.com/alexivanou/checkout-address/internal/courier"
	"github.com/alexivanou/checkout-address/internal/model"
	"go.uber.org/zap"
)

// ErrResultNotFound is returned when selecting an id that is not among the
// field's current results
var ErrResultNotFound = errors.New("search result not found")

// Searcher looks up courier locations
type Searcher interface {
	SearchCities(ctx context.Context, provider, query string) ([]model.CityResult, error)
	SearchOffices(ctx context.Context, provider string, cityID int, query string) ([]model.OfficeResult, error)
	SearchQuarters(ctx context.Context, provider string, cityID int, query string) ([]model.QuarterResult, error)
	SearchStreets(ctx context.Context, provider string, cityID int, query string) ([]model.StreetResult, error)
}

// SessionOptions tunes the autocomplete fields of a session
type SessionOptions struct {
	Debounce       time.Duration
	MinQueryLength int
	Logger         *zap.Logger
}

// Session is the address step of one cart: a form plus its autocomplete
// fields. Only the fields of the form's mode exist.
type Session struct {
	cartID string
	logger *zap.Logger

	mu   sync.Mutex
	form *Form

	cityID  atomic.Int64
	city    *autocomplete.Field[model.CityResult]
	office  *autocomplete.Field[model.OfficeResult]
	quarter *autocomplete.Field[model.QuarterResult]
	street  *autocomplete.Field[model.StreetResult]
}

// NewSession wires the autocomplete fields of form to searcher
func NewSession(cartID string, form *Form, searcher Searcher, opts SessionOptions) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("cart_id", cartID))
	// the courier client drops shorter queries, a field must not wait on them
	minLength := opts.MinQueryLength
	if minLength < courier.MinQueryLength {
		minLength = courier.MinQueryLength
	}

	s := &Session{cartID: cartID, logger: logger, form: form}
	provider := form.Provider()
	scoped := func() bool { return s.cityID.Load() != 0 }
	fieldOpts := func(kind model.LocationKind, minLen int, enabled func() bool) autocomplete.Options {
		return autocomplete.Options{
			Delay:     opts.Debounce,
			MinLength: minLen,
			Messages:  SearchMessages(kind),
			Enabled:   enabled,
			Logger:    logger,
		}
	}

	s.city = autocomplete.New[model.CityResult](FieldCity, func(ctx context.Context, q string) ([]model.CityResult, error) {
		return searcher.SearchCities(ctx, provider, q)
	}, fieldOpts(model.KindCity, minLength, nil))

	if form.Mode() == model.AddressTypeOffice {
		// offices are listed as soon as a city is chosen
		s.office = autocomplete.New[model.OfficeResult](FieldOffice, func(ctx context.Context, q string) ([]model.OfficeResult, error) {
			return searcher.SearchOffices(ctx, provider, int(s.cityID.Load()), q)
		}, fieldOpts(model.KindOffice, 0, scoped))
	} else {
		s.quarter = autocomplete.New[model.QuarterResult](FieldQuarter, func(ctx context.Context, q string) ([]model.QuarterResult, error) {
			return searcher.SearchQuarters(ctx, provider, int(s.cityID.Load()), q)
		}, fieldOpts(model.KindQuarter, minLength, scoped))
		s.street = autocomplete.New[model.StreetResult](FieldStreet, func(ctx context.Context, q string) ([]model.StreetResult, error) {
			return searcher.SearchStreets(ctx, provider, int(s.cityID.Load()), q)
		}, fieldOpts(model.KindStreet, minLength, scoped))
	}

	s.syncFields()
	return s
}

// CartID returns the cart the session belongs to
func (s *Session) CartID() string { return s.cartID }

// Type feeds a keystroke to an autocomplete field. Typing over a selected
// value clears it from the form.
func (s *Session) Type(field, query string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch field {
	case FieldCity:
		if s.city.Type(query) {
			s.applyCityLocked(nil)
		}
	case FieldOffice:
		if s.office == nil {
			return fmt.Errorf("%s: %w", field, ErrFieldNotInMode)
		}
		if s.office.Type(query) {
			return s.form.SelectOffice(nil)
		}
	case FieldQuarter:
		if s.quarter == nil {
			return fmt.Errorf("%s: %w", field, ErrFieldNotInMode)
		}
		if s.quarter.Type(query) {
			return s.form.SelectQuarter(nil)
		}
	case FieldStreet:
		if s.street == nil {
			return fmt.Errorf("%s: %w", field, ErrFieldNotInMode)
		}
		if s.street.Type(query) {
			return s.form.SelectStreet(nil)
		}
	default:
		return fmt.Errorf("%q: %w", field, ErrUnknownField)
	}
	return nil
}

// Select picks the result with the given id. An empty id clears the field.
func (s *Session) Select(field, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch field {
	case FieldCity:
		city, err := pick(s.city, id)
		if err != nil {
			return err
		}
		s.applyCityLocked(city)
	case FieldOffice:
		if s.office == nil {
			return fmt.Errorf("%s: %w", field, ErrFieldNotInMode)
		}
		office, err := pick(s.office, id)
		if err != nil {
			return err
		}
		return s.form.SelectOffice(office)
	case FieldQuarter:
		if s.quarter == nil {
			return fmt.Errorf("%s: %w", field, ErrFieldNotInMode)
		}
		quarter, err := pick(s.quarter, id)
		if err != nil {
			return err
		}
		return s.form.SelectQuarter(quarter)
	case FieldStreet:
		if s.street == nil {
			return fmt.Errorf("%s: %w", field, ErrFieldNotInMode)
		}
		street, err := pick(s.street, id)
		if err != nil {
			return err
		}
		return s.form.SelectStreet(street)
	default:
		return fmt.Errorf("%q: %w", field, ErrUnknownField)
	}
	return nil
}

// SetField updates a free-text field of the form
func (s *Session) SetField(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.Set(name, value)
}

// Validate runs the submission gate
func (s *Session) Validate() ValidationOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.Validate()
}

// Submission returns the cart update for the current form
func (s *Session) Submission() (model.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.Submission()
}

// Snapshot returns the form state for a draft
func (s *Session) Snapshot() (model.AddressType, string, FormSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.Mode(), s.form.Provider(), s.form.Snapshot()
}

// State renders the session for the API
func (s *Session) State() model.CheckoutState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := model.CheckoutState{
		CartID:        s.cartID,
		AddressType:   s.form.Mode(),
		ProviderID:    s.form.Provider(),
		Email:         s.form.Email(),
		SameAsBilling: s.form.SameAsBilling(),
		Address:       s.form.Address(),
		City:          fieldState(s.city),
	}
	if errs := s.form.Errors(); len(errs) > 0 {
		st.Errors = errs
	}
	if s.office != nil {
		office := fieldState(s.office)
		st.Office = &office
	}
	if s.quarter != nil {
		details := s.form.Details()
		st.Details = &details
		quarter := fieldState(s.quarter)
		st.Quarter = &quarter
		street := fieldState(s.street)
		st.Street = &street
	}
	return st
}

// Close stops every pending search
func (s *Session) Close() {
	s.city.Close()
	if s.office != nil {
		s.office.Close()
	}
	if s.quarter != nil {
		s.quarter.Close()
	}
	if s.street != nil {
		s.street.Close()
	}
}

func (s *Session) applyCityLocked(city *model.CityResult) {
	s.form.SelectCity(city)
	if city != nil {
		s.cityID.Store(int64(city.Data.CityID))
	} else {
		s.cityID.Store(0)
	}

	if s.office != nil {
		rescope(s.office, s.form.Office())
	}
	if s.quarter != nil {
		rescope(s.quarter, s.form.Quarter())
	}
	if s.street != nil {
		rescope(s.street, s.form.Street())
	}
}

// syncFields mirrors the form's selections into the fields after a restore
func (s *Session) syncFields() {
	if city := s.form.City(); city != nil {
		s.cityID.Store(int64(city.Data.CityID))
		s.city.Select(city)
	}
	if office := s.form.Office(); office != nil && s.office != nil {
		s.office.Select(office)
	}
	if quarter := s.form.Quarter(); quarter != nil && s.quarter != nil {
		s.quarter.Select(quarter)
	}
	if street := s.form.Street(); street != nil && s.street != nil {
		s.street.Select(street)
	}
}

// rescope reacts to a city change: a selection the form dropped is cleared,
// an unselected field searches again within the new city.
func rescope[T autocomplete.Item](field *autocomplete.Field[T], kept *T) {
	switch {
	case field.Selected() != nil && kept == nil:
		field.Select(nil)
	case field.Selected() == nil:
		field.Refresh()
	}
}

func pick[T autocomplete.Item](field *autocomplete.Field[T], id string) (*T, error) {
	if id == "" {
		field.Select(nil)
		return nil, nil
	}
	item, ok := field.SelectKey(id)
	if !ok {
		return nil, fmt.Errorf("%q: %w", id, ErrResultNotFound)
	}
	return &item, nil
}

func fieldState[T autocomplete.Item](field *autocomplete.Field[T]) model.FieldState[T] {
	snap := field.Snapshot()
	results := snap.Results
	if results == nil {
		results = []T{}
	}
	return model.FieldState[T]{
		Query:    snap.Query,
		Results:  results,
		Loading:  snap.Loading,
		Error:    snap.Error,
		Selected: snap.Selected,
	}
}
