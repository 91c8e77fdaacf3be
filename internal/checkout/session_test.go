package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alexivanou/checkout-address/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct {
	mu        sync.Mutex
	cities    []model.CityResult
	offices   []model.OfficeResult
	quarters  []model.QuarterResult
	streets   []model.StreetResult
	err       error
	officeFor []int
}

func (s *stubSearcher) SearchCities(_ context.Context, _, _ string) ([]model.CityResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return []model.CityResult{}, s.err
	}
	return s.cities, nil
}

func (s *stubSearcher) SearchOffices(_ context.Context, _ string, cityID int, _ string) ([]model.OfficeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.officeFor = append(s.officeFor, cityID)
	return s.offices, s.err
}

func (s *stubSearcher) SearchQuarters(_ context.Context, _ string, _ int, _ string) ([]model.QuarterResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quarters, s.err
}

func (s *stubSearcher) SearchStreets(_ context.Context, _ string, _ int, _ string) ([]model.StreetResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streets, s.err
}

func newStubSearcher() *stubSearcher {
	return &stubSearcher{
		cities:   []model.CityResult{*sofia(), *city(56, "Пловдив", "4000")},
		offices:  []model.OfficeResult{*office(5, 41, "1127", "Офис Младост")},
		quarters: []model.QuarterResult{*quarter(3, 41, "Лозенец")},
		streets:  []model.StreetResult{*street(7, 41, "ул. Витоша")},
	}
}

const (
	sessionDelay = 5 * time.Millisecond
	waitFor      = time.Second
	tick         = 5 * time.Millisecond
)

func newTestSession(t *testing.T, mode model.AddressType, searcher Searcher) *Session {
	t.Helper()
	s := NewSession("cart_1", NewForm(mode, testProvider, nil), searcher, SessionOptions{Debounce: sessionDelay})
	t.Cleanup(s.Close)
	return s
}

func TestSession_StreetAddressFlow(t *testing.T) {
	s := newTestSession(t, model.AddressTypeAddress, newStubSearcher())

	require.NoError(t, s.Type(FieldCity, "Соф"))
	require.Eventually(t, func() bool { return len(s.State().City.Results) == 2 }, waitFor, tick)
	require.NoError(t, s.Select(FieldCity, "София"))

	require.NoError(t, s.Type(FieldStreet, "Вит"))
	require.Eventually(t, func() bool { return len(s.State().Street.Results) == 1 }, waitFor, tick)
	require.NoError(t, s.Select(FieldStreet, "ул. Витоша"))
	require.NoError(t, s.SetField(FieldStreetNumber, "12"))

	st := s.State()
	require.NotNil(t, st.City.Selected)
	assert.Equal(t, "София", st.City.Query)
	require.NotNil(t, st.Street.Selected)
	assert.Equal(t, "ул. Витоша 12", st.Address.Address1)
	assert.Equal(t, "1000", st.Address.PostalCode)
	assert.Nil(t, st.Office)
	require.NotNil(t, st.Details)
	assert.Equal(t, "12", st.Details.StreetNumber)

	assert.True(t, s.Validate().Valid)
}

func TestSession_TypingOverCityClearsDependents(t *testing.T) {
	s := newTestSession(t, model.AddressTypeAddress, newStubSearcher())

	require.NoError(t, s.Type(FieldCity, "Соф"))
	require.Eventually(t, func() bool { return len(s.State().City.Results) > 0 }, waitFor, tick)
	require.NoError(t, s.Select(FieldCity, "София"))
	require.NoError(t, s.Type(FieldQuarter, "Лоз"))
	require.Eventually(t, func() bool { return len(s.State().Quarter.Results) > 0 }, waitFor, tick)
	require.NoError(t, s.Select(FieldQuarter, "Лозенец"))
	require.NotNil(t, s.State().Quarter.Selected)

	require.NoError(t, s.Type(FieldCity, "Пло"))

	st := s.State()
	assert.Nil(t, st.City.Selected)
	assert.Nil(t, st.Quarter.Selected)
	assert.Empty(t, st.Quarter.Query)
	assert.Empty(t, st.Address.Province)
}

func TestSession_OfficeFlow(t *testing.T) {
	searcher := newStubSearcher()
	s := newTestSession(t, model.AddressTypeOffice, searcher)

	require.NoError(t, s.Type(FieldCity, "Соф"))
	require.Eventually(t, func() bool { return len(s.State().City.Results) > 0 }, waitFor, tick)
	require.NoError(t, s.Select(FieldCity, "София"))

	// selecting a city lists its offices without typing
	require.Eventually(t, func() bool { return len(s.State().Office.Results) == 1 }, waitFor, tick)
	searcher.mu.Lock()
	assert.Contains(t, searcher.officeFor, 41)
	searcher.mu.Unlock()

	require.NoError(t, s.Select(FieldOffice, "1127"))
	st := s.State()
	assert.Equal(t, "Офис Младост", st.Address.Address1)
	assert.Nil(t, st.Street)
	assert.Nil(t, st.Details)
	assert.True(t, s.Validate().Valid)

	sub, err := s.Submission()
	require.NoError(t, err)
	assert.Contains(t, sub.Metadata, model.MetadataOffice)
}

func TestSession_Errors(t *testing.T) {
	s := newTestSession(t, model.AddressTypeOffice, newStubSearcher())

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{"unknown field", func() error { return s.Type("country", "BG") }, ErrUnknownField},
		{"street in office mode", func() error { return s.Type(FieldStreet, "Вит") }, ErrFieldNotInMode},
		{"select quarter in office mode", func() error { return s.Select(FieldQuarter, "x") }, ErrFieldNotInMode},
		{"select missing result", func() error { return s.Select(FieldCity, "Варна") }, ErrResultNotFound},
		{"unknown free-text field", func() error { return s.SetField("fax", "1") }, ErrUnknownField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), tt.want)
		})
	}
}

func TestSession_SearchFailureShowsMessage(t *testing.T) {
	searcher := newStubSearcher()
	searcher.err = errors.New("backend down")
	s := newTestSession(t, model.AddressTypeAddress, searcher)

	require.NoError(t, s.Type(FieldCity, "Соф"))
	require.Eventually(t, func() bool { return !s.State().City.Loading }, waitFor, tick)

	st := s.State()
	assert.Empty(t, st.City.Results)
	assert.NotNil(t, st.City.Results)
	assert.Equal(t, SearchMessages(model.KindCity).Failed, st.City.Error)
}

func TestSession_RestoredSelectionsAreShown(t *testing.T) {
	form := NewForm(model.AddressTypeAddress, testProvider, nil)
	form.SelectCity(sofia())
	require.NoError(t, form.SelectStreet(street(7, 41, "ул. Витоша")))

	s := NewSession("cart_1", form, newStubSearcher(), SessionOptions{Debounce: sessionDelay})
	defer s.Close()

	st := s.State()
	require.NotNil(t, st.City.Selected)
	assert.Equal(t, "София", st.City.Query)
	require.NotNil(t, st.Street.Selected)
	assert.Equal(t, "ул. Витоша", st.Street.Query)
	assert.False(t, st.Quarter.Loading)
}

func TestSession_MinQueryLengthNotBelowCourier(t *testing.T) {
	s := NewSession("cart_1", NewForm(model.AddressTypeAddress, testProvider, nil), newStubSearcher(),
		SessionOptions{Debounce: sessionDelay, MinQueryLength: 1})
	t.Cleanup(s.Close)

	require.NoError(t, s.Type(FieldCity, "С"))
	time.Sleep(10 * sessionDelay)

	st := s.State()
	assert.Empty(t, st.City.Results)
	assert.False(t, st.City.Loading)
	assert.Empty(t, st.City.Error)
}
