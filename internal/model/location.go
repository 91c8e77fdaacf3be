package model

// Named is implemented by every location payload returned by the courier search.
type Named interface {
	Name() string
}

// SearchResult represents one location entity returned by the courier search
type SearchResult[T Named] struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Data  T      `json:"data"`
}

// Key returns the opaque identifier of the result
func (r SearchResult[T]) Key() string {
	return r.ID
}

// Display returns the name shown in the input once the result is selected
func (r SearchResult[T]) Display() string {
	return r.Data.Name()
}

// CityData is the root of the location hierarchy
type CityData struct {
	CityID     int    `json:"city_id"`
	CityName   string `json:"city_name"`
	PostalCode string `json:"postal_code"`
}

func (c CityData) Name() string { return c.CityName }

// OfficeData is a courier pickup/drop-off location
type OfficeData struct {
	OfficeID   int    `json:"office_id"`
	OfficeCode string `json:"office_code"`
	OfficeName string `json:"office_name"`
	CityID     int    `json:"city_id"`
	CityName   string `json:"city_name,omitempty"`
	Address    string `json:"address"`
	PostalCode string `json:"postal_code"`
}

func (o OfficeData) Name() string { return o.OfficeName }

// QuarterData is a city sub-district (квартал)
type QuarterData struct {
	QuarterID   int    `json:"quarter_id"`
	QuarterName string `json:"quarter_name"`
	CityID      int    `json:"city_id"`
}

func (q QuarterData) Name() string { return q.QuarterName }

// StreetData is a street scoped to a city
type StreetData struct {
	StreetID   int    `json:"street_id"`
	StreetName string `json:"street_name"`
	CityID     int    `json:"city_id"`
}

func (s StreetData) Name() string { return s.StreetName }

type (
	CityResult    = SearchResult[CityData]
	OfficeResult  = SearchResult[OfficeData]
	QuarterResult = SearchResult[QuarterData]
	StreetResult  = SearchResult[StreetData]
)

// CitiesResponse is the body of GET /store/shipping/cities
type CitiesResponse struct {
	Cities []CityResult `json:"cities"`
}

// OfficesResponse is the body of GET /store/shipping/offices
type OfficesResponse struct {
	Offices []OfficeResult `json:"offices"`
}

// QuartersResponse is the body of GET /store/shipping/quarters
type QuartersResponse struct {
	Quarters []QuarterResult `json:"quarters"`
}

// StreetsResponse is the body of GET /store/shipping/streets
type StreetsResponse struct {
	Streets []StreetResult `json:"streets"`
}

// LocationKind names one of the four lookups
type LocationKind string

const (
	KindCity    LocationKind = "city"
	KindOffice  LocationKind = "office"
	KindQuarter LocationKind = "quarter"
	KindStreet  LocationKind = "street"
)

// ParseLocationKind accepts both singular and plural forms ("city", "cities").
func ParseLocationKind(s string) (LocationKind, bool) {
	switch s {
	case "city", "cities":
		return KindCity, true
	case "office", "offices":
		return KindOffice, true
	case "quarter", "quarters":
		return KindQuarter, true
	case "street", "streets":
		return KindStreet, true
	}
	return "", false
}
