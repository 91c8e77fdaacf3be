package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/alexivanou/checkout-address/internal/checkout"
	"github.com/alexivanou/checkout-address/internal/model"
	"github.com/alexivanou/checkout-address/internal/service"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const maxBodyBytes = 64 << 10

// searchFailedHeader is set on a search response whose empty result comes
// from a failed upstream lookup
const searchFailedHeader = "X-Search-Failed"

// Handler handles HTTP requests
type Handler struct {
	service service.ServiceInterface
	logger  *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(service service.ServiceInterface, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// AddressType handles GET /api/v1/shipping/address-type
func (h *Handler) AddressType(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	writeJSON(w, http.StatusOK, model.AddressTypeResponse{AddressType: h.service.ResolveAddressType(code)}, h.logger)
}

// SearchLocations handles GET /api/v1/shipping/{kind}
func (h *Handler) SearchLocations(w http.ResponseWriter, r *http.Request) {
	kind, ok := model.ParseLocationKind(mux.Vars(r)["kind"])
	if !ok {
		http.Error(w, "unknown location kind", http.StatusNotFound)
		return
	}

	params := r.URL.Query()
	provider := params.Get("provider")
	query := params.Get("query")

	var cityID int
	if kind != model.KindCity {
		var err error
		cityID, err = strconv.Atoi(params.Get("cityId"))
		if err != nil || cityID <= 0 {
			http.Error(w, "query parameter 'cityId' is required", http.StatusBadRequest)
			return
		}
	}

	var (
		response  any
		searchErr error
	)
	switch kind {
	case model.KindCity:
		cities, err := h.service.SearchCities(r.Context(), provider, query)
		response, searchErr = model.CitiesResponse{Cities: cities}, err
	case model.KindOffice:
		offices, err := h.service.SearchOffices(r.Context(), provider, cityID, query)
		response, searchErr = model.OfficesResponse{Offices: offices}, err
	case model.KindQuarter:
		quarters, err := h.service.SearchQuarters(r.Context(), provider, cityID, query)
		response, searchErr = model.QuartersResponse{Quarters: quarters}, err
	case model.KindStreet:
		streets, err := h.service.SearchStreets(r.Context(), provider, cityID, query)
		response, searchErr = model.StreetsResponse{Streets: streets}, err
	}

	// lookups fail soft: the shopper sees an empty list and a message
	if searchErr != nil {
		h.logger.Warn("Location search failed", zap.String("kind", string(kind)), zap.Error(searchErr))
		w.Header().Set(searchFailedHeader, "true")
	}
	writeJSON(w, http.StatusOK, response, h.logger)
}

// OpenCheckout handles POST /api/v1/checkout/{cartID}
func (h *Handler) OpenCheckout(w http.ResponseWriter, r *http.Request) {
	var req model.OpenCheckoutRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	state, err := h.service.Open(r.Context(), mux.Vars(r)["cartID"], req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state, h.logger)
}

// GetCheckout handles GET /api/v1/checkout/{cartID}
func (h *Handler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.State(r.Context(), mux.Vars(r)["cartID"])
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state, h.logger)
}

// DiscardCheckout handles DELETE /api/v1/checkout/{cartID}
func (h *Handler) DiscardCheckout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Discard(r.Context(), mux.Vars(r)["cartID"]); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TypeQuery handles PUT /api/v1/checkout/{cartID}/search/{field}
func (h *Handler) TypeQuery(w http.ResponseWriter, r *http.Request) {
	var req model.QueryRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	vars := mux.Vars(r)
	state, err := h.service.Type(r.Context(), vars["cartID"], vars["field"], req.Query)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state, h.logger)
}

// SelectResult handles PUT /api/v1/checkout/{cartID}/select/{field}
func (h *Handler) SelectResult(w http.ResponseWriter, r *http.Request) {
	var req model.SelectRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	vars := mux.Vars(r)
	state, err := h.service.Select(r.Context(), vars["cartID"], vars["field"], req.ID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state, h.logger)
}

// SetField handles PUT /api/v1/checkout/{cartID}/fields/{name}
func (h *Handler) SetField(w http.ResponseWriter, r *http.Request) {
	var req model.FieldRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	vars := mux.Vars(r)
	state, err := h.service.SetField(r.Context(), vars["cartID"], vars["name"], req.Value)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state, h.logger)
}

// SubmitCheckout handles POST /api/v1/checkout/{cartID}/submit
func (h *Handler) SubmitCheckout(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Submit(r.Context(), mux.Vars(r)["cartID"])
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.SubmitResponse{Valid: result.Valid, Errors: result.Errors}, h.logger)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, model.SubmitResponse{Valid: false, Errors: verr.Outcome.Errors}, h.logger)
	case errors.Is(err, service.ErrSessionNotFound):
		http.Error(w, "checkout session not found", http.StatusNotFound)
	case errors.Is(err, service.ErrInvalidCartID),
		errors.Is(err, checkout.ErrUnknownField),
		errors.Is(err, checkout.ErrFieldNotInMode),
		errors.Is(err, checkout.ErrInvalidValue),
		errors.Is(err, checkout.ErrResultNotFound):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrSubmitFailed):
		h.logger.Error("Error submitting address", zap.Error(err))
		http.Error(w, "failed to update cart", http.StatusBadGateway)
	default:
		h.logger.Error("Error handling checkout request", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Error encoding response", zap.Error(err))
	}
}

// decodeBody reads a JSON body; an empty body leaves v untouched
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
