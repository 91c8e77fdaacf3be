package api

import (
	"github.com/alexivanou/checkout-address/internal/service"
	"github.com/alexivanou/checkout-address/internal/stats"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// NewRouter creates a new HTTP router. limiter may be nil to disable rate limiting.
func NewRouter(service service.ServiceInterface, statsCollector *stats.Collector, limiter *IPRateLimiter, logger *zap.Logger) *mux.Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := NewHandler(service, logger)
	statsHandler := NewStatsHandler(statsCollector, logger)

	router := mux.NewRouter()
	router.Use(RequestLogger(logger))

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1
	v1 := router.PathPrefix("/api/v1").Subrouter()
	if limiter != nil {
		v1.Use(limiter.Middleware)
	}

	v1.HandleFunc("/shipping/address-type", handler.AddressType).Methods("GET")
	v1.HandleFunc("/shipping/{kind}", handler.SearchLocations).Methods("GET")

	v1.HandleFunc("/checkout/{cartID}", handler.OpenCheckout).Methods("POST")
	v1.HandleFunc("/checkout/{cartID}", handler.GetCheckout).Methods("GET")
	v1.HandleFunc("/checkout/{cartID}", handler.DiscardCheckout).Methods("DELETE")
	v1.HandleFunc("/checkout/{cartID}/search/{field}", handler.TypeQuery).Methods("PUT")
	v1.HandleFunc("/checkout/{cartID}/select/{field}", handler.SelectResult).Methods("PUT")
	v1.HandleFunc("/checkout/{cartID}/fields/{name}", handler.SetField).Methods("PUT")
	v1.HandleFunc("/checkout/{cartID}/submit", handler.SubmitCheckout).Methods("POST")

	v1.HandleFunc("/stats", statsHandler.GetStats).Methods("GET")

	return router
}
