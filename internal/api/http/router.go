package http

import (
	"net/http"

	"toolshare-backend/internal/security"
	"toolshare-backend/internal/service"
	"toolshare-backend/internal/storage"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig wires the services behind the HTTP API.
type RouterConfig struct {
	BorrowRequests service.BorrowRequestService
	Tools          service.ToolService
	Icons          service.IconService

	// MockStorage is set only when icons live on local disk.
	MockStorage *storage.MockStorageService

	TokenManager    security.TokenManager
	AllowUserHeader bool

	// MetricsPath mounts the Prometheus handler when non-empty.
	MetricsPath string
}

// NewRouter builds the API router. Every route is named so the auth middleware
// can look up its security level.
func NewRouter(cfg RouterConfig) *mux.Router {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	auth := NewAuthMiddleware(cfg.TokenManager, cfg.AllowUserHeader)
	router.Use(requestIDMiddleware, recoverMiddleware, accessLogMiddleware, auth.Middleware)

	if cfg.MetricsPath != "" {
		router.Handle(cfg.MetricsPath, promhttp.Handler()).Methods(http.MethodGet).Name("Metrics")
	}

	if cfg.MockStorage != nil {
		RegisterMockStorageRoutes(router, cfg.MockStorage)
	}

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/ping", ping).Methods(http.MethodGet).Name("Ping")

	requests := NewBorrowRequestHandler(cfg.BorrowRequests)
	api.HandleFunc("/borrow_requests", requests.CreateBorrowRequest).Methods(http.MethodPost).Name("CreateBorrowRequest")
	api.HandleFunc("/borrow_requests/owner/{owner_id:[0-9]+}", requests.ListOwnerRequests).Methods(http.MethodGet).Name("ListOwnerBorrowRequests")
	api.HandleFunc("/borrow_requests/borrower/{borrower_id:[0-9]+}", requests.ListBorrowerRequests).Methods(http.MethodGet).Name("ListBorrowerRequests")
	api.HandleFunc("/borrow_requests/{id:[0-9]+}", requests.GetBorrowRequest).Methods(http.MethodGet).Name("GetBorrowRequest")
	api.HandleFunc("/borrow_requests/{id:[0-9]+}/{action}", requests.Transition).Methods(http.MethodPatch).Name("TransitionBorrowRequest")

	tools := NewToolHandler(cfg.Tools)
	api.HandleFunc("/tools", tools.ListTools).Methods(http.MethodGet).Name("ListTools")
	api.HandleFunc("/tools", tools.CreateTool).Methods(http.MethodPost).Name("CreateTool")
	api.HandleFunc("/tools/owner/{owner_id:[0-9]+}", tools.ListToolsByOwner).Methods(http.MethodGet).Name("ListToolsByOwner")
	api.HandleFunc("/tools/{id:[0-9]+}", tools.GetTool).Methods(http.MethodGet).Name("GetTool")
	api.HandleFunc("/tools/{id:[0-9]+}", tools.UpdateTool).Methods(http.MethodPut).Name("UpdateTool")
	api.HandleFunc("/tools/{id:[0-9]+}", tools.DeleteTool).Methods(http.MethodDelete).Name("DeleteTool")
	api.HandleFunc("/tools/{id:[0-9]+}/availability", tools.SetAvailability).Methods(http.MethodPatch).Name("SetToolAvailability")

	if cfg.Icons != nil {
		icons := NewIconHandler(cfg.Icons)
		api.HandleFunc("/icons", icons.ListIcons).Methods(http.MethodGet).Name("ListIcons")
		api.HandleFunc("/icons/upload-url", icons.CreateUploadURL).Methods(http.MethodPost).Name("IconUploadURL")
		api.HandleFunc("/icons/{key:.+}", icons.GetIcon).Methods(http.MethodGet).Name("GetIcon")
	}

	return router
}

// RegisterMockStorageRoutes registers the mock storage HTTP endpoints
func RegisterMockStorageRoutes(router *mux.Router, mockStorage *storage.MockStorageService) {
	handler := NewImageUploadHandler(mockStorage)
	router.HandleFunc("/api/v1/upload/{token}", handler.HandleMockUpload).Methods(http.MethodPut).Name("MockUpload")
	router.HandleFunc("/api/v1/download/{key}", handler.HandleMockDownload).Methods(http.MethodGet).Name("MockDownload")
}

func ping(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": "pong"})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusNotFound, ErrorResponse{Detail: "route not found", Error: "not_found"})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Detail: "method not allowed", Error: "method_not_allowed"})
}
