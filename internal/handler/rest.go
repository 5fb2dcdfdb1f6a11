package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"itemsvc/internal/model"
	"itemsvc/internal/store"
)

// Version is the application version.
const Version = "1.0.0"

// RESTHandler handles REST API requests for items. It holds no state of its
// own; all item data lives in the store.
type RESTHandler struct {
	store  store.Store
	events *EventHub
	logger *zap.Logger
}

// NewRESTHandler creates a new RESTHandler instance. The event hub is
// optional; when nil, no change events are published.
func NewRESTHandler(s store.Store, events *EventHub, logger *zap.Logger) *RESTHandler {
	return &RESTHandler{
		store:  s,
		events: events,
		logger: logger,
	}
}

// RegisterRoutes registers the REST API routes with the router.
func (h *RESTHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/ready", h.ReadyCheck).Methods(http.MethodGet)
	router.HandleFunc("/items", h.ListItems).Methods(http.MethodGet)
	router.HandleFunc("/items", h.CreateItem).Methods(http.MethodPost)
	router.HandleFunc("/items/{id}", h.GetItem).Methods(http.MethodGet)
	router.HandleFunc("/items/{id}", h.UpdateItem).Methods(http.MethodPut)
	router.HandleFunc("/items/{id}", h.DeleteItem).Methods(http.MethodDelete)
}

// HealthCheck handles GET /health requests.
func (h *RESTHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: Version,
	})
}

// ReadyCheck handles GET /ready requests.
func (h *RESTHandler) ReadyCheck(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, ReadyResponse{Status: "ready"})
}

// ListItems handles GET /items requests.
func (h *RESTHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	items, err := h.store.List(ctx)
	if err != nil {
		h.logger.Error("failed to list items", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "failed to retrieve items")
		return
	}

	h.writeJSON(w, http.StatusOK, items)
}

// GetItem handles GET /items/{id} requests.
func (h *RESTHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.parseItemID(w, r)
	if !ok {
		return
	}

	item, err := h.store.Get(ctx, id)
	if err != nil {
		h.handleStoreError(w, err, "get item")
		return
	}

	h.writeJSON(w, http.StatusOK, item)
}

// CreateItem handles POST /items requests.
func (h *RESTHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	input, ok := h.decodeItemInput(w, r)
	if !ok {
		return
	}

	item, err := h.store.Create(ctx, input.Name)
	if err != nil {
		h.handleStoreError(w, err, "create item")
		return
	}

	h.publishEvent(model.EventTypeItemCreated, *item)
	h.writeJSON(w, http.StatusCreated, item)
}

// UpdateItem handles PUT /items/{id} requests.
func (h *RESTHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.parseItemID(w, r)
	if !ok {
		return
	}

	input, ok := h.decodeItemInput(w, r)
	if !ok {
		return
	}

	item, err := h.store.Update(ctx, id, input.Name)
	if err != nil {
		h.handleStoreError(w, err, "update item")
		return
	}

	h.publishEvent(model.EventTypeItemUpdated, *item)
	h.writeJSON(w, http.StatusOK, item)
}

// DeleteItem handles DELETE /items/{id} requests. The removed item is
// returned in the response body.
func (h *RESTHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.parseItemID(w, r)
	if !ok {
		return
	}

	item, err := h.store.Delete(ctx, id)
	if err != nil {
		h.handleStoreError(w, err, "delete item")
		return
	}

	h.publishEvent(model.EventTypeItemDeleted, *item)
	h.writeJSON(w, http.StatusOK, item)
}

// parseItemID extracts and parses the {id} path variable. On parse failure
// it writes a 400 response and returns ok=false.
func (h *RESTHandler) parseItemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	vars := mux.Vars(r)

	id, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		h.logger.Warn("invalid item ID", zap.String("id", vars["id"]), zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "invalid item ID")
		return 0, false
	}

	return id, true
}

// decodeItemInput decodes the request body. On failure it writes a 400
// response and returns ok=false.
func (h *RESTHandler) decodeItemInput(w http.ResponseWriter, r *http.Request) (model.ItemInput, bool) {
	var input model.ItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return model.ItemInput{}, false
	}

	return input, true
}

// publishEvent broadcasts a store change to WebSocket clients, if the
// event hub is configured.
func (h *RESTHandler) publishEvent(eventType string, item model.Item) {
	if h.events == nil {
		return
	}
	h.events.Publish(model.NewItemEvent(eventType, item))
}

// handleStoreError maps store errors to HTTP responses. Unexpected errors
// are logged with detail and returned as a generic message.
func (h *RESTHandler) handleStoreError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "item not found")
	case errors.Is(err, store.ErrEmptyName):
		h.writeError(w, http.StatusBadRequest, "item name cannot be empty")
	default:
		h.logger.Error("store operation failed", zap.String("operation", operation), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// writeJSON writes a JSON response with the given status code.
func (h *RESTHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

// writeError writes an error response with the given status code and message.
func (h *RESTHandler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, model.ErrorResponse{Message: message})
}
