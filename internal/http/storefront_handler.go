package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/money"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/storefront"
)

const actionTimeout = 5 * time.Second

type Handler struct {
	cart       *cart.Store
	dispatcher *storefront.Dispatcher
	menu       *catalog.Menu
	logger     *zap.SugaredLogger
}

func NewHandler(carts *cart.Store, dispatcher *storefront.Dispatcher, menu *catalog.Menu, logger *zap.SugaredLogger) *Handler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Handler{cart: carts, dispatcher: dispatcher, menu: menu, logger: logger}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type cartResponse struct {
	Items        []cart.Item  `json:"items"`
	Count        int          `json:"count"`
	Total        money.Amount `json:"total"`
	TotalDisplay string       `json:"totalDisplay"`
	Badge        cart.Badge   `json:"badge"`
}

func (h *Handler) cartSnapshot() cartResponse {
	items := h.cart.Items()
	if items == nil {
		items = []cart.Item{}
	}
	total := h.cart.Total()
	return cartResponse{
		Items:        items,
		Count:        len(items),
		Total:        total,
		TotalDisplay: total.String(),
		Badge:        cart.NewBadge(len(items)),
	}
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cartSnapshot())
}

type addItemRequest struct {
	Name  string        `json:"name"`
	Price *money.Amount `json:"price"`
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.Price == nil {
		writeError(w, http.StatusBadRequest, money.ErrInvalidPrice.Error()+": price is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	item, err := h.cart.Add(ctx, req.Name, *req.Price)
	if err != nil {
		h.fail(w, "add item", err)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// decodeRequest decodes the body into v. Prices are decoded strictly on every
// route: malformed, negative or out-of-range amounts are a 400 with the
// price error, anything else unreadable is "invalid json".
func decodeRequest(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	switch {
	case err == nil:
		return true
	case errors.Is(err, money.ErrInvalidPrice):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusBadRequest, "invalid json")
	}
	return false
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemId")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if _, err := h.cart.Remove(ctx, itemID); err != nil {
		h.fail(w, "remove item", err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartSnapshot())
}

func (h *Handler) RemoveAt(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "index must be an integer")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if _, err := h.cart.RemoveAt(ctx, index); err != nil {
		h.fail(w, "remove index", err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartSnapshot())
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.cart.Clear(ctx); err != nil {
		h.fail(w, "clear cart", err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartSnapshot())
}

type actionRequest struct {
	Action  storefront.Action  `json:"action"`
	Payload storefront.Payload `json:"payload"`
}

func (h *Handler) HandleAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), actionTimeout)
	defer cancel()

	change, err := h.dispatcher.HandleUserAction(ctx, req.Action, req.Payload)
	if err != nil {
		h.fail(w, string(req.Action), err)
		return
	}
	writeJSON(w, http.StatusOK, change)
}

func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	if h.menu == nil {
		writeError(w, http.StatusNotFound, "menu not loaded")
		return
	}
	writeJSON(w, http.StatusOK, h.menu)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Errorf("%s: %v", op, err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, cart.ErrIndexOutOfRange),
		errors.Is(err, catalog.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, cart.ErrInvalidItem),
		errors.Is(err, money.ErrInvalidPrice),
		errors.Is(err, storefront.ErrUnknownAction),
		errors.Is(err, storefront.ErrInvalidPayload),
		errors.Is(err, storefront.ErrEmptyCart):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{
		"error": msg,
	})
}
