package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/app"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/app/commands"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/domain"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/ports"
)

const maxBodyBytes = 1 << 20

const roleAdmin = "admin"

// Handler exposes HTTP endpoints for order operations.
type Handler struct {
	service  *app.Service
	verifier ports.SignatureVerifier
	logger   *slog.Logger
}

// NewHandler constructs a Handler. The verifier authenticates gateway
// webhook deliveries before their payload is parsed.
func NewHandler(service *app.Service, verifier ports.SignatureVerifier, logger *slog.Logger) *Handler {
	return &Handler{service: service, verifier: verifier, logger: logger}
}

// Register binds the order handlers to the provided ServeMux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/orders", h.handleOrders)
	mux.HandleFunc("/v1/orders/", h.handleOrderByID)
	mux.HandleFunc("/v1/payments/confirm", h.confirmPayment)
	mux.HandleFunc("/v1/shipping/serviceability", h.checkServiceability)
	mux.HandleFunc("/webhooks/razorpay", h.gatewayWebhook)
}

func (h *Handler) handleOrders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.placeOrder(w, r)
	case http.MethodGet:
		h.listOrders(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handleOrderByID(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/orders/"), "/")
	if trimmed == "" {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	parts := strings.Split(trimmed, "/")
	id := parts[0]

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.getOrder(w, r, id)
		return
	}

	if len(parts) != 2 || r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	switch parts[1] {
	case "cancel":
		h.cancelOrder(w, r, id)
	case "status":
		h.transitionStatus(w, r, id)
	case "payment-intent":
		h.createPaymentIntent(w, r, id)
	case "refund":
		h.processRefund(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "unknown order action")
	}
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := requesterID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "X-User-ID header required")
		return
	}

	idemKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idemKey != "" {
		stored, err := h.service.GetIdempotentResponse(ctx, idemKey)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if stored != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(stored.StatusCode)
			_, _ = w.Write(stored.Body)
			return
		}
	}

	var payload checkoutRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	order, err := h.service.PlaceOrder(ctx, payload.toInput(userID))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	body, err := json.Marshal(map[string]any{"order": order})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if idemKey != "" {
		stored := ports.StoredResponse{
			StatusCode: http.StatusCreated,
			Body:       body,
			OrderID:    order.ID,
		}
		if err := h.service.SaveIdempotentResponse(ctx, idemKey, stored); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(body)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request, id string) {
	requester := requesterID(r)
	if isAdmin(r) {
		// Admins bypass the ownership check.
		requester = ""
	}

	order, err := h.service.GetOrder(r.Context(), id, requester)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	filter := ports.ListFilter{}

	if isAdmin(r) {
		filter.UserID = r.URL.Query().Get("user_id")
	} else {
		userID := requesterID(r)
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "X-User-ID header required")
			return
		}
		filter.UserID = userID
	}

	if statusParam := r.URL.Query().Get("status"); statusParam != "" {
		status := domain.OrderStatus(statusParam)
		filter.Status = &status
	}
	if pageParam := r.URL.Query().Get("page"); pageParam != "" {
		if page, err := strconv.Atoi(pageParam); err == nil {
			filter.Page = page
		}
	}
	if pageSizeParam := r.URL.Query().Get("page_size"); pageSizeParam != "" {
		if pageSize, err := strconv.Atoi(pageSizeParam); err == nil {
			filter.PageSize = pageSize
		}
	}

	orders, err := h.service.ListOrders(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request, id string) {
	var payload struct {
		Reason string `json:"reason"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&payload)
	}

	var (
		order *domain.Order
		err   error
	)
	if isAdmin(r) {
		order, err = h.service.TransitionStatus(r.Context(), id, domain.StatusCancelled, requesterID(r), payload.Reason)
	} else {
		requester := requesterID(r)
		if requester == "" {
			writeError(w, http.StatusUnauthorized, "X-User-ID header required")
			return
		}
		order, err = h.service.CancelOrder(r.Context(), id, requester, payload.Reason)
	}
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *Handler) transitionStatus(w http.ResponseWriter, r *http.Request, id string) {
	if !isAdmin(r) {
		writeError(w, http.StatusForbidden, "admin role required")
		return
	}

	var payload transitionStatusRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	order, err := h.service.TransitionStatus(r.Context(), id, domain.OrderStatus(payload.Status), requesterID(r), payload.Notes)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *Handler) createPaymentIntent(w http.ResponseWriter, r *http.Request, id string) {
	requester := requesterID(r)
	if requester == "" {
		writeError(w, http.StatusUnauthorized, "X-User-ID header required")
		return
	}
	if isAdmin(r) {
		requester = ""
	}

	intent, err := h.service.CreatePaymentIntent(r.Context(), id, requester)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"intent": intent})
}

func (h *Handler) processRefund(w http.ResponseWriter, r *http.Request, id string) {
	if !isAdmin(r) {
		writeError(w, http.StatusForbidden, "admin role required")
		return
	}

	var payload refundRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	var amount *decimal.Decimal
	if payload.Amount != nil {
		amount = payload.Amount
	}

	refund, err := h.service.ProcessRefund(r.Context(), id, amount, payload.Reason, requesterID(r))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"refund": refund})
}

func (h *Handler) confirmPayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	requester := requesterID(r)
	if requester == "" {
		writeError(w, http.StatusUnauthorized, "X-User-ID header required")
		return
	}
	if isAdmin(r) {
		requester = ""
	}

	var payload confirmPaymentRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	order, err := h.service.ConfirmPayment(r.Context(), payload.toInput(requester))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

// gatewayWebhook receives payment gateway events. The signature covers
// the raw body, so verification happens before any JSON parsing. A
// delivery that fails mid-processing is still acknowledged with 200 so
// the gateway does not retry an event we cannot apply.
func (h *Handler) gatewayWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	signature := r.Header.Get("X-Razorpay-Signature")
	if !h.verifier.VerifyWebhook(body, signature) {
		writeError(w, http.StatusBadRequest, "invalid webhook signature")
		return
	}

	var event commands.GatewayEvent
	if err := json.Unmarshal(body, &event); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	if err := h.service.HandleGatewayEvent(r.Context(), event); err != nil {
		h.logger.WarnContext(r.Context(), "gateway event not applied",
			slog.String("event", event.Event),
			slog.String("error", err.Error()))
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) checkServiceability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	query := ports.ServiceabilityQuery{
		OriginPostcode: r.URL.Query().Get("pickup_postcode"),
		DestPostcode:   r.URL.Query().Get("delivery_postcode"),
	}
	if query.DestPostcode == "" {
		writeError(w, http.StatusBadRequest, "delivery_postcode is required")
		return
	}
	if codParam := r.URL.Query().Get("cod"); codParam != "" {
		query.CashOnDelivery = codParam == "1" || strings.EqualFold(codParam, "true")
	}
	if weightParam := r.URL.Query().Get("weight"); weightParam != "" {
		if weight, err := strconv.ParseFloat(weightParam, 64); err == nil {
			query.WeightKG = weight
		}
	}

	result, err := h.service.CheckServiceability(r.Context(), query)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"serviceability": result})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		writeError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, ports.ErrForbidden):
		writeError(w, http.StatusForbidden, "not allowed")
	case errors.Is(err, ports.ErrValidation), errors.Is(err, ports.ErrInvalidSignature):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ports.ErrAlreadyPaid), errors.Is(err, ports.ErrIntentExists), errors.Is(err, ports.ErrInvalidState):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ports.ErrPaymentRejected):
		writeError(w, http.StatusPaymentRequired, err.Error())
	case ports.IsUpstream(err):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func requesterID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-User-ID"))
}

func isAdmin(r *http.Request) bool {
	return strings.EqualFold(strings.TrimSpace(r.Header.Get("X-User-Role")), roleAdmin)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
