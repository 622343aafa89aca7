package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/playperu/cluehunt/internal/payments"
	"github.com/playperu/cluehunt/internal/store"
)

type CreateOrderRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Motive   string  `json:"motive"`
	Phone    string  `json:"phone"`
	DNI      string  `json:"dni"`
	Email    string  `json:"email"`
}

type CreateOrderResponse struct {
	OrderID    string `json:"orderId"`
	PaymentURL string `json:"paymentUrl"`
}

func handleCreateOrder(pay *payments.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateOrderRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Amount <= 0 {
			writeError(w, http.StatusBadRequest, "amount must be positive")
			return
		}

		user := userFrom(r)
		email := req.Email
		if email == "" {
			email = user.Email
		}

		order, err := pay.CreateOrder(r.Context(), payments.OrderRequest{
			Amount:    req.Amount,
			Currency:  req.Currency,
			Motive:    req.Motive,
			Email:     email,
			Phone:     req.Phone,
			DNI:       req.DNI,
			ExtraData: payments.ExtraData{UserID: user.ID},
		})
		if err != nil {
			writeError(w, http.StatusBadGateway, "payment provider unavailable")
			return
		}

		writeJSON(w, http.StatusOK, CreateOrderResponse{
			OrderID:    order.OrderID,
			PaymentURL: order.PaymentURL,
		})
	}
}

// webhookPayload tolerates the provider's two delivery shapes: flat fields
// or the same fields nested under data.
type webhookPayload struct {
	ID        string  `json:"id"`
	OrderID   string  `json:"order_id"`
	Status    string  `json:"status"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	ExtraData struct {
		UserID string `json:"user_id"`
	} `json:"extra_data"`
	Data *webhookPayload `json:"data"`
}

func (p webhookPayload) flatten() webhookPayload {
	out := p
	if p.Data != nil {
		if out.OrderID == "" && out.ID == "" {
			out.ID = p.Data.ID
			out.OrderID = p.Data.OrderID
		}
		if out.Status == "" {
			out.Status = p.Data.Status
		}
		if out.Amount == 0 {
			out.Amount = p.Data.Amount
		}
		if out.Currency == "" {
			out.Currency = p.Data.Currency
		}
		if out.ExtraData.UserID == "" {
			out.ExtraData.UserID = p.Data.ExtraData.UserID
		}
	}
	if out.OrderID == "" {
		out.OrderID = out.ID
	}
	return out
}

func handlePaymentWebhook(logger *slog.Logger, st *store.Store, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		var raw json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			writeError(w, http.StatusBadRequest, "invalid payload")
			return
		}
		var p webhookPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			writeError(w, http.StatusBadRequest, "invalid payload")
			return
		}
		p = p.flatten()

		if p.OrderID == "" || p.Status == "" {
			writeError(w, http.StatusBadRequest, "missing order_id or status")
			return
		}
		if p.ExtraData.UserID == "" {
			logger.Error("payment webhook without user id", "order_id", p.OrderID)
			writeError(w, http.StatusBadRequest, "missing extra_data.user_id")
			return
		}

		currency := p.Currency
		if currency == "" {
			currency = "VES"
		}

		credited, err := st.RecordPayment(r.Context(), store.PaymentUpdate{
			OrderID:      p.OrderID,
			UserID:       p.ExtraData.UserID,
			Status:       p.Status,
			Amount:       p.Amount,
			Currency:     currency,
			ProviderData: string(raw),
		})
		if err != nil {
			logger.Error("recording payment failed", "order_id", p.OrderID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if credited > 0 {
			logger.Info("payment credited", "order_id", p.OrderID, "user_id", p.ExtraData.UserID, "coins", credited)
			broker.Publish(p.ExtraData.UserID, SSEEvent{
				Type:  "coins_credited",
				Coins: credited,
			})
		}

		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}
