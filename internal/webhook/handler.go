package webhook

import (
	"encoding/json"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v81/webhook"
)

// Provider events are capped well below this; anything bigger is garbage.
const maxBodyBytes = 65536

// Handler is the webhook entry point. Signature verification is the only
// hard boundary: once the event is authenticated, every internal failure is
// logged and the delivery is still acknowledged, because the provider retries
// non-2xx responses and a retry storm helps nobody.
type Handler struct {
	secret     string
	dispatcher *Dispatcher
}

func NewHandler(secret string, dispatcher *Dispatcher) *Handler {
	return &Handler{secret: secret, dispatcher: dispatcher}
}

func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	// Version skew between the event payload and the SDK pin is tolerated;
	// only the signature is a hard boundary.
	event, err := webhook.ConstructEventWithOptions(body, r.Header.Get("Stripe-Signature"), h.secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		log.WithError(err).Warn("webhook signature verification failed")
		writeError(w, http.StatusBadRequest, "invalid signature")
		return
	}

	h.dispatcher.Dispatch(r.Context(), event)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"received": true})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
