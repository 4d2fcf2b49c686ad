package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"vertexcore-storefront/events"
	"vertexcore-storefront/models"
	"vertexcore-storefront/store"
	"vertexcore-storefront/utils"
)

// SessionHandler serves the navigation chrome: cart badge count and login
// state, plus the SSE stream that keeps the chrome in sync with cart
// mutations made from other pages.
type SessionHandler struct {
	cart  *store.CartStore
	users *store.UserStore
	bus   *events.Bus
}

func NewSessionHandler(cart *store.CartStore, users *store.UserStore, bus *events.Bus) *SessionHandler {
	return &SessionHandler{cart: cart, users: users, bus: bus}
}

func (h *SessionHandler) Status(w http.ResponseWriter, r *http.Request) {
	status := models.SessionStatus{
		ItemCount: h.cart.Count(r),
	}

	if user := h.users.Get(r); !user.IsEmpty() {
		status.LoggedIn = true
		status.DisplayName = user.DisplayName()
	}

	utils.SendJSON(w, http.StatusOK, status)
}

// Events streams bus events to the browser as server-sent events. The
// stream lives until the client disconnects.
func (h *SessionHandler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	eventsCh, cancel := h.bus.Subscribe(r.Context())
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-eventsCh:
			if !open {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				log.Printf("Warning: failed to marshal event: %v", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload)
			flusher.Flush()
		}
	}
}
