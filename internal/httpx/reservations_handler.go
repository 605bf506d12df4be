package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ariefcatur/go-bookstore-reservations/internal/reservations"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	msgCreated       = "Reservation created successfully, email notification sent"
	msgMissingParams = "Missing required parameters"
)

type ReservationsHandler struct {
	Service *reservations.Service
	Timeout time.Duration
	Log     *zap.Logger
}

type CreateReservationReq struct {
	Bookstore string `json:"bookstore"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Customer  string `json:"customer"`
}

// SlotResp is one grid entry on the wire. IsReservation is true when the
// slot is still open.
type SlotResp struct {
	Time          string `json:"time"`
	IsReservation bool   `json:"isReservation"`
}

func (h *ReservationsHandler) Register(r chi.Router) {
	r.Get("/reservations", h.listSlots)
	r.Post("/reservations", h.createReservation)
}

func (h *ReservationsHandler) logger() *zap.Logger {
	if h.Log == nil {
		return zap.NewNop()
	}
	return h.Log
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *ReservationsHandler) context(r *http.Request) (context.Context, context.CancelFunc) {
	if h.Timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.Timeout)
}

func (h *ReservationsHandler) listSlots(w http.ResponseWriter, r *http.Request) {
	bookstore := r.URL.Query().Get("bookstore")
	date := r.URL.Query().Get("date")
	if bookstore == "" || date == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgMissingParams})
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	slots, err := h.Service.ListSlots(ctx, bookstore, date)
	if err != nil {
		h.writeError(w, err)
		return
	}

	out := make([]SlotResp, 0, len(slots))
	for _, s := range slots {
		out = append(out, SlotResp{Time: s.Time, IsReservation: s.IsAvailable})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ReservationsHandler) createReservation(w http.ResponseWriter, r *http.Request) {
	var req CreateReservationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	_, err := h.Service.Create(ctx, reservations.CreateInput{
		Bookstore: req.Bookstore,
		Date:      req.Date,
		Time:      req.Time,
		Customer:  req.Customer,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": msgCreated})
}

// writeError maps error kinds onto status codes. Backend messages are passed
// through as-is. A reservation that was stored before a lookup or dispatch
// failure is still reported as a 500.
func (h *ReservationsHandler) writeError(w http.ResponseWriter, err error) {
	kind := reservations.KindOf(err)
	code := http.StatusInternalServerError
	switch kind {
	case reservations.KindInput:
		code = http.StatusBadRequest
	case reservations.KindConflict:
		code = http.StatusConflict
	}
	if code == http.StatusInternalServerError {
		h.logger().Error("request failed", zap.Stringer("kind", kind), zap.Error(err))
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
