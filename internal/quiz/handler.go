package quiz

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/akt-prep/backend/internal/models"
	"github.com/gorilla/mux"
)

type Handler struct {
	sessions *Manager
}

func NewHandler(sessions *Manager) *Handler {
	return &Handler{sessions: sessions}
}

// RegisterRoutes registers the practice endpoints on the protected subrouter.
func (h *Handler) RegisterRoutes(protected *mux.Router) {
	protected.HandleFunc("/practice/filters", h.GetFilters).Methods("GET")
	protected.HandleFunc("/practice/filters", h.SetFilters).Methods("PUT")
	protected.HandleFunc("/practice/current", h.GetCurrent).Methods("GET")
	protected.HandleFunc("/practice/submit", h.Submit).Methods("POST")
	protected.HandleFunc("/practice/next", h.Next).Methods("POST")
	protected.HandleFunc("/practice/previous", h.Previous).Methods("POST")
	protected.HandleFunc("/practice/progress", h.GetProgress).Methods("GET")
}

// getUserID extracts the authenticated user ID from the request context.
func getUserID(r *http.Request) (string, bool) {
	uid, ok := r.Context().Value("user_id").(string)
	return uid, ok && uid != ""
}

func (h *Handler) GetFilters(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	writeJSON(w, http.StatusOK, h.sessions.Get(userID).FilterOptions())
}

func (h *Handler) SetFilters(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.FilterSelection
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	// An omitted criterion means no filter.
	if req.Domain == "" {
		req.Domain = models.FilterAll
	}
	if req.SubSpecialty == "" {
		req.SubSpecialty = models.FilterAll
	}

	session := h.sessions.Get(userID)
	if err := session.ApplyFilter(req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	item, total := session.Current()
	writeJSON(w, http.StatusOK, models.CurrentItemResponse{Item: item, Total: total})
}

func (h *Handler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	item, total := h.sessions.Get(userID).Current()
	writeJSON(w, http.StatusOK, models.CurrentItemResponse{Item: item, Total: total})
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	req.Choice = strings.ToUpper(strings.TrimSpace(req.Choice))
	if req.Choice == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "choice is required"})
		return
	}
	if !models.ValidOptionKeys[req.Choice] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "choice must be A, B, C, D, or E"})
		return
	}

	resp, err := h.sessions.Get(userID).Submit(req.Choice)
	if err != nil {
		if errors.Is(err, ErrNoItems) || errors.Is(err, ErrInvalidChoice) {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to submit answer"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	item, total := h.sessions.Get(userID).Next()
	writeJSON(w, http.StatusOK, models.CurrentItemResponse{Item: item, Total: total})
}

func (h *Handler) Previous(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	item, total := h.sessions.Get(userID).Previous()
	writeJSON(w, http.StatusOK, models.CurrentItemResponse{Item: item, Total: total})
}

func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	writeJSON(w, http.StatusOK, h.sessions.Get(userID).Progress())
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
