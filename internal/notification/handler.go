package notification

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/markap/api-backoffice/internal/apperrors"
	"github.com/markap/api-backoffice/internal/auth"
	"gorm.io/gorm"
)

// Handler encapsula DB y repository.
type Handler struct {
	DB         *gorm.DB
	Repository *Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db, Repository: NewRepository(db)}
}

// GET /notifications
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	result, err := h.Repository.FindManyByUser(ListFilters{
		UserID:     auth.UserIDFromContext(r.Context()),
		UnreadOnly: r.URL.Query().Get("unreadOnly") == "true",
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// GET /notifications/unread-count
func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.Repository.CountUnreadByUser(auth.UserIDFromContext(r.Context()))
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int64{"count": count})
}

// PATCH /notifications/{id}/read
func (h *Handler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.Repository.MarkAsRead(mux.Vars(r)["id"], auth.UserIDFromContext(r.Context()))
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(n)
}
