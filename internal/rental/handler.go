package rental

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/markap/api-backoffice/internal/apperrors"
	"github.com/markap/api-backoffice/internal/application"
	"github.com/markap/api-backoffice/internal/notification"
	"github.com/markap/api-backoffice/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const maxUploadSize = 10 << 20 // 10 MB por archivo

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// Handler encapsula DB, repositories, el servicio de notificaciones y
// el directorio de subida de documentos.
type Handler struct {
	DB            *gorm.DB
	Repository    *Repository
	Apps          *application.Repository
	Notifications *notification.Service
	UploadDir     string
}

func NewHandler(db *gorm.DB, notifications *notification.Service, uploadDir string) *Handler {
	return &Handler{
		DB:            db,
		Repository:    NewRepository(db),
		Apps:          application.NewRepository(db),
		Notifications: notifications,
		UploadDir:     uploadDir,
	}
}

// GET /rentals
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("applicationSlug")
	if slug == "" {
		slug = "alquileres"
	}
	app, err := h.Apps.FindBySlug(slug)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	page, limit := utils.ParsePagination(r)

	result, err := h.Repository.FindMany(ListFilters{
		ApplicationID: app.ID,
		Page:          page,
		Limit:         limit,
		Search:        strings.TrimSpace(r.URL.Query().Get("search")),
		Status:        r.URL.Query().Get("status"),
	})
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// GET /rentals/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("applicationSlug")
	if slug == "" {
		slug = "alquileres"
	}
	app, err := h.Apps.FindBySlug(slug)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	stats, err := h.Repository.GetStats(app.ID)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// GET /rentals/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	rent, err := h.Repository.FindByID(mux.Vars(r)["id"])
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toDetail(rent))
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// POST /rentals (multipart/form-data)
// Campos: applicationSlug, propertyId, tenantId, startDate, endDate,
// currency, monthlyAmount, securityDeposit, paymentDueDay, notes;
// archivos opcionales contractFile y deliveryActFile.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}

	slug := r.FormValue("applicationSlug")
	if slug == "" {
		slug = "alquileres"
	}
	currency := r.FormValue("currency")
	if currency == "" {
		currency = CurrencyPEN
	}

	// Todas las violaciones se juntan y se devuelven de una
	var errs []string

	propertyID := r.FormValue("propertyId")
	if propertyID == "" {
		errs = append(errs, "propertyId es requerido")
	}
	tenantID := r.FormValue("tenantId")
	if tenantID == "" {
		errs = append(errs, "tenantId es requerido")
	}

	var startDate, endDate time.Time
	var err error
	if startDate, err = parseDate(r.FormValue("startDate")); err != nil {
		errs = append(errs, "startDate debe tener formato YYYY-MM-DD")
	}
	if endDate, err = parseDate(r.FormValue("endDate")); err != nil {
		errs = append(errs, "endDate debe tener formato YYYY-MM-DD")
	}
	if !startDate.IsZero() && !endDate.IsZero() && !startDate.Before(endDate) {
		errs = append(errs, "startDate debe ser anterior a endDate")
	}

	if currency != CurrencyPEN && currency != CurrencyUSD {
		errs = append(errs, "currency debe ser PEN o USD")
	}

	monthlyAmount, err := strconv.ParseFloat(r.FormValue("monthlyAmount"), 64)
	if err != nil || monthlyAmount <= 0 {
		errs = append(errs, "monthlyAmount debe ser mayor a 0")
	}

	var securityDeposit *float64
	if v := r.FormValue("securityDeposit"); v != "" {
		d, err := strconv.ParseFloat(v, 64)
		if err != nil || d < 0 {
			errs = append(errs, "securityDeposit debe ser mayor o igual a 0")
		} else {
			securityDeposit = &d
		}
	}

	paymentDueDay, err := strconv.Atoi(r.FormValue("paymentDueDay"))
	if err != nil || paymentDueDay < 1 || paymentDueDay > 28 {
		errs = append(errs, "paymentDueDay debe estar entre 1 y 28")
	}

	if len(errs) > 0 {
		apperrors.WriteError(w, apperrors.Validation(errs))
		return
	}

	app, err := h.Apps.FindBySlug(slug)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	rent := Rental{
		ApplicationID:   app.ID,
		PropertyID:      propertyID,
		TenantID:        tenantID,
		StartDate:       startDate,
		EndDate:         endDate,
		Currency:        currency,
		MonthlyAmount:   monthlyAmount,
		SecurityDeposit: securityDeposit,
		PaymentDueDay:   paymentDueDay,
		Status:          StatusActive,
		Notes:           strings.TrimSpace(r.FormValue("notes")),
	}
	if err := h.Repository.Create(&rent); err != nil {
		apperrors.WriteError(w, err)
		return
	}

	// Adjuntos y notificación son mejor esfuerzo: su falla nunca
	// deshace ni falla la creación del contrato.
	h.saveAttachment(r, rent.ID, "contractFile", AttachmentContract)
	h.saveAttachment(r, rent.ID, "deliveryActFile", AttachmentDeliveryAct)
	h.notifyCreated(rent.ID, slug)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(rent)
}

func (h *Handler) saveAttachment(r *http.Request, rentalID, field, attachmentType string) {
	file, header, err := r.FormFile(field)
	if err != nil {
		// Sin archivo en ese campo
		return
	}
	defer file.Close()

	if err := h.storeAttachment(file, header, rentalID, attachmentType); err != nil {
		logrus.WithError(err).WithField("rentalId", rentalID).Warn("no se pudo guardar el adjunto")
	}
}

func (h *Handler) storeAttachment(file multipart.File, header *multipart.FileHeader, rentalID, attachmentType string) error {
	dir := filepath.Join(h.UploadDir, "rentals", rentalID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	original := header.Filename
	if original == "" {
		original = strings.ToLower(attachmentType)
	}
	safeName := strconv.FormatInt(time.Now().UnixMilli(), 10) + "_" + unsafeFileChars.ReplaceAllString(original, "_")

	dst, err := os.Create(filepath.Join(dir, safeName))
	if err != nil {
		return err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		return err
	}

	return h.Repository.CreateAttachment(&RentalAttachment{
		RentalID:         rentalID,
		Type:             attachmentType,
		FilePath:         filepath.Join("rentals", rentalID, safeName),
		OriginalFileName: original,
	})
}

func (h *Handler) notifyCreated(rentalID, slug string) {
	detail, err := h.Repository.FindByID(rentalID)
	if err != nil {
		logrus.WithError(err).Warn("no se pudo armar la notificación de alquiler creado")
		return
	}
	if err := h.Notifications.NotifyRentalCreated(
		rentalID, slug, detail.Tenant.FullName, detail.Property.AddressLine,
	); err != nil {
		logrus.WithError(err).Warn("fan-out de notificaciones fallido")
	}
}

type updateRentalRequest struct {
	StartDate       *string  `json:"startDate"`
	EndDate         *string  `json:"endDate"`
	Currency        *string  `json:"currency"`
	MonthlyAmount   *float64 `json:"monthlyAmount"`
	SecurityDeposit *float64 `json:"securityDeposit"`
	PaymentDueDay   *int     `json:"paymentDueDay"`
	Notes           *string  `json:"notes"`
	Status          *string  `json:"status"`
}

// PATCH /rentals/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	rent, err := h.Repository.FindByID(mux.Vars(r)["id"])
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	var req updateRentalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}

	var errs []string

	startDate, endDate := rent.StartDate, rent.EndDate
	if req.StartDate != nil {
		if startDate, err = parseDate(*req.StartDate); err != nil {
			errs = append(errs, "startDate debe tener formato YYYY-MM-DD")
		}
	}
	if req.EndDate != nil {
		if endDate, err = parseDate(*req.EndDate); err != nil {
			errs = append(errs, "endDate debe tener formato YYYY-MM-DD")
		}
	}
	// Se revalida el orden ante cualquier cambio de fecha
	if (req.StartDate != nil || req.EndDate != nil) && !startDate.Before(endDate) {
		errs = append(errs, "startDate debe ser anterior a endDate")
	}
	if req.Currency != nil && *req.Currency != CurrencyPEN && *req.Currency != CurrencyUSD {
		errs = append(errs, "currency debe ser PEN o USD")
	}
	if req.MonthlyAmount != nil && *req.MonthlyAmount <= 0 {
		errs = append(errs, "monthlyAmount debe ser mayor a 0")
	}
	if req.SecurityDeposit != nil && *req.SecurityDeposit < 0 {
		errs = append(errs, "securityDeposit debe ser mayor o igual a 0")
	}
	if req.PaymentDueDay != nil && (*req.PaymentDueDay < 1 || *req.PaymentDueDay > 28) {
		errs = append(errs, "paymentDueDay debe estar entre 1 y 28")
	}
	if req.Status != nil {
		switch *req.Status {
		case StatusActive, StatusExpired, StatusCancelled:
		default:
			errs = append(errs, "status debe ser ACTIVE, EXPIRED o CANCELLED")
		}
	}
	if len(errs) > 0 {
		apperrors.WriteError(w, apperrors.Validation(errs))
		return
	}

	rent.StartDate, rent.EndDate = startDate, endDate
	if req.Currency != nil {
		rent.Currency = *req.Currency
	}
	if req.MonthlyAmount != nil {
		rent.MonthlyAmount = *req.MonthlyAmount
	}
	if req.SecurityDeposit != nil {
		rent.SecurityDeposit = req.SecurityDeposit
	}
	if req.PaymentDueDay != nil {
		rent.PaymentDueDay = *req.PaymentDueDay
	}
	if req.Notes != nil {
		rent.Notes = strings.TrimSpace(*req.Notes)
	}
	if req.Status != nil {
		rent.Status = *req.Status
	}

	if err := h.Repository.Update(rent); err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rent)
}

// GET /rentals/{id}/financial-config
func (h *Handler) GetFinancialConfig(w http.ResponseWriter, r *http.Request) {
	if _, err := h.Repository.FindByID(mux.Vars(r)["id"]); err != nil {
		apperrors.WriteError(w, err)
		return
	}
	cfg, err := h.Repository.FindConfigByRentalID(mux.Vars(r)["id"])
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cfg)
}

type upsertFinancialConfigRequest struct {
	Currency *string `json:"currency"`

	ExpenseType  *ValueKind `json:"expenseType"`
	ExpenseValue *float64   `json:"expenseValue"`

	TaxType  *ValueKind `json:"taxType"`
	TaxValue *float64   `json:"taxValue"`

	ExternalAgentID    *string    `json:"externalAgentId"`
	ExternalAgentType  *ValueKind `json:"externalAgentType"`
	ExternalAgentValue *float64   `json:"externalAgentValue"`
	ExternalAgentName  *string    `json:"externalAgentName"`

	InternalAgentID    *string    `json:"internalAgentId"`
	InternalAgentType  *ValueKind `json:"internalAgentType"`
	InternalAgentValue *float64   `json:"internalAgentValue"`
}

func validKind(k *ValueKind) bool {
	return k == nil || *k == KindPercent || *k == KindFixed
}

// PUT /rentals/{id}/financial-config
func (h *Handler) UpsertFinancialConfig(w http.ResponseWriter, r *http.Request) {
	rent, err := h.Repository.FindByID(mux.Vars(r)["id"])
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	var req upsertFinancialConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}

	// Valores negativos se rechazan; PERCENT no se acota a 100 a
	// propósito: el producto permite deducciones mayores a la base.
	var errs []string
	if !validKind(req.ExpenseType) || !validKind(req.TaxType) ||
		!validKind(req.ExternalAgentType) || !validKind(req.InternalAgentType) {
		errs = append(errs, "los tipos deben ser PERCENT o FIXED")
	}
	if req.ExpenseValue != nil && *req.ExpenseValue < 0 {
		errs = append(errs, "expenseValue debe ser mayor o igual a 0")
	}
	if req.TaxValue != nil && *req.TaxValue < 0 {
		errs = append(errs, "taxValue debe ser mayor o igual a 0")
	}
	if req.ExternalAgentValue != nil && *req.ExternalAgentValue < 0 {
		errs = append(errs, "externalAgentValue debe ser mayor o igual a 0")
	}
	if req.InternalAgentValue != nil && *req.InternalAgentValue < 0 {
		errs = append(errs, "internalAgentValue debe ser mayor o igual a 0")
	}
	if req.Currency != nil && *req.Currency != CurrencyPEN && *req.Currency != CurrencyUSD {
		errs = append(errs, "currency debe ser PEN o USD")
	}
	if len(errs) > 0 {
		apperrors.WriteError(w, apperrors.Validation(errs))
		return
	}

	cfg, err := h.Repository.UpsertConfig(rent.ID, FinancialConfigPatch{
		Currency:           req.Currency,
		ExpenseType:        req.ExpenseType,
		ExpenseValue:       req.ExpenseValue,
		TaxType:            req.TaxType,
		TaxValue:           req.TaxValue,
		ExternalAgentID:    req.ExternalAgentID,
		ExternalAgentType:  req.ExternalAgentType,
		ExternalAgentValue: req.ExternalAgentValue,
		ExternalAgentName:  req.ExternalAgentName,
		InternalAgentID:    req.InternalAgentID,
		InternalAgentType:  req.InternalAgentType,
		InternalAgentValue: req.InternalAgentValue,
	})
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cfg)
}

// GET /rentals/{id}/financial-breakdown
func (h *Handler) GetFinancialBreakdown(w http.ResponseWriter, r *http.Request) {
	rent, err := h.Repository.FindByID(mux.Vars(r)["id"])
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	b, err := h.Repository.GetBreakdown(rent.ID, rent.MonthlyAmount, rent.Currency)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(b)
}
