package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/markap/api-backoffice/internal/agent"
	"github.com/markap/api-backoffice/internal/apperrors"
	"github.com/markap/api-backoffice/internal/application"
	"github.com/markap/api-backoffice/internal/auth"
	"github.com/markap/api-backoffice/internal/client"
	"github.com/markap/api-backoffice/internal/config"
	"github.com/markap/api-backoffice/internal/notification"
	"github.com/markap/api-backoffice/internal/property"
	"github.com/markap/api-backoffice/internal/rental"
	"github.com/markap/api-backoffice/internal/report"
	"github.com/markap/api-backoffice/internal/role"
	"github.com/markap/api-backoffice/internal/user"
	"github.com/markap/api-backoffice/internal/utils/db"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("configuración inválida")
	}

	if cfg.Env == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetLevel(logrus.DebugLevel)
	}

	auth.SetSecret(cfg.JWTSecret)

	database, err := db.ConnectDatabase(cfg.DBPort, cfg.DBHost, cfg.DBName, cfg.DBUser, cfg.DBPassword)
	if err != nil {
		logrus.WithError(err).Fatal("error al conectar a la base de datos")
	}

	if err := migrate(database); err != nil {
		logrus.WithError(err).Fatal("error en las migraciones")
	}
	if err := seed(database); err != nil {
		logrus.WithError(err).Fatal("error al sembrar datos iniciales")
	}

	// Gateway y servicio de notificaciones
	gateway := notification.NewGateway(cfg.FrontendURL)
	notificationService := notification.NewService(database, gateway)

	// Handlers; el de propiedades necesita contar alquileres vigentes
	rentalHandler := rental.NewHandler(database, notificationService, cfg.UploadDir)
	roleHandler := role.NewHandler(database)
	applicationHandler := application.NewHandler(database, roleHandler.Repository)
	userHandler := user.NewHandler(database)
	clientHandler := client.NewHandler(database)
	agentHandler := agent.NewHandler(database)
	propertyHandler := property.NewHandler(database, rentalHandler.Repository)
	notificationHandler := notification.NewHandler(database)
	reportHandler := report.NewHandler(database)

	r := mux.NewRouter()

	// Rutas públicas
	r.HandleFunc("/auth/login", userHandler.Login).Methods("POST")
	r.HandleFunc("/auth/register", userHandler.Register).Methods("POST")
	r.HandleFunc("/auth/forgot-password", userHandler.ForgotPassword).Methods("POST")
	r.HandleFunc("/auth/reset-password", userHandler.ResetPassword).Methods("POST")

	// El WebSocket autentica por token en la query string
	r.HandleFunc("/ws/notifications", gateway.HandleWS)

	// Rutas protegidas
	api := r.NewRoute().Subrouter()
	api.Use(auth.Middleware)

	api.HandleFunc("/auth/profile", userHandler.Profile).Methods("GET")

	api.HandleFunc("/users", userHandler.List).Methods("GET")
	api.HandleFunc("/users/{id}/toggle-active", userHandler.ToggleActive).Methods("PATCH")
	api.HandleFunc("/users/{id}", userHandler.Update).Methods("PATCH")

	// "mine" se registra antes que la ruta con {slug}
	api.HandleFunc("/applications/mine", applicationHandler.ListMine).Methods("GET")
	api.HandleFunc("/applications", applicationHandler.List).Methods("GET")
	api.HandleFunc("/applications", applicationHandler.Create).Methods("POST")
	api.HandleFunc("/applications/{slug}", applicationHandler.GetBySlug).Methods("GET")
	api.HandleFunc("/applications/{id}", applicationHandler.Update).Methods("PATCH")

	api.HandleFunc("/roles", roleHandler.List).Methods("GET")
	api.HandleFunc("/roles", roleHandler.Create).Methods("POST")
	api.HandleFunc("/roles/{id}", roleHandler.Update).Methods("PATCH")
	api.HandleFunc("/roles/{id}/users", roleHandler.AssignUser).Methods("POST")
	api.HandleFunc("/roles/{id}/users/{userId}", roleHandler.RevokeUser).Methods("DELETE")
	api.HandleFunc("/roles/{id}/applications", roleHandler.ListApplicationGrants).Methods("GET")
	api.HandleFunc("/roles/{id}/applications", roleHandler.GrantApplication).Methods("POST")

	api.HandleFunc("/clients", clientHandler.List).Methods("GET")
	api.HandleFunc("/clients", clientHandler.Create).Methods("POST")
	api.HandleFunc("/clients/{id}", clientHandler.GetByID).Methods("GET")
	api.HandleFunc("/clients/{id}", clientHandler.Update).Methods("PATCH")

	api.HandleFunc("/agents", agentHandler.List).Methods("GET")
	api.HandleFunc("/agents", agentHandler.Create).Methods("POST")
	api.HandleFunc("/agents/{id}", agentHandler.GetByID).Methods("GET")
	api.HandleFunc("/agents/{id}", agentHandler.Update).Methods("PATCH")

	api.HandleFunc("/properties", propertyHandler.List).Methods("GET")
	api.HandleFunc("/properties", propertyHandler.Create).Methods("POST")
	api.HandleFunc("/properties/stats", propertyHandler.Stats).Methods("GET")
	api.HandleFunc("/properties/{id}", propertyHandler.GetByID).Methods("GET")
	api.HandleFunc("/properties/{id}", propertyHandler.Update).Methods("PATCH")
	api.HandleFunc("/properties/{id}/listing-status", propertyHandler.UpdateListingStatus).Methods("PATCH")

	api.HandleFunc("/rentals", rentalHandler.List).Methods("GET")
	api.HandleFunc("/rentals", rentalHandler.Create).Methods("POST")
	api.HandleFunc("/rentals/stats", rentalHandler.Stats).Methods("GET")
	api.HandleFunc("/rentals/{id}", rentalHandler.GetByID).Methods("GET")
	api.HandleFunc("/rentals/{id}", rentalHandler.Update).Methods("PATCH")
	api.HandleFunc("/rentals/{id}/financial-config", rentalHandler.GetFinancialConfig).Methods("GET")
	api.HandleFunc("/rentals/{id}/financial-config", rentalHandler.UpsertFinancialConfig).Methods("PUT")
	api.HandleFunc("/rentals/{id}/financial-breakdown", rentalHandler.GetFinancialBreakdown).Methods("GET")

	api.HandleFunc("/notifications", notificationHandler.List).Methods("GET")
	api.HandleFunc("/notifications/unread-count", notificationHandler.UnreadCount).Methods("GET")
	api.HandleFunc("/notifications/{id}/read", notificationHandler.MarkAsRead).Methods("PATCH")

	api.HandleFunc("/reports/summary", reportHandler.Summary).Methods("GET")
	api.HandleFunc("/reports/rentals-by-month", reportHandler.RentalsByMonth).Methods("GET")
	api.HandleFunc("/reports/expiring-contracts", reportHandler.ExpiringContracts).Methods("GET")
	api.HandleFunc("/reports/vacant-properties", reportHandler.VacantProperties).Methods("GET")

	handler := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(r)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logrus.WithField("addr", addr).Info("servidor iniciado")
	logrus.Fatal(http.ListenAndServe(addr, handler))
}

func migrate(database *gorm.DB) error {
	for _, fn := range []func(*gorm.DB) error{
		application.Migrate,
		user.Migrate,
		role.Migrate,
		client.Migrate,
		agent.Migrate,
		property.Migrate,
		rental.Migrate,
		notification.Migrate,
	} {
		if err := fn(database); err != nil {
			return err
		}
	}
	return nil
}

// seed garantiza la aplicación por defecto y los roles base.
func seed(database *gorm.DB) error {
	apps := application.NewRepository(database)
	if _, err := apps.FindBySlug("alquileres"); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		if err := apps.Create(&application.Application{
			Name:        "MARKAP Alquileres Inmobiliarios",
			Slug:        "alquileres",
			Description: "Gestión de propiedades, clientes y contratos de alquiler",
			Icon:        "building",
			Color:       "#1E40AF",
			IsActive:    true,
			Order:       1,
		}); err != nil {
			return err
		}
	}

	roles := role.NewRepository(database)
	for _, base := range []role.Role{
		{Code: "ADMIN", Name: "Administrador", IsActive: true},
		{Code: "MANAGER", Name: "Gestor", IsActive: true},
		{Code: "VIEWER", Name: "Consulta", IsActive: true},
	} {
		if _, err := roles.FindByCode(base.Code); err != nil {
			if !errors.Is(err, apperrors.ErrNotFound) {
				return err
			}
			if err := roles.Create(&base); err != nil {
				return err
			}
		}
	}
	return nil
}
