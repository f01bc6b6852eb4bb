package apperrors

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"
)

// WriteError mapea cada tipo de error de dominio a un status HTTP una sola vez.
// Los handlers no re-mapean por endpoint.
func WriteError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "validación fallida",
			"errors":  vErr.Errors,
		})
		return
	}

	var bErr *BusinessRuleError
	if errors.As(err, &bErr) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"message": bErr.Message})
		return
	}

	if errors.Is(err, ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"message": err.Error()})
		return
	}

	// Infraestructura: detalle suprimido fuera de desarrollo.
	logrus.WithError(err).Error("error inesperado")
	w.WriteHeader(http.StatusInternalServerError)
	msg := "error interno"
	if os.Getenv("APP_ENV") == "development" {
		msg = err.Error()
	}
	json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
