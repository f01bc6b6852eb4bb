package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound marca entidades inexistentes o eliminadas (soft delete).
var ErrNotFound = errors.New("no encontrado")

// NotFound arma un error de entidad no encontrada con identificador.
func NotFound(entity, id string) error {
	if id == "" {
		return fmt.Errorf("%s: %w", entity, ErrNotFound)
	}
	return fmt.Errorf("%s %q: %w", entity, id, ErrNotFound)
}

// BusinessRuleError representa una regla de negocio violada (4xx, sin reintento).
type BusinessRuleError struct {
	Message string
}

func (e *BusinessRuleError) Error() string { return e.Message }

// BusinessRule crea un error de regla de negocio con mensaje legible.
func BusinessRule(msg string) error {
	return &BusinessRuleError{Message: msg}
}

// ValidationError acumula todas las violaciones de entrada juntas,
// nunca de a una.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validación fallida: %v", e.Errors)
}

// Validation crea un error de validación a partir de la lista de violaciones.
func Validation(errs []string) error {
	return &ValidationError{Errors: errs}
}
