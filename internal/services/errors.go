package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sjperalta/feria-api/internal/statemachine"
	"gorm.io/gorm"
)

// Settlement errors. Every error returned by the settlement services wraps
// exactly one of these, so callers can branch with errors.Is.
var (
	ErrNotFound        = errors.New("registro no encontrado")
	ErrOverpayment     = errors.New("el pago excede el saldo pendiente de la cuota")
	ErrInvalidAmount   = errors.New("el monto debe ser mayor que cero")
	ErrInvalidSchedule = errors.New("fecha de vencimiento inválida")
	ErrInvalidPlan     = errors.New("plan de cuotas inválido")
	ErrConflict        = errors.New("la compra fue modificada de forma concurrente")
	ErrTimeout         = errors.New("tiempo de espera agotado")
	ErrPersistence     = errors.New("error de persistencia")
)

var domainErrors = []error{
	ErrNotFound,
	ErrOverpayment,
	ErrInvalidAmount,
	ErrInvalidSchedule,
	ErrInvalidPlan,
	ErrConflict,
	ErrTimeout,
	ErrPersistence,
}

// classifyStoreError maps a raw store error to the settlement taxonomy.
// Errors already classified pass through unchanged.
func classifyStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range domainErrors {
		if errors.Is(err, known) {
			return err
		}
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, op)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s: %w", ErrTimeout, op, err)
	case errors.Is(err, statemachine.ErrIllegalTransition):
		return fmt.Errorf("%w: %s: %w", ErrConflict, op, err)
	default:
		return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
	}
}
