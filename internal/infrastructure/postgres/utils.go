package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

const (
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeNotNullViolation    = "23502"
	codeNumericOutOfRange   = "22003"
)

// wrapErr traduce errores de PostgreSQL a errores de dominio conservando la causa.
// Los fallos de conexión, cancelación o bloqueo se reportan como ErrStorageUnavailable.
func wrapErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == codeForeignKeyViolation:
			return fmt.Errorf("%s: %w: %w", op, domain.ErrNotFound, err)
		case pgErr.Code == codeCheckViolation || pgErr.Code == codeNotNullViolation ||
			pgErr.Code == codeNumericOutOfRange:
			return fmt.Errorf("%s: %w: %w", op, domain.ErrInvalidInput, err)
		case isUnavailableCode(pgErr.Code):
			return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	// Sin PgError: red, timeout, contexto cancelado, pool cerrado.
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
}

// isUnavailableCode: clase 08 (conexión), 57 (operador/cancelación), 55P03 (lock no disponible),
// 40001/40P01 (serialización/deadlock). El llamador decide si reintenta.
func isUnavailableCode(code string) bool {
	return strings.HasPrefix(code, "08") ||
		strings.HasPrefix(code, "57") ||
		code == "55P03" || code == "40001" || code == "40P01"
}
