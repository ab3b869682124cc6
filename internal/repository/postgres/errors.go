package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"deepmirror/internal/domain"
)

const (
	codeForeignKeyViolation = "23503"
	// a conversation id that is not a uuid
	codeInvalidTextRepresentation = "22P02"
)

// IsNotFound reports whether err means the addressed row does not exist:
// no rows, a dangling foreign key, or an id that cannot be a row id.
func IsNotFound(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeForeignKeyViolation || pgErr.Code == codeInvalidTextRepresentation
	}
	return false
}

// ConversationError wraps err for op, mapping missing rows to domain.ErrNotFound
func ConversationError(op, conversationID string, err error) error {
	if IsNotFound(err) {
		return fmt.Errorf("conversation %s: %w", conversationID, domain.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
