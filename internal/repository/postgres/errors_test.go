package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"deepmirror/internal/domain"
)

func TestConversationError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		notFound bool
	}{
		{"no rows", pgx.ErrNoRows, true},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), true},
		{"foreign key", &pgconn.PgError{Code: "23503"}, true},
		{"bad uuid", &pgconn.PgError{Code: "22P02"}, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"connection", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.notFound, IsNotFound(tt.err))

			err := ConversationError("get conversation", "c1", tt.err)
			assert.Equal(t, tt.notFound, errors.Is(err, domain.ErrNotFound))
			if !tt.notFound {
				assert.ErrorIs(t, err, tt.err)
				assert.Contains(t, err.Error(), "get conversation")
			}
		})
	}
}
