package repositories

import "context"

// TransactionManager runs fn so that every repository call made with the
// context it receives joins one transaction. An error from fn rolls back.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn func(ctx context.Context) error) error
}
