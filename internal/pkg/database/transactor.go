package database

import "context"

// Transactor runs fn inside a single database transaction. Repositories
// called with the ctx passed to fn take part in that transaction; fn's error
// rolls everything back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
