package database

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrNoScope is returned when a scoped operation receives a zero Scope
var ErrNoScope = errors.New("operation requires an open scope")

// DefaultScopeTimeout bounds scopes of a Transactor built without a timeout
const DefaultScopeTimeout = 10 * time.Second

// Scope is an open unit of work. Only a Transactor can produce a non-zero
// Scope, so code that receives one can write inside it but can never begin,
// commit or roll back a transaction of its own.
type Scope struct {
	tx *gorm.DB
}

// Conn returns the transaction handle bound to ctx, or ErrNoScope
func (s Scope) Conn(ctx context.Context) (*gorm.DB, error) {
	if s.tx == nil {
		return nil, ErrNoScope
	}
	return s.tx.WithContext(ctx), nil
}

// Open reports whether the scope is usable
func (s Scope) Open() bool {
	return s.tx != nil
}

// Transactor opens scopes on a database
type Transactor struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewTransactor creates a transactor whose scopes are bounded by timeout,
// or by DefaultScopeTimeout when timeout is not positive
func NewTransactor(db *gorm.DB, timeout time.Duration) *Transactor {
	if timeout <= 0 {
		timeout = DefaultScopeTimeout
	}
	return &Transactor{db: db, timeout: timeout}
}

// WithinScope runs fn inside one transaction. The transaction commits only
// if fn returns nil; any error or panic rolls everything back. If the scope
// outlives the timeout the context deadline error is returned.
func (t *Transactor) WithinScope(ctx context.Context, fn func(ctx context.Context, scope Scope) error) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, Scope{tx: tx})
	})
	if err != nil && ctx.Err() != nil && !errors.Is(err, ctx.Err()) {
		return errors.Join(ctx.Err(), err)
	}
	return err
}
