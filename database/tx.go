/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"database/sql"
	"sync/atomic"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"

	"github.com/tomoncle/hummer-orm/errs"
)

// Conn is the transaction the core runs its statements on. bun.Tx
// implements it.
type Conn interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	Dialect() schema.Dialect
}

var _ Conn = bun.Tx{}

// ConnectionSource hands out dedicated connections. *bun.DB implements it.
type ConnectionSource interface {
	Conn(ctx context.Context) (bun.Conn, error)
}

var _ ConnectionSource = (*bun.DB)(nil)

type txKey struct{}

type txState struct {
	conn   Conn
	active atomic.Bool
}

func stateFrom(ctx context.Context) *txState {
	if ctx == nil {
		return nil
	}
	st, _ := ctx.Value(txKey{}).(*txState)
	return st
}

// RunInTransaction opens one connection from source, begins a transaction
// and calls fn with a context carrying it. The transaction commits when fn
// returns nil. Otherwise it rolls back and fn's error is returned as is; a
// panic rolls back and is re-raised. The connection is closed and the
// context stops carrying the transaction once RunInTransaction returns.
func RunInTransaction(ctx context.Context, source ConnectionSource, fn func(ctx context.Context) error) error {
	if source == nil {
		return errs.Configf("RunInTransaction", "nil connection source")
	}
	if fn == nil {
		return errs.Configf("RunInTransaction", "nil transaction body")
	}
	if st := stateFrom(ctx); st != nil && st.active.Load() {
		return errs.ErrNestedTransaction
	}

	conn, err := source.Conn(ctx)
	if err != nil {
		return errs.Database("", err)
	}
	defer func() { _ = conn.Close() }()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return errs.Database("BEGIN", err)
	}
	logger := GetLogger()
	logger.Debug("Transaction started")

	st := &txState{conn: tx}
	st.active.Store(true)
	defer st.active.Store(false)

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Warn("Rollback after panic failed", "error", rbErr)
			}
			logger.Debug("Transaction rolled back", "panic", p)
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, st)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Warn("Rollback failed", "error", rbErr)
		}
		logger.Debug("Transaction rolled back", "error", err)
		return err
	}
	if err := tx.Commit(); err != nil {
		return errs.Database("COMMIT", err)
	}
	logger.Debug("Transaction committed")
	return nil
}

// InTransaction is RunInTransaction for bodies producing a value. The zero
// value is returned with any error.
func InTransaction[T any](ctx context.Context, source ConnectionSource, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	if fn == nil {
		return result, errs.Configf("InTransaction", "nil transaction body")
	}
	err := RunInTransaction(ctx, source, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// CurrentConnection returns the transaction carried by ctx.
func CurrentConnection(ctx context.Context) (Conn, error) {
	st := stateFrom(ctx)
	if st == nil || !st.active.Load() {
		return nil, errs.ErrNoActiveTransaction
	}
	return st.conn, nil
}

// InTransactionContext reports whether ctx carries an active transaction.
func InTransactionContext(ctx context.Context) bool {
	_, err := CurrentConnection(ctx)
	return err == nil
}

// WithTx binds a transaction managed by the caller, such as a bun.Tx from
// db.RunInTx, so that the core can run inside it. Committing and rolling
// back stay with the caller.
func WithTx(ctx context.Context, conn Conn) context.Context {
	st := &txState{conn: conn}
	st.active.Store(conn != nil)
	return context.WithValue(ctx, txKey{}, st)
}
