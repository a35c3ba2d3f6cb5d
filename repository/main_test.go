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

package repository_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/schema"

	"github.com/tomoncle/hummer-orm/database"
)

type Person struct {
	ID   int64 `orm:",id"`
	Name string
}

type Account struct {
	ID    string `orm:",id,generated"`
	Owner string
}

type Note struct {
	Text string
}

type Counter struct {
	ID    *int64 `orm:",id,generated"`
	Hits  int32
	Ratio *float64
}

type Point struct {
	ID    int64 `orm:",id"`
	X     int64
	built bool
}

func NewPoint(id, x int64) Point { return Point{ID: id, X: x, built: true} }

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// inTx runs fn in its own transaction and fails the test on error.
func inTx(t *testing.T, db *bun.DB, fn func(ctx context.Context) error) {
	t.Helper()
	if err := database.RunInTransaction(t.Context(), db, fn); err != nil {
		t.Fatalf("transaction: %v", err)
	}
}

func createTable[E any](t *testing.T, db *bun.DB) {
	t.Helper()
	inTx(t, db, database.CreateTableFor[E])
}

func execSQL(t *testing.T, db *bun.DB, stmts ...string) {
	t.Helper()
	for _, s := range stmts {
		if _, err := db.ExecContext(t.Context(), s); err != nil {
			t.Fatalf("%s: %v", s, err)
		}
	}
}

type recordedQuery struct {
	SQL  string
	Args []interface{}
}

// recorder answers queries from the wrapped transaction and records
// statements without running them. Its nil dialect selects the standard
// statement forms.
type recorder struct {
	database.Conn
	Queries []recordedQuery
}

func (r *recorder) ExecContext(_ context.Context, query string, args ...interface{}) (sql.Result, error) {
	r.Queries = append(r.Queries, recordedQuery{query, args})
	return driverResult(1), nil
}

func (r *recorder) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	r.Queries = append(r.Queries, recordedQuery{query, args})
	return r.Conn.QueryContext(ctx, query, args...)
}

func (r *recorder) Dialect() schema.Dialect { return nil }

type driverResult int64

func (r driverResult) LastInsertId() (int64, error) { return 0, nil }
func (r driverResult) RowsAffected() (int64, error) { return int64(r), nil }
