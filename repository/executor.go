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

package repository

import (
	"context"
	"database/sql"
	"reflect"
	"strconv"

	"github.com/tomoncle/hummer-orm/database"
	"github.com/tomoncle/hummer-orm/entity"
	"github.com/tomoncle/hummer-orm/errs"
	"github.com/tomoncle/hummer-orm/sqlgen"
)

// Executor runs the statements of one entity type. Results are pointers to
// new entity values.
type Executor struct {
	meta *entity.Metadata
}

func NewExecutor(meta *entity.Metadata) *Executor {
	return &Executor{meta: meta}
}

func (x *Executor) Metadata() *entity.Metadata { return x.meta }

// FindAll returns every row of the table.
func (x *Executor) FindAll(ctx context.Context) ([]reflect.Value, error) {
	return x.query(ctx, sqlgen.SelectAll(x.meta))
}

// FindByID returns the row whose identifier equals id.
func (x *Executor) FindByID(ctx context.Context, id interface{}) (reflect.Value, bool, error) {
	if x.meta.ID == nil {
		return reflect.Value{}, false, x.noIdentifier("FindByID")
	}
	rows, err := x.query(ctx, sqlgen.SelectBy(x.meta, x.meta.ID.Name), id)
	if err != nil || len(rows) == 0 {
		return reflect.Value{}, false, err
	}
	return rows[0], true, nil
}

// FindBy returns the rows whose column equals value.
func (x *Executor) FindBy(ctx context.Context, column *entity.Column, value interface{}) ([]reflect.Value, error) {
	return x.query(ctx, sqlgen.SelectBy(x.meta, column.Name), value)
}

// RunLiteral runs a caller supplied query binding args by position.
func (x *Executor) RunLiteral(ctx context.Context, query string, args []interface{}) ([]reflect.Value, error) {
	return x.query(ctx, query, args...)
}

// Count returns the number of rows matching where, or all rows when where
// is empty.
func (x *Executor) Count(ctx context.Context, where string, args ...interface{}) (int, error) {
	conn, err := database.CurrentConnection(ctx)
	if err != nil {
		return 0, err
	}
	query := sqlgen.Count(x.meta, where)
	rows, err := conn.QueryContext(ctx, query, bindArgs(args)...)
	if err != nil {
		return 0, errs.Database(query, err)
	}
	defer rows.Close()

	var n int
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, errs.Database(query, err)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, errs.Database(query, err)
	}
	return n, nil
}

// FindPage returns at most limit rows matching where, skipping offset.
func (x *Executor) FindPage(ctx context.Context, where string, args []interface{}, orders []string, limit, offset int) ([]reflect.Value, error) {
	bound := append(append([]interface{}{}, args...), limit, offset)
	return x.query(ctx, sqlgen.Page(x.meta, where, orders), bound...)
}

// Save inserts or replaces the entity ptr points to. An unset generated
// identifier is assigned first.
func (x *Executor) Save(ctx context.Context, ptr reflect.Value) error {
	if x.meta.ID == nil {
		return x.noIdentifier("Save")
	}
	conn, err := database.CurrentConnection(ctx)
	if err != nil {
		return err
	}
	d := sqlgen.FromBun(conn.Dialect())
	v := ptr.Elem()

	// the assigned key is taken back when the statement fails
	restore := func() {}
	if g := x.meta.Generated(); g != nil && g.IsZero(v) {
		key, err := x.nextKey(ctx, conn, d)
		if err != nil {
			return err
		}
		field := g.Field(v)
		orig := reflect.New(field.Type()).Elem()
		orig.Set(field)
		restore = func() { field.Set(orig) }
		assignKey(field, key)
	}

	query := sqlgen.Merge(d, x.meta)
	args := make([]interface{}, len(x.meta.Columns))
	for i, c := range x.meta.Columns {
		args[i] = c.Field(v).Interface()
	}
	if _, err := conn.ExecContext(ctx, query, bindArgs(args)...); err != nil {
		restore()
		return errs.Database(query, err)
	}
	return nil
}

// nextKey reads the largest key in the current transaction, so numbering
// starts at 1 and continues across processes.
func (x *Executor) nextKey(ctx context.Context, conn database.Conn, d sqlgen.Dialect) (int64, error) {
	query := sqlgen.NextKey(d, x.meta)
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return 0, errs.Database(query, err)
	}
	defer rows.Close()

	var max sql.NullInt64
	if rows.Next() {
		if err := rows.Scan(&max); err != nil {
			return 0, errs.Database(query, err)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, errs.Database(query, err)
	}
	if !max.Valid {
		return 1, nil
	}
	return max.Int64 + 1, nil
}

func assignKey(field reflect.Value, key int64) {
	if field.Kind() == reflect.Ptr {
		p := reflect.New(field.Type().Elem())
		assignKey(p.Elem(), key)
		field.Set(p)
		return
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(strconv.FormatInt(key, 10))
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		field.SetUint(uint64(key))
	default:
		field.SetInt(key)
	}
}

func (x *Executor) noIdentifier(op string) error {
	return &errs.ConfigurationError{
		Subject: x.meta.Type.Name() + "." + op,
		Reason:  "entity has no identifier",
		Err:     errs.ErrUnsupportedOperation,
	}
}

func (x *Executor) query(ctx context.Context, query string, args ...interface{}) ([]reflect.Value, error) {
	conn, err := database.CurrentConnection(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := conn.QueryContext(ctx, query, bindArgs(args)...)
	if err != nil {
		return nil, errs.Database(query, err)
	}
	values, err := x.scanRows(rows)
	if err != nil {
		return nil, errs.Database(query, err)
	}
	return values, nil
}

// bindArgs dereferences pointer arguments, a nil pointer binding NULL.
func bindArgs(args []interface{}) []interface{} {
	out := make([]interface{}, len(args))
	for i, a := range args {
		v := reflect.ValueOf(a)
		for v.IsValid() && v.Kind() == reflect.Ptr {
			if v.IsNil() {
				v = reflect.Value{}
				break
			}
			v = v.Elem()
		}
		if v.IsValid() {
			out[i] = v.Interface()
		}
	}
	return out
}
