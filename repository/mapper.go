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
	"database/sql"
	"reflect"

	"github.com/tomoncle/hummer-orm/entity"
)

var nullStringType = reflect.TypeOf(sql.NullString{})

// scanRows maps every row to a new entity. Result columns are matched to
// entity columns by name; unknown result columns are dropped.
func (x *Executor) scanRows(rows *sql.Rows) ([]reflect.Value, error) {
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	cols := make([]*entity.Column, len(names))
	for i, name := range names {
		cols[i] = x.meta.ColumnByName(name)
	}
	ctor, err := x.constructorFor(cols)
	if err != nil {
		return nil, err
	}

	var out []reflect.Value
	for rows.Next() {
		targets := make([]reflect.Value, len(cols))
		dest := make([]interface{}, len(cols))
		for i, c := range cols {
			targets[i] = scanTarget(c)
			dest[i] = targets[i].Interface()
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, x.build(ctor, cols, targets))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// constructorFor returns a registered constructor whose parameters are the
// entity's columns in declared order, provided the result set has exactly
// those columns. nil means the zero value is filled field by field.
func (x *Executor) constructorFor(cols []*entity.Column) (*entity.Constructor, error) {
	if len(cols) != len(x.meta.Columns) {
		return nil, nil
	}
	for i, c := range cols {
		if c != x.meta.Columns[i] {
			return nil, nil
		}
	}
	info, err := entity.Introspect(x.meta.Type)
	if err != nil {
		return nil, err
	}
	for _, ctor := range info.Constructors {
		if !ctor.Func.IsValid() || len(ctor.Params) != len(cols) {
			continue
		}
		match := true
		for i, p := range ctor.Params {
			if p != cols[i].GoType {
				match = false
				break
			}
		}
		if match {
			return ctor, nil
		}
	}
	return nil, nil
}

func (x *Executor) build(ctor *entity.Constructor, cols []*entity.Column, targets []reflect.Value) reflect.Value {
	if ctor != nil {
		args := make([]reflect.Value, len(cols))
		for i, c := range cols {
			args[i] = columnValue(c, targets[i])
		}
		return ctor.New(x.meta.Type, args)
	}

	ptr := reflect.New(x.meta.Type)
	for i, c := range cols {
		if c == nil {
			continue
		}
		c.Field(ptr.Elem()).Set(columnValue(c, targets[i]))
	}
	return ptr
}

// scanTarget allocates what rows.Scan writes a column into. Strings go
// through sql.NullString so that NULL reads as "".
func scanTarget(c *entity.Column) reflect.Value {
	switch {
	case c == nil:
		return reflect.New(reflect.TypeOf((*interface{})(nil)).Elem())
	case c.GoType.Kind() == reflect.String:
		return reflect.New(nullStringType)
	default:
		return reflect.New(c.GoType)
	}
}

func columnValue(c *entity.Column, target reflect.Value) reflect.Value {
	if c.GoType.Kind() == reflect.String {
		ns := target.Interface().(*sql.NullString)
		return reflect.ValueOf(ns.String).Convert(c.GoType)
	}
	return target.Elem()
}
