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
	"errors"
	"reflect"

	"github.com/tomoncle/hummer-orm/entity"
	"github.com/tomoncle/hummer-orm/errs"
	"github.com/tomoncle/hummer-orm/sqlgen"
)

// CreateTable creates the table of type t on the transaction carried by ctx.
func CreateTable(ctx context.Context, t reflect.Type) error {
	conn, err := CurrentConnection(ctx)
	if err != nil {
		return err
	}
	m, err := entity.Resolve(t)
	if err != nil {
		return err
	}
	query := sqlgen.CreateTable(sqlgen.FromBun(conn.Dialect()), m)
	if _, err := conn.ExecContext(ctx, query); err != nil {
		return errs.Database(query, err)
	}
	GetLogger().Info("Table created", "table", m.Table)
	return nil
}

// CreateTableFor creates the table of E on the transaction carried by ctx.
func CreateTableFor[E any](ctx context.Context) error {
	return CreateTable(ctx, reflect.TypeOf((*E)(nil)).Elem())
}

// CreateRegisteredTables creates the table of every registered model, in
// priority order, each in its own transaction. Tables that already exist
// are left alone.
func CreateRegisteredTables(ctx context.Context, source ConnectionSource) error {
	logger := GetLogger()
	for _, model := range GetRegisteredModels() {
		t := reflect.TypeOf(model.Instance())
		err := RunInTransaction(ctx, source, func(ctx context.Context) error {
			return CreateTable(ctx, t)
		})
		if err == nil {
			continue
		}
		var dbErr *errs.DatabaseError
		if errors.As(err, &dbErr) && dbErr.Kind() == errs.ExistTableErr {
			logger.Debug("Table already exists, skipping", "model", t.String())
			continue
		}
		return err
	}
	return nil
}
