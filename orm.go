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

// Package hummer maps plain Go structs to relational tables. Entities are
// described by struct tags, repositories are structs embedding
// repository.Base whose func fields become queries, and every statement
// runs inside a transaction scoped by RunInTransaction.
//
//	type Person struct {
//		ID   int64 `orm:",id"`
//		Name string
//	}
//
//	type PersonRepository struct {
//		repository.Base[Person, int64]
//		FindByName func(ctx context.Context, name string) ([]Person, error)
//	}
//
//	repo, err := hummer.CreateRepository[PersonRepository]()
//	err = hummer.RunInTransaction(ctx, db, func(ctx context.Context) error {
//		people, err := repo.FindByName(ctx, "john")
//		...
//	})
package hummer

import (
	"context"

	"github.com/tomoncle/hummer-orm/database"
	"github.com/tomoncle/hummer-orm/repository"
)

// RunInTransaction runs fn in a new transaction on a connection taken
// from source. See database.RunInTransaction.
func RunInTransaction(ctx context.Context, source database.ConnectionSource, fn func(ctx context.Context) error) error {
	return database.RunInTransaction(ctx, source, fn)
}

// InTransaction is RunInTransaction for functions returning a value.
func InTransaction[T any](ctx context.Context, source database.ConnectionSource, fn func(ctx context.Context) (T, error)) (T, error) {
	return database.InTransaction(ctx, source, fn)
}

// CurrentConnection returns the connection of the transaction ctx runs in.
func CurrentConnection(ctx context.Context) (database.Conn, error) {
	return database.CurrentConnection(ctx)
}

// CreateTable creates the table of E on the current connection.
func CreateTable[E any](ctx context.Context) error {
	return database.CreateTableFor[E](ctx)
}

// CreateRepository builds the repository struct R.
func CreateRepository[R any]() (R, error) {
	return repository.Create[R]()
}

// NewRepository returns the standard repository of E.
func NewRepository[E any, ID any]() (repository.Repository[E, ID], error) {
	return repository.New[E, ID]()
}
