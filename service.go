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

package hummer

import (
	"context"
	"sync"

	"github.com/tomoncle/hummer-orm/database"
	"github.com/tomoncle/hummer-orm/errs"
	"github.com/tomoncle/hummer-orm/repository"
	"github.com/tomoncle/hummer-orm/types"
)

// Service runs repository operations in a transaction of their own, or in
// the caller's when ctx already carries one.
type Service[E any, ID any] interface {
	// Get returns a single entity by its identifier, nil when absent.
	Get(ctx context.Context, id ID) (*E, error)

	// All returns all entities.
	All(ctx context.Context) ([]E, error)

	// Query executes a raw query and maps the results to entities.
	Query(ctx context.Context, query string, args ...interface{}) ([]E, error)

	// Page returns a paginated list of entities.
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[E], error)

	// Save inserts or replaces one or more entities in one transaction.
	Save(ctx context.Context, model ...*E) error

	// CreateTable creates the entity's table.
	CreateTable(ctx context.Context) error
}

type baseServiceImpl[E any, ID any] struct {
	source database.ConnectionSource

	once sync.Once
	repo repository.Repository[E, ID]
	err  error
}

// NewService returns a Service backed by the global database connection.
func NewService[E any, ID any]() Service[E, ID] {
	return &baseServiceImpl[E, ID]{}
}

// NewServiceWithSource returns a Service whose transactions open
// connections from source.
func NewServiceWithSource[E any, ID any](source database.ConnectionSource) Service[E, ID] {
	return &baseServiceImpl[E, ID]{source: source}
}

func (s *baseServiceImpl[E, ID]) baseRepo() (repository.Repository[E, ID], error) {
	s.once.Do(func() { s.repo, s.err = repository.New[E, ID]() })
	return s.repo, s.err
}

func (s *baseServiceImpl[E, ID]) dataSource() (database.ConnectionSource, error) {
	if s.source != nil {
		return s.source, nil
	}
	if db := database.GetDB(); db != nil {
		return db, nil
	}
	return nil, errs.Configf("service", "database is not initialized, call InitDB first")
}

func (s *baseServiceImpl[E, ID]) run(ctx context.Context, fn func(ctx context.Context, repo repository.Repository[E, ID]) error) error {
	repo, err := s.baseRepo()
	if err != nil {
		return err
	}
	if database.InTransactionContext(ctx) {
		return fn(ctx, repo)
	}
	source, err := s.dataSource()
	if err != nil {
		return err
	}
	return database.RunInTransaction(ctx, source, func(ctx context.Context) error {
		return fn(ctx, repo)
	})
}

func (s *baseServiceImpl[E, ID]) Get(ctx context.Context, id ID) (model *E, err error) {
	err = s.run(ctx, func(ctx context.Context, repo repository.Repository[E, ID]) error {
		model, err = repo.FindByID(ctx, id)
		return err
	})
	return model, err
}

func (s *baseServiceImpl[E, ID]) All(ctx context.Context) (models []E, err error) {
	err = s.run(ctx, func(ctx context.Context, repo repository.Repository[E, ID]) error {
		models, err = repo.FindAll(ctx)
		return err
	})
	return models, err
}

func (s *baseServiceImpl[E, ID]) Query(ctx context.Context, query string, args ...interface{}) (models []E, err error) {
	err = s.run(ctx, func(ctx context.Context, _ repository.Repository[E, ID]) error {
		models, err = repository.Query[E](ctx, query, args...)
		return err
	})
	return models, err
}

func (s *baseServiceImpl[E, ID]) Page(ctx context.Context, page *types.PageRequest) (pagination *types.Pagination[E], err error) {
	err = s.run(ctx, func(ctx context.Context, _ repository.Repository[E, ID]) error {
		pagination, err = repository.Page[E](ctx, page)
		return err
	})
	return pagination, err
}

// Save runs in one transaction. When it opened that transaction and rolled
// it back, the entities are restored to their state before the call, so no
// entity keeps a generated key that was never committed.
func (s *baseServiceImpl[E, ID]) Save(ctx context.Context, model ...*E) error {
	joined := database.InTransactionContext(ctx)
	saved := make([]E, len(model))
	for i, m := range model {
		if m != nil {
			saved[i] = *m
		}
	}

	err := s.run(ctx, func(ctx context.Context, repo repository.Repository[E, ID]) error {
		for _, m := range model {
			if _, err := repo.Save(ctx, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil && !joined {
		for i, m := range model {
			if m != nil {
				*m = saved[i]
			}
		}
	}
	return err
}

func (s *baseServiceImpl[E, ID]) CreateTable(ctx context.Context) error {
	return s.run(ctx, func(ctx context.Context, _ repository.Repository[E, ID]) error {
		return database.CreateTableFor[E](ctx)
	})
}
