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

package hummer_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	hummer "github.com/tomoncle/hummer-orm"
	"github.com/tomoncle/hummer-orm/errs"
	"github.com/tomoncle/hummer-orm/repository"
	"github.com/tomoncle/hummer-orm/types"
)

type Book struct {
	ID     string `orm:",id,generated"`
	Title  string
	Author *string
}

type BookRepository struct {
	repository.Base[Book, string]

	FindByTitle func(ctx context.Context, title string) (*Book, error)
}

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

func newBookService(t *testing.T) (hummer.Service[Book, string], *bun.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := hummer.NewServiceWithSource[Book, string](db)
	if err := svc.CreateTable(t.Context()); err != nil {
		t.Fatal(err)
	}
	return svc, db
}

func TestService(t *testing.T) {
	t.Parallel()

	svc, _ := newBookService(t)
	ctx := t.Context()
	author := "Le Guin"
	books := []*Book{{Title: "Dune"}, {Title: "Earthsea", Author: &author}, {Title: "Solaris"}}
	if err := svc.Save(ctx, books...); err != nil {
		t.Fatal(err)
	}
	for i, b := range books {
		if want := string(rune('1' + i)); b.ID != want {
			t.Errorf("book %d id = %q, want %q", i, b.ID, want)
		}
	}

	all, err := svc.All(ctx)
	if err != nil || len(all) != 3 {
		t.Fatalf("All = %+v, %v", all, err)
	}

	got, err := svc.Get(ctx, "2")
	if err != nil || got == nil || got.Author == nil || *got.Author != author {
		t.Errorf("Get(2) = %+v, %v", got, err)
	}
	if got, err := svc.Get(ctx, "7"); got != nil || err != nil {
		t.Errorf("Get(7) = %+v, %v", got, err)
	}

	found, err := svc.Query(ctx, "SELECT * FROM BOOK WHERE AUTHOR IS NULL ORDER BY ID")
	if err != nil || len(found) != 2 || found[1].Title != "Solaris" {
		t.Errorf("Query = %+v, %v", found, err)
	}

	page, err := svc.Page(ctx, types.NewPageRequestWithOrders(1, 2, []string{"TITLE DESC"}))
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 3 || len(page.Items) != 2 || page.Items[0].Title != "Solaris" || !page.HasNext() {
		t.Errorf("Page = %+v", page)
	}
}

func TestService_JoinsCallerTransaction(t *testing.T) {
	t.Parallel()

	svc, db := newBookService(t)
	boom := errors.New("boom")
	err := hummer.RunInTransaction(t.Context(), db, func(ctx context.Context) error {
		if err := svc.Save(ctx, &Book{Title: "Dune"}); err != nil {
			return err
		}
		all, err := svc.All(ctx)
		if err != nil || len(all) != 1 {
			t.Errorf("All inside = %+v, %v", all, err)
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}

	all, err := svc.All(t.Context())
	if err != nil || len(all) != 0 {
		t.Errorf("All after rollback = %+v, %v", all, err)
	}
}

func TestService_SaveIsAtomic(t *testing.T) {
	t.Parallel()

	svc, _ := newBookService(t)
	dune := &Book{Title: "Dune"}
	if err := svc.Save(t.Context(), dune, nil); !errs.IsConfiguration(err) {
		t.Fatalf("Save with nil = %v", err)
	}
	if all, _ := svc.All(t.Context()); len(all) != 0 {
		t.Errorf("partial save kept %d rows", len(all))
	}
	if dune.ID != "" {
		t.Errorf("rolled back entity kept ID %q", dune.ID)
	}

	// the key handed out after the rollback is the one dune lost
	solaris := &Book{Title: "Solaris"}
	if err := svc.Save(t.Context(), solaris); err != nil {
		t.Fatal(err)
	}
	if err := svc.Save(t.Context(), dune); err != nil {
		t.Fatal(err)
	}
	if solaris.ID != "1" || dune.ID != "2" {
		t.Errorf("ids = %q, %q; want 1, 2", solaris.ID, dune.ID)
	}
	if got, _ := svc.Get(t.Context(), "1"); got == nil || got.Title != "Solaris" {
		t.Errorf("Get(1) = %+v", got)
	}
}

func TestService_NotInitialized(t *testing.T) {
	t.Parallel()

	svc := hummer.NewService[Book, string]()
	if _, err := svc.All(t.Context()); !errs.IsConfiguration(err) {
		t.Errorf("All = %v", err)
	}
}

func TestFacade(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo, err := hummer.CreateRepository[BookRepository]()
	if err != nil {
		t.Fatal(err)
	}

	got, err := hummer.InTransaction(t.Context(), db, func(ctx context.Context) (*Book, error) {
		if err := hummer.CreateTable[Book](ctx); err != nil {
			return nil, err
		}
		if _, err := hummer.CurrentConnection(ctx); err != nil {
			return nil, err
		}
		if _, err := repo.Save(ctx, &Book{Title: "Dune"}); err != nil {
			return nil, err
		}
		return repo.FindByTitle(ctx, "Dune")
	})
	if err != nil || got == nil || got.ID != "1" {
		t.Fatalf("FindByTitle = %+v, %v", got, err)
	}

	if _, err := hummer.CurrentConnection(t.Context()); !errors.Is(err, errs.ErrNoActiveTransaction) {
		t.Errorf("CurrentConnection outside = %v", err)
	}

	std, err := hummer.NewRepository[Book, string]()
	if err != nil {
		t.Fatal(err)
	}
	err = hummer.RunInTransaction(t.Context(), db, func(ctx context.Context) error {
		all, err := std.FindAll(ctx)
		if len(all) != 1 {
			t.Errorf("FindAll = %+v", all)
		}
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
}
