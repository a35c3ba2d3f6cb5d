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
	"errors"
	"reflect"
	"testing"

	"github.com/uptrace/bun"

	"github.com/tomoncle/hummer-orm/database"
	"github.com/tomoncle/hummer-orm/entity"
	"github.com/tomoncle/hummer-orm/errs"
	"github.com/tomoncle/hummer-orm/repository"
)

func executorFor[E any](t *testing.T) *repository.Executor {
	t.Helper()
	meta, err := entity.ResolveFor[E]()
	if err != nil {
		t.Fatal(err)
	}
	return repository.NewExecutor(meta)
}

func TestSave_StandardMergeStatement(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	createTable[Account](t, db)
	x := executorFor[Account](t)

	var rec *recorder
	err := db.RunInTx(t.Context(), &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		rec = &recorder{Conn: tx}
		ctx = database.WithTx(ctx, rec)
		return x.Save(ctx, reflect.ValueOf(&Account{Owner: "Ana"}))
	})
	if err != nil {
		t.Fatal(err)
	}

	want := []recordedQuery{
		{SQL: "SELECT MAX(CAST(ID AS BIGINT)) FROM ACCOUNT", Args: []interface{}{}},
		{SQL: "MERGE INTO ACCOUNT (ID, OWNER) VALUES (?, ?);", Args: []interface{}{"1", "Ana"}},
	}
	if len(rec.Queries) != len(want) {
		t.Fatalf("queries = %+v", rec.Queries)
	}
	for i, q := range rec.Queries {
		if q.SQL != want[i].SQL || len(q.Args) != len(want[i].Args) {
			t.Errorf("query %d = %+v, want %+v", i, q, want[i])
			continue
		}
		for j := range q.Args {
			if q.Args[j] != want[i].Args[j] {
				t.Errorf("query %d arg %d = %v, want %v", i, j, q.Args[j], want[i].Args[j])
			}
		}
	}
}

func TestSave_GeneratedKeys(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	createTable[Account](t, db)
	x := executorFor[Account](t)

	a, b := &Account{Owner: "Ana"}, &Account{Owner: "Bob"}
	inTx(t, db, func(ctx context.Context) error {
		if err := x.Save(ctx, reflect.ValueOf(a)); err != nil {
			return err
		}
		return x.Save(ctx, reflect.ValueOf(b))
	})
	if a.ID != "1" || b.ID != "2" {
		t.Errorf("ids = %q, %q; want 1, 2", a.ID, b.ID)
	}

	// numbering continues from the stored maximum
	c := &Account{Owner: "Cid"}
	inTx(t, db, func(ctx context.Context) error { return x.Save(ctx, reflect.ValueOf(c)) })
	if c.ID != "3" {
		t.Errorf("third id = %q", c.ID)
	}
}

func TestSave_GeneratedPointerKey(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	createTable[Counter](t, db)
	x := executorFor[Counter](t)

	c := &Counter{Hits: 3}
	inTx(t, db, func(ctx context.Context) error { return x.Save(ctx, reflect.ValueOf(c)) })
	if c.ID == nil || *c.ID != 1 {
		t.Fatalf("ID = %v", c.ID)
	}

	var got []reflect.Value
	inTx(t, db, func(ctx context.Context) (err error) {
		got, err = x.FindAll(ctx)
		return err
	})
	if len(got) != 1 {
		t.Fatalf("rows = %d", len(got))
	}
	row := got[0].Interface().(*Counter)
	if *row.ID != 1 || row.Hits != 3 || row.Ratio != nil {
		t.Errorf("row = %+v", row)
	}
}

func TestSave_PresetIdentifierUpserts(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	createTable[Person](t, db)
	x := executorFor[Person](t)

	inTx(t, db, func(ctx context.Context) error {
		if err := x.Save(ctx, reflect.ValueOf(&Person{ID: 7, Name: "Ana"})); err != nil {
			return err
		}
		return x.Save(ctx, reflect.ValueOf(&Person{ID: 7, Name: "Anna"}))
	})

	inTx(t, db, func(ctx context.Context) error {
		v, ok, err := x.FindByID(ctx, int64(7))
		if err != nil {
			return err
		}
		if !ok || v.Interface().(*Person).Name != "Anna" {
			t.Errorf("FindByID = %v, %v", v, ok)
		}
		_, ok, err = x.FindByID(ctx, int64(8))
		if ok || err != nil {
			t.Errorf("missing id: ok=%v err=%v", ok, err)
		}
		return nil
	})
}

func TestRowMapping_Nulls(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	createTable[Person](t, db)
	createTable[Counter](t, db)
	execSQL(t, db,
		"INSERT INTO PERSON (ID, NAME) VALUES (1, NULL)",
		"INSERT INTO COUNTER (ID, HITS, RATIO) VALUES (1, 2, 0.5)",
	)

	inTx(t, db, func(ctx context.Context) error {
		people, err := executorFor[Person](t).FindAll(ctx)
		if err != nil {
			return err
		}
		if p := people[0].Interface().(*Person); p.Name != "" {
			t.Errorf("NULL string = %q", p.Name)
		}

		counters, err := executorFor[Counter](t).FindAll(ctx)
		if err != nil {
			return err
		}
		if c := counters[0].Interface().(*Counter); c.Ratio == nil || *c.Ratio != 0.5 {
			t.Errorf("Ratio = %v", c.Ratio)
		}

		_, err = executorFor[Counter](t).RunLiteral(ctx, "SELECT ID, NULL AS HITS FROM COUNTER", nil)
		var dbErr *errs.DatabaseError
		if !errors.As(err, &dbErr) {
			t.Errorf("NULL into int32: err = %v, want DatabaseError", err)
		}
		return nil
	})
}

func TestRowMapping_Constructor(t *testing.T) {
	t.Parallel()

	if err := entity.RegisterConstructor(NewPoint); err != nil {
		t.Fatal(err)
	}
	db := newTestDB(t)
	createTable[Point](t, db)
	execSQL(t, db, "INSERT INTO POINT (ID, X) VALUES (1, 10)")
	x := executorFor[Point](t)

	inTx(t, db, func(ctx context.Context) error {
		all, err := x.FindAll(ctx)
		if err != nil {
			return err
		}
		if p := all[0].Interface().(*Point); !p.built || p.X != 10 {
			t.Errorf("full row should use the constructor: %+v", p)
		}

		partial, err := x.RunLiteral(ctx, "SELECT ID FROM POINT", nil)
		if err != nil {
			return err
		}
		if p := partial[0].Interface().(*Point); p.built || p.ID != 1 {
			t.Errorf("partial row should fill fields: %+v", p)
		}
		return nil
	})
}

func TestRunLiteral_PointerArguments(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	createTable[Person](t, db)
	execSQL(t, db,
		"INSERT INTO PERSON (ID, NAME) VALUES (1, 'john')",
		"INSERT INTO PERSON (ID, NAME) VALUES (2, 'jane')",
	)
	x := executorFor[Person](t)

	name := "jane"
	var none *string
	inTx(t, db, func(ctx context.Context) error {
		got, err := x.RunLiteral(ctx, "SELECT * FROM PERSON WHERE NAME = ?", []interface{}{&name})
		if err != nil {
			return err
		}
		if len(got) != 1 || got[0].Interface().(*Person).ID != 2 {
			t.Errorf("got %d rows", len(got))
		}
		got, err = x.RunLiteral(ctx, "SELECT * FROM PERSON WHERE NAME IS ?", []interface{}{none})
		if err != nil {
			return err
		}
		if len(got) != 0 {
			t.Errorf("nil pointer should bind NULL, got %d rows", len(got))
		}
		return nil
	})
}

func TestExecutor_RequiresTransaction(t *testing.T) {
	t.Parallel()

	x := executorFor[Person](t)
	ctx := t.Context()
	if _, err := x.FindAll(ctx); !errors.Is(err, errs.ErrNoActiveTransaction) {
		t.Errorf("FindAll: %v", err)
	}
	if err := x.Save(ctx, reflect.ValueOf(&Person{ID: 1})); !errors.Is(err, errs.ErrNoActiveTransaction) {
		t.Errorf("Save: %v", err)
	}
	if _, err := x.Count(ctx, ""); !errors.Is(err, errs.ErrNoActiveTransaction) {
		t.Errorf("Count: %v", err)
	}
}

func TestExecutor_NoIdentifier(t *testing.T) {
	t.Parallel()

	x := executorFor[Note](t)
	if _, _, err := x.FindByID(t.Context(), 1); !errs.IsConfiguration(err) {
		t.Errorf("FindByID: %v", err)
	}
	if err := x.Save(t.Context(), reflect.ValueOf(&Note{})); !errs.IsConfiguration(err) {
		t.Errorf("Save: %v", err)
	}
}

func TestSave_FailedStatementLeavesKeyUnset(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	execSQL(t, db,
		"CREATE TABLE ACCOUNT (ID VARCHAR(255) NOT NULL, OWNER VARCHAR(255) CHECK (length(OWNER) > 0), PRIMARY KEY (ID))",
		"CREATE TABLE COUNTER (ID BIGINT NOT NULL, HITS INTEGER NOT NULL CHECK (HITS >= 0), RATIO DOUBLE, PRIMARY KEY (ID))",
	)
	x := executorFor[Account](t)

	first := &Account{Owner: ""}
	err := database.RunInTransaction(t.Context(), db, func(ctx context.Context) error {
		return x.Save(ctx, reflect.ValueOf(first))
	})
	var dbErr *errs.DatabaseError
	if !errors.As(err, &dbErr) {
		t.Fatalf("err = %v, want DatabaseError", err)
	}
	if first.ID != "" {
		t.Fatalf("ID after failed save = %q", first.ID)
	}

	bob := &Account{Owner: "Bob"}
	inTx(t, db, func(ctx context.Context) error { return x.Save(ctx, reflect.ValueOf(bob)) })
	first.Owner = "alice"
	inTx(t, db, func(ctx context.Context) error { return x.Save(ctx, reflect.ValueOf(first)) })
	if bob.ID != "1" || first.ID != "2" {
		t.Errorf("ids = %q, %q; want 1, 2", bob.ID, first.ID)
	}

	inTx(t, db, func(ctx context.Context) error {
		v, ok, err := x.FindByID(ctx, "1")
		if err != nil {
			return err
		}
		if !ok || v.Interface().(*Account).Owner != "Bob" {
			t.Errorf("row 1 = %v, %v", v, ok)
		}
		return nil
	})

	c := &Counter{Hits: -1}
	err = database.RunInTransaction(t.Context(), db, func(ctx context.Context) error {
		return executorFor[Counter](t).Save(ctx, reflect.ValueOf(c))
	})
	if err == nil || c.ID != nil {
		t.Errorf("pointer key after failed save = %v, err %v", c.ID, err)
	}
}
