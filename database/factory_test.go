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

package database_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/tomoncle/hummer-orm/database"
)

type Widget struct {
	ID   int64 `orm:",id,generated"`
	Name string
}

func TestCreateFromConfig_Validation(t *testing.T) {
	t.Parallel()

	f := database.NewDatabaseFactory()
	if _, err := f.CreateFromConfig(nil); err == nil {
		t.Error("nil config accepted")
	}
	if _, err := f.CreateFromConfig(&database.ConnectionConfig{Type: "oracle"}); err == nil {
		t.Error("unsupported type accepted")
	}
	if err := f.InitializeDatabase(t.Context(), nil); err == nil {
		t.Error("InitializeDatabase without manager accepted")
	}
}

func TestCreateFromConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "override.local")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_ENABLE_QUERY_LOG", "true")

	cfg := database.DefaultConnectionConfig()
	cfg.Type = "postgres"
	if _, err := database.NewDatabaseFactory().CreateFromConfig(cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Host != "override.local" || cfg.Port != 6543 || !cfg.EnableQueryLog {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

// Uses the global database, so it does not run in parallel.
func TestInitDB(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "seed.sql")
	if err := os.WriteFile(script, []byte("INSERT INTO WIDGET (ID, NAME) VALUES (1, 'gear');\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	database.RegisterEntity[Widget](0)

	cfg := database.DefaultConfig()
	cfg.Connection.DBName = filepath.Join(dir, "app")
	cfg.Schema.AutoCreateTables = true
	cfg.Schema.InitScript = script
	cfg.Log.Level = "warn"

	db, err := database.InitDB(t.Context(), cfg)
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { _ = database.CloseDB() })

	if database.GetDB() != db || database.GetConfig() != cfg {
		t.Error("globals not set")
	}
	if n := countRows(t, db, "WIDGET"); n != 1 {
		t.Errorf("rows = %d, want 1", n)
	}
	if status := database.GetHealthStatus(t.Context()); !status.Healthy {
		t.Errorf("health = %+v", status)
	}
	if stats := database.GetDatabaseStats(); stats.MaxOpenConns != 1 {
		t.Errorf("sqlite pool size = %d, want 1", stats.MaxOpenConns)
	}

	err = database.RunInTransaction(t.Context(), db, func(ctx context.Context) error {
		return database.CreateTableFor[Widget](ctx)
	})
	if err == nil {
		t.Error("creating WIDGET twice succeeded")
	}
}
