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

package sqlgen

import (
	"fmt"
	"strings"

	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/feature"
	"github.com/uptrace/bun/schema"

	"github.com/tomoncle/hummer-orm/entity"
)

// Dialect abstracts the few statement forms that differ between engines.
// Placeholders are always "?": bun binds arguments on the client side.
type Dialect interface {
	Name() string

	// TypeName renders a column type.
	TypeName(t entity.SQLType) string

	// AutoIncrement returns the modifier appended to a generated column, or
	// an empty string when keys are assigned by the executor only.
	AutoIncrement(c *entity.Column) string

	// Upsert renders an insert-or-replace of all columns keyed on id.
	Upsert(table string, columns []string, id string) string

	// IntegerCast is the type used to compute the next generated key.
	IntegerCast() string
}

var (
	// Standard renders the MERGE form understood by H2 and compatible engines.
	Standard Dialect = standardDialect{}

	// SQLite renders INSERT ... ON CONFLICT upserts.
	SQLite Dialect = sqliteDialect{}

	// PostgreSQL renders INSERT ... ON CONFLICT upserts with PostgreSQL types.
	PostgreSQL Dialect = postgresDialect{}

	// MySQL renders INSERT ... ON DUPLICATE KEY UPDATE upserts.
	MySQL Dialect = mysqlDialect{}
)

// FromBun picks the Dialect matching a bun dialect. Unknown dialects fall
// back on their upsert features, then on Standard.
func FromBun(d schema.Dialect) Dialect {
	if d == nil {
		return Standard
	}
	switch d.Name() {
	case dialect.SQLite:
		return SQLite
	case dialect.PG:
		return PostgreSQL
	case dialect.MySQL:
		return MySQL
	}
	switch {
	case d.Features().Has(feature.InsertOnConflict):
		return SQLite
	case d.Features().Has(feature.InsertOnDuplicateKey):
		return MySQL
	default:
		return Standard
	}
}

type standardDialect struct{}

func (standardDialect) Name() string                     { return "standard" }
func (standardDialect) TypeName(t entity.SQLType) string { return string(t) }
func (standardDialect) IntegerCast() string              { return "BIGINT" }

func (standardDialect) AutoIncrement(c *entity.Column) string {
	if c.Generated {
		return "AUTO_INCREMENT"
	}
	return ""
}

func (standardDialect) Upsert(table string, columns []string, _ string) string {
	return fmt.Sprintf("MERGE INTO %s (%s) VALUES (%s);", table, strings.Join(columns, ", "), placeholders(len(columns)))
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string                        { return "sqlite" }
func (sqliteDialect) TypeName(t entity.SQLType) string    { return string(t) }
func (sqliteDialect) AutoIncrement(*entity.Column) string { return "" }
func (sqliteDialect) IntegerCast() string                 { return "INTEGER" }

func (sqliteDialect) Upsert(table string, columns []string, id string) string {
	return onConflict(table, columns, id)
}

type postgresDialect struct{}

func (postgresDialect) Name() string                        { return "pg" }
func (postgresDialect) AutoIncrement(*entity.Column) string { return "" }
func (postgresDialect) IntegerCast() string                 { return "BIGINT" }

func (postgresDialect) TypeName(t entity.SQLType) string {
	if t == entity.Double {
		return "DOUBLE PRECISION"
	}
	return string(t)
}

func (postgresDialect) Upsert(table string, columns []string, id string) string {
	return onConflict(table, columns, id)
}

type mysqlDialect struct{}

func (mysqlDialect) Name() string                     { return "mysql" }
func (mysqlDialect) TypeName(t entity.SQLType) string { return string(t) }
func (mysqlDialect) IntegerCast() string              { return "SIGNED" }

func (mysqlDialect) AutoIncrement(c *entity.Column) string {
	if c.Generated && c.Type.IsInteger() {
		return "AUTO_INCREMENT"
	}
	return ""
}

func (mysqlDialect) Upsert(table string, columns []string, _ string) string {
	var set []string
	for _, c := range columns {
		set = append(set, fmt.Sprintf("%s = VALUES(%s)", c, c))
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON DUPLICATE KEY UPDATE %s",
		table, strings.Join(columns, ", "), placeholders(len(columns)), strings.Join(set, ", "))
}

func onConflict(table string, columns []string, id string) string {
	var set []string
	for _, c := range columns {
		if strings.EqualFold(c, id) {
			continue
		}
		set = append(set, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
	}
	action := "DO NOTHING"
	if len(set) > 0 {
		action = "DO UPDATE SET " + strings.Join(set, ", ")
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) %s",
		table, strings.Join(columns, ", "), placeholders(len(columns)), id, action)
}

func placeholders(n int) string {
	if n == 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
