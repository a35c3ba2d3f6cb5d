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

	"github.com/tomoncle/hummer-orm/entity"
)

// CreateTable renders the DDL of m. Non-nullable and generated columns are
// NOT NULL; the PRIMARY KEY clause is present only when m has an identifier.
func CreateTable(d Dialect, m *entity.Metadata) string {
	defs := make([]string, 0, len(m.Columns)+1)
	for _, c := range m.Columns {
		var b strings.Builder
		b.WriteString(c.Name)
		b.WriteByte(' ')
		b.WriteString(d.TypeName(c.Type))
		if !c.Nullable || c.Generated {
			b.WriteString(" NOT NULL")
		}
		if mod := d.AutoIncrement(c); mod != "" {
			b.WriteByte(' ')
			b.WriteString(mod)
		}
		defs = append(defs, b.String())
	}
	if m.ID != nil {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", m.ID.Name))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", m.Table, strings.Join(defs, ", "))
}

// Merge renders the upsert of every column of m. m must have an identifier.
func Merge(d Dialect, m *entity.Metadata) string {
	return d.Upsert(m.Table, m.ColumnNames(), m.ID.Name)
}

// SelectAll renders SELECT * FROM <table>.
func SelectAll(m *entity.Metadata) string {
	return "SELECT * FROM " + m.Table
}

// SelectBy renders SELECT * FROM <table> WHERE <column> = ?.
func SelectBy(m *entity.Metadata, column string) string {
	return fmt.Sprintf("SELECT * FROM %s WHERE %s = ?", m.Table, column)
}

// NextKey renders the query returning the largest numeric value of the
// generated column, NULL for an empty table.
func NextKey(d Dialect, m *entity.Metadata) string {
	c := m.Generated()
	return fmt.Sprintf("SELECT MAX(CAST(%s AS %s)) FROM %s", c.Name, d.IntegerCast(), m.Table)
}

// Count renders SELECT COUNT(*) FROM <table>[ WHERE <where>].
func Count(m *entity.Metadata, where string) string {
	q := "SELECT COUNT(*) FROM " + m.Table
	if where != "" {
		q += " WHERE " + where
	}
	return q
}

// Page renders a filtered, ordered slice of the table. The limit and
// offset are bound after the filter arguments.
func Page(m *entity.Metadata, where string, orders []string) string {
	q := SelectAll(m)
	if where != "" {
		q += " WHERE " + where
	}
	if len(orders) > 0 {
		q += " ORDER BY " + strings.Join(orders, ", ")
	} else if m.ID != nil {
		q += " ORDER BY " + m.ID.Name
	}
	return q + " LIMIT ? OFFSET ?"
}
