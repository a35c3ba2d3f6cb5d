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

package entity

import (
	"reflect"
	"strings"
)

type SQLType string

const (
	Boolean SQLType = "BOOLEAN"
	Integer SQLType = "INTEGER"
	BigInt  SQLType = "BIGINT"
	Real    SQLType = "REAL"
	Double  SQLType = "DOUBLE"
	Varchar SQLType = "VARCHAR(255)"
)

// IsInteger reports whether values of t are whole numbers.
func (t SQLType) IsInteger() bool {
	return t == Integer || t == BigInt
}

// TableNamer overrides the table name derived from the type name.
type TableNamer interface {
	TableName() string
}

// Column describes how one struct field is stored.
type Column struct {
	Property  string
	Name      string
	Type      SQLType
	GoType    reflect.Type
	Nullable  bool
	Generated bool
	ID        bool
	Index     []int
}

// Field returns the field of the struct value v that backs the column.
func (c *Column) Field(v reflect.Value) reflect.Value {
	return v.FieldByIndex(c.Index)
}

// IsZero reports whether the column's field in v is unset.
func (c *Column) IsZero(v reflect.Value) bool {
	return c.Field(v).IsZero()
}

// Metadata is the immutable mapping between a struct type and its table.
type Metadata struct {
	Type    reflect.Type
	Table   string
	Columns []*Column
	ID      *Column
}

// Column finds a column by property name, ignoring case.
func (m *Metadata) Column(property string) *Column {
	for _, c := range m.Columns {
		if strings.EqualFold(c.Property, property) {
			return c
		}
	}
	return nil
}

// ColumnByName finds a column by column name, ignoring case.
func (m *Metadata) ColumnByName(name string) *Column {
	for _, c := range m.Columns {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// ColumnNames returns the column names in declaration order.
func (m *Metadata) ColumnNames() []string {
	names := make([]string, len(m.Columns))
	for i, c := range m.Columns {
		names[i] = c.Name
	}
	return names
}

// Generated returns the generated column, or nil.
func (m *Metadata) Generated() *Column {
	if m.ID != nil && m.ID.Generated {
		return m.ID
	}
	return nil
}
