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
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/tomoncle/hummer-orm/internal/naming"
)

// NamingStrategy turns Go identifiers into table and column names.
type NamingStrategy interface {
	TableName(typeName string) string
	ColumnName(fieldName string) string
}

type upperCase struct{}

func (upperCase) TableName(typeName string) string   { return strings.ToUpper(typeName) }
func (upperCase) ColumnName(fieldName string) string { return strings.ToUpper(fieldName) }

type snakePlural struct{}

func (snakePlural) TableName(typeName string) string {
	return inflection.Plural(naming.CamelToSnake(typeName))
}

func (snakePlural) ColumnName(fieldName string) string { return naming.CamelToSnake(fieldName) }

var (
	// UpperCase names tables and columns after the upper-cased identifier:
	// Person.Name maps to PERSON.NAME.
	UpperCase NamingStrategy = upperCase{}

	// SnakePlural names tables after the pluralized snake_case type name and
	// columns after the snake_case field name: UserProfile.CreatedAt maps to
	// user_profiles.created_at.
	SnakePlural NamingStrategy = snakePlural{}
)

// NamingByName returns the strategy registered under name: "upper" (or
// empty) and "snake".
func NamingByName(name string) (NamingStrategy, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "upper", "uppercase":
		return UpperCase, true
	case "snake", "snake_plural":
		return SnakePlural, true
	default:
		return nil, false
	}
}
