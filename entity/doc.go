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

// Package entity derives relational metadata from Go struct types.
//
// Fields are mapped in declaration order. The orm struct tag renames a column
// and marks the identifier:
//
//	type Person struct {
//		ID   int64  `orm:"ID,id,generated"`
//		Name string `orm:"FULL_NAME"`
//		Note string `orm:"-"`
//	}
//
// A TableName() string method overrides the table name.
package entity
