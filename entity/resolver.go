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
	"sync"
	"sync/atomic"

	"github.com/vmihailenco/tagparser/v2"

	"github.com/tomoncle/hummer-orm/errs"
)

var tableNamerType = reflect.TypeOf((*TableNamer)(nil)).Elem()

// Resolver derives and caches Metadata for one naming strategy.
type Resolver struct {
	naming NamingStrategy
	cache  sync.Map // reflect.Type -> *Metadata
}

func NewResolver(naming NamingStrategy) *Resolver {
	if naming == nil {
		naming = UpperCase
	}
	return &Resolver{naming: naming}
}

func (r *Resolver) Naming() NamingStrategy { return r.naming }

var defaultResolver atomic.Pointer[Resolver]

func init() {
	defaultResolver.Store(NewResolver(UpperCase))
}

// Default returns the resolver used by Resolve.
func Default() *Resolver { return defaultResolver.Load() }

// SetDefaultNaming replaces the default resolver with a fresh one using
// naming. Metadata already handed out keeps its names.
func SetDefaultNaming(naming NamingStrategy) {
	defaultResolver.Store(NewResolver(naming))
}

// Resolve returns the metadata of t using the default resolver.
func Resolve(t reflect.Type) (*Metadata, error) {
	return Default().Resolve(t)
}

// ResolveFor returns the metadata of E using the default resolver.
func ResolveFor[E any]() (*Metadata, error) {
	return Resolve(reflect.TypeOf((*E)(nil)).Elem())
}

// Resolve returns the cached metadata of t, deriving it on first use.
func (r *Resolver) Resolve(t reflect.Type) (*Metadata, error) {
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t != nil {
		if m, ok := r.cache.Load(t); ok {
			return m.(*Metadata), nil
		}
	}

	info, err := Introspect(t)
	if err != nil {
		return nil, err
	}
	m, err := r.build(info)
	if err != nil {
		return nil, err
	}
	actual, _ := r.cache.LoadOrStore(info.Type, m)
	return actual.(*Metadata), nil
}

func (r *Resolver) build(info *BeanInfo) (*Metadata, error) {
	t := info.Type
	m := &Metadata{Type: t, Table: r.tableName(t)}

	for _, p := range info.Properties {
		tag := tagparser.Parse(p.Tag)

		sqlType, nullable, ok := sqlTypeOf(p.Type)
		if !ok {
			return nil, errs.Configf(t.Name()+"."+p.Name, "unsupported type %s", p.Type)
		}

		col := &Column{
			Property: p.Name,
			Name:     r.naming.ColumnName(p.Name),
			Type:     sqlType,
			GoType:   p.Type,
			Nullable: nullable,
			Index:    p.Index,
		}
		if tag.Name != "" {
			col.Name = tag.Name
		}

		if tag.HasOption("generated") && !tag.HasOption("id") {
			return nil, errs.Configf(t.Name()+"."+p.Name, "generated requires the id option")
		}
		if tag.HasOption("id") {
			if m.ID != nil {
				return nil, errs.Configf(t.Name(), "both %s and %s are marked as identifier", m.ID.Property, p.Name)
			}
			col.ID = true
			m.ID = col
			if tag.HasOption("generated") {
				if !sqlType.IsInteger() && sqlType != Varchar {
					return nil, errs.Configf(t.Name()+"."+p.Name, "generated identifier must be an integer or string, got %s", p.Type)
				}
				col.Generated = true
			}
		}

		m.Columns = append(m.Columns, col)
	}
	return m, nil
}

func (r *Resolver) tableName(t reflect.Type) string {
	if reflect.PointerTo(t).Implements(tableNamerType) {
		if name := reflect.New(t).Interface().(TableNamer).TableName(); name != "" {
			return name
		}
	}
	return r.naming.TableName(t.Name())
}

// sqlTypeOf maps a Go field type to its column type. Pointers map to their
// element type and are always nullable.
func sqlTypeOf(t reflect.Type) (SQLType, bool, bool) {
	nullable := false
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
		nullable = true
	}
	switch t.Kind() {
	case reflect.Bool:
		return Boolean, nullable, true
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Uint8, reflect.Uint16:
		return Integer, nullable, true
	case reflect.Int, reflect.Int64, reflect.Uint32:
		return BigInt, nullable, true
	case reflect.Float32:
		return Real, nullable, true
	case reflect.Float64:
		return Double, nullable, true
	case reflect.String:
		return Varchar, true, true
	default:
		return "", false, false
	}
}
