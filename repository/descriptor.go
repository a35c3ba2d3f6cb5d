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

package repository

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/tomoncle/hummer-orm/database"
	"github.com/tomoncle/hummer-orm/entity"
	"github.com/tomoncle/hummer-orm/errs"
)

const (
	queryTag     = "query"
	finderPrefix = "FindBy"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
	binderType  = reflect.TypeOf((*binder)(nil)).Elem()
)

type QueryKind int

const (
	FindAll QueryKind = iota
	FindByID
	Save
	Literal
	DerivedFinder
	Unsupported
)

func (k QueryKind) String() string {
	switch k {
	case FindAll:
		return "FindAll"
	case FindByID:
		return "FindByID"
	case Save:
		return "Save"
	case Literal:
		return "Literal"
	case DerivedFinder:
		return "DerivedFinder"
	default:
		return "Unsupported"
	}
}

// QuerySpec says how a repository method is answered.
type QuerySpec struct {
	Kind QueryKind

	// Literal
	SQL        string
	ParamOrder []int

	// DerivedFinder
	Property string
	Column   *entity.Column

	// ReturnsOptional is set when the method returns *E rather than []E.
	ReturnsOptional bool
}

// MethodSpec is one method of a repository. Index locates the func field
// of a declared method and is nil for the standard operations.
type MethodSpec struct {
	Name  string
	Index []int
	Type  reflect.Type
	Query QuerySpec
}

// Descriptor is the resolved shape of a repository struct type.
type Descriptor struct {
	Type    reflect.Type
	Entity  *entity.Metadata
	IDType  reflect.Type
	Methods []MethodSpec

	base      reflect.StructField
	entityPtr reflect.Type
}

// Method finds a method by name.
func (d *Descriptor) Method(name string) (MethodSpec, bool) {
	for _, m := range d.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return MethodSpec{}, false
}

var descriptors sync.Map // reflect.Type -> *Descriptor

// Describe resolves the repository struct type t, caching the result for
// the life of the process.
func Describe(t reflect.Type) (*Descriptor, error) {
	if t == nil {
		return nil, errs.Configf("<nil>", "no repository type")
	}
	if d, ok := descriptors.Load(t); ok {
		return d.(*Descriptor), nil
	}
	d, err := describe(t)
	if err != nil {
		return nil, err
	}
	actual, _ := descriptors.LoadOrStore(t, d)
	database.GetLogger().Debug("Repository described", "repository", t.String(), "methods", len(d.Methods))
	return actual.(*Descriptor), nil
}

func describe(t reflect.Type) (*Descriptor, error) {
	if t.Kind() != reflect.Struct {
		return nil, errs.Configf(t.String(), "repository must be a struct embedding repository.Base")
	}

	base, ok := findBase(t)
	if !ok {
		return nil, errs.Configf(t.Name(), "repository must embed repository.Base")
	}
	b := reflect.Zero(base.Type).Interface().(binder)
	meta, err := entity.Resolve(b.entityType())
	if err != nil {
		return nil, err
	}
	if err := checkIDType(t.Name(), meta, b.idType()); err != nil {
		return nil, err
	}

	d := &Descriptor{
		Type:      t,
		Entity:    meta,
		IDType:    b.idType(),
		base:      base,
		entityPtr: reflect.PointerTo(meta.Type),
		Methods: []MethodSpec{
			{Name: "FindAll", Query: QuerySpec{Kind: FindAll}},
			{Name: "FindByID", Query: QuerySpec{Kind: FindByID, ReturnsOptional: true}},
			{Name: "Save", Query: QuerySpec{Kind: Save, ReturnsOptional: true}},
		},
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous || !f.IsExported() || f.Type.Kind() != reflect.Func {
			continue
		}
		spec, err := d.resolve(f)
		if err != nil {
			return nil, err
		}
		d.Methods = append(d.Methods, MethodSpec{Name: f.Name, Index: f.Index, Type: f.Type, Query: spec})
	}
	return d, nil
}

func findBase(t reflect.Type) (reflect.StructField, bool) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.IsExported() && f.Type.Kind() == reflect.Struct && f.Type.Implements(binderType) {
			return f, true
		}
	}
	return reflect.StructField{}, false
}

// resolve picks the query of a declared method: the query tag first, then
// the FindBy naming convention; anything else is Unsupported.
func (d *Descriptor) resolve(f reflect.StructField) (QuerySpec, error) {
	subject := d.Type.Name() + "." + f.Name
	ft := f.Type

	if ft.IsVariadic() || ft.NumIn() == 0 || ft.In(0) != contextType {
		return QuerySpec{}, errs.Configf(subject, "first parameter must be context.Context")
	}
	if ft.NumOut() != 2 || ft.Out(1) != errorType {
		return QuerySpec{}, errs.Configf(subject, "must return (%s, error) or (%s, error)", reflect.SliceOf(d.Entity.Type), d.entityPtr)
	}
	var optional bool
	switch out := ft.Out(0); {
	case out == d.entityPtr:
		optional = true
	case out.Kind() == reflect.Slice && out.Elem() == d.Entity.Type:
	default:
		return QuerySpec{}, errs.Configf(subject, "unsupported return type %s", out)
	}

	if sql, ok := f.Tag.Lookup(queryTag); ok {
		if strings.TrimSpace(sql) == "" {
			return QuerySpec{}, errs.Configf(subject, "empty query")
		}
		order := make([]int, ft.NumIn()-1)
		for i := range order {
			order[i] = i
		}
		return QuerySpec{Kind: Literal, SQL: sql, ParamOrder: order, ReturnsOptional: optional}, nil
	}

	if prop, ok := strings.CutPrefix(f.Name, finderPrefix); ok && prop != "" {
		col := d.Entity.Column(prop)
		if col == nil {
			return QuerySpec{}, errs.Configf(subject, "%s has no property %s", d.Entity.Type.Name(), prop)
		}
		if ft.NumIn() != 2 {
			return QuerySpec{}, errs.Configf(subject, "finder takes exactly one argument, got %d", ft.NumIn()-1)
		}
		return QuerySpec{Kind: DerivedFinder, Property: col.Property, Column: col, ReturnsOptional: optional}, nil
	}

	return QuerySpec{Kind: Unsupported, ReturnsOptional: optional}, nil
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("%s(%s, %s)", d.Type.Name(), d.Entity.Type.Name(), d.IDType)
}
