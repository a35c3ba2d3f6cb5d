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
	"reflect"

	"github.com/tomoncle/hummer-orm/entity"
	"github.com/tomoncle/hummer-orm/errs"
)

// Repository is the set of operations every repository offers. All of them
// run on the transaction carried by ctx.
type Repository[E any, ID any] interface {
	FindAll(ctx context.Context) ([]E, error)

	// FindByID returns nil when no row has the identifier.
	FindByID(ctx context.Context, id ID) (*E, error)

	// Save inserts or replaces entity and returns it, with a generated
	// identifier assigned when it was unset.
	Save(ctx context.Context, entity *E) (*E, error)
}

// core is the state shared by a repository and its declared methods.
type core struct {
	name   string
	exec   *Executor
	idType reflect.Type
}

// Base implements Repository. Embed it in a repository struct and build the
// struct with Create; a Base obtained any other way fails every call.
//
// Repositories are not comparable: == does not compile on a repository
// struct and panics on two interface values holding one; the same goes for
// map keys. String panics with errs.ErrUnsupportedOperation.
type Base[E any, ID any] struct {
	_    [0]func()
	core *core
}

var _ Repository[struct{}, int] = Base[struct{}, int]{}

type binder interface {
	entityType() reflect.Type
	idType() reflect.Type
	bind(c *core) interface{}
}

func (Base[E, ID]) entityType() reflect.Type { return reflect.TypeOf((*E)(nil)).Elem() }
func (Base[E, ID]) idType() reflect.Type     { return reflect.TypeOf((*ID)(nil)).Elem() }

func (b Base[E, ID]) bind(c *core) interface{} {
	b.core = c
	return b
}

// New returns a repository offering the standard operations on E.
func New[E any, ID any]() (Repository[E, ID], error) {
	var b Base[E, ID]
	c, err := newCore(b.entityType().Name()+"Repository", b)
	if err != nil {
		return nil, err
	}
	return b.bind(c).(Base[E, ID]), nil
}

func newCore(name string, b binder) (*core, error) {
	meta, err := entity.Resolve(b.entityType())
	if err != nil {
		return nil, err
	}
	if err := checkIDType(name, meta, b.idType()); err != nil {
		return nil, err
	}
	return &core{name: name, exec: NewExecutor(meta), idType: b.idType()}, nil
}

func checkIDType(name string, meta *entity.Metadata, idType reflect.Type) error {
	if meta.ID == nil || idType.Kind() == reflect.Interface {
		return nil
	}
	want := meta.ID.GoType
	if want.Kind() == reflect.Ptr {
		want = want.Elem()
	}
	if idType.Kind() == reflect.Ptr {
		idType = idType.Elem()
	}
	if !idType.ConvertibleTo(want) || (idType.Kind() == reflect.String) != (want.Kind() == reflect.String) {
		return errs.Configf(name, "identifier type %s does not match %s.%s of type %s",
			idType, meta.Type.Name(), meta.ID.Property, meta.ID.GoType)
	}
	return nil
}

func (b Base[E, ID]) get() (*core, error) {
	if b.core == nil {
		return nil, errs.Configf(b.entityType().Name()+"Repository", "repository was not built with New or Create")
	}
	return b.core, nil
}

func (b Base[E, ID]) FindAll(ctx context.Context) ([]E, error) {
	c, err := b.get()
	if err != nil {
		return nil, err
	}
	values, err := c.exec.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return collect[E](values), nil
}

func (b Base[E, ID]) FindByID(ctx context.Context, id ID) (*E, error) {
	c, err := b.get()
	if err != nil {
		return nil, err
	}
	value, ok, err := c.exec.FindByID(ctx, id)
	if err != nil || !ok {
		return nil, err
	}
	return value.Interface().(*E), nil
}

func (b Base[E, ID]) Save(ctx context.Context, entity *E) (*E, error) {
	c, err := b.get()
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, errs.Configf(c.name+".Save", "nil entity")
	}
	if err := c.exec.Save(ctx, reflect.ValueOf(entity)); err != nil {
		return nil, err
	}
	return entity, nil
}

// String panics: a repository has no printable identity.
func (b Base[E, ID]) String() string {
	panic(errs.ErrUnsupportedOperation)
}

func collect[E any](values []reflect.Value) []E {
	out := make([]E, len(values))
	for i, v := range values {
		out[i] = *v.Interface().(*E)
	}
	return out
}
