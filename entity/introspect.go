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
	"fmt"
	"reflect"
	"sync"

	"github.com/tomoncle/hummer-orm/errs"
)

const tagKey = "orm"

// Property is a readable and writable field of a struct type.
type Property struct {
	Name      string
	Type      reflect.Type
	Index     []int
	Tag       string
	HasGetter bool
	HasSetter bool
}

// Constructor builds a new instance of an entity. The zero value constructor
// has no parameters and no Func.
type Constructor struct {
	Func   reflect.Value
	Params []reflect.Type
}

// New returns a pointer to a freshly built instance of t.
func (c *Constructor) New(t reflect.Type, args []reflect.Value) reflect.Value {
	if !c.Func.IsValid() {
		return reflect.New(t)
	}
	out := c.Func.Call(args)[0]
	if out.Kind() == reflect.Ptr {
		if out.IsNil() {
			return reflect.New(t)
		}
		return out
	}
	ptr := reflect.New(t)
	ptr.Elem().Set(out)
	return ptr
}

// BeanInfo lists the properties and constructors of a struct type.
type BeanInfo struct {
	Type         reflect.Type
	Properties   []Property
	Constructors []*Constructor
}

var (
	constructorsMu sync.RWMutex
	constructors   = map[reflect.Type][]*Constructor{}
)

// RegisterConstructor makes fn available to row mapping. fn must be a
// function returning E or *E for a struct type E.
func RegisterConstructor(fn interface{}) error {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return errs.Configf(fmt.Sprintf("%T", fn), "constructor must be a function")
	}
	ft := v.Type()
	if ft.NumOut() != 1 || ft.IsVariadic() {
		return errs.Configf(ft.String(), "constructor must return exactly one value")
	}
	t := ft.Out(0)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return errs.Configf(ft.String(), "constructor must return a struct or a pointer to one")
	}

	params := make([]reflect.Type, ft.NumIn())
	for i := range params {
		params[i] = ft.In(i)
	}

	constructorsMu.Lock()
	constructors[t] = append(constructors[t], &Constructor{Func: v, Params: params})
	constructorsMu.Unlock()
	return nil
}

// Introspect lists the exported, non-embedded fields of t (a struct or a
// pointer to one) and its constructors.
func Introspect(t reflect.Type) (*BeanInfo, error) {
	if t == nil {
		return nil, errs.Configf("<nil>", "no type")
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, errs.Configf(t.String(), "not a struct type")
	}

	info := &BeanInfo{Type: t}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous || !f.IsExported() {
			continue
		}
		tag := f.Tag.Get(tagKey)
		if tag == "-" {
			continue
		}
		info.Properties = append(info.Properties, Property{
			Name:      f.Name,
			Type:      f.Type,
			Index:     f.Index,
			Tag:       tag,
			HasGetter: true,
			HasSetter: true,
		})
	}

	info.Constructors = []*Constructor{{}}
	constructorsMu.RLock()
	info.Constructors = append(info.Constructors, constructors[t]...)
	constructorsMu.RUnlock()
	return info, nil
}
