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

	"github.com/tomoncle/hummer-orm/database"
	"github.com/tomoncle/hummer-orm/errs"
)

// Create builds the repository struct R: its embedded Base gets the
// standard operations and every exported func field is set to run the query
// its declaration resolves to.
func Create[R any]() (R, error) {
	var zero R
	d, err := Describe(reflect.TypeOf((*R)(nil)).Elem())
	if err != nil {
		return zero, err
	}

	c := &core{name: d.Type.Name(), exec: NewExecutor(d.Entity), idType: d.IDType}
	repo := reflect.New(d.Type).Elem()
	base := repo.FieldByIndex(d.base.Index)
	base.Set(reflect.ValueOf(base.Interface().(binder).bind(c)))

	for _, m := range d.Methods {
		if m.Index == nil {
			continue
		}
		repo.FieldByIndex(m.Index).Set(reflect.MakeFunc(m.Type, c.dispatch(m)))
	}
	return repo.Interface().(R), nil
}

func (c *core) dispatch(m MethodSpec) func(args []reflect.Value) []reflect.Value {
	out := m.Type.Out(0)
	subject := c.name + "." + m.Name

	return func(args []reflect.Value) []reflect.Value {
		ctx, _ := args[0].Interface().(context.Context)
		if _, err := database.CurrentConnection(ctx); err != nil {
			return results(out, nil, err)
		}

		var (
			values []reflect.Value
			err    error
		)
		switch q := m.Query; q.Kind {
		case Literal:
			params := make([]interface{}, len(q.ParamOrder))
			for i, p := range q.ParamOrder {
				params[i] = args[p+1].Interface()
			}
			values, err = c.exec.RunLiteral(ctx, q.SQL, params)
		case DerivedFinder:
			values, err = c.exec.FindBy(ctx, q.Column, args[1].Interface())
		default:
			err = &errs.ConfigurationError{
				Subject: subject,
				Reason:  "no query declared and not a FindBy finder",
				Err:     errs.ErrUnsupportedOperation,
			}
		}
		return results(out, values, err)
	}
}

// results shapes entity pointers into the declared return values: a slice
// of entities or the first entity, nil when there is none.
func results(out reflect.Type, values []reflect.Value, err error) []reflect.Value {
	errValue := reflect.Zero(errorType)
	if err != nil {
		errValue = reflect.ValueOf(&err).Elem()
		return []reflect.Value{reflect.Zero(out), errValue}
	}

	if out.Kind() == reflect.Ptr {
		if len(values) == 0 {
			return []reflect.Value{reflect.Zero(out), errValue}
		}
		return []reflect.Value{values[0], errValue}
	}

	slice := reflect.MakeSlice(out, 0, len(values))
	for _, v := range values {
		slice = reflect.Append(slice, v.Elem())
	}
	return []reflect.Value{slice, errValue}
}
