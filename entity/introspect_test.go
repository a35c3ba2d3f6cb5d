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

package entity_test

import (
	"reflect"
	"testing"

	"github.com/tomoncle/hummer-orm/entity"
)

type Point struct {
	X, Y int64
}

func NewPoint(x, y int64) Point { return Point{X: x, Y: y} }

func TestIntrospect(t *testing.T) {
	t.Parallel()

	info, err := entity.Introspect(reflect.TypeOf(&AllTypes{}))
	if err != nil {
		t.Fatal(err)
	}
	if info.Type != reflect.TypeOf(AllTypes{}) {
		t.Errorf("Type = %v", info.Type)
	}
	for _, p := range info.Properties {
		if p.Name == "Skipped" || p.Name == "private" {
			t.Errorf("property %s should be skipped", p.Name)
		}
		if !p.HasGetter || !p.HasSetter {
			t.Errorf("property %s is not read/write", p.Name)
		}
	}
	if len(info.Constructors) != 1 || info.Constructors[0].Func.IsValid() {
		t.Errorf("expected only the zero value constructor, got %d", len(info.Constructors))
	}
}

func TestRegisterConstructor(t *testing.T) {
	t.Parallel()

	if err := entity.RegisterConstructor(NewPoint); err != nil {
		t.Fatal(err)
	}
	info, err := entity.Introspect(reflect.TypeOf(Point{}))
	if err != nil {
		t.Fatal(err)
	}
	if len(info.Constructors) != 2 {
		t.Fatalf("got %d constructors", len(info.Constructors))
	}
	c := info.Constructors[1]
	p := c.New(info.Type, []reflect.Value{reflect.ValueOf(int64(3)), reflect.ValueOf(int64(4))})
	if got := p.Interface().(*Point); *got != (Point{X: 3, Y: 4}) {
		t.Errorf("New = %+v", got)
	}

	if err := entity.RegisterConstructor(42); err == nil {
		t.Error("non-function accepted")
	}
	if err := entity.RegisterConstructor(func() int { return 0 }); err == nil {
		t.Error("non-struct constructor accepted")
	}
}
