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

	"github.com/tomoncle/hummer-orm/entity"
	"github.com/tomoncle/hummer-orm/types"
)

// Query runs query on the transaction carried by ctx and maps the rows to E.
func Query[E any](ctx context.Context, query string, args ...interface{}) ([]E, error) {
	meta, err := entity.ResolveFor[E]()
	if err != nil {
		return nil, err
	}
	values, err := NewExecutor(meta).RunLiteral(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return collect[E](values), nil
}

// Page returns the page of E described by req. Rows are ordered by the
// requested orders, or by the identifier when none are given.
func Page[E any](ctx context.Context, req *types.PageRequest) (*types.Pagination[E], error) {
	meta, err := entity.ResolveFor[E]()
	if err != nil {
		return nil, err
	}
	if req == nil {
		req = types.NewDefaultPageRequest(1, types.DefaultPageSize)
	}
	exec := NewExecutor(meta)
	where, args := req.GetWhere()

	pagination := types.NewDefaultPagination[E](req.GetPage(), req.GetPageSize())
	total, err := exec.Count(ctx, where, args...)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return pagination, nil
	}
	values, err := exec.FindPage(ctx, where, args, req.GetOrders(), req.GetPageSize(), req.GetOffset())
	if err != nil {
		return nil, err
	}
	pagination.Total = total
	pagination.Items = collect[E](values)
	return pagination, nil
}
