package query

import (
	"context"

	"catalogapi/internal/apperror"
)

// Store runs a plan and returns the page's records together with the number
// of records matching the plan's filters.
type Store[T any] interface {
	List(ctx context.Context, plan Plan) ([]T, int, error)
}

// StoreFunc adapts a function to Store.
type StoreFunc[T any] func(ctx context.Context, plan Plan) ([]T, int, error)

func (f StoreFunc[T]) List(ctx context.Context, plan Plan) ([]T, int, error) {
	return f(ctx, plan)
}

// Page is one slice of a listing with navigation hints.
type Page[T any] struct {
	Count    int  `json:"count"`
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	Next     *int `json:"next"`
	Previous *int `json:"previous"`
	Results  []T  `json:"results"`
}

// Execute runs plan against store. Store failures are reported as
// apperror.ErrStoreUnavailable and never retried.
func Execute[T any](ctx context.Context, store Store[T], plan Plan) (*Page[T], error) {
	items, total, err := store.List(ctx, plan)
	if err != nil {
		return nil, apperror.Unavailable(err)
	}
	if items == nil {
		items = make([]T, 0)
	}

	page := &Page[T]{
		Count:    total,
		Page:     plan.Page,
		PageSize: plan.PageSize,
		Results:  items,
	}
	if offset := plan.Offset(); offset < total && total-offset > len(items) {
		n := plan.Page + 1
		page.Next = &n
	}
	if plan.Page > 1 {
		n := plan.Page - 1
		page.Previous = &n
	}
	return page, nil
}

// Run composes and executes in one step.
func Run[T any](ctx context.Context, store Store[T], res Resource, params Params, def Defaults) (*Page[T], error) {
	plan, err := Compose(res, params, def)
	if err != nil {
		return nil, err
	}
	return Execute(ctx, store, plan)
}
