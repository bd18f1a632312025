package app

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
)

// refreshTimeout bounds a coalesced upstream fetch once it no longer
// follows any single caller's context.
const refreshTimeout = time.Minute

// coalesce runs fetch once per key for all concurrent callers. The fetch
// runs on a context detached from the caller that started it, so one
// caller going away does not fail the others; each caller still returns
// as soon as its own ctx is done.
func coalesce[T any](ctx context.Context, group *singleflight.Group, key string, fetch func(context.Context) (T, error)) (T, error) {
	ch := group.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()
		v, err := fetch(fetchCtx)
		return v, err
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}
