package interfaces

import (
	"context"
	"fmt"
)

// call invokes method on vid and decodes the reply with reg. The method's
// parser is checked before anything is sent.
func call(ctx context.Context, inv Invoker, reg *Registry, vid int, method string, params ...any) (any, error) {
	if !reg.Has(method) {
		return nil, fmt.Errorf("%w: %s", ErrMissingParser, method)
	}

	r, err := inv.Invoke(ctx, vid, method, params...)
	if err != nil {
		return nil, err
	}
	return reg.Parse(FromInvoke(r))
}

// callAs is call with the decoded value asserted to T.
func callAs[T any](ctx context.Context, inv Invoker, reg *Registry, vid int, method string, params ...any) (T, error) {
	var zero T
	v, err := call(ctx, inv, reg, vid, method, params...)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%s: parser returned %T, want %T", method, v, zero)
	}
	return t, nil
}
