package namespace

import (
	"context"
	"fmt"
)

// GetAs resolves name and asserts the value to T.
func GetAs[T any](ctx context.Context, ns *Namespace, name string) (T, error) {
	var zero T

	res, err := ns.Get(ctx, name)
	if err != nil {
		return zero, err
	}

	val, ok := res.(T)
	if !ok {
		return zero, fmt.Errorf("%s.%s: unexpected type: %T", ns.identity, name, res)
	}

	return val, nil
}

// MustGetAs is the panic-on-failure variant of GetAs.
// Use when the name is guaranteed to resolve, e.g. in a unit's own Define.
func MustGetAs[T any](ctx context.Context, ns *Namespace, name string) T {
	res, err := GetAs[T](ctx, ns, name)
	if err != nil {
		panic(err)
	}
	return res
}
