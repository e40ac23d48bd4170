package namespace_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/on-the-ground/modkit_go/errs"
	"github.com/on-the-ground/modkit_go/namespace"
	"github.com/on-the-ground/modkit_go/registry"
)

func counterSpec(runs *int) *namespace.Spec {
	return &namespace.Spec{
		Name: "m1",
		Define: func(u *namespace.Unit) error {
			*runs++
			u.Set("counter", map[string]int{})
			u.Set("run", *runs)
			return nil
		},
	}
}

func loadWrapped(t *testing.T, spec *namespace.Spec, identity string, opts ...namespace.Option) *namespace.Namespace {
	t.Helper()
	u := namespace.NewUnit(spec, identity, nil)
	require.NoError(t, spec.Define(u))
	return namespace.Wrap(u, opts...)
}

func TestBake_FreshState(t *testing.T) {
	ctx := context.Background()
	runs := 0
	m1 := loadWrapped(t, counterSpec(&runs), "m1")

	m2, err := m1.Bake(ctx, "m2")
	require.NoError(t, err)

	c1 := namespace.MustGetAs[map[string]int](ctx, m1, "counter")
	c1["hits"] = 3

	c2 := namespace.MustGetAs[map[string]int](ctx, m2, "counter")
	assert.Empty(t, c2)
	assert.Equal(t, 2, namespace.MustGetAs[int](ctx, m2, "run"))

	c2["misses"] = 5
	assert.Equal(t, map[string]int{"hits": 3}, namespace.MustGetAs[map[string]int](ctx, m1, "counter"))

	m2.Set("run", 99)
	assert.Equal(t, 1, namespace.MustGetAs[int](ctx, m1, "run"))
}

func TestBake_GenerationChain(t *testing.T) {
	ctx := context.Background()
	runs := 0
	reg := newRegistry(t)
	m1 := loadWrapped(t, counterSpec(&runs), "m1", namespace.WithRegistry(reg))

	m2, err := m1.Bake(ctx, "m2")
	require.NoError(t, err)
	m3, err := m2.Bake(ctx, "m3")
	require.NoError(t, err)

	assert.Equal(t, 1, m1.Generation())
	assert.Equal(t, 2, m2.Generation())
	assert.Equal(t, 3, m3.Generation())
	assert.Same(t, m2, m3.Lineage())
	assert.Same(t, m1, m2.Lineage())
	assert.NotEqual(t, m2.ID(), m3.ID())

	got, ok := reg.Lookup("m3")
	require.True(t, ok)
	assert.Same(t, m3, got)
	assert.Contains(t, m3.String(), "baked (generation: 3) from 'm2'")
}

func TestBake_ReplacesOccupant(t *testing.T) {
	ctx := context.Background()
	runs := 0
	reg := newRegistry(t)
	m1 := loadWrapped(t, counterSpec(&runs), "m1", namespace.WithRegistry(reg))
	require.NoError(t, reg.Replace(m1))

	first, err := m1.Bake(ctx, "m2")
	require.NoError(t, err)
	second, err := m1.Bake(ctx, "m2")
	require.NoError(t, err)

	got, ok := reg.Lookup("m2")
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.NotSame(t, first, got)
}

func TestBake_Shared(t *testing.T) {
	ctx := context.Background()
	runs := 0
	m1 := loadWrapped(t, counterSpec(&runs), "m1")

	m2, err := m1.Bake(ctx, "m2", namespace.WithShared("counter"))
	require.NoError(t, err)

	namespace.MustGetAs[map[string]int](ctx, m1, "counter")["hits"] = 1
	assert.Equal(t, 1, namespace.MustGetAs[map[string]int](ctx, m2, "counter")["hits"])
	assert.Equal(t, 2, namespace.MustGetAs[int](ctx, m2, "run"))

	_, err = m1.Bake(ctx, "m3", namespace.WithShared("missing"))
	assert.ErrorIs(t, err, errs.ErrUnresolvableName)
}

func TestBake_SharedAll(t *testing.T) {
	ctx := context.Background()
	runs := 0
	m1 := loadWrapped(t, counterSpec(&runs), "m1")

	m2, err := m1.Bake(ctx, "m2", namespace.WithSharedAll())
	require.NoError(t, err)

	assert.Equal(t, 1, namespace.MustGetAs[int](ctx, m2, "run"))

	m2.Set("only_in_m2", true)
	assert.False(t, m1.Contains("only_in_m2"))
}

func TestBake_DefineFailureRegistersNothing(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t)
	runs := 0
	spec := &namespace.Spec{
		Name: "flaky",
		Define: func(u *namespace.Unit) error {
			runs++
			if runs > 1 {
				return errors.New("boom")
			}
			u.Set("x", 1)
			return nil
		},
	}
	m1 := loadWrapped(t, spec, "flaky", namespace.WithRegistry(reg))

	_, err := m1.Bake(ctx, "flaky2")
	assert.ErrorIs(t, err, errs.ErrDefinition)
	assert.ErrorContains(t, err, "boom")

	_, ok := reg.Lookup("flaky2")
	assert.False(t, ok)
}

func TestBake_WithoutDefine(t *testing.T) {
	ns := wrapWith(t, nil)

	_, err := ns.Bake(context.Background(), "m2")
	assert.ErrorIs(t, err, errs.ErrDefinition)
}

func TestBake_TargetFromLoadContext(t *testing.T) {
	ctx := context.Background()
	runs := 0
	m1 := loadWrapped(t, counterSpec(&runs), "m1")

	_, err := m1.Bake(ctx, "")
	assert.ErrorIs(t, err, errs.ErrMissingName)

	m9, err := m1.Bake(namespace.WithAssignTarget(ctx, "m9"), "")
	require.NoError(t, err)
	assert.Equal(t, "m9", m9.Identity())
}

func TestBake_PolicyIsCopied(t *testing.T) {
	ctx := context.Background()
	runs := 0
	m1 := loadWrapped(t, counterSpec(&runs), "m1")
	require.NoError(t, m1.Export("counter"))

	m2, err := m1.Bake(ctx, "m2")
	require.NoError(t, err)
	assert.Equal(t, []string{"counter"}, m2.Visible())

	require.NoError(t, m2.Ban("counter"))
	_, err = m2.Get(ctx, "counter")
	assert.ErrorIs(t, err, errs.ErrBannedName)

	_, err = m1.Get(ctx, "counter")
	assert.NoError(t, err)
}

func TestBake_HooksFromDefine(t *testing.T) {
	ctx := context.Background()
	runs := 0
	spec := &namespace.Spec{
		Name: "hooked",
		Define: func(u *namespace.Unit) error {
			runs++
			run := runs
			ns, err := u.Install()
			if err != nil {
				return err
			}
			ns.Delegate(func(_ context.Context, _ *namespace.Namespace, name string) (any, error) {
				return fmt.Sprintf("%s@run%d", name, run), nil
			})
			return nil
		},
	}
	u := namespace.NewUnit(spec, "hooked", nil)
	require.NoError(t, spec.Define(u))
	m1, ok := u.Namespace()
	require.True(t, ok)

	m2, err := m1.Bake(ctx, "hooked2")
	require.NoError(t, err)

	assert.Equal(t, "x@run1", namespace.MustGetAs[string](ctx, m1, "x"))
	assert.Equal(t, "x@run2", namespace.MustGetAs[string](ctx, m2, "x"))
}

func TestBake_HooksInheritedWhenDefineSetsNone(t *testing.T) {
	ctx := context.Background()
	runs := 0
	m1 := loadWrapped(t, counterSpec(&runs), "m1")
	m1.OnCall(func(_ context.Context, ns *namespace.Namespace, _ string, _ ...any) (any, error) {
		return ns.Identity(), nil
	})

	m2, err := m1.Bake(ctx, "m2")
	require.NoError(t, err)

	v, err := m2.Call(ctx)
	require.NoError(t, err)
	assert.Equal(t, "m2", v)
}

func newRegistry(t *testing.T) *registry.MemDB {
	t.Helper()
	reg, err := registry.New()
	require.NoError(t, err)
	return reg
}
