package namespace_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/on-the-ground/modkit_go/errs"
	"github.com/on-the-ground/modkit_go/namespace"
)

func wrapWith(t *testing.T, symbols map[string]any, opts ...namespace.Option) *namespace.Namespace {
	t.Helper()
	u := namespace.NewUnit(&namespace.Spec{Name: "m", File: "m.go"}, "m", nil)
	for k, v := range symbols {
		u.Set(k, v)
	}
	return namespace.Wrap(u, opts...)
}

func TestGet_ExportAllBanPrefix(t *testing.T) {
	ctx := context.Background()
	ns := wrapWith(t, map[string]any{"BANNED_X": 1, "OK": 2})
	require.NoError(t, ns.Export("*"))
	require.NoError(t, ns.Ban("BANNED_*"))

	v, err := ns.Get(ctx, "OK")
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	_, err = ns.Get(ctx, "BANNED_X")
	assert.ErrorIs(t, err, errs.ErrBannedName)
	assert.False(t, ns.Contains("BANNED_X"))
}

func TestGet_AliasToMissingName(t *testing.T) {
	ns := wrapWith(t, nil)
	require.NoError(t, ns.Alias("Y", "X"))

	_, err := ns.Get(context.Background(), "Y")
	assert.ErrorIs(t, err, errs.ErrUnresolvableName)
	assert.ErrorContains(t, err, "alias to X")
}

func TestGet_AliasToDefinedName(t *testing.T) {
	ns := wrapWith(t, map[string]any{"X": 5})
	require.NoError(t, ns.Alias("Y", "X"))

	v, err := ns.Get(context.Background(), "Y")
	require.NoError(t, err)
	assert.Equal(t, 5, v)
	assert.True(t, ns.Contains("Y"))
}

func TestGet_AliasToBannedName(t *testing.T) {
	ns := wrapWith(t, map[string]any{"X": 5})
	require.NoError(t, ns.Alias("Y", "X"))
	require.NoError(t, ns.Ban("X"))

	_, err := ns.Get(context.Background(), "Y")
	assert.ErrorIs(t, err, errs.ErrBannedName)
	assert.False(t, ns.Contains("Y"))
}

func TestGet_Delegate(t *testing.T) {
	ns := wrapWith(t, nil)
	ns.Delegate(func(_ context.Context, _ *namespace.Namespace, name string) (any, error) {
		return strings.ToUpper(name), nil
	})

	v, err := ns.Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "ABC", v)
}

func TestGet_DelegateErrorIsVerbatim(t *testing.T) {
	ns := wrapWith(t, nil)
	sentinel := assert.AnError
	ns.Delegate(func(context.Context, *namespace.Namespace, string) (any, error) {
		return nil, sentinel
	})

	_, err := ns.Get(context.Background(), "anything")
	assert.Same(t, sentinel, err)
}

func TestGet_BanBeatsDelegate(t *testing.T) {
	ns := wrapWith(t, nil)
	require.NoError(t, ns.Ban("secret*"))
	ns.Delegate(func(context.Context, *namespace.Namespace, string) (any, error) {
		return "leak", nil
	})

	_, err := ns.Get(context.Background(), "secret_key")
	assert.ErrorIs(t, err, errs.ErrBannedName)
}

func TestGet_NotExported(t *testing.T) {
	ns := wrapWith(t, map[string]any{"OK": 1, "HIDDEN": 2})
	require.NoError(t, ns.Export("OK"))

	_, err := ns.Get(context.Background(), "HIDDEN")
	assert.ErrorIs(t, err, errs.ErrUnresolvableName)
	assert.Equal(t, []string{"OK"}, ns.Visible())
}

func TestGet_BootstrapProbeAnsweredOnce(t *testing.T) {
	probe := namespace.WithBootstrapProbe(context.Background())
	ns := wrapWith(t, map[string]any{"OK": 1})

	_, err := ns.Get(probe, "OK")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	v, err := ns.Get(probe, "OK")
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestGet_BootstrapProbeSuppressionDisabled(t *testing.T) {
	probe := namespace.WithBootstrapProbe(context.Background())
	ns := wrapWith(t, map[string]any{"OK": 1}, namespace.WithBootstrapProbeSuppression(false))

	v, err := ns.Get(probe, "OK")
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestGet_FirstOrdinaryLookupLeavesPendingState(t *testing.T) {
	ctx := context.Background()
	ns := wrapWith(t, map[string]any{"OK": 1})

	_, err := ns.Get(ctx, "OK")
	require.NoError(t, err)

	v, err := ns.Get(namespace.WithBootstrapProbe(ctx), "OK")
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestVisible_TracksTableWrites(t *testing.T) {
	ns := wrapWith(t, map[string]any{"a": 1})
	assert.False(t, ns.Contains("b"))

	ns.Set("b", 2)
	assert.True(t, ns.Contains("b"))

	// writes that bypass the namespace are still observed
	ns.Symbols().Set("c", 3)
	assert.True(t, ns.Contains("c"))

	require.NoError(t, ns.Delete("b"))
	assert.False(t, ns.Contains("b"))
	assert.ErrorIs(t, ns.Delete("b"), errs.ErrUnresolvableName)

	ns.Symbols().Delete("c")
	assert.Equal(t, []string{"a"}, ns.Visible())
}

func TestVisible_TracksPolicyChanges(t *testing.T) {
	ns := wrapWith(t, map[string]any{"a": 1, "b": 2})
	assert.ElementsMatch(t, []string{"a", "b"}, ns.Visible())

	require.NoError(t, ns.Ban("a"))
	assert.Equal(t, []string{"b"}, ns.Visible())

	ns.Unban("a")
	assert.ElementsMatch(t, []string{"a", "b"}, ns.Visible())
}

func TestDir_IgnoresPolicy(t *testing.T) {
	ns := wrapWith(t, map[string]any{"a": 1})
	require.NoError(t, ns.Ban("a"))
	require.NoError(t, ns.Alias("b", "a"))

	assert.ElementsMatch(t, []string{"a", "b"}, ns.Dir())
	assert.Empty(t, ns.Visible())
}

func TestCall(t *testing.T) {
	ctx := context.Background()
	ns := wrapWith(t, nil)

	_, err := ns.Call(ctx)
	assert.ErrorIs(t, err, errs.ErrNotCallable)

	ns.OnCall(func(_ context.Context, _ *namespace.Namespace, target string, args ...any) (any, error) {
		return target + ":" + args[0].(string), nil
	})

	v, err := ns.Call(namespace.WithAssignTarget(ctx, "x"), "hi")
	require.NoError(t, err)
	assert.Equal(t, "x:hi", v)

	v, err = ns.CallAs(ctx, "y", "there")
	require.NoError(t, err)
	assert.Equal(t, "y:there", v)
}

func TestPostInit(t *testing.T) {
	ns := wrapWith(t, map[string]any{"a": 1})

	err := ns.PostInit(func(ns *namespace.Namespace) error {
		return ns.Export("a")
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ns.Policy().Exports())
}

func TestString(t *testing.T) {
	ns := wrapWith(t, nil)
	assert.Equal(t, "<namespace (wrapped) 'm' from 'm.go'>", ns.String())

	bare := namespace.Wrap(namespace.NewUnit(nil, "bare", nil))
	assert.Equal(t, "<namespace (wrapped) 'bare'>", bare.String())
	assert.Equal(t, []string{}, bare.Path())
}

func TestCheckBan(t *testing.T) {
	ns := wrapWith(t, map[string]any{"X": 1})
	require.NoError(t, ns.Ban("_*"))
	require.NoError(t, ns.Alias("Y", "_x"))

	assert.ErrorIs(t, ns.CheckBan("_y"), errs.ErrBannedName)
	assert.ErrorIs(t, ns.CheckBan("Y"), errs.ErrBannedName)
	assert.NoError(t, ns.CheckBan("X"))

	// the pending bootstrap state survives a ban check
	_, err := ns.Get(namespace.WithBootstrapProbe(context.Background()), "X")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
