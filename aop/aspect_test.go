package aop_test

import (
	"strconv"
	"testing"

	"github.com/sghaida/iocaop/aop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(items []aop.AdviceItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Kind.String() + "@" + strconv.Itoa(it.Order)
	}
	return out
}

// onionAspect records "<kind>@<order>" for its before and after advice.
func onionAspect(rec *recorder, order int, pointcut string) aop.Aspect {
	tag := "@" + strconv.Itoa(order)
	return aop.Aspect{
		Name:  "onion" + tag,
		Order: order,
		Advice: []aop.Advice{
			aop.Before(pointcut, func(*aop.Invocation) error { rec.add("before" + tag); return nil }),
			aop.After(pointcut, func(*aop.Invocation) error { rec.add("after" + tag); return nil }),
		},
	}
}

func TestAspectRegistry_SortsByOrderStable(t *testing.T) {
	t.Parallel()

	r := aop.NewAspectRegistry()
	require.NoError(t, r.Register("c", 2, aop.AdviceSet{}))
	require.NoError(t, r.Register("a", 1, aop.AdviceSet{}))
	require.NoError(t, r.Register("d", 2, aop.AdviceSet{}))
	require.NoError(t, r.Register("b", 1, aop.AdviceSet{}))

	var got []string
	for _, reg := range r.Registrations() {
		got = append(got, reg.Name)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, got)
	assert.Equal(t, 4, r.Len())
}

func TestAspectRegistry_MergeOrder(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	r := aop.NewAspectRegistry()
	// Registered out of order on purpose.
	require.NoError(t, r.RegisterAspect(onionAspect(rec, 2, "*")))
	require.NoError(t, r.RegisterAspect(onionAspect(rec, 1, "*")))

	m := r.Merge()
	assert.Equal(t, []string{"before@1", "before@2"}, names(m.Before))
	assert.Equal(t, []string{"after@2", "after@1"}, names(m.After))
	assert.Equal(t, 4, m.Len())

	chain := m.Match("default", "UserApi", "GetUsers")
	assert.Equal(t, []string{"before@1", "before@2", "after@1", "after@2"}, names(chain))
}

func TestAspectRegistry_OnionSequence(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	r := aop.NewAspectRegistry()
	require.NoError(t, r.RegisterAspect(onionAspect(rec, 2, "UserApi.GetUsers")))
	require.NoError(t, r.RegisterAspect(onionAspect(rec, 1, "UserApi.GetUsers")))

	items := r.Merge().Match("default", "UserApi", "GetUsers")
	chain := aop.NewChain(rec.target("ok", nil), aop.Interceptors(items)...)

	_, err := chain.Proceed(newInv())
	require.NoError(t, err)
	assert.Equal(t, []string{"before@1", "before@2", "original", "after@2", "after@1"}, rec.calls)
}

func TestAdviceSet_MatchKindOrder(t *testing.T) {
	t.Parallel()

	noop := func(*aop.Invocation) error { return nil }
	r := aop.NewAspectRegistry()
	require.NoError(t, r.RegisterAspect(aop.Aspect{
		Name:  "all",
		Order: 0,
		Advice: []aop.Advice{
			aop.After("*", noop),
			aop.AfterThrowing("*", func(*aop.Invocation, error) {}),
			aop.AfterReturning("*", func(*aop.Invocation, any) error { return nil }),
			aop.Before("*", noop),
			aop.Around("*", func(inv *aop.Invocation, c *aop.Chain) (any, error) { return c.Proceed(inv) }),
			aop.Before("Other.*", noop),
		},
	}))

	got := r.Merge().Match("m", "UserApi", "GetUsers")
	assert.Equal(t, []string{"around@0", "before@0", "afterReturning@0", "afterThrowing@0", "after@0"}, names(got))
	for _, it := range got {
		assert.Equal(t, "all", it.Aspect)
		assert.Equal(t, it.Expression, it.Pointcut.String())
	}
}

func TestAspectRegistry_RegisterAspectValidation(t *testing.T) {
	t.Parallel()

	r := aop.NewAspectRegistry()

	err := r.RegisterAspect(aop.Aspect{Name: "nil", Advice: []aop.Advice{aop.Before("*", nil)}})
	require.ErrorIs(t, err, aop.ErrNilAdvice)

	bad := aop.Advice{Kind: aop.Kind(42), Pointcut: "*", Interceptor: aop.InterceptorFunc(
		func(inv *aop.Invocation, c *aop.Chain) (any, error) { return c.Proceed(inv) })}
	err = r.RegisterAspect(aop.Aspect{Name: "kind", Advice: []aop.Advice{bad}})
	var kindErr aop.InvalidKindError
	require.ErrorAs(t, err, &kindErr)

	assert.Equal(t, 0, r.Len())
}

// TestAspectRegistry_RegisterValidatesItems verifies incomplete advice sets
// are rejected before they can reach a chain.
func TestAspectRegistry_RegisterValidatesItems(t *testing.T) {
	t.Parallel()

	pass := aop.InterceptorFunc(func(inv *aop.Invocation, c *aop.Chain) (any, error) { return c.Proceed(inv) })
	pc := aop.Compile("*")

	cases := []struct {
		name string
		set  aop.AdviceSet
		want error
	}{
		{name: "nil pointcut", set: aop.AdviceSet{Before: []aop.AdviceItem{{Kind: aop.KindBefore, Interceptor: pass}}}, want: aop.ErrNilPointcut},
		{name: "nil interceptor", set: aop.AdviceSet{After: []aop.AdviceItem{{Kind: aop.KindAfter, Pointcut: pc}}}, want: aop.ErrNilAdvice},
	}
	for _, tc := range cases {
		r := aop.NewAspectRegistry()
		require.ErrorIs(t, r.Register(tc.name, 0, tc.set), tc.want, tc.name)
		assert.Equal(t, 0, r.Len(), tc.name)
		assert.Empty(t, r.Merge().Match("m", "UserApi", "GetUsers"), tc.name)
	}

	r := aop.NewAspectRegistry()
	err := r.Register("slot", 0, aop.AdviceSet{Around: []aop.AdviceItem{{Kind: aop.KindBefore, Pointcut: pc, Interceptor: pass}}})
	var kindErr aop.InvalidKindError
	require.ErrorAs(t, err, &kindErr)
	assert.Equal(t, "before", kindErr.Name)

	ok := aop.AdviceSet{Before: []aop.AdviceItem{{Kind: aop.KindBefore, Pointcut: pc, Interceptor: pass}}}
	require.NoError(t, r.Register("ok", 0, ok))
	assert.Len(t, r.Merge().Match("m", "UserApi", "GetUsers"), 1)
}

func TestAspectRegistry_CompileOptions(t *testing.T) {
	t.Parallel()

	noop := func(*aop.Invocation) error { return nil }
	aspect := aop.Aspect{Name: "a", Advice: []aop.Advice{aop.Before("*.UserApi.Get*", noop)}}

	strict := aop.NewAspectRegistry()
	require.NoError(t, strict.RegisterAspect(aspect))
	assert.Empty(t, strict.Merge().Match("m", "UserApi", "Delete"))

	legacy := aop.NewAspectRegistry(aop.WithCompileOptions(aop.LegacyThreeSegment()))
	require.NoError(t, legacy.RegisterAspect(aspect))
	assert.Len(t, legacy.Merge().Match("m", "UserApi", "Delete"), 1)
}
