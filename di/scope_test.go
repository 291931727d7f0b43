package di

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type node struct {
	Name  string
	Next  *node
	vals  [2][]int
	attrs map[string]any
	boxed any
}

// TestDeepCopy_CyclesAndUnexported verifies cycles and unexported fields survive deep copies.
func TestDeepCopy_CyclesAndUnexported(t *testing.T) {
	t.Parallel()

	a := &node{Name: "a", vals: [2][]int{{1}, {2}}, attrs: map[string]any{"k": []string{"v"}}}
	b := &node{Name: "b", Next: a, boxed: &node{Name: "boxed"}}
	a.Next = b

	cp := deepCopy(a).(*node)
	require.NotSame(t, a, cp)
	require.NotSame(t, b, cp.Next)
	assert.Same(t, cp, cp.Next.Next, "cycle preserved inside the copy")

	cp.vals[0][0] = 9
	cp.attrs["k"].([]string)[0] = "changed"
	cp.Next.boxed.(*node).Name = "changed"

	assert.Equal(t, 1, a.vals[0][0])
	assert.Equal(t, "v", a.attrs["k"].([]string)[0])
	assert.Equal(t, "boxed", b.boxed.(*node).Name)
}

// TestDeepCopy_NonPointerValues verifies deep copies of plain values, slices and structs.
func TestDeepCopy_NonPointerValues(t *testing.T) {
	t.Parallel()

	assert.Nil(t, deepCopy(nil))
	assert.Equal(t, 3, deepCopy(3))

	in := []map[string]int{{"a": 1}}
	out := deepCopy(in).([]map[string]int)
	out[0]["a"] = 2
	assert.Equal(t, 1, in[0]["a"])

	n := node{Name: "v", vals: [2][]int{{1}, nil}}
	cn := deepCopy(n).(node)
	cn.vals[0][0] = 5
	assert.Equal(t, 1, n.vals[0][0])
}

// TestShallowCopy verifies only the top level is copied.
func TestShallowCopy(t *testing.T) {
	t.Parallel()

	inner := &node{Name: "inner"}
	orig := &node{Name: "outer", Next: inner}

	cp := shallowCopy(orig).(*node)
	require.NotSame(t, orig, cp)
	assert.Same(t, inner, cp.Next)

	m := map[string]int{"a": 1}
	cm := shallowCopy(m).(map[string]int)
	cm["a"] = 2
	assert.Equal(t, 1, m["a"])

	s := []int{1, 2}
	cs := shallowCopy(s).([]int)
	cs[0] = 9
	assert.Equal(t, 1, s[0])

	var nilPtr *node
	assert.Nil(t, shallowCopy(nilPtr))
	assert.Equal(t, "x", shallowCopy("x"))
}

// TestConstruct verifies constructor detection and nil results.
func TestConstruct(t *testing.T) {
	t.Parallel()

	v, err := construct(func() (any, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)

	_, err = construct(func() *node { return nil })
	assert.ErrorIs(t, err, ErrNilInstance)

	_, err = construct(func() any { return nil })
	assert.ErrorIs(t, err, ErrNilInstance)

	_, err = construct(func() (any, error) { return nil, nil })
	assert.ErrorIs(t, err, ErrNilInstance)

	v, err = construct(func(int) *node { return nil })
	require.NoError(t, err)
	assert.NotNil(t, v, "functions with parameters are plain values")

	var nilFn func() *node
	_, err = construct(nilFn)
	assert.Error(t, err)
}
