package rubric

import (
	"testing"

	"github.com/envgauge/envgauge/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mkRubric builds an in-memory rubric the way Load would
func mkRubric(t *testing.T, specs ...TestSpec) *Rubric {
	t.Helper()
	r := &Rubric{Repo: "test", Tests: specs, index: make(map[string]int, len(specs))}
	for i, s := range specs {
		r.index[s.ID] = i
	}
	return r
}

func spec(id string, requires ...string) TestSpec {
	return TestSpec{
		ID:       id,
		Type:     TypeRunCommand,
		Params:   &Params{Command: "true"},
		Timeout:  DefaultTimeoutSeconds,
		Score:    DefaultScore,
		Requires: requires,
	}
}

func TestResolveNoDependencies(t *testing.T) {
	r := mkRubric(t, spec("a"), spec("b"), spec("c"))

	order, err := Resolve(r)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, order, "unconstrained tests keep rubric order")
}

func TestResolveRespectsRequires(t *testing.T) {
	// c is listed first but requires a and b
	r := mkRubric(t, spec("c", "a", "b"), spec("a"), spec("b"))

	order, err := Resolve(r)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 0}, order)
}

func TestResolveTransitiveChain(t *testing.T) {
	r := mkRubric(t, spec("d", "c"), spec("c", "b"), spec("b", "a"), spec("a"))

	order, err := Resolve(r)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2, 1, 0}, order)
}

func TestResolveStableTieBreak(t *testing.T) {
	// After a is emitted the remaining three are all ready and come out
	// in rubric order
	r := mkRubric(t, spec("a"), spec("b", "a"), spec("c", "a"), spec("d"))

	order, err := Resolve(r)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, order)

	// Determinism: resolving again yields the same order
	again, err := Resolve(r)
	require.NoError(t, err)
	assert.Equal(t, order, again)
}

func TestResolveTieBreakReadiesEarlierTest(t *testing.T) {
	// Emitting c readies x, which sits before d in the rubric; x must
	// come out ahead of d even though the scan had already passed it
	r := mkRubric(t, spec("x", "c"), spec("b"), spec("c"), spec("d"))

	order, err := Resolve(r)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 0, 3}, order)
}

func TestResolveEveryTestAfterItsDependencies(t *testing.T) {
	r := mkRubric(t,
		spec("build"),
		spec("install", "build"),
		spec("smoke", "install"),
		spec("lint"),
		spec("full", "smoke", "lint"),
	)

	order, err := Resolve(r)
	require.NoError(t, err)

	pos := make(map[int]int, len(order))
	for p, idx := range order {
		pos[idx] = p
	}
	for i, test := range r.Tests {
		for _, dep := range test.Requires {
			di, ok := r.Index(dep)
			require.True(t, ok)
			assert.Less(t, pos[di], pos[i], "dependency %s must precede %s", dep, test.ID)
		}
	}
}

func TestResolveCycle(t *testing.T) {
	r := mkRubric(t, spec("a", "b"), spec("b", "a"))

	_, err := Resolve(r)
	require.Error(t, err)

	evalErr, ok := err.(*errors.EvalError)
	require.True(t, ok, "expected *errors.EvalError, got %T", err)
	assert.Equal(t, errors.ErrCodeRubricCyclicDep, evalErr.Code)
	assert.Contains(t, err.Error(), "a")
	assert.Contains(t, err.Error(), "b")
}

func TestResolveSelfCycle(t *testing.T) {
	r := mkRubric(t, spec("a", "a"))

	_, err := Resolve(r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circular dependency")
}

func TestResolveCycleDoesNotBlockIndependentTests(t *testing.T) {
	// The cycle is a configuration error for the whole rubric; Resolve
	// reports it rather than emitting a partial order
	r := mkRubric(t, spec("ok"), spec("a", "b"), spec("b", "a"))

	_, err := Resolve(r)
	require.Error(t, err)
}

func TestTransitiveRequires(t *testing.T) {
	r := mkRubric(t, spec("a"), spec("b", "a"), spec("c", "b"), spec("d"))

	deps := TransitiveRequires(r, 2)
	assert.Equal(t, map[int]bool{0: true, 1: true}, deps)

	assert.Empty(t, TransitiveRequires(r, 0))
	assert.Empty(t, TransitiveRequires(r, 3))
}
