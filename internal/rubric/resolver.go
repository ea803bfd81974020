package rubric

import (
	"github.com/envgauge/envgauge/internal/errors"
)

// Resolve computes the execution order for a rubric's tests as dense
// indices into r.Tests. The order is a stable topological sort: every
// test appears after all of its requires, and tests with no ordering
// constraint between them keep their original rubric positions. The
// same rubric always resolves to the same order.
//
// A requires cycle yields a configuration error naming the cycle path;
// unknown requires ids are already rejected at load time.
func Resolve(r *Rubric) ([]int, error) {
	n := len(r.Tests)

	indegree := make([]int, n)
	for _, t := range r.Tests {
		if i, ok := r.Index(t.ID); ok {
			indegree[i] = len(t.Requires)
		}
	}

	emitted := make([]bool, n)
	order := make([]int, 0, n)

	// Each round emits the lowest-index unemitted test whose requires
	// are all emitted, then rescans from the start: an emission can
	// ready a test positioned before the cursor, and that test must win
	// the next tie. Quadratic, but rubrics are small.
	for len(order) < n {
		next := -1
		for i := 0; i < n; i++ {
			if !emitted[i] && indegree[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			return nil, errors.NewCyclicDependencyError(findCycle(r, emitted))
		}

		emitted[next] = true
		order = append(order, next)

		for j, t := range r.Tests {
			if emitted[j] {
				continue
			}
			for _, dep := range t.Requires {
				if di, ok := r.Index(dep); ok && di == next {
					indegree[j]--
				}
			}
		}
	}

	return order, nil
}

// findCycle walks the requires edges among unemitted tests until a test
// repeats, producing a path like "a -> b -> a" for the error message
func findCycle(r *Rubric, emitted []bool) []string {
	start := -1
	for i := range r.Tests {
		if !emitted[i] {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}

	path := []string{}
	seenAt := map[int]int{}
	cur := start
	for {
		if at, seen := seenAt[cur]; seen {
			return append(path[at:], r.Tests[cur].ID)
		}
		seenAt[cur] = len(path)
		path = append(path, r.Tests[cur].ID)

		next := -1
		for _, dep := range r.Tests[cur].Requires {
			if di, ok := r.Index(dep); ok && !emitted[di] {
				next = di
				break
			}
		}
		if next < 0 {
			// Should not happen: an unemitted test always has an
			// unemitted dependency once Kahn stalls
			return path
		}
		cur = next
	}
}

// TransitiveRequires returns the set of all (direct and indirect)
// dependency indices of the test at index i
func TransitiveRequires(r *Rubric, i int) map[int]bool {
	out := make(map[int]bool)
	var walk func(int)
	walk = func(idx int) {
		for _, dep := range r.Tests[idx].Requires {
			if di, ok := r.Index(dep); ok && !out[di] {
				out[di] = true
				walk(di)
			}
		}
	}
	walk(i)
	return out
}
