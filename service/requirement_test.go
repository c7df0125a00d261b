package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/layer-3/tollgate/core"
)

func testPolicy() AccessPolicy {
	return AccessPolicy{
		Exact: map[string]core.TokenRequirement{
			"/reports/annual": {TokenID: 9, Amount: 3},
		},
		Prefixes: map[string]core.TokenRequirement{
			"/protected":         {TokenID: 0, Amount: 1},
			"/protected/premium": {TokenID: 1, Amount: 1},
			"/api":               {TokenID: 0, Amount: 1},
		},
		Default: core.TokenRequirement{TokenID: 0, Amount: 1},
	}
}

func TestResolveExactMatch(t *testing.T) {
	r := NewRequirementResolver(testPolicy())

	req := r.Resolve("/reports/annual")
	assert.Equal(t, core.TokenRequirement{TokenID: 9, Amount: 3}, req)
}

func TestResolveLongestPrefixWins(t *testing.T) {
	r := NewRequirementResolver(testPolicy())

	// /protected/premium is configured alongside the shorter /protected;
	// the longer prefix must win.
	req := r.Resolve("/protected/premium")
	assert.Equal(t, uint64(1), req.TokenID)

	req = r.Resolve("/protected/premium/report")
	assert.Equal(t, uint64(1), req.TokenID)

	req = r.Resolve("/protected/basic")
	assert.Equal(t, uint64(0), req.TokenID)
}

func TestResolveDefault(t *testing.T) {
	r := NewRequirementResolver(testPolicy())

	req := r.Resolve("/somewhere/else")
	assert.Equal(t, core.TokenRequirement{TokenID: 0, Amount: 1}, req)
}

func TestResolveIdempotent(t *testing.T) {
	r := NewRequirementResolver(testPolicy())

	for _, path := range []string{"/protected/premium", "/reports/annual", "/other"} {
		first := r.Resolve(path)
		second := r.Resolve(path)
		assert.Equal(t, first, second, "path %q", path)
	}
}

func TestProtected(t *testing.T) {
	r := NewRequirementResolver(testPolicy())

	assert.True(t, r.Protected("/protected"))
	assert.True(t, r.Protected("/protected/anything"))
	assert.True(t, r.Protected("/reports/annual"))
	assert.True(t, r.Protected("/api/me"))
	assert.False(t, r.Protected("/public"))
	assert.False(t, r.Protected("/"))
	assert.False(t, r.Protected("/reports/monthly"))
}

func TestResolverDeterministicOrdering(t *testing.T) {
	// Two resolvers built from the same policy must order equal-length
	// prefixes identically despite map iteration order.
	policy := AccessPolicy{
		Prefixes: map[string]core.TokenRequirement{
			"/aaa": {TokenID: 1, Amount: 1},
			"/bbb": {TokenID: 2, Amount: 1},
			"/ccc": {TokenID: 3, Amount: 1},
		},
	}

	for range 10 {
		r := NewRequirementResolver(policy)
		assert.Equal(t, uint64(2), r.Resolve("/bbb/x").TokenID)
	}
}
