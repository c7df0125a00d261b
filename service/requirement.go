package service

import (
	"sort"
	"strings"

	"github.com/layer-3/tollgate/core"
)

// AccessPolicy is the configured path→requirement mapping: exact paths,
// protected prefixes, and the requirement applied to any protected path
// matching neither.
type AccessPolicy struct {
	Exact    map[string]core.TokenRequirement
	Prefixes map[string]core.TokenRequirement
	Default  core.TokenRequirement
}

type prefixRule struct {
	prefix string
	req    core.TokenRequirement
}

// RequirementResolver resolves request paths to token requirements. It is
// pure: identical paths always resolve identically.
type RequirementResolver struct {
	exact    map[string]core.TokenRequirement
	prefixes []prefixRule
	def      core.TokenRequirement
}

// NewRequirementResolver builds a resolver from the policy. Prefix rules are
// ordered longest-first so that the most specific prefix always wins;
// equal-length prefixes order lexicographically, which keeps resolution
// deterministic regardless of map iteration order.
func NewRequirementResolver(policy AccessPolicy) *RequirementResolver {
	exact := make(map[string]core.TokenRequirement, len(policy.Exact))
	for path, req := range policy.Exact {
		exact[path] = req
	}

	prefixes := make([]prefixRule, 0, len(policy.Prefixes))
	for prefix, req := range policy.Prefixes {
		prefixes = append(prefixes, prefixRule{prefix: prefix, req: req})
	}
	sort.Slice(prefixes, func(i, j int) bool {
		if len(prefixes[i].prefix) != len(prefixes[j].prefix) {
			return len(prefixes[i].prefix) > len(prefixes[j].prefix)
		}
		return prefixes[i].prefix < prefixes[j].prefix
	})

	return &RequirementResolver{
		exact:    exact,
		prefixes: prefixes,
		def:      policy.Default,
	}
}

// Protected reports whether the path falls under the access policy at all.
func (r *RequirementResolver) Protected(path string) bool {
	if _, ok := r.exact[path]; ok {
		return true
	}
	for _, rule := range r.prefixes {
		if strings.HasPrefix(path, rule.prefix) {
			return true
		}
	}
	return false
}

// Resolve returns the requirement for the path: exact match, else the
// longest matching configured prefix, else the default.
func (r *RequirementResolver) Resolve(path string) core.TokenRequirement {
	if req, ok := r.exact[path]; ok {
		return req
	}
	for _, rule := range r.prefixes {
		if strings.HasPrefix(path, rule.prefix) {
			return rule.req
		}
	}
	return r.def
}
