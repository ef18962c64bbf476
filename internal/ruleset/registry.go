package ruleset

import (
	"sort"
	"sync/atomic"

	"patra/pkg/domain"
	dErrors "patra/pkg/domain-errors"
)

// Registry holds the active rule documents, one per scheme. Lookups are
// lock-free; updates swap the whole map atomically so an in-flight
// evaluation keeps the document it started with.
type Registry struct {
	sets atomic.Pointer[map[domain.SchemeCode]*RuleSet]
}

// NewRegistry builds a registry over the given documents. The map is owned
// by the registry after the call.
func NewRegistry(sets map[domain.SchemeCode]*RuleSet) *Registry {
	r := &Registry{}
	if sets == nil {
		sets = map[domain.SchemeCode]*RuleSet{}
	}
	r.sets.Store(&sets)
	return r
}

// Get returns the active document for a scheme.
func (r *Registry) Get(code domain.SchemeCode) (*RuleSet, error) {
	sets := *r.sets.Load()
	rs, ok := sets[code]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeSchemeNotFound, "no ruleset for scheme %q", code)
	}
	return rs, nil
}

// Replace swaps every document at once.
func (r *Registry) Replace(sets map[domain.SchemeCode]*RuleSet) {
	if sets == nil {
		sets = map[domain.SchemeCode]*RuleSet{}
	}
	r.sets.Store(&sets)
}

// Put activates one document, keeping the rest. Copy-on-write: concurrent
// readers see either the old map or the new one, never a partial update.
func (r *Registry) Put(rs *RuleSet) {
	old := *r.sets.Load()
	next := make(map[domain.SchemeCode]*RuleSet, len(old)+1)
	for code, set := range old {
		next[code] = set
	}
	next[rs.SchemeCode] = rs
	r.sets.Store(&next)
}

// Schemes lists the registered scheme codes in stable order.
func (r *Registry) Schemes() []domain.SchemeCode {
	sets := *r.sets.Load()
	codes := make([]domain.SchemeCode, 0, len(sets))
	for code := range sets {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// Len reports how many schemes are registered.
func (r *Registry) Len() int {
	return len(*r.sets.Load())
}
