package ruleset

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patra/pkg/domain"
	dErrors "patra/pkg/domain-errors"
)

func TestRegistryGet(t *testing.T) {
	rs := validRuleSet()
	reg := NewRegistry(map[domain.SchemeCode]*RuleSet{rs.SchemeCode: rs})

	got, err := reg.Get("pm-kisan")
	require.NoError(t, err)
	assert.Same(t, rs, got)

	_, err = reg.Get("pm-awas")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeSchemeNotFound))
}

func TestRegistryReplace(t *testing.T) {
	rs := validRuleSet()
	reg := NewRegistry(map[domain.SchemeCode]*RuleSet{rs.SchemeCode: rs})

	next := validRuleSet()
	next.SchemeCode = "pm-fasal"
	reg.Replace(map[domain.SchemeCode]*RuleSet{next.SchemeCode: next})

	_, err := reg.Get("pm-kisan")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeSchemeNotFound))
	got, err := reg.Get("pm-fasal")
	require.NoError(t, err)
	assert.Same(t, next, got)
}

func TestRegistryPut(t *testing.T) {
	reg := NewRegistry(nil)
	assert.Equal(t, 0, reg.Len())

	rs := validRuleSet()
	reg.Put(rs)
	require.Equal(t, 1, reg.Len())

	updated := validRuleSet()
	updated.Version = "2024.2"
	reg.Put(updated)
	require.Equal(t, 1, reg.Len())

	got, err := reg.Get("pm-kisan")
	require.NoError(t, err)
	assert.Equal(t, "2024.2", got.Version)
}

func TestRegistrySchemes(t *testing.T) {
	a := validRuleSet()
	b := validRuleSet()
	b.SchemeCode = "aay"
	reg := NewRegistry(map[domain.SchemeCode]*RuleSet{a.SchemeCode: a, b.SchemeCode: b})

	assert.Equal(t, []domain.SchemeCode{"aay", "pm-kisan"}, reg.Schemes())
}

func TestRegistryConcurrentSwap(t *testing.T) {
	rs := validRuleSet()
	reg := NewRegistry(map[domain.SchemeCode]*RuleSet{rs.SchemeCode: rs})

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				got, err := reg.Get("pm-kisan")
				if err == nil && got == nil {
					t.Error("nil ruleset without error")
					return
				}
			}
		}()
	}
	for range 200 {
		next := validRuleSet()
		reg.Put(next)
	}
	wg.Wait()
}
