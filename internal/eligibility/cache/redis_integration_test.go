//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"patra/internal/eligibility/cache"
	"patra/internal/eligibility/models"
	"patra/internal/engine"
	"patra/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *cache.RedisCache
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.cache = cache.NewRedisCache(s.redis.Client)
}

func (s *RedisCacheSuite) SetupTest() {
	ctx := context.Background()
	err := s.redis.FlushAll(ctx)
	s.Require().NoError(err)
}

func testCached(id string) *models.CachedDecision {
	return &models.CachedDecision{
		ID: id,
		Decision: &engine.Decision{
			SchemeCode:     "pm-kisan",
			RulesetVersion: "2024.1",
			Eligible:       false,
			FailedRequirements: []engine.FieldFinding{
				{Field: "aadhaar_number", Reason: "must be 12 digits"},
			},
			ActiveExclusions: []string{"income_tax_payer", "nri"},
			FamilyValid:      true,
			EvaluatedAt:      time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC),
		},
	}
}

func (s *RedisCacheSuite) TestMissReturnsNil() {
	got, err := s.cache.Get(context.Background(), "patra:decision:pm-kisan:2024.1:nope")
	s.Require().NoError(err)
	s.Nil(got)
}

func (s *RedisCacheSuite) TestSetGetRoundtrip() {
	ctx := context.Background()
	key := "patra:decision:pm-kisan:2024.1:abc123"

	err := s.cache.Set(ctx, key, testCached("dec-1"), time.Minute)
	s.Require().NoError(err)

	got, err := s.cache.Get(ctx, key)
	s.Require().NoError(err)
	s.Require().NotNil(got)

	s.Equal(testCached("dec-1"), got)
}

func (s *RedisCacheSuite) TestEntriesExpire() {
	ctx := context.Background()
	key := "patra:decision:pm-kisan:2024.1:shortlived"

	err := s.cache.Set(ctx, key, testCached("dec-2"), time.Second)
	s.Require().NoError(err)

	got, err := s.cache.Get(ctx, key)
	s.Require().NoError(err)
	s.NotNil(got, "entry should be readable before the TTL")

	time.Sleep(1500 * time.Millisecond)

	got, err = s.cache.Get(ctx, key)
	s.Require().NoError(err)
	s.Nil(got, "entry should expire after the TTL")
}

func (s *RedisCacheSuite) TestKeysAreIndependent() {
	ctx := context.Background()

	first := testCached("dec-a")
	second := testCached("dec-b")
	second.Decision.Eligible = true
	second.Decision.ActiveExclusions = nil
	second.Decision.FailedRequirements = nil

	s.Require().NoError(s.cache.Set(ctx, "patra:decision:pm-kisan:2024.1:a", first, time.Minute))
	s.Require().NoError(s.cache.Set(ctx, "patra:decision:pm-kisan:2024.2:a", second, time.Minute))

	got, err := s.cache.Get(ctx, "patra:decision:pm-kisan:2024.1:a")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal("dec-a", got.ID)
	s.False(got.Decision.Eligible)

	got, err = s.cache.Get(ctx, "patra:decision:pm-kisan:2024.2:a")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal("dec-b", got.ID)
	s.True(got.Decision.Eligible)
}

func (s *RedisCacheSuite) TestOverwriteReplacesEntry() {
	ctx := context.Background()
	key := "patra:decision:pm-kisan:2024.1:rewrite"

	s.Require().NoError(s.cache.Set(ctx, key, testCached("dec-old"), time.Minute))

	updated := testCached("dec-new")
	updated.Decision.ActiveExclusions = []string{"institutional_landholder"}
	s.Require().NoError(s.cache.Set(ctx, key, updated, time.Minute))

	got, err := s.cache.Get(ctx, key)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal("dec-new", got.ID)
	s.Equal([]string{"institutional_landholder"}, got.Decision.ActiveExclusions)
}
