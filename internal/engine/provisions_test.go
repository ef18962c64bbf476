package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateProvisions(t *testing.T) {
	t.Run("manipur with accepted certificate", func(t *testing.T) {
		rec := eligibleFarmer()
		rec.RegionSpecial = "manipur"
		rec.HasSpecialCertificate = true
		rec.CertificateType = "village_authority_certificate"

		d := evaluate(t, rec)

		assert.True(t, d.Eligible)
		assert.Equal(t, []string{"manipur"}, d.AppliedProvisions)
		assert.Empty(t, d.FailedConditionals)
	})

	t.Run("nagaland village council certificate", func(t *testing.T) {
		rec := eligibleFarmer()
		rec.RegionSpecial = "nagaland"
		rec.HasSpecialCertificate = true
		rec.CertificateType = "village_council_certificate"

		d := evaluate(t, rec)

		assert.Equal(t, []string{"nagaland"}, d.AppliedProvisions)
	})

	t.Run("jharkhand vanshavali", func(t *testing.T) {
		rec := eligibleFarmer()
		rec.RegionSpecial = "jharkhand"
		rec.HasSpecialCertificate = true
		rec.CertificateType = "vanshavali_certificate"

		d := evaluate(t, rec)

		assert.Equal(t, []string{"jharkhand"}, d.AppliedProvisions)
	})

	t.Run("north east community land certificate", func(t *testing.T) {
		rec := eligibleFarmer()
		rec.RegionSpecial = "north_east"
		rec.HasSpecialCertificate = true
		rec.CertificateType = "community_land_certificate"

		d := evaluate(t, rec)

		assert.Equal(t, []string{"north_east"}, d.AppliedProvisions)
	})

	t.Run("certificate type folded to lower case", func(t *testing.T) {
		rec := eligibleFarmer()
		rec.RegionSpecial = "manipur"
		rec.HasSpecialCertificate = true
		rec.CertificateType = "Village_Authority_Certificate"

		d := evaluate(t, rec)

		assert.Equal(t, []string{"manipur"}, d.AppliedProvisions)
	})

	t.Run("special region without certificate", func(t *testing.T) {
		rec := eligibleFarmer()
		rec.RegionSpecial = "manipur"

		d := evaluate(t, rec)

		assert.False(t, d.Eligible)
		assert.Empty(t, d.AppliedProvisions)
		require.Len(t, d.FailedConditionals, 1)
		assert.Equal(t, ProvisionRule, d.FailedConditionals[0].Rule)
		assert.Contains(t, d.FailedConditionals[0].Reason, "village_authority_certificate")
	})

	t.Run("certificate of the wrong type", func(t *testing.T) {
		rec := eligibleFarmer()
		rec.RegionSpecial = "jharkhand"
		rec.HasSpecialCertificate = true
		rec.CertificateType = "village_chief_certificate"

		d := evaluate(t, rec)

		assert.False(t, d.Eligible)
		assert.Empty(t, d.AppliedProvisions)
		require.Len(t, d.FailedConditionals, 1)
		assert.Contains(t, d.FailedConditionals[0].Reason, "not accepted for jharkhand")
		assert.Contains(t, d.FailedConditionals[0].Reason, "vanshavali_certificate")
	})

	t.Run("unknown region claim is a finding", func(t *testing.T) {
		rec := eligibleFarmer()
		rec.RegionSpecial = "ladakh"

		d := evaluate(t, rec)

		assert.False(t, d.Eligible)
		require.Len(t, d.FailedConditionals, 1)
		assert.Contains(t, d.FailedConditionals[0].Reason, `unknown special region "ladakh"`)
	})

	t.Run("region without a provision in the scheme", func(t *testing.T) {
		rules := farmRules()
		rules.Provisions = rules.Provisions[:1] // manipur only
		rec := eligibleFarmer()
		rec.RegionSpecial = "jharkhand"
		facts := factsOf(rec)

		applied, findings := evaluateProvisions(rules, facts)

		assert.Empty(t, applied)
		assert.Empty(t, findings, "no provision means standard rules, not a failure")
	})

	t.Run("no region no provision", func(t *testing.T) {
		d := evaluate(t, eligibleFarmer())

		assert.Empty(t, d.AppliedProvisions)
	})
}
