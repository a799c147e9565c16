package service

import (
	"context"
	"testing"
	"time"

	"github.com/edworkspace8869-ctrl/personal-rules-base/internal/model"
	"github.com/edworkspace8869-ctrl/personal-rules-base/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sweepFixture wires a rule service and a sweep service over the same store
// with independently movable clocks.
type sweepFixture struct {
	rules repository.RuleRepository
	rule  *ruleService
	sweep *sweepService
}

func newSweepFixture(t *testing.T, now time.Time) *sweepFixture {
	t.Helper()
	ruleRepo, systemRepo, sequenceRepo := repository.NewMemoryStore()

	ruleSvc := NewRuleService(ruleRepo, systemRepo, sequenceRepo, nil).(*ruleService)
	ruleSvc.now = func() time.Time { return now }

	sweepSvc := NewSweepService(ruleRepo, nil).(*sweepService)
	sweepSvc.now = func() time.Time { return now }

	return &sweepFixture{rules: ruleRepo, rule: ruleSvc, sweep: sweepSvc}
}

func (f *sweepFixture) advanceTo(now time.Time) {
	f.sweep.now = func() time.Time { return now }
}

func (f *sweepFixture) passedRule(t *testing.T, effectiveDate string, sunsetType string) *model.Rule {
	t.Helper()
	rule, err := f.rule.CreateRule(context.Background(), CreateRuleRequest{
		Title:      "Sweep target " + effectiveDate,
		System:     "Routine",
		ClauseType: model.ClauseTypePurpose,
		ClauseText: "exercise the sweep",
		SunsetType: sunsetType,
	})
	require.NoError(t, err)

	passed, err := f.rule.PassRule(context.Background(), rule.ID, PassRuleRequest{
		EffectiveDateType: model.EffectiveCustom,
		EffectiveDate:     effectiveDate,
	})
	require.NoError(t, err)
	return passed
}

func TestSweepActivatesPassedRules(t *testing.T) {
	f := newSweepFixture(t, fixedTime)

	rule := f.passedRule(t, "2026-03-20", "")
	require.Equal(t, model.RuleStatusPassed, rule.Status)

	// Nothing changes while the effective date is still ahead.
	changed, err := f.sweep.Sweep(context.Background())
	require.NoError(t, err)
	assert.False(t, changed)

	// On the effective day itself the rule activates.
	f.advanceTo(time.Date(2026, time.March, 20, 8, 0, 0, 0, time.UTC))
	changed, err = f.sweep.Sweep(context.Background())
	require.NoError(t, err)
	assert.True(t, changed)

	stored, err := f.rules.GetByID(context.Background(), rule.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RuleStatusActive, stored.Status)
}

func TestSweepExpiresActiveRules(t *testing.T) {
	f := newSweepFixture(t, fixedTime)

	rule := f.passedRule(t, "2026-03-14", "") // active immediately, default sunset
	require.Equal(t, model.RuleStatusActive, rule.Status)

	// Day 30 after the effective date is the expiration date itself — the
	// rule expires only once that date has passed.
	f.advanceTo(time.Date(2026, time.April, 13, 12, 0, 0, 0, time.UTC))
	changed, err := f.sweep.Sweep(context.Background())
	require.NoError(t, err)
	assert.False(t, changed)

	// Day 31: expired.
	f.advanceTo(time.Date(2026, time.April, 14, 12, 0, 0, 0, time.UTC))
	changed, err = f.sweep.Sweep(context.Background())
	require.NoError(t, err)
	assert.True(t, changed)

	stored, err := f.rules.GetByID(context.Background(), rule.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RuleStatusExpired, stored.Status)
}

func TestSweepNeverExpiresIndefiniteRules(t *testing.T) {
	f := newSweepFixture(t, fixedTime)

	rule := f.passedRule(t, "2026-03-14", model.SunsetTypeIndefinite)
	require.Equal(t, model.RuleStatusActive, rule.Status)
	require.Nil(t, rule.ExpirationDate)

	f.advanceTo(time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC))
	changed, err := f.sweep.Sweep(context.Background())
	require.NoError(t, err)
	assert.False(t, changed)

	stored, err := f.rules.GetByID(context.Background(), rule.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RuleStatusActive, stored.Status)
}

func TestSweepIsIdempotent(t *testing.T) {
	f := newSweepFixture(t, fixedTime)

	f.passedRule(t, "2026-03-20", "")
	f.passedRule(t, "2026-03-14", "")

	f.advanceTo(time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC))

	changed, err := f.sweep.Sweep(context.Background())
	require.NoError(t, err)
	assert.True(t, changed)

	firstPass, err := f.rules.GetAll(context.Background())
	require.NoError(t, err)

	// Running the sweep again is a no-op and reports no change.
	changed, err = f.sweep.Sweep(context.Background())
	require.NoError(t, err)
	assert.False(t, changed)

	secondPass, err := f.rules.GetAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, firstPass, secondPass)
}

func TestSweepHandlesPassedThenExpiredInOnePass(t *testing.T) {
	f := newSweepFixture(t, fixedTime)

	// Passed with a future effective date; by sweep time both its
	// activation and expiration are in the past.
	rule := f.passedRule(t, "2026-03-20", "")

	f.advanceTo(time.Date(2026, time.December, 1, 0, 0, 0, 0, time.UTC))
	changed, err := f.sweep.Sweep(context.Background())
	require.NoError(t, err)
	assert.True(t, changed)

	// One pass settles it all the way to expired, so a rerun is a no-op.
	stored, err := f.rules.GetByID(context.Background(), rule.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RuleStatusExpired, stored.Status)

	changed, err = f.sweep.Sweep(context.Background())
	require.NoError(t, err)
	assert.False(t, changed)
}
