package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/edworkspace8869-ctrl/personal-rules-base/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func boolPtr(b bool) *bool { return &b }

func baseRule(id string) *model.Rule {
	return &model.Rule{
		ID:                   id,
		Title:                "Rule " + id,
		System:               "Morning Routine",
		Status:               model.RuleStatusProposed,
		ClauseType:           model.ClauseTypePurpose,
		ClauseText:           "clause text",
		SuccessMetricsSource: model.MetricsSourceNone,
		SunsetType:           model.SunsetTypeDefault,
	}
}

func amendmentRule(baseID string, n int) *model.Rule {
	rule := baseRule(fmt.Sprintf("%sA%d", baseID, n))
	rule.BaseRuleID = strPtr(baseID)
	rule.AmendmentNumber = n
	return rule
}

func TestMemoryRuleCreateAndGet(t *testing.T) {
	rules, _, _ := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, rules.Create(ctx, baseRule("PR2026-01")))

	got, err := rules.GetByID(ctx, "PR2026-01")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Rule PR2026-01", got.Title)
	assert.False(t, got.CreatedAt.IsZero())
	assert.False(t, got.UpdatedAt.IsZero())

	// Absent ids are (nil, nil), not an error.
	missing, err := rules.GetByID(ctx, "PR2026-99")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryRuleCreateRejectsDuplicateID(t *testing.T) {
	rules, _, _ := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, rules.Create(ctx, baseRule("PR2026-01")))
	err := rules.Create(ctx, baseRule("PR2026-01"))
	assert.ErrorIs(t, err, model.ErrDuplicateID)
}

func TestMemoryRuleCreatePreservesCarriedTimestamps(t *testing.T) {
	rules, _, _ := NewMemoryStore()
	ctx := context.Background()

	created := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	rule := baseRule("PR2024-01")
	rule.CreatedAt = created
	rule.UpdatedAt = created
	require.NoError(t, rules.Create(ctx, rule))

	got, err := rules.GetByID(ctx, "PR2024-01")
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.Equal(created), "imported timestamp must survive")
	assert.True(t, got.UpdatedAt.Equal(created))
}

func TestMemoryRuleUpdate(t *testing.T) {
	rules, _, _ := NewMemoryStore()
	ctx := context.Background()

	rule := baseRule("PR2026-01")
	require.NoError(t, rules.Create(ctx, rule))

	rule.Title = "renamed"
	require.NoError(t, rules.Update(ctx, rule))

	got, err := rules.GetByID(ctx, "PR2026-01")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

	err = rules.Update(ctx, baseRule("PR2026-42"))
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestMemoryRuleDelete(t *testing.T) {
	rules, _, _ := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, rules.Create(ctx, baseRule("PR2026-01")))
	require.NoError(t, rules.Delete(ctx, "PR2026-01"))

	got, err := rules.GetByID(ctx, "PR2026-01")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.ErrorIs(t, rules.Delete(ctx, "PR2026-01"), model.ErrNotFound)
}

func TestMemoryRuleListFilters(t *testing.T) {
	rules, _, _ := NewMemoryStore()
	ctx := context.Background()

	active := baseRule("PR2026-01")
	active.Status = model.RuleStatusActive
	require.NoError(t, rules.Create(ctx, active))

	gym := baseRule("PR2026-02")
	gym.System = "Gym"
	require.NoError(t, rules.Create(ctx, gym))

	archived := baseRule("PR2026-03")
	archived.Status = model.RuleStatusRejected
	archived.IsArchived = true
	require.NoError(t, rules.Create(ctx, archived))

	all, total, err := rules.List(ctx, RuleFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)

	byStatus, total, err := rules.List(ctx, RuleFilter{Status: model.RuleStatusActive})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "PR2026-01", byStatus[0].ID)

	bySystem, _, err := rules.List(ctx, RuleFilter{System: "Gym"})
	require.NoError(t, err)
	require.Len(t, bySystem, 1)
	assert.Equal(t, "PR2026-02", bySystem[0].ID)

	unarchived, total, err := rules.List(ctx, RuleFilter{Archived: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, unarchived, 2)
}

func TestMemoryRuleListPaginates(t *testing.T) {
	rules, _, _ := NewMemoryStore()
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= 5; i++ {
		rule := baseRule(fmt.Sprintf("PR2026-%02d", i))
		rule.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		rule.UpdatedAt = rule.CreatedAt
		require.NoError(t, rules.Create(ctx, rule))
	}

	page1, total, err := rules.List(ctx, RuleFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page1, 2)
	// Newest first.
	assert.Equal(t, "PR2026-05", page1[0].ID)
	assert.Equal(t, "PR2026-04", page1[1].ID)

	page3, total, err := rules.List(ctx, RuleFilter{Page: 3, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page3, 1)
	assert.Equal(t, "PR2026-01", page3[0].ID)

	empty, _, err := rules.List(ctx, RuleFilter{Page: 4, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryAmendmentQueries(t *testing.T) {
	rules, _, _ := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, rules.Create(ctx, baseRule("PR2026-01")))
	// Create out of order to exercise the ordering guarantee.
	require.NoError(t, rules.Create(ctx, amendmentRule("PR2026-01", 2)))
	require.NoError(t, rules.Create(ctx, amendmentRule("PR2026-01", 1)))
	require.NoError(t, rules.Create(ctx, amendmentRule("PR2026-02", 1)))

	amendments, err := rules.GetAmendments(ctx, "PR2026-01")
	require.NoError(t, err)
	require.Len(t, amendments, 2)
	assert.Equal(t, "PR2026-01A1", amendments[0].ID)
	assert.Equal(t, "PR2026-01A2", amendments[1].ID)
}

func TestMemorySequenceCounters(t *testing.T) {
	_, _, sequences := NewMemoryStore()
	ctx := context.Background()

	n, err := sequences.Next(ctx, "PR2026-")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = sequences.Next(ctx, "PR2026-")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Counters are independent per name.
	n, err = sequences.Next(ctx, "PR2026-01A")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Advance raises the counter; lower values are no-ops.
	require.NoError(t, sequences.Advance(ctx, "PR2026-", 7))
	require.NoError(t, sequences.Advance(ctx, "PR2026-", 3))

	n, err = sequences.Next(ctx, "PR2026-")
	require.NoError(t, err)
	assert.Equal(t, 8, n)
}

func TestMemoryRuleDeleteAll(t *testing.T) {
	rules, _, _ := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, rules.Create(ctx, baseRule("PR2026-01")))
	require.NoError(t, rules.Create(ctx, baseRule("PR2026-02")))
	require.NoError(t, rules.DeleteAll(ctx))

	all, err := rules.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestMemorySystemCreateAndGet(t *testing.T) {
	_, systems, _ := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, systems.Create(ctx, &model.System{
		Name:           "Gym",
		SystemID:       intPtr(1),
		SuccessMetrics: strPtr("3 sessions per week"),
	}))

	got, err := systems.GetByName(ctx, "Gym")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.HasSuccessMetrics())

	missing, err := systems.GetByName(ctx, "Nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	err = systems.Create(ctx, &model.System{Name: "Gym"})
	assert.ErrorIs(t, err, model.ErrDuplicateName)
}

func TestMemorySystemDeleteBlockedWhileReferenced(t *testing.T) {
	rules, systems, _ := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, systems.Create(ctx, &model.System{Name: "Morning Routine", SystemID: intPtr(1)}))
	require.NoError(t, rules.Create(ctx, baseRule("PR2026-01")))

	assert.ErrorIs(t, systems.Delete(ctx, "Morning Routine"), model.ErrInUse)

	require.NoError(t, rules.Delete(ctx, "PR2026-01"))
	require.NoError(t, systems.Delete(ctx, "Morning Routine"))

	assert.ErrorIs(t, systems.Delete(ctx, "Morning Routine"), model.ErrNotFound)
}

func TestMemoryGetNextSystemID(t *testing.T) {
	_, systems, _ := NewMemoryStore()
	ctx := context.Background()

	next, err := systems.GetNextSystemID(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, next)

	require.NoError(t, systems.Create(ctx, &model.System{Name: "A", SystemID: intPtr(4)}))
	// Records without an id yet do not move the sequence.
	require.NoError(t, systems.Create(ctx, &model.System{Name: "B"}))

	next, err = systems.GetNextSystemID(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, next)
}
