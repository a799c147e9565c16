package service

import (
	"context"
	"fmt"
	"time"

	"github.com/edworkspace8869-ctrl/personal-rules-base/internal/model"
	"github.com/edworkspace8869-ctrl/personal-rules-base/internal/repository"

	"github.com/shopspring/decimal"
)

// RuleStats summarizes the rule set for the dashboard view.
type RuleStats struct {
	Total             int64            `json:"total"`
	ByStatus          map[string]int64 `json:"by_status"`
	BySystem          map[string]int64 `json:"by_system"`
	Archived          int64            `json:"archived"`
	Amendments        int64            `json:"amendments"`
	AvgActiveAgeDays  string           `json:"avg_active_age_days"` // fixed-point, 1 decimal
	RulesExpiringSoon int64            `json:"rules_expiring_soon"` // within the next 7 days
}

type StatsService interface {
	GetRuleStats(ctx context.Context) (*RuleStats, error)
}

type statsService struct {
	rules repository.RuleRepository
	now   nowFunc
}

func NewStatsService(rules repository.RuleRepository) StatsService {
	return &statsService{rules: rules, now: time.Now}
}

func (s *statsService) GetRuleStats(ctx context.Context) (*RuleStats, error) {
	rules, err := s.rules.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules for stats: %w", err)
	}

	today := truncateToDay(s.now())
	soon := today.AddDate(0, 0, 7)

	stats := &RuleStats{
		Total:            int64(len(rules)),
		ByStatus:         make(map[string]int64),
		BySystem:         make(map[string]int64),
		AvgActiveAgeDays: "0.0",
	}

	activeAges := make([]decimal.Decimal, 0)
	for i := range rules {
		rule := rules[i]
		stats.ByStatus[rule.Status]++
		stats.BySystem[rule.System]++
		if rule.IsArchived {
			stats.Archived++
		}
		if rule.IsAmendment() {
			stats.Amendments++
		}

		if rule.Status == model.RuleStatusActive {
			if rule.EffectiveDate != nil {
				days := today.Sub(truncateToDay(*rule.EffectiveDate)).Hours() / 24
				activeAges = append(activeAges, decimal.NewFromFloat(days))
			}
			if rule.ExpirationDate != nil && !rule.ExpirationDate.After(soon) {
				stats.RulesExpiringSoon++
			}
		}
	}

	if len(activeAges) > 0 {
		stats.AvgActiveAgeDays = decimal.Avg(activeAges[0], activeAges[1:]...).StringFixed(1)
	}

	return stats, nil
}
