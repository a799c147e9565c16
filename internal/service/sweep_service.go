package service

import (
	"context"
	"fmt"
	"time"

	"github.com/edworkspace8869-ctrl/personal-rules-base/internal/model"
	"github.com/edworkspace8869-ctrl/personal-rules-base/internal/repository"
)

// SweepService advances rule status as real-world dates pass: passed rules
// whose effective date has arrived become active, active rules whose
// expiration date has passed become expired. The sweep is idempotent and
// safe to re-run any number of times.
type SweepService interface {
	// Sweep processes all eligible rules in one pass and persists each
	// change as it is applied, so a partial failure can be resumed by the
	// next invocation. Returns whether anything changed.
	Sweep(ctx context.Context) (bool, error)
}

type sweepService struct {
	rules    repository.RuleRepository
	notifier ChangeNotifier
	now      nowFunc
}

func NewSweepService(rules repository.RuleRepository, notifier ChangeNotifier) SweepService {
	return &sweepService{
		rules:    rules,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *sweepService) Sweep(ctx context.Context) (bool, error) {
	today := truncateToDay(s.now())

	rules, err := s.rules.GetAll(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load rules for sweep: %w", err)
	}

	changed := false
	for i := range rules {
		rule := rules[i]

		// Activation and expiration are evaluated in sequence: a stale
		// passed rule whose expiration has also gone by settles in one pass.
		if rule.Status == model.RuleStatusPassed &&
			rule.EffectiveDate != nil && !truncateToDay(*rule.EffectiveDate).After(today) {
			rule.Status = model.RuleStatusActive
		}
		if rule.Status == model.RuleStatusActive &&
			rule.ExpirationDate != nil && truncateToDay(*rule.ExpirationDate).Before(today) {
			rule.Status = model.RuleStatusExpired
		}

		if rule.Status == rules[i].Status {
			continue
		}
		if err := s.rules.Update(ctx, &rule); err != nil {
			// Already-applied updates stay; re-running the sweep picks up
			// the remainder.
			return changed, fmt.Errorf("sweep failed updating rule %s: %w", rule.ID, err)
		}
		changed = true
	}

	if changed && s.notifier != nil {
		s.notifier.NotifyRulesChanged()
	}
	return changed, nil
}
