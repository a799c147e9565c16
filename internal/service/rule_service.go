package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/edworkspace8869-ctrl/personal-rules-base/internal/model"
	"github.com/edworkspace8869-ctrl/personal-rules-base/internal/repository"
)

// --- DTOs ---

type CreateRuleRequest struct {
	Title                string `json:"title" binding:"required"`
	System               string `json:"system" binding:"required"`
	ClauseType           string `json:"clause_type" binding:"required,oneof=purpose hypothesis"`
	ClauseText           string `json:"clause_text" binding:"required"`
	SuccessMetricsSource string `json:"success_metrics_source" binding:"omitempty,oneof=none system custom"`
	SuccessMetrics       string `json:"success_metrics"`
	SunsetType           string `json:"sunset_type" binding:"omitempty,oneof=default indefinite custom"`
	CustomSunsetDays     int    `json:"custom_sunset_days"`
	Body                 string `json:"body"`
}

type UpdateRuleRequest struct {
	Title                string `json:"title" binding:"required"`
	System               string `json:"system" binding:"required"`
	ClauseType           string `json:"clause_type" binding:"required,oneof=purpose hypothesis"`
	ClauseText           string `json:"clause_text" binding:"required"`
	SuccessMetricsSource string `json:"success_metrics_source" binding:"omitempty,oneof=none system custom"`
	SuccessMetrics       string `json:"success_metrics"`
	SunsetType           string `json:"sunset_type" binding:"omitempty,oneof=default indefinite custom"`
	CustomSunsetDays     int    `json:"custom_sunset_days"`
	Body                 string `json:"body"`
}

type PassRuleRequest struct {
	EffectiveDateType string `json:"effective_date_type" binding:"required,oneof=sameAsPassedDate custom"`
	EffectiveDate     string `json:"effective_date"` // YYYY-MM-DD, required when custom
}

type AmendRuleRequest struct {
	Title      string `json:"title" binding:"required"` // description of what changes
	ClauseText string `json:"clause_text" binding:"required"`
	Body       string `json:"body"`
}

// --- Interface ---

// RuleService is the lifecycle engine: it owns every legal status transition,
// id and date computation, and amendment chaining. It is stateless between
// calls; all state lives behind the repositories.
type RuleService interface {
	CreateRule(ctx context.Context, req CreateRuleRequest) (*model.Rule, error)
	GetRule(ctx context.Context, id string) (*model.Rule, error)
	ListRules(ctx context.Context, filter repository.RuleFilter) ([]model.Rule, int64, error)
	UpdateProposedRule(ctx context.Context, id string, req UpdateRuleRequest) (*model.Rule, error)
	PassRule(ctx context.Context, id string, req PassRuleRequest) (*model.Rule, error)
	RejectRule(ctx context.Context, id string) (*model.Rule, error)
	AmendRule(ctx context.Context, baseRuleID string, req AmendRuleRequest) (*model.Rule, error)
	ArchiveRule(ctx context.Context, id string) (*model.Rule, error)
	UnarchiveRule(ctx context.Context, id string) (*model.Rule, error)
	DeleteRule(ctx context.Context, id string) error
	GetAmendments(ctx context.Context, baseRuleID string) ([]model.Rule, error)
}

type ruleService struct {
	rules     repository.RuleRepository
	systems   repository.SystemRepository
	sequences repository.SequenceRepository
	notifier  ChangeNotifier
	now       nowFunc
}

func NewRuleService(rules repository.RuleRepository, systems repository.SystemRepository, sequences repository.SequenceRepository, notifier ChangeNotifier) RuleService {
	return &ruleService{
		rules:     rules,
		systems:   systems,
		sequences: sequences,
		notifier:  notifier,
		now:       time.Now,
	}
}

// --- Implementation ---

func (s *ruleService) CreateRule(ctx context.Context, req CreateRuleRequest) (*model.Rule, error) {
	if req.Title == "" || req.ClauseText == "" {
		return nil, fmt.Errorf("%w: title and clause text are required", model.ErrValidation)
	}
	if req.ClauseType != model.ClauseTypePurpose && req.ClauseType != model.ClauseTypeHypothesis {
		return nil, fmt.Errorf("%w: unknown clause type %q", model.ErrValidation, req.ClauseType)
	}

	metrics, metricsSource, err := s.resolveMetrics(ctx, req.SuccessMetricsSource, req.SuccessMetrics, req.System)
	if err != nil {
		return nil, err
	}

	sunsetType, customDays, err := resolveSunset(req.SunsetType, req.CustomSunsetDays)
	if err != nil {
		return nil, err
	}

	// The system must be confirmed to exist before the rule write so a
	// persistence failure cannot leave a rule pointing at nothing.
	if _, err := s.ensureSystem(ctx, req.System); err != nil {
		return nil, err
	}

	id, err := s.nextBaseRuleID(ctx)
	if err != nil {
		return nil, err
	}

	rule := &model.Rule{
		ID:                   id,
		Title:                req.Title,
		System:               req.System,
		Status:               model.RuleStatusProposed,
		ClauseType:           req.ClauseType,
		ClauseText:           req.ClauseText,
		SuccessMetrics:       metrics,
		SuccessMetricsSource: metricsSource,
		SunsetType:           sunsetType,
		CustomSunsetDays:     customDays,
		Body:                 req.Body,
		AmendmentNumber:      0,
	}
	if err := s.rules.Create(ctx, rule); err != nil {
		return nil, err
	}

	s.notifyChanged()
	return rule, nil
}

func (s *ruleService) GetRule(ctx context.Context, id string) (*model.Rule, error) {
	rule, err := s.rules.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rule: %w", err)
	}
	if rule == nil {
		return nil, fmt.Errorf("%w: rule %s", model.ErrNotFound, id)
	}
	return rule, nil
}

func (s *ruleService) ListRules(ctx context.Context, filter repository.RuleFilter) ([]model.Rule, int64, error) {
	return s.rules.List(ctx, filter)
}

func (s *ruleService) UpdateProposedRule(ctx context.Context, id string, req UpdateRuleRequest) (*model.Rule, error) {
	rule, err := s.GetRule(ctx, id)
	if err != nil {
		return nil, err
	}
	if rule.Status != model.RuleStatusProposed {
		return nil, fmt.Errorf("%w: only proposed rules can be edited, rule %s is %s",
			model.ErrInvalidTransition, id, rule.Status)
	}

	metrics, metricsSource, err := s.resolveMetrics(ctx, req.SuccessMetricsSource, req.SuccessMetrics, req.System)
	if err != nil {
		return nil, err
	}
	sunsetType, customDays, err := resolveSunset(req.SunsetType, req.CustomSunsetDays)
	if err != nil {
		return nil, err
	}
	if _, err := s.ensureSystem(ctx, req.System); err != nil {
		return nil, err
	}

	// Id, status, amendment linkage and createdAt stay untouched.
	rule.Title = req.Title
	rule.System = req.System
	rule.ClauseType = req.ClauseType
	rule.ClauseText = req.ClauseText
	rule.SuccessMetrics = metrics
	rule.SuccessMetricsSource = metricsSource
	rule.SunsetType = sunsetType
	rule.CustomSunsetDays = customDays
	rule.Body = req.Body

	if err := s.rules.Update(ctx, rule); err != nil {
		return nil, err
	}
	s.notifyChanged()
	return rule, nil
}

func (s *ruleService) PassRule(ctx context.Context, id string, req PassRuleRequest) (*model.Rule, error) {
	rule, err := s.GetRule(ctx, id)
	if err != nil {
		return nil, err
	}
	if rule.Status != model.RuleStatusProposed {
		return nil, fmt.Errorf("%w: only proposed rules can be passed, rule %s is %s",
			model.ErrInvalidTransition, id, rule.Status)
	}

	now := s.now()
	today := truncateToDay(now)

	var effective time.Time
	switch req.EffectiveDateType {
	case model.EffectiveSameAsPassed, "":
		effective = today
	case model.EffectiveCustom:
		parsed, parseErr := time.ParseInLocation(dateLayout, req.EffectiveDate, now.Location())
		if parseErr != nil {
			return nil, fmt.Errorf("%w: invalid effective date %q", model.ErrValidation, req.EffectiveDate)
		}
		effective = truncateToDay(parsed)
	default:
		return nil, fmt.Errorf("%w: unknown effective date type %q", model.ErrValidation, req.EffectiveDateType)
	}

	rule.PassedDate = &now
	rule.EffectiveDate = &effective
	rule.EffectiveDateType = req.EffectiveDateType
	if rule.EffectiveDateType == "" {
		rule.EffectiveDateType = model.EffectiveSameAsPassed
	}

	if effective.After(today) {
		rule.Status = model.RuleStatusPassed
	} else {
		rule.Status = model.RuleStatusActive
	}

	rule.ExpirationDate = computeExpiration(effective, rule.SunsetType, rule.CustomSunsetDays)

	if err := s.rules.Update(ctx, rule); err != nil {
		return nil, err
	}
	s.notifyChanged()
	return rule, nil
}

func (s *ruleService) RejectRule(ctx context.Context, id string) (*model.Rule, error) {
	rule, err := s.GetRule(ctx, id)
	if err != nil {
		return nil, err
	}
	if rule.Status != model.RuleStatusProposed {
		return nil, fmt.Errorf("%w: only proposed rules can be rejected, rule %s is %s",
			model.ErrInvalidTransition, id, rule.Status)
	}

	rule.Status = model.RuleStatusRejected
	if err := s.rules.Update(ctx, rule); err != nil {
		return nil, err
	}
	s.notifyChanged()
	return rule, nil
}

func (s *ruleService) AmendRule(ctx context.Context, baseRuleID string, req AmendRuleRequest) (*model.Rule, error) {
	base, err := s.GetRule(ctx, baseRuleID)
	if err != nil {
		return nil, err
	}
	if base.Status != model.RuleStatusActive {
		return nil, fmt.Errorf("%w: only active rules can be amended, rule %s is %s",
			model.ErrInvalidTransition, baseRuleID, base.Status)
	}
	if req.Title == "" || req.ClauseText == "" {
		return nil, fmt.Errorf("%w: title and clause text are required", model.ErrValidation)
	}

	id, n, err := s.nextFreeID(ctx, baseRuleID+"A", func(n int) string {
		return fmt.Sprintf("%sA%d", baseRuleID, n)
	})
	if err != nil {
		return nil, err
	}

	amendment := &model.Rule{
		ID:         id,
		Title:      req.Title,
		Status:     model.RuleStatusProposed,
		ClauseText: req.ClauseText,
		Body:       req.Body,
		// Inherited from the base rule; editable independently afterwards.
		System:               base.System,
		ClauseType:           base.ClauseType,
		SuccessMetrics:       base.SuccessMetrics,
		SuccessMetricsSource: base.SuccessMetricsSource,
		SunsetType:           base.SunsetType,
		CustomSunsetDays:     base.CustomSunsetDays,
		BaseRuleID:           &base.ID,
		AmendmentNumber:      n,
	}
	if err := s.rules.Create(ctx, amendment); err != nil {
		return nil, err
	}

	s.notifyChanged()
	return amendment, nil
}

func (s *ruleService) ArchiveRule(ctx context.Context, id string) (*model.Rule, error) {
	rule, err := s.GetRule(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rule.IsTerminal() {
		return nil, fmt.Errorf("%w: only rejected or expired rules can be archived, rule %s is %s",
			model.ErrInvalidTransition, id, rule.Status)
	}

	rule.IsArchived = true
	if err := s.rules.Update(ctx, rule); err != nil {
		return nil, err
	}
	s.notifyChanged()
	return rule, nil
}

func (s *ruleService) UnarchiveRule(ctx context.Context, id string) (*model.Rule, error) {
	rule, err := s.GetRule(ctx, id)
	if err != nil {
		return nil, err
	}

	rule.IsArchived = false
	if err := s.rules.Update(ctx, rule); err != nil {
		return nil, err
	}
	s.notifyChanged()
	return rule, nil
}

func (s *ruleService) DeleteRule(ctx context.Context, id string) error {
	rule, err := s.GetRule(ctx, id)
	if err != nil {
		return err
	}
	// Deletion is permanent, so it is gated on the rule sitting in cold
	// storage first.
	if !rule.IsArchived {
		return fmt.Errorf("%w: rule %s must be archived before deletion", model.ErrInvalidTransition, id)
	}

	if err := s.rules.Delete(ctx, id); err != nil {
		return err
	}
	s.notifyChanged()
	return nil
}

func (s *ruleService) GetAmendments(ctx context.Context, baseRuleID string) ([]model.Rule, error) {
	return s.rules.GetAmendments(ctx, baseRuleID)
}

// --- Helpers ---

// nextBaseRuleID assigns PR<year>-<NN> from the per-year counter, zero-padded
// to two digits. Ids are never reissued, even after delete.
func (s *ruleService) nextBaseRuleID(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("PR%d-", s.now().Year())
	id, _, err := s.nextFreeID(ctx, prefix, func(n int) string {
		return fmt.Sprintf("%s%02d", prefix, n)
	})
	return id, err
}

// nextFreeID draws numbers from the named persistent counter until one maps
// to an unused id. Imported data can run ahead of its counter; drawn numbers
// stay spent either way.
func (s *ruleService) nextFreeID(ctx context.Context, counter string, format func(n int) string) (string, int, error) {
	for {
		n, err := s.sequences.Next(ctx, counter)
		if err != nil {
			return "", 0, fmt.Errorf("failed to advance sequence %s: %w", counter, err)
		}
		id := format(n)
		existing, err := s.rules.GetByID(ctx, id)
		if err != nil {
			return "", 0, fmt.Errorf("failed to check rule id %s: %w", id, err)
		}
		if existing == nil {
			return id, n, nil
		}
	}
}

// splitBaseRuleID splits a base rule id into its counter name and sequence
// number: "PR2026-07" -> ("PR2026-", 7).
func splitBaseRuleID(id string) (string, int, bool) {
	i := strings.LastIndex(id, "-")
	if i < 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(id[i+1:])
	if err != nil {
		return "", 0, false
	}
	return id[:i+1], n, true
}

// resolveMetrics applies the success metrics selection. Source "system"
// copies the owning system's metrics and requires them to be present.
func (s *ruleService) resolveMetrics(ctx context.Context, source, custom, systemName string) (string, string, error) {
	switch source {
	case model.MetricsSourceNone, "":
		return "", model.MetricsSourceNone, nil
	case model.MetricsSourceCustom:
		if custom == "" {
			return "", "", fmt.Errorf("%w: custom success metrics text is required", model.ErrValidation)
		}
		return custom, model.MetricsSourceCustom, nil
	case model.MetricsSourceSystem:
		system, err := s.systems.GetByName(ctx, systemName)
		if err != nil {
			return "", "", fmt.Errorf("failed to fetch system: %w", err)
		}
		if system == nil || !system.HasSuccessMetrics() {
			return "", "", fmt.Errorf("%w: system %q has no success metrics to inherit", model.ErrValidation, systemName)
		}
		return *system.SuccessMetrics, model.MetricsSourceSystem, nil
	default:
		return "", "", fmt.Errorf("%w: unknown success metrics source %q", model.ErrValidation, source)
	}
}

// ensureSystem auto-provisions a system the first time a rule names it.
func (s *ruleService) ensureSystem(ctx context.Context, name string) (*model.System, error) {
	system, err := s.systems.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch system: %w", err)
	}
	if system != nil {
		return system, nil
	}

	nextID, err := s.systems.GetNextSystemID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute next system id: %w", err)
	}
	system = &model.System{Name: name, SystemID: &nextID}
	if err := s.systems.Create(ctx, system); err != nil {
		return nil, fmt.Errorf("failed to auto-provision system %q: %w", name, err)
	}
	return system, nil
}

func resolveSunset(sunsetType string, customDays int) (string, *int, error) {
	switch sunsetType {
	case model.SunsetTypeDefault, "":
		return model.SunsetTypeDefault, nil, nil
	case model.SunsetTypeIndefinite:
		return model.SunsetTypeIndefinite, nil, nil
	case model.SunsetTypeCustom:
		if customDays <= 0 {
			return "", nil, fmt.Errorf("%w: custom sunset requires a positive number of days", model.ErrValidation)
		}
		return model.SunsetTypeCustom, &customDays, nil
	default:
		return "", nil, fmt.Errorf("%w: unknown sunset type %q", model.ErrValidation, sunsetType)
	}
}

// computeExpiration derives the expiration date from the effective date and
// the sunset clause. Indefinite rules never expire automatically.
func computeExpiration(effective time.Time, sunsetType string, customDays *int) *time.Time {
	switch sunsetType {
	case model.SunsetTypeIndefinite:
		return nil
	case model.SunsetTypeCustom:
		days := model.DefaultSunsetDays
		if customDays != nil {
			days = *customDays
		}
		expiration := effective.AddDate(0, 0, days)
		return &expiration
	default:
		expiration := effective.AddDate(0, 0, model.DefaultSunsetDays)
		return &expiration
	}
}

func (s *ruleService) notifyChanged() {
	if s.notifier != nil {
		s.notifier.NotifyRulesChanged()
	}
}
