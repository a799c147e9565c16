package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/edworkspace8869-ctrl/personal-rules-base/internal/model"
)

// memoryStore holds all entity maps behind one mutex; the system in-use
// check reads the rules map directly.
type memoryStore struct {
	mu        sync.RWMutex
	rules     map[string]model.Rule
	systems   map[string]model.System
	sequences map[string]int
}

// NewMemoryStore returns in-memory implementations of the repositories
// sharing a single state.
func NewMemoryStore() (RuleRepository, SystemRepository, SequenceRepository) {
	s := &memoryStore{
		rules:     make(map[string]model.Rule),
		systems:   make(map[string]model.System),
		sequences: make(map[string]int),
	}
	return &memoryRuleRepository{s: s}, &memorySystemRepository{s: s}, &memorySequenceRepository{s: s}
}

// --- Rules ---

type memoryRuleRepository struct {
	s *memoryStore
}

func (r *memoryRuleRepository) Create(_ context.Context, rule *model.Rule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.rules[rule.ID]; ok {
		return fmt.Errorf("%w: %s", model.ErrDuplicateID, rule.ID)
	}
	// Mirror GORM: stamp create/update times unless the caller carries them
	// (imports preserve historical timestamps).
	now := time.Now()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}
	if rule.UpdatedAt.IsZero() {
		rule.UpdatedAt = now
	}
	r.s.rules[rule.ID] = *rule
	return nil
}

func (r *memoryRuleRepository) GetByID(_ context.Context, id string) (*model.Rule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rule, ok := r.s.rules[id]
	if !ok {
		return nil, nil
	}
	return &rule, nil
}

func (r *memoryRuleRepository) GetAll(_ context.Context) ([]model.Rule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.sortedRules(), nil
}

func (r *memoryRuleRepository) List(_ context.Context, filter RuleFilter) ([]model.Rule, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := make([]model.Rule, 0)
	for _, rule := range r.sortedRules() {
		if filter.Status != "" && rule.Status != filter.Status {
			continue
		}
		if filter.System != "" && rule.System != filter.System {
			continue
		}
		if filter.Archived != nil && rule.IsArchived != *filter.Archived {
			continue
		}
		matched = append(matched, rule)
	}
	// Newest first, matching the SQL implementation.
	for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
		matched[i], matched[j] = matched[j], matched[i]
	}

	total := int64(len(matched))
	page, limit := filter.Page, filter.Limit
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	start := (page - 1) * limit
	if start >= len(matched) {
		return []model.Rule{}, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *memoryRuleRepository) Update(_ context.Context, rule *model.Rule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.rules[rule.ID]; !ok {
		return fmt.Errorf("%w: rule %s", model.ErrNotFound, rule.ID)
	}
	rule.UpdatedAt = time.Now()
	r.s.rules[rule.ID] = *rule
	return nil
}

func (r *memoryRuleRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.rules[id]; !ok {
		return fmt.Errorf("%w: rule %s", model.ErrNotFound, id)
	}
	delete(r.s.rules, id)
	return nil
}

func (r *memoryRuleRepository) GetAmendments(_ context.Context, baseRuleID string) ([]model.Rule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	amendments := make([]model.Rule, 0)
	for _, rule := range r.s.rules {
		if rule.BaseRuleID != nil && *rule.BaseRuleID == baseRuleID {
			amendments = append(amendments, rule)
		}
	}
	sort.Slice(amendments, func(i, j int) bool {
		return amendments[i].AmendmentNumber < amendments[j].AmendmentNumber
	})
	return amendments, nil
}

func (r *memoryRuleRepository) DeleteAll(_ context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.rules = make(map[string]model.Rule)
	return nil
}

// sortedRules returns all rules ordered by creation time then id. Caller
// must hold at least the read lock.
func (r *memoryRuleRepository) sortedRules() []model.Rule {
	rules := make([]model.Rule, 0, len(r.s.rules))
	for _, rule := range r.s.rules {
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].CreatedAt.Equal(rules[j].CreatedAt) {
			return rules[i].ID < rules[j].ID
		}
		return rules[i].CreatedAt.Before(rules[j].CreatedAt)
	})
	return rules
}

// --- Systems ---

type memorySystemRepository struct {
	s *memoryStore
}

func (r *memorySystemRepository) Create(_ context.Context, system *model.System) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.systems[system.Name]; ok {
		return fmt.Errorf("%w: %s", model.ErrDuplicateName, system.Name)
	}
	now := time.Now()
	if system.CreatedAt.IsZero() {
		system.CreatedAt = now
	}
	if system.UpdatedAt.IsZero() {
		system.UpdatedAt = now
	}
	r.s.systems[system.Name] = *system
	return nil
}

func (r *memorySystemRepository) GetByName(_ context.Context, name string) (*model.System, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	system, ok := r.s.systems[name]
	if !ok {
		return nil, nil
	}
	return &system, nil
}

func (r *memorySystemRepository) GetAll(_ context.Context) ([]model.System, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	systems := make([]model.System, 0, len(r.s.systems))
	for _, system := range r.s.systems {
		systems = append(systems, system)
	}
	sort.Slice(systems, func(i, j int) bool {
		if systems[i].CreatedAt.Equal(systems[j].CreatedAt) {
			return systems[i].Name < systems[j].Name
		}
		return systems[i].CreatedAt.Before(systems[j].CreatedAt)
	})
	return systems, nil
}

func (r *memorySystemRepository) Update(_ context.Context, system *model.System) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.systems[system.Name]; !ok {
		return fmt.Errorf("%w: system %s", model.ErrNotFound, system.Name)
	}
	system.UpdatedAt = time.Now()
	r.s.systems[system.Name] = *system
	return nil
}

func (r *memorySystemRepository) Delete(_ context.Context, name string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.systems[name]; !ok {
		return fmt.Errorf("%w: system %s", model.ErrNotFound, name)
	}
	for _, rule := range r.s.rules {
		if rule.System == name {
			return fmt.Errorf("%w: rules reference system %s", model.ErrInUse, name)
		}
	}
	delete(r.s.systems, name)
	return nil
}

func (r *memorySystemRepository) GetNextSystemID(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	next := 1
	for _, system := range r.s.systems {
		if system.SystemID != nil && *system.SystemID >= next {
			next = *system.SystemID + 1
		}
	}
	return next, nil
}

func (r *memorySystemRepository) DeleteAll(_ context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.systems = make(map[string]model.System)
	return nil
}

// --- Sequences ---

type memorySequenceRepository struct {
	s *memoryStore
}

func (r *memorySequenceRepository) Next(_ context.Context, name string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.sequences[name]++
	return r.s.sequences[name], nil
}

func (r *memorySequenceRepository) Advance(_ context.Context, name string, n int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.sequences[name] < n {
		r.s.sequences[name] = n
	}
	return nil
}
