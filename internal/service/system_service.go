package service

import (
	"context"
	"fmt"
	"time"

	"github.com/edworkspace8869-ctrl/personal-rules-base/internal/model"
	"github.com/edworkspace8869-ctrl/personal-rules-base/internal/repository"
)

// --- DTOs ---

type CreateSystemRequest struct {
	Name           string  `json:"name" binding:"required"`
	SuccessMetrics *string `json:"success_metrics"`
}

type UpdateSystemRequest struct {
	SuccessMetrics *string `json:"success_metrics"`
}

// --- Interface ---

type SystemService interface {
	ListSystems(ctx context.Context) ([]model.System, error)
	GetSystem(ctx context.Context, name string) (*model.System, error)
	CreateSystem(ctx context.Context, req CreateSystemRequest) (*model.System, error)
	// UpdateSystem changes the default success metrics; the name is immutable.
	UpdateSystem(ctx context.Context, name string, req UpdateSystemRequest) (*model.System, error)
	DeleteSystem(ctx context.Context, name string) error
	// AssignMissingSystemIDs backfills sequential ids for systems created
	// before the systemId field existed. Returns how many were assigned.
	AssignMissingSystemIDs(ctx context.Context) (int, error)
}

type systemService struct {
	systems  repository.SystemRepository
	notifier ChangeNotifier
	now      nowFunc
}

func NewSystemService(systems repository.SystemRepository, notifier ChangeNotifier) SystemService {
	return &systemService{
		systems:  systems,
		notifier: notifier,
		now:      time.Now,
	}
}

// --- Implementation ---

func (s *systemService) ListSystems(ctx context.Context) ([]model.System, error) {
	return s.systems.GetAll(ctx)
}

func (s *systemService) GetSystem(ctx context.Context, name string) (*model.System, error) {
	system, err := s.systems.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch system: %w", err)
	}
	if system == nil {
		return nil, fmt.Errorf("%w: system %s", model.ErrNotFound, name)
	}
	return system, nil
}

func (s *systemService) CreateSystem(ctx context.Context, req CreateSystemRequest) (*model.System, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: system name is required", model.ErrValidation)
	}

	nextID, err := s.systems.GetNextSystemID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute next system id: %w", err)
	}

	system := &model.System{
		Name:           req.Name,
		SystemID:       &nextID,
		SuccessMetrics: req.SuccessMetrics,
	}
	if err := s.systems.Create(ctx, system); err != nil {
		return nil, err
	}

	s.notifyChanged()
	return system, nil
}

func (s *systemService) UpdateSystem(ctx context.Context, name string, req UpdateSystemRequest) (*model.System, error) {
	system, err := s.GetSystem(ctx, name)
	if err != nil {
		return nil, err
	}

	system.SuccessMetrics = req.SuccessMetrics
	if err := s.systems.Update(ctx, system); err != nil {
		return nil, err
	}

	s.notifyChanged()
	return system, nil
}

func (s *systemService) DeleteSystem(ctx context.Context, name string) error {
	if err := s.systems.Delete(ctx, name); err != nil {
		return err
	}
	s.notifyChanged()
	return nil
}

func (s *systemService) AssignMissingSystemIDs(ctx context.Context) (int, error) {
	systems, err := s.systems.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load systems: %w", err)
	}

	next := 0
	for _, system := range systems {
		if system.SystemID != nil && *system.SystemID > next {
			next = *system.SystemID
		}
	}

	assigned := 0
	for i := range systems {
		if systems[i].SystemID != nil {
			continue
		}
		next++
		id := next
		systems[i].SystemID = &id
		if err := s.systems.Update(ctx, &systems[i]); err != nil {
			return assigned, fmt.Errorf("failed to backfill system id for %s: %w", systems[i].Name, err)
		}
		assigned++
	}

	if assigned > 0 {
		s.notifyChanged()
	}
	return assigned, nil
}

func (s *systemService) notifyChanged() {
	if s.notifier != nil {
		s.notifier.NotifyRulesChanged()
	}
}
