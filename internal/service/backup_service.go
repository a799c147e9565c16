package service

import (
	"context"
	"fmt"
	"time"

	"github.com/edworkspace8869-ctrl/personal-rules-base/internal/model"
	"github.com/edworkspace8869-ctrl/personal-rules-base/internal/repository"
)

// BackupVersion is the current interchange schema version. Version 1
// documents predate the systems array and are still accepted on import.
const BackupVersion = 2

// BackupDocument is the full-snapshot interchange format. It must
// round-trip exactly: export then import reproduces an identical rule and
// system collection.
type BackupDocument struct {
	Version    int            `json:"version"`
	ExportDate time.Time      `json:"export_date"`
	Rules      []model.Rule   `json:"rules"`
	Systems    []model.System `json:"systems"`
}

type BackupService interface {
	Export(ctx context.Context) (*BackupDocument, error)
	// Import replaces all existing rules and systems with the document's
	// contents, atomically where the store supports transactions.
	Import(ctx context.Context, doc *BackupDocument) error
}

type backupService struct {
	rules     repository.RuleRepository
	systems   repository.SystemRepository
	sequences repository.SequenceRepository
	tx        repository.TransactionManager
	notifier  ChangeNotifier
	now       nowFunc
}

func NewBackupService(rules repository.RuleRepository, systems repository.SystemRepository, sequences repository.SequenceRepository, tx repository.TransactionManager, notifier ChangeNotifier) BackupService {
	return &backupService{
		rules:     rules,
		systems:   systems,
		sequences: sequences,
		tx:        tx,
		notifier:  notifier,
		now:       time.Now,
	}
}

func (s *backupService) Export(ctx context.Context) (*BackupDocument, error) {
	rules, err := s.rules.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export rules: %w", err)
	}
	systems, err := s.systems.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export systems: %w", err)
	}

	if rules == nil {
		rules = []model.Rule{}
	}
	if systems == nil {
		systems = []model.System{}
	}

	return &BackupDocument{
		Version:    BackupVersion,
		ExportDate: s.now(),
		Rules:      rules,
		Systems:    systems,
	}, nil
}

func (s *backupService) Import(ctx context.Context, doc *BackupDocument) error {
	if doc == nil {
		return fmt.Errorf("%w: backup document is empty", model.ErrValidation)
	}
	if doc.Version < 1 || doc.Version > BackupVersion {
		return fmt.Errorf("%w: unsupported backup version %d", model.ErrValidation, doc.Version)
	}
	for i := range doc.Rules {
		if doc.Rules[i].ID == "" {
			return fmt.Errorf("%w: backup contains a rule without an id", model.ErrValidation)
		}
	}
	for i := range doc.Systems {
		if doc.Systems[i].Name == "" {
			return fmt.Errorf("%w: backup contains a system without a name", model.ErrValidation)
		}
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.rules.DeleteAll(txCtx); err != nil {
			return fmt.Errorf("failed to clear rules: %w", err)
		}
		if err := s.systems.DeleteAll(txCtx); err != nil {
			return fmt.Errorf("failed to clear systems: %w", err)
		}

		// A version 1 document simply has no systems to import.
		for i := range doc.Systems {
			system := doc.Systems[i]
			if err := s.systems.Create(txCtx, &system); err != nil {
				return fmt.Errorf("failed to import system %s: %w", system.Name, err)
			}
		}
		for i := range doc.Rules {
			rule := doc.Rules[i]
			if err := s.rules.Create(txCtx, &rule); err != nil {
				return fmt.Errorf("failed to import rule %s: %w", rule.ID, err)
			}
		}

		// Id counters must not fall behind the imported ids, or a later
		// create would reissue one.
		for i := range doc.Rules {
			rule := doc.Rules[i]
			if rule.BaseRuleID != nil {
				if err := s.sequences.Advance(txCtx, *rule.BaseRuleID+"A", rule.AmendmentNumber); err != nil {
					return fmt.Errorf("failed to advance amendment counter for %s: %w", *rule.BaseRuleID, err)
				}
				continue
			}
			if counter, n, ok := splitBaseRuleID(rule.ID); ok {
				if err := s.sequences.Advance(txCtx, counter, n); err != nil {
					return fmt.Errorf("failed to advance id counter %s: %w", counter, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.notifier != nil {
		s.notifier.NotifyRulesChanged()
	}
	return nil
}
