package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"mailsort/internal/modules/session/domain"
	"mailsort/internal/platform/clock"
	apperrors "mailsort/internal/platform/errors"
	"mailsort/internal/platform/id"
	"mailsort/internal/platform/logging"
)

// CommitHook runs after every committed load or classification.
type CommitHook func(ctx context.Context, snap domain.Snapshot) error

// SessionService owns the live session. It is not safe for concurrent use;
// callers serialize access.
type SessionService struct {
	clock     clock.Clock
	idGen     id.Generator
	persister *Persister
	logger    *zap.Logger
	hooks     []CommitHook
	session   *domain.Session
}

func NewSessionService(clock clock.Clock, idGen id.Generator, persister *Persister, logger *zap.Logger) *SessionService {
	return &SessionService{
		clock:     clock,
		idGen:     idGen,
		persister: persister,
		logger:    logging.OrNop(logger),
		session:   domain.New(),
	}
}

func (s *SessionService) OnCommit(hook CommitHook) {
	s.hooks = append(s.hooks, hook)
}

func (s *SessionService) NewBatch(files int) *domain.LoadBatch {
	return domain.NewLoadBatch(s.idGen.New(), files)
}

// Load appends records and runs the commit hooks. A hook failure is
// reported as ErrNotPersisted; the records stay loaded.
func (s *SessionService) Load(ctx context.Context, records []domain.Record) error {
	s.session.LoadRecords(records)
	s.logger.Info("records loaded", zap.Int("added", len(records)), zap.Int("total", s.session.Len()))
	return s.commit(ctx)
}

func (s *SessionService) Current() (domain.Record, int, error) {
	return s.session.Current()
}

// Classify labels the current record. As with Load, an ErrNotPersisted
// result still carries the committed label.
func (s *SessionService) Classify(ctx context.Context, label domain.Category) (domain.LabeledRecord, error) {
	labeled, err := s.session.Classify(label, s.clock.Now())
	if err != nil {
		return domain.LabeledRecord{}, err
	}
	s.logger.Info("record classified",
		zap.Int("cursor", s.session.Cursor()),
		zap.String("label", string(label)),
		zap.String("original", string(labeled.OriginalCategory)),
	)
	return labeled, s.commit(ctx)
}

// Reset deletes the persisted state first; the live session is only cleared
// once nothing can bring it back on the next start.
func (s *SessionService) Reset(ctx context.Context) error {
	if s.persister != nil {
		if err := s.persister.Clear(ctx); err != nil {
			return fmt.Errorf("reset session: %w", err)
		}
	}
	s.session.Reset()
	s.logger.Info("session reset")
	return nil
}

func (s *SessionService) Persist(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	return s.persister.Save(ctx, s.session.Snapshot(s.clock.Now()))
}

// Restore replaces the live session with the persisted one. Snapshots that
// fail validation are logged and reported as ErrNothingToRestore.
func (s *SessionService) Restore(ctx context.Context) error {
	if s.persister == nil {
		return apperrors.ErrNothingToRestore
	}
	snap, err := s.persister.Load(ctx)
	if err != nil {
		return err
	}
	restored, err := domain.FromSnapshot(snap)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidInput) {
			s.logger.Warn("discarding invalid session state", zap.Error(err))
			return apperrors.ErrNothingToRestore
		}
		return err
	}
	s.session = restored
	s.logger.Info("session restored",
		zap.Int("records", restored.Len()),
		zap.Int("cursor", restored.Cursor()),
		zap.Time("saved_at", snap.Timestamp),
	)
	return nil
}

func (s *SessionService) Stats() domain.Stats {
	return s.session.Stats()
}

func (s *SessionService) Labeled() []domain.LabeledRecord {
	return s.session.Labeled()
}

func (s *SessionService) commit(ctx context.Context) error {
	if len(s.hooks) == 0 {
		return nil
	}
	snap := s.session.Snapshot(s.clock.Now())
	var errs []error
	for _, hook := range s.hooks {
		if err := hook(ctx, snap); err != nil {
			s.logger.Error("commit hook failed", zap.Error(err))
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", apperrors.ErrNotPersisted, errors.Join(errs...))
}
