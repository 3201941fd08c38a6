package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"mailsort/internal/modules/session/domain"
	sessionout "mailsort/internal/modules/session/port/out"
	apperrors "mailsort/internal/platform/errors"
	"mailsort/internal/platform/logging"
)

// Persister stores the session snapshot as JSON under one fixed key.
type Persister struct {
	store  sessionout.StateStore
	key    string
	logger *zap.Logger
}

func NewPersister(store sessionout.StateStore, key string, logger *zap.Logger) *Persister {
	return &Persister{store: store, key: key, logger: logging.OrNop(logger)}
}

// Save is registered as a commit hook.
func (p *Persister) Save(ctx context.Context, snap domain.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := p.store.Put(ctx, p.key, payload); err != nil {
		return err
	}
	p.logger.Debug("session persisted", zap.String("key", p.key), zap.Int("bytes", len(payload)), zap.Int("cursor", snap.Cursor))
	return nil
}

// Load returns ErrNothingToRestore when the slot is empty or unreadable.
// Read failures and corrupt payloads are logged and treated as empty.
func (p *Persister) Load(ctx context.Context) (domain.Snapshot, error) {
	payload, err := p.store.Get(ctx, p.key)
	if errors.Is(err, apperrors.ErrNotFound) {
		return domain.Snapshot{}, apperrors.ErrNothingToRestore
	}
	if err != nil {
		p.logger.Warn("unreadable session state", zap.String("key", p.key), zap.Error(err))
		return domain.Snapshot{}, apperrors.ErrNothingToRestore
	}
	snap := domain.Snapshot{}
	if err := json.Unmarshal(payload, &snap); err != nil {
		p.logger.Warn("discarding corrupt session state", zap.String("key", p.key), zap.Error(err))
		return domain.Snapshot{}, apperrors.ErrNothingToRestore
	}
	return snap, nil
}

func (p *Persister) Clear(ctx context.Context) error {
	return p.store.Delete(ctx, p.key)
}
