package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"mailsort/internal/modules/session/service"
	apperrors "mailsort/internal/platform/errors"
)

type mapStore struct {
	data   map[string][]byte
	getErr error
}

func (s *mapStore) Put(_ context.Context, key string, payload []byte) error {
	s.data[key] = payload
	return nil
}

func (s *mapStore) Get(_ context.Context, key string) ([]byte, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	payload, ok := s.data[key]
	if !ok {
		return nil, fmt.Errorf("lookup %s: %w", key, apperrors.ErrNotFound)
	}
	return payload, nil
}

func (s *mapStore) Delete(_ context.Context, key string) error {
	delete(s.data, key)
	return nil
}

func TestLoadTreatsMissingAndUnreadableSlotsAsNothingToRestore(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name  string
		store *mapStore
	}{
		{"wrapped not found", &mapStore{data: map[string][]byte{}}},
		{"read failure", &mapStore{data: map[string][]byte{}, getErr: errors.New("is a directory")}},
		{"corrupt payload", &mapStore{data: map[string][]byte{"k": []byte("{nope")}}},
	}
	for _, tc := range cases {
		p := service.NewPersister(tc.store, "k", nil)
		if _, err := p.Load(context.Background()); !errors.Is(err, apperrors.ErrNothingToRestore) {
			t.Fatalf("%s: expected ErrNothingToRestore, got %v", tc.name, err)
		}
	}
}
