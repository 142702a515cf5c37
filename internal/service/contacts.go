package service

import (
	"context"
	"strings"

	"github.com/legxcy/outreach-api/internal/dto"
	"github.com/legxcy/outreach-api/internal/repository"
)

// ContactStatusStore persists contacted flags.
type ContactStatusStore interface {
	Get(ctx context.Context, name string) (bool, error)
	GetMany(ctx context.Context, names []string) (map[string]bool, error)
	Set(ctx context.Context, name string, contacted bool) error
	MarkEmail(ctx context.Context, email string) error
}

var _ ContactStatusStore = (*repository.ContactStatusRepository)(nil)

// ContactsService manages the contacted flag of prospects.
type ContactsService struct {
	store ContactStatusStore
}

// NewContactsService constructs a ContactsService.
func NewContactsService(store ContactStatusStore) *ContactsService {
	return &ContactsService{store: store}
}

// GetStatus returns the flag of name, false when unknown.
func (s *ContactsService) GetStatus(ctx context.Context, name string) (bool, error) {
	if strings.TrimSpace(name) == "" {
		return false, nil
	}
	return s.store.Get(ctx, name)
}

// GetStatuses returns the flags of names keyed by the names as given.
func (s *ContactsService) GetStatuses(ctx context.Context, names []string) (map[string]bool, error) {
	return s.store.GetMany(ctx, names)
}

// SetStatus writes the flag of name.
func (s *ContactsService) SetStatus(ctx context.Context, name string, contacted bool) error {
	if strings.TrimSpace(name) == "" {
		return ValidationError{Message: "name is required"}
	}
	return s.store.Set(ctx, name, contacted)
}

// ApplyUpdates writes every update with a non-empty name and reports the
// number of updates received.
func (s *ContactsService) ApplyUpdates(ctx context.Context, updates []dto.ContactedUpdate) (int, error) {
	for _, update := range updates {
		if strings.TrimSpace(update.Name) == "" {
			continue
		}
		if err := s.store.Set(ctx, update.Name, update.Contacted); err != nil {
			return 0, err
		}
	}
	return len(updates), nil
}

// MarkContacted flags the recipient address and every non-blank name.
func (s *ContactsService) MarkContacted(ctx context.Context, email string, names ...string) error {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if err := s.store.Set(ctx, name, true); err != nil {
			return err
		}
	}
	if strings.TrimSpace(email) == "" {
		return nil
	}
	return s.store.MarkEmail(ctx, email)
}
