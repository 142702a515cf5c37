package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/legxcy/outreach-api/internal/normalize"
)

const (
	// ContactedTTL keeps contacted flags for a year.
	ContactedTTL = 365 * 24 * time.Hour
	// SendCounterTTL bounds the life of a daily send counter.
	SendCounterTTL = 24 * time.Hour

	contactedNamePrefix  = "contacted:v1:name:"
	contactedEmailPrefix = "contacted:v1:email:"
	sendCounterPrefix    = "outreach:sends:"
)

// ContactedNameKey is the flag key of a business name.
func ContactedNameKey(name string) string { return contactedNamePrefix + normalize.Name(name) }

// ContactedEmailKey is the flag key of a recipient address.
func ContactedEmailKey(email string) string {
	return contactedEmailPrefix + normalize.Email(email)
}

// SendCounterKey is the counter key of a UTC calendar day.
func SendCounterKey(day time.Time) string {
	return sendCounterPrefix + day.UTC().Format("2006-01-02")
}

// ContactStatusRepository persists contacted flags.
type ContactStatusRepository struct {
	store Store
}

// NewContactStatusRepository wraps store.
func NewContactStatusRepository(store Store) *ContactStatusRepository {
	return &ContactStatusRepository{store: store}
}

// Get returns the flag of a name, false when never written.
func (r *ContactStatusRepository) Get(ctx context.Context, name string) (bool, error) {
	raw, err := r.store.Get(ctx, ContactedNameKey(name))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get contacted flag: %w", err)
	}
	return parseFlag(raw), nil
}

// GetMany reads the flags of all names with a single round trip. The result
// is keyed by the names exactly as given.
func (r *ContactStatusRepository) GetMany(ctx context.Context, names []string) (map[string]bool, error) {
	statuses := make(map[string]bool, len(names))
	if len(names) == 0 {
		return statuses, nil
	}

	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = ContactedNameKey(name)
	}
	values, err := r.store.MGet(ctx, keys...)
	if err != nil {
		return nil, fmt.Errorf("get contacted flags: %w", err)
	}
	for i, name := range names {
		statuses[name] = i < len(values) && parseFlag(values[i])
	}
	return statuses, nil
}

// Set writes the flag of a name.
func (r *ContactStatusRepository) Set(ctx context.Context, name string, contacted bool) error {
	if err := r.store.Set(ctx, ContactedNameKey(name), []byte(strconv.FormatBool(contacted)), ContactedTTL); err != nil {
		return fmt.Errorf("set contacted flag: %w", err)
	}
	return nil
}

// MarkEmail flags a recipient address as contacted.
func (r *ContactStatusRepository) MarkEmail(ctx context.Context, email string) error {
	if err := r.store.Set(ctx, ContactedEmailKey(email), []byte("true"), ContactedTTL); err != nil {
		return fmt.Errorf("set contacted email flag: %w", err)
	}
	return nil
}

func parseFlag(raw []byte) bool {
	if raw == nil {
		return false
	}
	value, err := strconv.ParseBool(strings.TrimSpace(string(raw)))
	return err == nil && value
}

// SendQuota counts outbound e-mails per UTC day.
type SendQuota struct {
	store Store
}

// NewSendQuota wraps store.
func NewSendQuota(store Store) *SendQuota {
	return &SendQuota{store: store}
}

// Increment bumps the counter of day and returns the new count.
func (q *SendQuota) Increment(ctx context.Context, day time.Time) (int64, error) {
	count, err := q.store.IncrWithTTL(ctx, SendCounterKey(day), SendCounterTTL)
	if err != nil {
		return 0, fmt.Errorf("increment send counter: %w", err)
	}
	return count, nil
}
