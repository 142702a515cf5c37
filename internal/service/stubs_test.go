package service

import (
	"context"
	"errors"
	"sync"

	"github.com/legxcy/outreach-api/internal/entity"
	"github.com/legxcy/outreach-api/internal/provider/pagespeed"
	"github.com/legxcy/outreach-api/internal/provider/places"
	"github.com/legxcy/outreach-api/internal/provider/resend"
	"github.com/legxcy/outreach-api/internal/provider/yell"
	"github.com/legxcy/outreach-api/internal/repository"
)

type stubPlaces struct {
	mu          sync.Mutex
	textSearch  func(ctx context.Context, query string) ([]places.Candidate, error)
	details     func(ctx context.Context, placeID string) (places.Details, error)
	searchCalls int
	detailCalls int
}

func (s *stubPlaces) TextSearch(ctx context.Context, query string) ([]places.Candidate, error) {
	s.mu.Lock()
	s.searchCalls++
	s.mu.Unlock()
	if s.textSearch != nil {
		return s.textSearch(ctx, query)
	}
	return nil, errors.New("textSearch not implemented")
}

func (s *stubPlaces) Details(ctx context.Context, placeID string) (places.Details, error) {
	s.mu.Lock()
	s.detailCalls++
	s.mu.Unlock()
	if s.details != nil {
		return s.details(ctx, placeID)
	}
	return places.Details{}, errors.New("details not implemented")
}

type stubScorer struct {
	mu    sync.Mutex
	score func(ctx context.Context, url string, strategy pagespeed.Strategy) (entity.Score, error)
	calls int
}

func (s *stubScorer) Score(ctx context.Context, url string, strategy pagespeed.Strategy) (entity.Score, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.score != nil {
		return s.score(ctx, url, strategy)
	}
	return entity.Unavailable, errors.New("score not implemented")
}

func (s *stubScorer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubSender struct {
	mu     sync.Mutex
	send   func(ctx context.Context, email resend.Email) (string, error)
	emails []resend.Email
}

func (s *stubSender) Send(ctx context.Context, email resend.Email) (string, error) {
	s.mu.Lock()
	s.emails = append(s.emails, email)
	s.mu.Unlock()
	if s.send != nil {
		return s.send(ctx, email)
	}
	return "msg-1", nil
}

type stubVerifier struct {
	verify func(ctx context.Context, token, remoteIP string) (bool, error)
	calls  int
}

func (s *stubVerifier) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	s.calls++
	if s.verify != nil {
		return s.verify(ctx, token, remoteIP)
	}
	return true, nil
}

type stubLimiter struct {
	allow bool
	keys  []string
}

func (s *stubLimiter) Allow(key string) bool {
	s.keys = append(s.keys, key)
	return s.allow
}

type stubListings struct {
	search func(ctx context.Context, keywords, location string, limit int) ([]yell.Listing, error)
	calls  int
}

func (s *stubListings) Search(ctx context.Context, keywords, location string, limit int) ([]yell.Listing, error) {
	s.calls++
	if s.search != nil {
		return s.search(ctx, keywords, location, limit)
	}
	return nil, errors.New("search not implemented")
}

func newTestCache() (*repository.OutreachCache, *repository.MemoryStore) {
	store := repository.NewMemoryStore()
	return repository.NewOutreachCache(store), store
}
