package handler

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
	"github.com/legxcy/outreach-api/internal/service"
)

type stubPlaces struct {
	mu          sync.Mutex
	textSearch  func(ctx context.Context, query string) ([]places.Candidate, error)
	details     func(ctx context.Context, placeID string) (places.Details, error)
	searchCalls int
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
	if s.details != nil {
		return s.details(ctx, placeID)
	}
	return places.Details{}, errors.New("details not implemented")
}

type stubScorer struct {
	score func(ctx context.Context, url string, strategy pagespeed.Strategy) (entity.Score, error)
}

func (s *stubScorer) Score(ctx context.Context, url string, strategy pagespeed.Strategy) (entity.Score, error) {
	if s.score != nil {
		return s.score(ctx, url, strategy)
	}
	return entity.Unavailable, errors.New("score not implemented")
}

type stubSender struct {
	mu     sync.Mutex
	err    error
	emails []resend.Email
}

func (s *stubSender) Send(ctx context.Context, email resend.Email) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emails = append(s.emails, email)
	if s.err != nil {
		return "", s.err
	}
	return "msg-1", nil
}

type stubVerifier struct {
	ok  bool
	err error
}

func (s *stubVerifier) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	return s.ok, s.err
}

type stubListings struct {
	listings []yell.Listing
}

func (s *stubListings) Search(ctx context.Context, keywords, location string, limit int) ([]yell.Listing, error) {
	return s.listings, nil
}

// ossettFixture returns three prospects: two without a website and one
// secure site with a slow mobile score.
func ossettFixture() (*stubPlaces, *stubScorer) {
	p := &stubPlaces{
		textSearch: func(ctx context.Context, query string) ([]places.Candidate, error) {
			return []places.Candidate{
				{PlaceID: "p1", Name: "Ossett Bakery"},
				{PlaceID: "p2", Name: "Ossett Joinery"},
				{PlaceID: "p3", Name: "Ossett Cafe"},
				{PlaceID: "p4", Name: "Ossett Florist"},
			}, nil
		},
		details: func(ctx context.Context, placeID string) (places.Details, error) {
			switch placeID {
			case "p2":
				return places.Details{Website: "http://example.com"}, nil
			case "p4":
				return places.Details{Website: "https://fast.example.com"}, nil
			default:
				return places.Details{Phone: "+44 20 7946 0958"}, nil
			}
		},
	}
	s := &stubScorer{score: func(ctx context.Context, url string, strategy pagespeed.Strategy) (entity.Score, error) {
		if url == "https://fast.example.com" {
			return entity.NewScore(95), nil
		}
		return entity.NewScore(35), nil
	}}
	return p, s
}

func newOutreachService(p service.PlacesClient, scorer service.PerformanceScorer, store repository.Store) *service.OutreachService {
	cache := repository.NewOutreachCache(store)
	return service.NewOutreachService(p, service.NewPerformanceLookup(cache, scorer, nil), cache, service.OutreachOptions{ForceHTTPS: true}, nil)
}
