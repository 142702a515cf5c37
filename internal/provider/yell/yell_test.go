package yell

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/legxcy/outreach-api/internal/retry"
)

func capsule(name, website, phone string) string {
	var b strings.Builder
	b.WriteString(`<div class="businessCapsule--mainContent">`)
	if name != "" {
		fmt.Fprintf(&b, `<h2><a href="/biz/x">%s</a></h2>`, name)
	}
	if website != "" {
		fmt.Fprintf(&b, `<div class="businessCapsule--ctas"><a href="%s">Website</a></div>`, website)
	}
	if phone != "" {
		fmt.Fprintf(&b, `<span class="business--telephone"> %s </span>`, phone)
	}
	b.WriteString(`</div>`)
	return b.String()
}

func TestParseListings(t *testing.T) {
	page := "<html><body>" +
		capsule("Acme Web", "http://acme.example", "01924 000000") +
		capsule("", "", "") +
		capsule("Beta", "", "0113 111111") +
		"</body></html>"

	got, err := ParseListings(strings.NewReader(page), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 listings, got %d", len(got))
	}
	if got[0] != (Listing{Name: "Acme Web", Website: "http://acme.example", Phone: "01924 000000"}) {
		t.Fatalf("unexpected first listing %+v", got[0])
	}
	if got[1].Name != "Unknown" || got[1].Website != "" || got[1].Phone != "" {
		t.Fatalf("unexpected fallback listing %+v", got[1])
	}
	if got[2].Website != "" || got[2].Phone != "0113 111111" {
		t.Fatalf("unexpected third listing %+v", got[2])
	}
}

func TestSearch_LimitsListings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ucs/UcsSearchAction.do" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("keywords") != "website" || r.URL.Query().Get("location") != "United Kingdom" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		var b strings.Builder
		for i := 0; i < 8; i++ {
			b.WriteString(capsule(fmt.Sprintf("Biz %d", i), "https://biz.example", ""))
		}
		fmt.Fprint(w, "<html><body>"+b.String()+"</body></html>")
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL, retry.Policy{MaxAttempts: 1})
	got, err := client.Search(context.Background(), "website", "United Kingdom", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 5 || got[4].Name != "Biz 4" {
		t.Fatalf("expected first 5 listings, got %+v", got)
	}
}

func TestSearch_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL, retry.Policy{MaxAttempts: 3})
	if _, err := client.Search(context.Background(), "website", "UK", 5); err == nil {
		t.Fatalf("expected error for blocked request")
	}
}
