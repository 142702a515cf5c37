// Package turnstile verifies Cloudflare Turnstile tokens.
package turnstile

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/legxcy/outreach-api/internal/provider"
	"github.com/legxcy/outreach-api/internal/retry"
)

// DefaultVerifyURL is the public siteverify endpoint.
const DefaultVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

// Result is the decoded siteverify answer.
type Result struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
	Hostname   string   `json:"hostname"`
}

// Verifier checks tokens against siteverify.
type Verifier struct {
	verifyURL string
	secret    string
	http      provider.Doer
	policy    retry.Policy
}

// NewVerifier builds a Verifier. An empty verifyURL selects DefaultVerifyURL.
func NewVerifier(httpClient provider.Doer, secret, verifyURL string, policy retry.Policy) *Verifier {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if verifyURL == "" {
		verifyURL = DefaultVerifyURL
	}
	return &Verifier{verifyURL: verifyURL, secret: secret, http: httpClient, policy: policy}
}

// Verify reports whether token is valid. The error is reserved for transport
// and decoding failures.
func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}
	body := form.Encode()

	build := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	}

	var result Result
	if err := provider.CallJSON(ctx, v.http, v.policy, "turnstile", build, &result); err != nil {
		return false, err
	}
	return result.Success, nil
}
