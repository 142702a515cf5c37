// Package normalize canonicalizes queries, websites, phones, names and e-mail
// addresses before they are scored or used as store keys.
package normalize

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"
)

var (
	emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-']+@[a-z0-9.-]+\.[a-z]{2,}$`)
	idnaProfile  = idna.Lookup
)

const (
	// DefaultQuery is used when the caller does not provide a search phrase.
	DefaultQuery = "businesses in Ossett"
	// MaxQueryLength bounds the query (in runes) before it becomes part of a cache key.
	MaxQueryLength = 200
	// DefaultPhoneRegion is applied to numbers without an international prefix.
	DefaultPhoneRegion = "GB"

	trackingPrefix = "utm_"
)

// Query returns the search phrase used verbatim for lookups and cache keys.
// Case and whitespace are preserved; only blank input falls back to DefaultQuery.
func Query(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return DefaultQuery
	}
	if utf8.RuneCountInString(raw) > MaxQueryLength {
		return string([]rune(raw)[:MaxQueryLength])
	}
	return raw
}

// Website canonicalizes a website URL. The boolean is false when the input
// cannot be treated as a website at all.
func Website(raw string, forceHTTPS bool) (string, bool) {
	u, err := sanitizeURL(raw, forceHTTPS)
	if err != nil {
		return "", false
	}
	stripTracking(u)
	return u.String(), true
}

// IsSecure reports whether the URL is served over https.
func IsSecure(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, "https")
}

// HostKey returns the lower-cased ASCII hostname without a leading "www.".
func HostKey(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.ToLower(strings.TrimSuffix(u.Hostname(), "."))
	if host == "" {
		return ""
	}
	if ascii, err := idnaProfile.ToASCII(host); err == nil && ascii != "" {
		host = ascii
	}
	return strings.TrimPrefix(host, "www.")
}

// Phone formats a number internationally when libphonenumber accepts it and
// otherwise returns the trimmed input.
func Phone(raw, region string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if region == "" {
		region = DefaultPhoneRegion
	}
	number, err := phonenumbers.Parse(raw, strings.ToUpper(region))
	if err != nil {
		return raw
	}
	if !phonenumbers.IsPossibleNumber(number) || !phonenumbers.IsValidNumber(number) {
		return raw
	}
	return phonenumbers.Format(number, phonenumbers.INTERNATIONAL)
}

// Name folds a business name for use in a store key.
func Name(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Email folds an address for use in a store key. The domain is converted to
// its ASCII form.
func Email(raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return email
	}
	domain := email[at+1:]
	if ascii, err := idnaProfile.ToASCII(domain); err == nil && ascii != "" {
		domain = ascii
	}
	return email[:at+1] + domain
}

// IsEmail reports whether the address is syntactically usable.
func IsEmail(raw string) bool {
	email := Email(raw)
	if email == "" || !emailPattern.MatchString(email) {
		return false
	}
	return isDomainValid(email[strings.LastIndex(email, "@")+1:])
}

func sanitizeURL(raw string, forceHTTPS bool) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty url")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, errors.New("invalid url")
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, errors.New("unsupported scheme")
	}
	if forceHTTPS {
		scheme = "https"
	}
	u.Scheme = scheme
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	return u, nil
}

func stripTracking(u *url.URL) {
	if u == nil || u.RawQuery == "" {
		return
	}
	query := u.Query()
	changed := false
	for key := range query {
		if strings.HasPrefix(strings.ToLower(key), trackingPrefix) {
			query.Del(key)
			changed = true
		}
	}
	if changed {
		u.RawQuery = query.Encode()
	}
}

func isDomainValid(domain string) bool {
	if strings.Count(domain, ".") == 0 {
		return false
	}
	for _, part := range strings.Split(domain, ".") {
		if part == "" || strings.HasPrefix(part, "-") || strings.HasSuffix(part, "-") {
			return false
		}
	}
	return true
}
