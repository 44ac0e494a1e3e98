package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"strings"
)

// ErrNotAbsolute is returned when a URL cannot be made absolute.
var ErrNotAbsolute = errors.New("url is not absolute and no base was given")

// HashURL creates a SHA256 hash of a URL string.
// This is useful for creating consistent, safe keys for Redis.
func HashURL(rawURL string) string {
	h := sha256.New()
	h.Write([]byte(rawURL))
	return hex.EncodeToString(h.Sum(nil))
}

// ToAbsoluteURL converts a relative URL to an absolute URL given a base URL.
// A nil base is allowed when relative is already absolute.
func ToAbsoluteURL(base *url.URL, relative string) (string, error) {
	relURL, err := url.Parse(strings.TrimSpace(relative))
	if err != nil {
		return "", err
	}
	if base != nil {
		relURL = base.ResolveReference(relURL)
	}
	if !relURL.IsAbs() || relURL.Host == "" {
		return "", ErrNotAbsolute
	}
	return relURL.String(), nil
}

// CanonicalProfileURL resolves href against base and strips the query string
// and fragment, so tracking parameters do not split one profile into several.
func CanonicalProfileURL(base *url.URL, href string) (string, error) {
	abs, err := ToAbsoluteURL(base, href)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(abs)
	if err != nil {
		return "", err
	}
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), nil
}

// IsHTTPURL reports whether raw is an absolute http or https URL with a host.
func IsHTTPURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
