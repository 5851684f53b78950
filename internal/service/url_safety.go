package service

import "net/url"

// IsSafeURL reports whether raw is an absolute http or https URL with a host.
// Any other scheme, a missing scheme or an unparseable string is unsafe.
func IsSafeURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}
