package site

import "strings"

// SchemeRewriter backs the https_url_for template helper.
// Enabled, plain http:// URLs are rewritten to https://. Disabled, URLs are
// returned unmodified, for deployments where the request scheme is already right.
type SchemeRewriter struct {
	Enabled bool
}

// Rewrite applies the rewrite to one URL. https://, relative and
// other-scheme URLs are never touched.
func (r SchemeRewriter) Rewrite(raw string) string {
	if !r.Enabled {
		return raw
	}
	if len(raw) >= len("http://") && strings.EqualFold(raw[:len("http://")], "http://") {
		return "https://" + raw[len("http://"):]
	}
	return raw
}
