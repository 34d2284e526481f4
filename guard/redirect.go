package guard

import (
	"net/url"
	"strings"
)

// SafeRedirect returns target when it is a same-origin relative path and
// fallback otherwise. Client-supplied redirect parameters must pass through
// here before being navigated to.
func SafeRedirect(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") {
		return fallback
	}
	// Protocol-relative and backslash forms are treated as absolute by browsers.
	if strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	for _, r := range target {
		if r < 0x20 || r == 0x7f || r == '\\' {
			return fallback
		}
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return fallback
	}
	return target
}
