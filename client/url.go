package client

import "strings"

// BuildURL resolves a request path against a base URL. A path that
// already carries a scheme is returned unchanged; anything else is
// joined to the base with exactly one separating slash. Pure string
// manipulation, no validation.
func BuildURL(base, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
