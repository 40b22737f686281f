package httpmetrics

import (
	"strings"

	"github.com/AlibekovAA/chat-accounts/internal/common/constants"
)

// UnmatchedPath labels every request outside the service's route table.
const UnmatchedPath = "unmatched"

var knownRoutes = map[string]struct{}{
	constants.RouteHealth:        {},
	constants.RouteMetrics:       {},
	constants.RouteAccountSignup: {},
	constants.RouteAccountLogin:  {},
	constants.RouteAccountLogout: {},
	constants.RouteAccountMe:     {},
}

// NormalizePath maps a request path to a metrics label. Registered routes
// keep their own path; anything else collapses to UnmatchedPath so scanners
// cannot grow the label set.
func NormalizePath(path string) string {
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	if _, ok := knownRoutes[path]; ok {
		return path
	}
	return UnmatchedPath
}
