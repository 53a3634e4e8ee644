package admission

import "strings"

// botUserAgents are substrings marking automated clients. Matched
// case-insensitively against the User-Agent header.
var botUserAgents = []string{
	"bot", "crawler", "spider", "scraper",
	"curl", "wget", "python", "node", "go-http",
	"postman", "insomnia", "httpie",
}

// allowedRefererHosts are development and hosting domains a cross-host
// referer may legitimately point at.
var allowedRefererHosts = []string{
	"localhost",
	"127.0.0.1",
	"vercel.app",
	"netlify.app",
	"github.dev",
	"stackblitz.com",
	"codesandbox.io",
}

// ScreenOrigin flags requests from suspicious sources: bot-like or
// missing user agents, and referers pointing at a host other than the
// request's own that is not on the allow-list. Flagged requests are
// rejected outright rather than rate-limited.
func ScreenOrigin(userAgent, referer, host string) (suspicious bool, reason string) {
	ua := strings.ToLower(strings.TrimSpace(userAgent))
	if ua == "" {
		return true, "Missing user agent"
	}
	for _, marker := range botUserAgents {
		if strings.Contains(ua, marker) {
			return true, "Automated request detected"
		}
	}

	if referer != "" && (host == "" || !strings.Contains(referer, host)) {
		allowed := false
		for _, h := range allowedRefererHosts {
			if strings.Contains(referer, h) {
				allowed = true
				break
			}
		}
		if !allowed {
			return true, "Suspicious referer"
		}
	}

	return false, ""
}
