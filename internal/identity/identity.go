package identity

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// Headers set by the auth proxy in front of the service. The proxy
// authenticates every request, so the values are trusted as-is; no
// guessing from other request attributes happens here.
const (
	headerEmail = "X-Forwarded-Email"
	headerUser  = "X-Forwarded-User"
)

// User is the authenticated caller as reported by the proxy.
type User struct {
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name"`
}

// FromRequest extracts the caller from the proxy headers. When neither
// header is present the zero User is returned with ok=false and callers
// fall back to a generic greeting.
func FromRequest(c *gin.Context) (User, bool) {
	email := strings.TrimSpace(c.GetHeader(headerEmail))
	username := strings.TrimSpace(c.GetHeader(headerUser))

	switch {
	case email != "":
		return User{Email: email, DisplayName: displayName(email)}, true
	case username != "":
		return User{DisplayName: displayName(username)}, true
	default:
		return User{}, false
	}
}

// Greeting renders the dashboard welcome line.
func (u User) Greeting() string {
	if u.DisplayName == "" {
		return "Hello!"
	}
	return "Hello " + u.DisplayName + "!"
}

// displayName turns "jane.doe@example.com" or "jane.doe" into "Jane Doe".
func displayName(raw string) string {
	local := raw
	if at := strings.IndexByte(raw, '@'); at >= 0 {
		local = raw[:at]
	}
	parts := strings.Split(local, ".")
	for i, p := range parts {
		parts[i] = title(p)
	}
	return strings.Join(parts, " ")
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
