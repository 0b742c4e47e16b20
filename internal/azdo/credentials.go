package azdo

import (
	"encoding/base64"
	"regexp"
	"strings"
)

// URL shapes for the hosted service and the legacy per-organization domain.
var (
	hostedURLPattern = regexp.MustCompile(`^https://dev\.azure\.com/[^/\s]+/?$`)
	legacyURLPattern = regexp.MustCompile(`^https://[^/.\s]+\.visualstudio\.com/?$`)
)

// Credentials holds the connection settings for one Azure DevOps organization:
// the organization URL, the project name, and a personal access token.
// It is read-only after initialization; token refresh replaces the whole value.
type Credentials struct {
	OrganizationURL string
	Project         string
	PAT             string
}

// IsValid reports whether all three settings are present. It performs no
// network call; deeper validity is established lazily by the first request
// using the auth header.
func (c Credentials) IsValid() bool {
	return c.OrganizationURL != "" && c.Project != "" && c.PAT != ""
}

// ValidateURL checks that the organization URL matches either the hosted
// (dev.azure.com/{org}) or legacy ({org}.visualstudio.com) shape.
func (c Credentials) ValidateURL() error {
	if hostedURLPattern.MatchString(c.OrganizationURL) || legacyURLPattern.MatchString(c.OrganizationURL) {
		return nil
	}
	return ErrOrganizationURL
}

// AuthHeader produces the Authorization header value for PAT authentication.
// Azure DevOps expects Basic auth with an empty username and the PAT as the
// password half.
func (c Credentials) AuthHeader() string {
	token := base64.StdEncoding.EncodeToString([]byte(":" + c.PAT))
	return "Basic " + token
}

// baseURL returns the organization URL without a trailing slash, ready for
// path concatenation.
func (c Credentials) baseURL() string {
	return strings.TrimRight(c.OrganizationURL, "/")
}
