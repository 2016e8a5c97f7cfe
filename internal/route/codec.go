package route

import (
	"net/url"
	"strings"
)

// ExtractPageToken returns the page query parameter of a server-supplied
// next/previous URL. It reports false when there is no further page: empty or
// malformed input, or a URL without a page parameter.
func ExtractPageToken(opaqueURL string) (string, bool) {
	opaqueURL = strings.TrimSpace(opaqueURL)
	if opaqueURL == "" {
		return "", false
	}
	parsed, err := url.Parse(opaqueURL)
	if err != nil {
		return "", false
	}
	query, err := url.ParseQuery(parsed.RawQuery)
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(query.Get("page"))
	if token == "" {
		return "", false
	}
	return token, true
}

// PageTokenFromURL is ExtractPageToken over a nullable server field.
func PageTokenFromURL(link *string) (string, bool) {
	if link == nil {
		return "", false
	}
	return ExtractPageToken(*link)
}
