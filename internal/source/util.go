package source

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/okempf/jobscout/internal/model"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// stripHTML converts an HTML or HTML-encoded string to plain text: unescape
// entities, drop tags, collapse whitespace.
func stripHTML(content string) string {
	unescaped := html.UnescapeString(content)
	plain := htmlTagRegex.ReplaceAllString(unescaped, "")
	return strings.Join(strings.Fields(plain), " ")
}

// externalID namespaces a source-local id so cross-source collisions cannot
// occur.
func externalID(source, localID string) string {
	return source + "_" + localID
}

// matchesQuery reports whether every whitespace-separated query token
// appears in at least one of the fields (case-insensitive substring). An
// empty query matches everything. Used by feed-style sources that cannot
// filter server-side.
func matchesQuery(query string, fields ...string) bool {
	tokens := strings.Fields(strings.ToLower(query))
	if len(tokens) == 0 {
		return true
	}
	haystack := strings.ToLower(strings.Join(fields, " "))
	for _, tok := range tokens {
		if !strings.Contains(haystack, tok) {
			return false
		}
	}
	return true
}

// looksRemote sniffs a location/description for remote-work markers.
func looksRemote(texts ...string) bool {
	for _, t := range texts {
		lower := strings.ToLower(t)
		if strings.Contains(lower, "remote") || strings.Contains(lower, "home office") ||
			strings.Contains(lower, "homeoffice") {
			return true
		}
	}
	return false
}

// guessExperienceLevel maps title wording onto the coarse level scale.
func guessExperienceLevel(title string) string {
	lower := strings.ToLower(title)
	switch {
	case strings.Contains(lower, "senior") || strings.Contains(lower, "lead") ||
		strings.Contains(lower, "principal") || strings.Contains(lower, "staff"):
		return "Senior"
	case strings.Contains(lower, "junior") || strings.Contains(lower, "graduate") ||
		strings.Contains(lower, "intern") || strings.Contains(lower, "trainee"):
		return "Junior"
	default:
		return model.DefaultExperienceLevel
	}
}

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports seconds format (e.g. "120"). Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// getJSON issues a GET and decodes the JSON body into v. Non-200 responses
// become a *model.HTTPError carrying any Retry-After hint.
func getJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, val := range headers {
		req.Header.Set(k, val)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
