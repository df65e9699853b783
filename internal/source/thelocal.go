package source

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"net/http"
	"time"

	"github.com/okempf/jobscout/internal/model"
)

const thelocalFeedURL = "https://www.thelocal.de/feeds/jobs.rss"

// TheLocalAdapter reads TheLocal.de's jobs RSS feed. XML decode is
// best-effort: items missing fields are kept with defaults, and querying is
// client-side.
type TheLocalAdapter struct {
	feedURL  string
	client   *http.Client
	pageSize int
}

// NewTheLocalAdapter creates the adapter with a shared HTTP client.
func NewTheLocalAdapter(client *http.Client, pageSize int) *TheLocalAdapter {
	return &TheLocalAdapter{
		feedURL:  thelocalFeedURL,
		client:   client,
		pageSize: pageSize,
	}
}

// Name returns the source identifier.
func (a *TheLocalAdapter) Name() string { return NameTheLocal }

type rssFeed struct {
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
	Creator     string `xml:"creator"` // dc:creator, typically the employer
}

// Fetch downloads and decodes the RSS feed, keeping items that match the
// query.
func (a *TheLocalAdapter) Fetch(ctx context.Context, req model.SearchRequest) ([]model.JobPosting, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, a.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("thelocal fetch: %w", err)
	}
	httpReq.Header.Set("User-Agent", "jobscout/1.0 (job-search-tool)")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("thelocal fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("thelocal fetch: %w", &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		})
	}

	var feed rssFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("thelocal fetch: decode feed: %w", err)
	}

	var postings []model.JobPosting
	for _, item := range feed.Channel.Items {
		if item.Title == "" {
			continue
		}
		description := stripHTML(item.Description)
		if !matchesQuery(req.Query, item.Title, description) {
			continue
		}

		posting := model.JobPosting{
			ExternalID:      externalID(NameTheLocal, itemID(item)),
			Title:           item.Title,
			Company:         item.Creator,
			Location:        "Germany",
			Description:     description,
			JobType:         model.DefaultJobType,
			RemoteOption:    looksRemote(item.Title, description),
			Source:          NameTheLocal,
			URL:             item.Link,
			ExperienceLevel: guessExperienceLevel(item.Title),
		}
		if item.PubDate != "" {
			if t, err := time.Parse(time.RFC1123Z, item.PubDate); err == nil {
				posting.PostedDate = t
			} else if t, err := time.Parse(time.RFC1123, item.PubDate); err == nil {
				posting.PostedDate = t
			}
		}

		postings = append(postings, posting)
		if len(postings) >= a.pageSize {
			break
		}
	}

	return postings, nil
}

// itemID prefers the feed's GUID; items without one get a stable hash of
// their link/title so repeat fetches produce identical external IDs.
func itemID(item rssItem) string {
	if item.GUID != "" {
		return item.GUID
	}
	sum := sha1.Sum([]byte(item.Link + "|" + item.Title))
	return hex.EncodeToString(sum[:8])
}
