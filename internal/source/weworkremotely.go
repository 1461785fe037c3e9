package source

import (
	"bytes"
	"context"
	"encoding/xml"
	"net/http"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/golang-cafe/remotehq/internal/job"
	"github.com/golang-cafe/remotehq/internal/whitelist"
)

type wwrFeed struct {
	Items []struct {
		Title       string `xml:"title"`
		Link        string `xml:"link"`
		Description string `xml:"description"`
		PubDate     string `xml:"pubDate"`
		Region      string `xml:"region"`
		Type        string `xml:"type"`
	} `xml:"channel>item"`
}

// wwrTitle splits "Company: Job Title".
var wwrTitle = regexp.MustCompile(`^(.+?):\s+(.+)$`)

type WeWorkRemotely struct {
	BaseURL string
	fetcher
}

func NewWeWorkRemotely(cfg Config) *WeWorkRemotely {
	return &WeWorkRemotely{BaseURL: "https://weworkremotely.com", fetcher: newFetcher(cfg)}
}

func (w *WeWorkRemotely) Name() job.Source { return job.SourceWeWorkRemotely }

func (w *WeWorkRemotely) Fetch(ctx context.Context, matcher *whitelist.Matcher) ([]Outcome, error) {
	body, err := w.get(ctx, w.BaseURL+"/categories/remote-programming-jobs.rss", http.Header{
		"Accept": []string{"application/rss+xml, application/xml, text/xml"},
	})
	if err != nil {
		return nil, err
	}
	var feed wwrFeed
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.Strict = false
	if err := dec.Decode(&feed); err != nil {
		return nil, errors.Wrap(err, "unable to decode weworkremotely feed")
	}

	var candidates []Candidate
	for _, item := range feed.Items {
		title := strings.TrimSpace(item.Title)
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" {
			continue
		}
		company := UnknownCompany
		if m := wwrTitle.FindStringSubmatch(title); m != nil {
			company = strings.TrimSpace(m[1])
			title = strings.TrimSpace(m[2])
		}
		region := strings.TrimSpace(item.Region)
		if region == "" {
			region = "Anywhere"
		}
		candidates = append(candidates, Candidate{
			ExternalID:  HashedID("wwr", link),
			Title:       title,
			Company:     company,
			Location:    region,
			URL:         link,
			PostedDate:  ParseTime(item.PubDate),
			Description: item.Description,
			JobType:     item.Type,
		})
	}
	return NormalizeAll(candidates, w.Name(), matcher), nil
}
