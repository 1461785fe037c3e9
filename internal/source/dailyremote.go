package source

import (
	"bytes"
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"

	"github.com/golang-cafe/remotehq/internal/job"
	"github.com/golang-cafe/remotehq/internal/whitelist"
)

const (
	dailyRemoteLocationMark = "🌎"
	dailyRemoteSalaryMark   = "💵"
)

// dailyRemoteSkip matches the employment-type and age labels that share the
// company-name spans.
var dailyRemoteSkip = regexp.MustCompile(`(?i)^(full time|part time|internship|contract|·|\d+ (?:min|hour|day|week|month)s? ago|\d+ \w+ ago)$`)

type DailyRemote struct {
	BaseURL string
	fetcher
}

func NewDailyRemote(cfg Config) *DailyRemote {
	return &DailyRemote{BaseURL: "https://dailyremote.com", fetcher: newFetcher(cfg)}
}

func (d *DailyRemote) Name() job.Source { return job.SourceDailyRemote }

func (d *DailyRemote) Fetch(ctx context.Context, matcher *whitelist.Matcher) ([]Outcome, error) {
	f := d.fetcher
	f.userAgent = browserUserAgent
	body, err := f.get(ctx, d.BaseURL+"/remote-software-development-jobs", http.Header{
		"Accept": []string{"text/html,application/xhtml+xml"},
	})
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse dailyremote page")
	}
	return NormalizeAll(d.candidates(doc), d.Name(), matcher), nil
}

func (d *DailyRemote) candidates(doc *goquery.Document) []Candidate {
	var candidates []Candidate
	seen := make(map[string]bool)
	doc.Find("article").Each(func(_ int, article *goquery.Selection) {
		link := article.Find("h2.job-position a[href*='/remote-job/']").First()
		href, _ := link.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || seen[href] {
			return
		}
		seen[href] = true
		title := strings.TrimSpace(link.Text())
		if len([]rune(title)) < 3 {
			return
		}

		url := href
		if !strings.HasPrefix(url, "http") {
			url = d.BaseURL + href
		}
		c := Candidate{
			ExternalID: HashedID("dr", href),
			Title:      title,
			Company:    dailyRemoteCompany(article),
			URL:        url,
		}
		article.Find("div.job-meta").First().Find("span.card-tag").Each(func(_ int, tag *goquery.Selection) {
			text := strings.TrimSpace(tag.Text())
			if strings.HasPrefix(text, dailyRemoteLocationMark) {
				if loc := strings.TrimSpace(strings.TrimPrefix(text, dailyRemoteLocationMark)); loc != "" {
					c.Location = loc
				}
			}
			if strings.Contains(text, dailyRemoteSalaryMark) {
				if salary := strings.TrimSpace(strings.Replace(text, dailyRemoteSalaryMark, "", 1)); salary != "" {
					c.Salary = salary
				}
			}
		})
		article.Find("a[href*='/remote-'][href*='-jobs']").Each(func(_ int, a *goquery.Selection) {
			tag := strings.TrimSpace(a.Text())
			if tag != "" && !strings.Contains(tag, "Software Development") && len(tag) < 30 {
				c.Tags = append(c.Tags, tag)
			}
		})
		candidates = append(candidates, c)
	})
	return candidates
}

func dailyRemoteCompany(article *goquery.Selection) string {
	company := ""
	article.Find("div.company-name").First().Find("span").EachWithBreak(func(_ int, span *goquery.Selection) bool {
		text := strings.TrimSpace(span.Text())
		if len(text) > 1 && len(text) < 80 && !dailyRemoteSkip.MatchString(text) {
			company = text
			return false
		}
		return true
	})
	if company != "" {
		return company
	}
	text := strings.TrimSpace(article.Find("div.company-name-mobile span").First().Text())
	if len(text) > 1 && !dailyRemoteSkip.MatchString(text) {
		return text
	}
	return UnknownCompany
}
