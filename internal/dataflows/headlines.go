package dataflows

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/sentinelai/sentinel-agents/models"
)

// HeadlineClient scrapes recent news headlines for sentiment scoring.
// Advisor calls are best-effort: any failure here degrades to a neutral
// sentiment, never to a failed action.
type HeadlineClient struct {
	client  *resty.Client
	baseURL string
}

func NewHeadlineClient(baseURL, userAgent string) *HeadlineClient {
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", userAgent)

	return &HeadlineClient{
		client:  client,
		baseURL: baseURL,
	}
}

// FetchHeadlines searches for headlines matching the query.
func (hc *HeadlineClient) FetchHeadlines(ctx context.Context, query string, maxResults int) ([]*models.NewsHeadline, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	if maxResults <= 0 {
		maxResults = 20
	}

	searchURL := fmt.Sprintf("%s?q=%s&hl=en-US&gl=US", hc.baseURL, url.QueryEscape(query))

	resp, err := hc.client.R().SetContext(ctx).Get(searchURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch headlines: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("HTTP error %d when fetching headlines", resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return hc.parseHeadlines(doc, maxResults), nil
}

func (hc *HeadlineClient) parseHeadlines(doc *goquery.Document, maxResults int) []*models.NewsHeadline {
	headlines := make([]*models.NewsHeadline, 0, maxResults)
	now := time.Now()

	doc.Find("article").EachWithBreak(func(i int, article *goquery.Selection) bool {
		title := strings.TrimSpace(article.Find("a").First().Text())
		if title == "" {
			title = strings.TrimSpace(article.Find("h3, h4").First().Text())
		}
		if title == "" {
			return true
		}

		href, _ := article.Find("a").First().Attr("href")
		source := strings.TrimSpace(article.Find("div[data-n-tid]").First().Text())

		headlines = append(headlines, &models.NewsHeadline{
			Title:     title,
			Source:    source,
			URL:       href,
			FetchedAt: now,
		})
		return len(headlines) < maxResults
	})

	return headlines
}

var (
	bullishWords = []string{"surge", "rally", "gain", "record", "growth", "soar", "beat", "bullish", "upgrade", "recovery"}
	bearishWords = []string{"crash", "plunge", "drop", "loss", "fear", "slump", "miss", "bearish", "downgrade", "selloff"}
)

// ScoreSentiment maps headlines to a score in [-1, 1] by counting bullish
// and bearish keywords. Empty input is neutral.
func ScoreSentiment(headlines []*models.NewsHeadline) float64 {
	if len(headlines) == 0 {
		return 0
	}

	score := 0
	hits := 0
	for _, h := range headlines {
		title := strings.ToLower(h.Title)
		for _, w := range bullishWords {
			if strings.Contains(title, w) {
				score++
				hits++
			}
		}
		for _, w := range bearishWords {
			if strings.Contains(title, w) {
				score--
				hits++
			}
		}
	}
	if hits == 0 {
		return 0
	}
	return float64(score) / float64(hits)
}
