package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/spacesedan/tweetflow/internal/models"
)

const (
	twitterSearchURL = "https://api.twitter.com/2/tweets/search/recent"
	twitterTokenURL  = "https://api.twitter.com/oauth2/token"
	userAgent        = "tweetflow-bot/0.1"

	maxRetries     = 5
	initialBackoff = 1 * time.Second
	maxBackoff     = 32 * time.Second

	// The recent search endpoint accepts max_results between 10 and 100.
	minPageSize = 10
	maxPageSize = 100
)

// Credentials selects the X API app-only auth flow. A pre-issued bearer
// token is used as-is; an API key pair is exchanged at the oauth2 token
// endpoint on first use. The token takes precedence when both are set.
type Credentials struct {
	BearerToken string
	APIKey      string
	APISecret   string
}

// TwitterSource fetches tweets through the X API v2 recent search endpoint
// using app-only authentication.
type TwitterSource struct {
	client  *http.Client
	baseURL string
}

// NewTwitterSource builds a live source. Callers without credentials should
// rely on the sample source instead.
func NewTwitterSource(creds Credentials) (*TwitterSource, error) {
	switch {
	case creds.BearerToken != "":
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: creds.BearerToken, TokenType: "Bearer"})
		return &TwitterSource{
			client:  oauth2.NewClient(context.Background(), ts),
			baseURL: twitterSearchURL,
		}, nil
	case creds.APIKey != "" && creds.APISecret != "":
		oauthConf := &clientcredentials.Config{
			ClientID:     creds.APIKey,
			ClientSecret: creds.APISecret,
			TokenURL:     twitterTokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		}
		return &TwitterSource{
			client:  oauthConf.Client(context.Background()),
			baseURL: twitterSearchURL,
		}, nil
	default:
		return nil, errors.New("twitter credentials are missing, set a bearer token or an api key pair")
	}
}

func (s *TwitterSource) Name() string { return models.SourceTwitter }

// Search pages through recent search results until limit posts are collected
// or the API runs out of pages. Retweets are excluded at the query level so
// every returned post carries original text.
func (s *TwitterSource) Search(ctx context.Context, keyword string, limit int, window models.Window) ([]models.Post, error) {
	var posts []models.Post
	nextToken := ""

	for len(posts) < limit {
		page, err := s.fetchPage(ctx, keyword, limit-len(posts), window, nextToken)
		if err != nil {
			return nil, err
		}

		if len(page.Data) == 0 {
			break
		}
		posts = append(posts, pagePosts(page, keyword)...)

		nextToken = page.Meta.NextToken
		if nextToken == "" {
			break
		}
	}

	if len(posts) > limit {
		posts = posts[:limit]
	}
	slog.Info("[TwitterSource] Search complete",
		slog.String("keyword", keyword),
		slog.Int("posts", len(posts)))
	return posts, nil
}

func (s *TwitterSource) fetchPage(ctx context.Context, keyword string, remaining int, window models.Window, nextToken string) (*models.TwitterSearchResponse, error) {
	pageSize := remaining
	if pageSize < minPageSize {
		pageSize = minPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	parsedURL, err := url.Parse(s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing search url: %w", err)
	}
	queryParams := parsedURL.Query()
	queryParams.Add("query", keyword+" -is:retweet")
	queryParams.Add("max_results", strconv.Itoa(pageSize))
	queryParams.Add("tweet.fields", "created_at,public_metrics,author_id")
	queryParams.Add("expansions", "author_id")
	queryParams.Add("user.fields", "username")
	if !window.Start.IsZero() {
		queryParams.Add("start_time", window.Start.UTC().Format(time.RFC3339))
	}
	if !window.End.IsZero() {
		queryParams.Add("end_time", window.End.UTC().Format(time.RFC3339))
	}
	if nextToken != "" {
		queryParams.Add("next_token", nextToken)
	}
	parsedURL.RawQuery = queryParams.Encode()

	backoff := initialBackoff
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsedURL.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", userAgent)

		res, err := s.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("twitter request failed: %w", err)
		}

		switch res.StatusCode {
		case http.StatusOK:
			body, err := io.ReadAll(res.Body)
			res.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("reading twitter response: %w", err)
			}
			var response models.TwitterSearchResponse
			if err := json.Unmarshal(body, &response); err != nil {
				return nil, fmt.Errorf("parsing twitter response: %w", err)
			}
			return &response, nil

		case http.StatusUnauthorized, http.StatusForbidden:
			res.Body.Close()
			return nil, fmt.Errorf("twitter auth rejected with status %d", res.StatusCode)

		case http.StatusBadRequest:
			body, _ := io.ReadAll(res.Body)
			res.Body.Close()
			return nil, fmt.Errorf("twitter rejected query: %s", string(body))

		case http.StatusTooManyRequests:
			io.Copy(io.Discard, res.Body)
			res.Body.Close()
			slog.Warn("[TwitterSource] 429 Too Many Requests - Retrying with backoff",
				slog.Duration("backoff", backoff), slog.Int("attempt", attempt))
			lastErr = errors.New("twitter rate limit exceeded")
			if err := sleepContext(ctx, backoff); err != nil {
				return nil, err
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}

		default:
			io.Copy(io.Discard, res.Body)
			res.Body.Close()
			if res.StatusCode >= 500 {
				slog.Warn("[TwitterSource] Server error - Retrying with backoff",
					slog.Int("statusCode", res.StatusCode),
					slog.Duration("backoff", backoff), slog.Int("attempt", attempt))
				lastErr = fmt.Errorf("twitter server error %d", res.StatusCode)
				if err := sleepContext(ctx, backoff); err != nil {
					return nil, err
				}
				backoff *= 2
				if backoff > maxBackoff {
					backoff = maxBackoff
				}
				continue
			}
			return nil, fmt.Errorf("twitter unexpected status %d", res.StatusCode)
		}
	}

	return nil, fmt.Errorf("twitter search failed after %d attempts: %w", maxRetries, lastErr)
}

// pagePosts flattens one API page into posts, resolving author handles from
// the includes block.
func pagePosts(page *models.TwitterSearchResponse, keyword string) []models.Post {
	usernames := make(map[string]string, len(page.Includes.Users))
	for _, user := range page.Includes.Users {
		usernames[user.ID] = user.Username
	}

	posts := make([]models.Post, 0, len(page.Data))
	for _, tweet := range page.Data {
		username, ok := usernames[tweet.AuthorID]
		if !ok {
			username = "user_" + tweet.AuthorID
		}
		posts = append(posts, models.Post{
			PostID:       tweet.ID,
			Content:      tweet.Text,
			Username:     username,
			CreatedAt:    tweet.CreatedAt,
			Keyword:      keyword,
			URL:          fmt.Sprintf("https://twitter.com/%s/status/%s", username, tweet.ID),
			RetweetCount: tweet.PublicMetrics.RetweetCount,
			LikeCount:    tweet.PublicMetrics.LikeCount,
		})
	}
	return posts
}

// sleepContext waits for d or until ctx is cancelled, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
