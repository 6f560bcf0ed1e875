package models

import "time"

// TwitterSearchResponse is the shape of the X API v2 recent search endpoint.
type TwitterSearchResponse struct {
	Data     []TwitterTweet    `json:"data"`
	Includes TwitterIncludes   `json:"includes"`
	Meta     TwitterMeta       `json:"meta"`
	Errors   []TwitterAPIError `json:"errors,omitempty"`
}

type TwitterTweet struct {
	ID            string               `json:"id"`
	Text          string               `json:"text"`
	AuthorID      string               `json:"author_id"`
	CreatedAt     time.Time            `json:"created_at"`
	PublicMetrics TwitterPublicMetrics `json:"public_metrics"`
}

type TwitterPublicMetrics struct {
	RetweetCount int `json:"retweet_count"`
	ReplyCount   int `json:"reply_count"`
	LikeCount    int `json:"like_count"`
	QuoteCount   int `json:"quote_count"`
}

type TwitterIncludes struct {
	Users []TwitterUser `json:"users"`
}

type TwitterUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type TwitterMeta struct {
	ResultCount int    `json:"result_count"`
	NextToken   string `json:"next_token"`
}

type TwitterAPIError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Type   string `json:"type"`
}
