// File: internal/models/search.go
package models

import "time"

// Mode selects which Reddit listing a search is run against
type Mode string

const (
	ModeKeyword   Mode = "keyword"
	ModeUser      Mode = "user"
	ModeSubreddit Mode = "subreddit"
)

// Valid reports whether m is one of the supported search modes
func (m Mode) Valid() bool {
	switch m {
	case ModeKeyword, ModeUser, ModeSubreddit:
		return true
	}
	return false
}

const (
	DefaultLimit      = 5
	MaxLimit          = 100
	DefaultTimeFilter = "all"
	DefaultSort       = "relevance"

	// MaxComments is the number of top-level comments kept per post
	MaxComments = 5

	// DeletedAuthor is what a missing or deleted account renders as
	DeletedAuthor = "None"

	// TimeLayout is used for every timestamp written into a PostRecord
	TimeLayout = "2006-01-02 15:04:05"
)

// SearchRequest represents the incoming search request
type SearchRequest struct {
	Mode       Mode   `json:"mode"`
	Query      string `json:"query"`
	Limit      int    `json:"limit,omitempty"`
	TimeFilter string `json:"timeFilter,omitempty"`
	Sort       string `json:"sort,omitempty"`
}

// Normalize fills in defaults for the optional fields and caps the limit
func (r SearchRequest) Normalize() SearchRequest {
	if r.Limit <= 0 {
		r.Limit = DefaultLimit
	}
	if r.Limit > MaxLimit {
		r.Limit = MaxLimit
	}
	if r.TimeFilter == "" {
		r.TimeFilter = DefaultTimeFilter
	}
	if r.Sort == "" {
		r.Sort = DefaultSort
	}
	return r
}

// PostRecord is one enriched submission as stored in a snapshot.
// The JSON keys are the ones the front-end renders.
type PostRecord struct {
	Title             string          `json:"标题"`
	Body              string          `json:"正文"`
	Score             int             `json:"评分"`
	CommentCount      int             `json:"评论数"`
	CreatedAt         string          `json:"创建时间"`
	Author            string          `json:"作者"`
	Subreddit         string          `json:"subreddit"`
	IsOriginalContent bool            `json:"是否原创"`
	IsSelfPost        bool            `json:"是否自己的文本"`
	Comments          []CommentRecord `json:"评论"`
}

// CommentRecord is a single top-level comment attached to a PostRecord
type CommentRecord struct {
	Author    string `json:"作者"`
	Body      string `json:"内容"`
	Score     int    `json:"评分"`
	CreatedAt string `json:"发布时间"`
}

// SearchResponse is the body returned by a successful search
type SearchResponse struct {
	Success  bool         `json:"success"`
	Data     []PostRecord `json:"data"`
	Total    int          `json:"total"`
	Filepath string       `json:"filepath"`
}

// FormatTimestamp renders a Reddit created_utc value in local time
func FormatTimestamp(createdUTC float64) string {
	return time.Unix(int64(createdUTC), 0).Local().Format(TimeLayout)
}
