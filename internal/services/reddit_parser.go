// File: internal/services/reddit_parser.go

package services

import (
	"encoding/json"
	"fmt"

	"github.com/XZXY-AI/reddit-crawler/internal/models"
)

// Reddit "kind" prefixes
const (
	kindComment = "t1"
	kindPost    = "t3"
)

type listing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string  `json:"after"`
		Children []thing `json:"children"`
	} `json:"data"`
}

type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type postData struct {
	ID                string  `json:"id"`
	Title             string  `json:"title"`
	Selftext          string  `json:"selftext"`
	Score             int     `json:"score"`
	NumComments       int     `json:"num_comments"`
	CreatedUTC        float64 `json:"created_utc"`
	Author            string  `json:"author"`
	Subreddit         string  `json:"subreddit"`
	IsOriginalContent bool    `json:"is_original_content"`
	IsSelf            bool    `json:"is_self"`
}

type commentData struct {
	ID         string  `json:"id"`
	Author     string  `json:"author"`
	Body       string  `json:"body"`
	Score      int     `json:"score"`
	CreatedUTC float64 `json:"created_utc"`
}

// parseSubmissions parses a listing response into submissions, keeping listing order
func parseSubmissions(raw []byte) ([]models.Submission, error) {
	var l listing
	if err := json.Unmarshal(raw, &l); err != nil {
		return nil, fmt.Errorf("error parsing Reddit listing: %w", err)
	}

	submissions := make([]models.Submission, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		if child.Kind != kindPost {
			continue
		}

		var post postData
		if err := json.Unmarshal(child.Data, &post); err != nil {
			return nil, fmt.Errorf("error parsing post JSON: %w", err)
		}

		submissions = append(submissions, models.Submission{
			ID:                post.ID,
			Title:             post.Title,
			Selftext:          post.Selftext,
			Score:             post.Score,
			NumComments:       post.NumComments,
			CreatedUTC:        post.CreatedUTC,
			Author:            parseAuthor(post.Author),
			Subreddit:         post.Subreddit,
			IsOriginalContent: post.IsOriginalContent,
			IsSelf:            post.IsSelf,
		})
	}

	return submissions, nil
}

// parseComments parses a /comments/{id} response: a two-element array of the
// submission listing followed by the comment listing.
func parseComments(raw []byte) ([]models.Comment, error) {
	var listings []listing
	if err := json.Unmarshal(raw, &listings); err != nil {
		return nil, fmt.Errorf("error parsing comments response: %w", err)
	}
	if len(listings) < 2 {
		return nil, fmt.Errorf("unexpected comments response: %d listings", len(listings))
	}

	var comments []models.Comment
	for _, child := range listings[1].Data.Children {
		// "more" stubs are dropped, not expanded
		if child.Kind != kindComment {
			continue
		}

		var c commentData
		if err := json.Unmarshal(child.Data, &c); err != nil {
			return nil, fmt.Errorf("error parsing comment JSON: %w", err)
		}

		comments = append(comments, models.Comment{
			ID:         c.ID,
			Author:     parseAuthor(c.Author),
			Body:       c.Body,
			Score:      c.Score,
			CreatedUTC: c.CreatedUTC,
		})
	}

	return comments, nil
}

// parseAuthor maps Reddit's placeholder for removed accounts to nil
func parseAuthor(name string) *string {
	if name == "" || name == "[deleted]" {
		return nil
	}
	return &name
}
