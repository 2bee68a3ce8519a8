package models

// Submission is a post as returned by a Reddit listing.
// Author is nil when the account was deleted or is otherwise unavailable.
type Submission struct {
	ID                string
	Title             string
	Selftext          string
	Score             int
	NumComments       int
	CreatedUTC        float64
	Author            *string
	Subreddit         string
	IsOriginalContent bool
	IsSelf            bool
}

// Comment is a top-level comment on a submission
type Comment struct {
	ID         string
	Author     *string
	Body       string
	Score      int
	CreatedUTC float64
}

// AuthorName returns the author or DeletedAuthor when there is none
func AuthorName(author *string) string {
	if author == nil {
		return DeletedAuthor
	}
	return *author
}

// NewPostRecord builds the snapshot record for a submission and its comments
func NewPostRecord(s Submission, comments []Comment) PostRecord {
	records := make([]CommentRecord, 0, len(comments))
	for _, c := range comments {
		records = append(records, CommentRecord{
			Author:    AuthorName(c.Author),
			Body:      c.Body,
			Score:     c.Score,
			CreatedAt: FormatTimestamp(c.CreatedUTC),
		})
	}

	return PostRecord{
		Title:             s.Title,
		Body:              s.Selftext,
		Score:             s.Score,
		CommentCount:      s.NumComments,
		CreatedAt:         FormatTimestamp(s.CreatedUTC),
		Author:            AuthorName(s.Author),
		Subreddit:         s.Subreddit,
		IsOriginalContent: s.IsOriginalContent,
		IsSelfPost:        s.IsSelf,
		Comments:          records,
	}
}
