package domain

import (
	"fmt"
	"time"
)

const (
	MinScore = 1
	MaxScore = 10
)

// Review is one author's verdict on a title. At most one per (author, title).
type Review struct {
	ID             int64     `json:"id"`
	TitleID        int64     `json:"-"`
	AuthorID       int64     `json:"-"`
	AuthorUsername string    `json:"author"`
	Text           string    `json:"text"`
	Score          int       `json:"score"`
	PubDate        time.Time `json:"pub_date"`
}

func (r *Review) String() string {
	text := []rune(r.Text)
	if len(text) > 15 {
		text = text[:15]
	}
	return fmt.Sprintf("review #%d %q", r.ID, string(text))
}

// ValidateScore rejects scores outside [MinScore, MaxScore].
func ValidateScore(score int) error {
	if score < MinScore || score > MaxScore {
		return NewValidationError("score", fmt.Sprintf("must be between %d and %d", MinScore, MaxScore))
	}
	return nil
}

// Validate checks the user-supplied fields of r.
func (r *Review) Validate() error {
	verr := &ValidationError{}
	if r.Text == "" {
		verr.Add("text", "this field is required")
	}
	if err := ValidateScore(r.Score); err != nil {
		mergeInto(verr, err)
	}
	return verr.OrNil()
}

// Comment is a reply on a review. Authors may post any number of them.
type Comment struct {
	ID             int64     `json:"id"`
	ReviewID       int64     `json:"-"`
	AuthorID       int64     `json:"-"`
	AuthorUsername string    `json:"author"`
	Text           string    `json:"text"`
	PubDate        time.Time `json:"pub_date"`
}

// Validate checks the user-supplied fields of c.
func (c *Comment) Validate() error {
	if c.Text == "" {
		return NewValidationError("text", "this field is required")
	}
	return nil
}
