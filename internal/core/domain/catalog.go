package domain

import (
	"fmt"
	"regexp"
	"time"
	"unicode/utf8"
)

const (
	SlugMaxLength = 50
	NameMaxLen    = 256
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// Category groups titles (book, film, music). A title has at most one.
type Category struct {
	ID   int64  `json:"-"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Genre tags titles; a title has one or more.
type Genre struct {
	ID   int64  `json:"-"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ValidateSlugged checks the name and slug shared by categories and genres.
func ValidateSlugged(name, slug string) error {
	verr := &ValidationError{}
	switch {
	case name == "":
		verr.Add("name", "this field is required")
	case utf8.RuneCountInString(name) > NameMaxLen:
		verr.Add("name", fmt.Sprintf("must be at most %d characters", NameMaxLen))
	}
	switch {
	case slug == "":
		verr.Add("slug", "this field is required")
	case len(slug) > SlugMaxLength:
		verr.Add("slug", fmt.Sprintf("must be at most %d characters", SlugMaxLength))
	case !slugPattern.MatchString(slug):
		verr.Add("slug", "may contain only letters, digits, hyphens and underscores")
	}
	return verr.OrNil()
}

// IsSlug reports whether s is a well-formed slug.
func IsSlug(s string) bool {
	return s != "" && len(s) <= SlugMaxLength && slugPattern.MatchString(s)
}

// Title is a reviewable work. Rating is derived from review scores on read
// and is nil while the title has no reviews.
type Title struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Year        int       `json:"year"`
	Description string    `json:"description"`
	Category    *Category `json:"category"`
	Genres      []Genre   `json:"genre"`
	Rating      *float64  `json:"rating"`
}

// GenreIDs lists the ids of the attached genres.
func (t *Title) GenreIDs() []int64 {
	ids := make([]int64, 0, len(t.Genres))
	for _, g := range t.Genres {
		ids = append(ids, g.ID)
	}
	return ids
}

// CategoryID returns the category id or nil.
func (t *Title) CategoryID() *int64 {
	if t.Category == nil {
		return nil
	}
	id := t.Category.ID
	return &id
}

// ValidateYear rejects years after the calendar year of now.
func ValidateYear(year int, now time.Time) error {
	if year > now.Year() {
		return NewValidationError("year", fmt.Sprintf("must not be greater than %d", now.Year()))
	}
	return nil
}

// Validate checks the scalar fields of t against the clock reading now.
func (t *Title) Validate(now time.Time) error {
	verr := &ValidationError{}
	switch {
	case t.Name == "":
		verr.Add("name", "this field is required")
	case utf8.RuneCountInString(t.Name) > NameMaxLen:
		verr.Add("name", fmt.Sprintf("must be at most %d characters", NameMaxLen))
	}
	if err := ValidateYear(t.Year, now); err != nil {
		mergeInto(verr, err)
	}
	return verr.OrNil()
}

// AverageScore returns the arithmetic mean of scores, or nil for none.
func AverageScore(scores []int) *float64 {
	if len(scores) == 0 {
		return nil
	}
	var sum int
	for _, s := range scores {
		sum += s
	}
	avg := float64(sum) / float64(len(scores))
	return &avg
}
