package loader

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yamdb/reviewhub/internal/core/domain"
	"github.com/yamdb/reviewhub/internal/core/ports"
)

// Column layouts, header row excluded:
//
//	category.csv    id,name,slug
//	genre.csv       id,name,slug
//	titles.csv      id,name,year,category[,description]
//	genre_title.csv id,title_id,genre_id
//	users.csv       id,username,email,role,bio,first_name,last_name
//	review.csv      id,title_id,text,author,score,pub_date
//	comments.csv    id,review_id,text,author,pub_date

func seedCategory(ctx context.Context, s ports.Seeder, row []string) (bool, error) {
	id, err := parseID("id", row[0])
	if err != nil {
		return false, err
	}
	c := &domain.Category{ID: id, Name: row[1], Slug: row[2]}
	if err := domain.ValidateSlugged(c.Name, c.Slug); err != nil {
		return false, err
	}
	return s.SeedCategory(ctx, c)
}

func seedGenre(ctx context.Context, s ports.Seeder, row []string) (bool, error) {
	id, err := parseID("id", row[0])
	if err != nil {
		return false, err
	}
	g := &domain.Genre{ID: id, Name: row[1], Slug: row[2]}
	if err := domain.ValidateSlugged(g.Name, g.Slug); err != nil {
		return false, err
	}
	return s.SeedGenre(ctx, g)
}

func seedTitle(ctx context.Context, s ports.Seeder, row []string) (bool, error) {
	id, err := parseID("id", row[0])
	if err != nil {
		return false, err
	}
	year, err := strconv.Atoi(strings.TrimSpace(row[2]))
	if err != nil {
		return false, domain.NewValidationError("year", fmt.Sprintf("invalid year %q", row[2]))
	}
	t := &domain.Title{ID: id, Name: row[1], Year: year}
	if len(row) > 4 {
		t.Description = row[4]
	}

	var categoryID *int64
	if strings.TrimSpace(row[3]) != "" {
		cid, err := parseID("category", row[3])
		if err != nil {
			return false, err
		}
		categoryID = &cid
	}
	return s.SeedTitle(ctx, t, categoryID)
}

func seedTitleGenre(ctx context.Context, s ports.Seeder, row []string) (bool, error) {
	titleID, err := parseID("title_id", row[1])
	if err != nil {
		return false, err
	}
	genreID, err := parseID("genre_id", row[2])
	if err != nil {
		return false, err
	}
	return s.SeedTitleGenre(ctx, titleID, genreID)
}

func seedUser(ctx context.Context, s ports.Seeder, row []string) (bool, error) {
	id, err := parseID("id", row[0])
	if err != nil {
		return false, err
	}
	now := domain.Now()
	u := &domain.User{
		ID:        id,
		Username:  row[1],
		Email:     column(row, 2),
		Role:      domain.RoleUser,
		Bio:       column(row, 4),
		FirstName: column(row, 5),
		LastName:  column(row, 6),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if r := column(row, 3); r != "" {
		role, err := domain.ParseRole(r)
		if err != nil {
			return false, err
		}
		u.Role = role
	}
	if err := u.Validate(); err != nil {
		return false, err
	}
	return s.SeedUser(ctx, u)
}

func seedReview(ctx context.Context, s ports.Seeder, row []string) (bool, error) {
	id, err := parseID("id", row[0])
	if err != nil {
		return false, err
	}
	titleID, err := parseID("title_id", row[1])
	if err != nil {
		return false, err
	}
	authorID, err := parseID("author", row[3])
	if err != nil {
		return false, err
	}
	score, err := strconv.Atoi(strings.TrimSpace(row[4]))
	if err != nil {
		return false, domain.NewValidationError("score", fmt.Sprintf("invalid score %q", row[4]))
	}
	pub, err := parseTime(row[5])
	if err != nil {
		return false, err
	}
	r := &domain.Review{ID: id, TitleID: titleID, AuthorID: authorID, Text: row[2], Score: score, PubDate: pub}
	if err := r.Validate(); err != nil {
		return false, err
	}
	return s.SeedReview(ctx, r)
}

func seedComment(ctx context.Context, s ports.Seeder, row []string) (bool, error) {
	id, err := parseID("id", row[0])
	if err != nil {
		return false, err
	}
	reviewID, err := parseID("review_id", row[1])
	if err != nil {
		return false, err
	}
	authorID, err := parseID("author", row[3])
	if err != nil {
		return false, err
	}
	pub, err := parseTime(row[4])
	if err != nil {
		return false, err
	}
	c := &domain.Comment{ID: id, ReviewID: reviewID, AuthorID: authorID, Text: row[2], PubDate: pub}
	if err := c.Validate(); err != nil {
		return false, err
	}
	return s.SeedComment(ctx, c)
}

func column(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func parseID(field, raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(field, fmt.Sprintf("invalid id %q", raw))
	}
	return id, nil
}

// parseTime accepts RFC 3339 timestamps; an empty value means now.
func parseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.Now(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, domain.NewValidationError("pub_date", fmt.Sprintf("invalid timestamp %q", raw))
	}
	return t.UTC().Truncate(time.Millisecond), nil
}
