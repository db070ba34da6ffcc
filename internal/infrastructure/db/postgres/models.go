package postgres

import (
	"time"

	"github.com/yamdb/reviewhub/internal/core/domain"
)

// Timestamps are stamped by the services, so gorm's auto-tracking is off.

type User struct {
	ID        int64     `gorm:"primaryKey"`
	Username  string    `gorm:"size:150;not null;uniqueIndex"`
	Email     string    `gorm:"size:254;not null;uniqueIndex"`
	FirstName string    `gorm:"size:150"`
	LastName  string    `gorm:"size:150"`
	Bio       string    `gorm:"type:text"`
	Role      string    `gorm:"size:16;not null;default:user"`
	IsStaff   bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
	LastLogin time.Time
}

func userModel(u *domain.User) User {
	return User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Role:      string(u.Role),
		IsStaff:   u.IsStaff,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		LastLogin: u.LastLogin,
	}
}

func (m User) toDomain() *domain.User {
	return &domain.User{
		ID:        m.ID,
		Username:  m.Username,
		Email:     m.Email,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Bio:       m.Bio,
		Role:      domain.Role(m.Role),
		IsStaff:   m.IsStaff,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
		LastLogin: m.LastLogin.UTC(),
	}
}

type Category struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"size:256;not null;index"`
	Slug string `gorm:"size:50;not null;uniqueIndex"`
}

func (m Category) toDomain() *domain.Category {
	return &domain.Category{ID: m.ID, Name: m.Name, Slug: m.Slug}
}

type Genre struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"size:256;not null;index"`
	Slug string `gorm:"size:50;not null;uniqueIndex"`
}

func (m Genre) toDomain() domain.Genre {
	return domain.Genre{ID: m.ID, Name: m.Name, Slug: m.Slug}
}

// Title's genres live in the title_genres join table.
type Title struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"size:256;not null;index"`
	Year        int       `gorm:"not null;index"`
	Description string    `gorm:"type:text"`
	CategoryID  *int64    `gorm:"index"`
	Category    *Category `gorm:"constraint:OnDelete:SET NULL"`
	Genres      []Genre   `gorm:"many2many:title_genres;constraint:OnDelete:CASCADE"`
}

func titleModel(t *domain.Title) Title {
	m := Title{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Description: t.Description,
		CategoryID:  t.CategoryID(),
	}
	for _, g := range t.Genres {
		m.Genres = append(m.Genres, Genre{ID: g.ID, Name: g.Name, Slug: g.Slug})
	}
	return m
}

func (m Title) toDomain(rating *float64) *domain.Title {
	t := &domain.Title{
		ID:          m.ID,
		Name:        m.Name,
		Year:        m.Year,
		Description: m.Description,
		Genres:      make([]domain.Genre, 0, len(m.Genres)),
		Rating:      rating,
	}
	if m.Category != nil {
		t.Category = m.Category.toDomain()
	}
	for _, g := range m.Genres {
		t.Genres = append(t.Genres, g.toDomain())
	}
	return t
}

// Review carries the composite unique index that rejects a second review by
// the same author on the same title.
type Review struct {
	ID       int64     `gorm:"primaryKey"`
	TitleID  int64     `gorm:"not null;uniqueIndex:idx_review_author_title,priority:2"`
	Title    *Title    `gorm:"constraint:OnDelete:CASCADE"`
	AuthorID int64     `gorm:"not null;uniqueIndex:idx_review_author_title,priority:1"`
	Author   *User     `gorm:"constraint:OnDelete:CASCADE"`
	Text     string    `gorm:"type:text;not null"`
	Score    int       `gorm:"not null"`
	PubDate  time.Time `gorm:"not null;index"`
}

func reviewModel(r *domain.Review) Review {
	return Review{
		ID:       r.ID,
		TitleID:  r.TitleID,
		AuthorID: r.AuthorID,
		Text:     r.Text,
		Score:    r.Score,
		PubDate:  r.PubDate,
	}
}

func (m Review) toDomain() *domain.Review {
	r := &domain.Review{
		ID:       m.ID,
		TitleID:  m.TitleID,
		AuthorID: m.AuthorID,
		Text:     m.Text,
		Score:    m.Score,
		PubDate:  m.PubDate.UTC(),
	}
	if m.Author != nil {
		r.AuthorUsername = m.Author.Username
	}
	return r
}

type Comment struct {
	ID       int64     `gorm:"primaryKey"`
	ReviewID int64     `gorm:"not null;index"`
	Review   *Review   `gorm:"constraint:OnDelete:CASCADE"`
	AuthorID int64     `gorm:"not null;index"`
	Author   *User     `gorm:"constraint:OnDelete:CASCADE"`
	Text     string    `gorm:"type:text;not null"`
	PubDate  time.Time `gorm:"not null;index"`
}

func commentModel(c *domain.Comment) Comment {
	return Comment{
		ID:       c.ID,
		ReviewID: c.ReviewID,
		AuthorID: c.AuthorID,
		Text:     c.Text,
		PubDate:  c.PubDate,
	}
}

func (m Comment) toDomain() *domain.Comment {
	c := &domain.Comment{
		ID:       m.ID,
		ReviewID: m.ReviewID,
		AuthorID: m.AuthorID,
		Text:     m.Text,
		PubDate:  m.PubDate.UTC(),
	}
	if m.Author != nil {
		c.AuthorUsername = m.Author.Username
	}
	return c
}
