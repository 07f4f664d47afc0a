package models

import "time"

// Category groups titles by kind (film, book, music, ...).
type Category struct {
	ID   uint   `json:"-" gorm:"primaryKey"`
	Name string `json:"name" gorm:"type:varchar(200);not null"`
	Slug string `json:"slug" gorm:"uniqueIndex;type:varchar(50);not null"`
}

// Genre is a free-standing tag attached to titles.
type Genre struct {
	ID   uint   `json:"-" gorm:"primaryKey"`
	Name string `json:"name" gorm:"type:varchar(200);not null"`
	Slug string `json:"slug" gorm:"uniqueIndex;type:varchar(50);not null"`
}

// Title is a reviewable work. Rating is the mean review score and is only
// populated by read queries; it is never stored.
type Title struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(200);not null;index"`
	Year        int       `json:"year" gorm:"not null"`
	Rating      *float64  `json:"rating" gorm:"->;-:migration"`
	Description string    `json:"description" gorm:"type:varchar(300)"`
	Genres      []Genre   `json:"genre" gorm:"many2many:genre_titles;constraint:OnDelete:CASCADE"`
	CategoryID  *uint     `json:"-"`
	Category    *Category `json:"category" gorm:"constraint:OnDelete:SET NULL"`
}

// Review is a user's scored opinion of a title. One per (title, author).
type Review struct {
	ID       uint      `gorm:"primaryKey"`
	TitleID  uint      `gorm:"not null;uniqueIndex:idx_review_title_author"`
	Title    Title     `gorm:"constraint:OnDelete:CASCADE"`
	AuthorID uint      `gorm:"not null;uniqueIndex:idx_review_title_author"`
	Author   User      `gorm:"constraint:OnDelete:CASCADE"`
	Text     string    `gorm:"type:varchar(200);not null"`
	Score    int       `gorm:"not null"`
	PubDate  time.Time `gorm:"autoCreateTime;index"`
}

// Comment is attached to exactly one review.
type Comment struct {
	ID       uint      `gorm:"primaryKey"`
	ReviewID uint      `gorm:"not null;index"`
	Review   Review    `gorm:"constraint:OnDelete:CASCADE"`
	AuthorID uint      `gorm:"not null"`
	Author   User      `gorm:"constraint:OnDelete:CASCADE"`
	Text     string    `gorm:"type:varchar(200);not null"`
	PubDate  time.Time `gorm:"autoCreateTime"`
}
