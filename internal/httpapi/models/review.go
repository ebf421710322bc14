package models

import "time"

type Review struct {
	ID int64 `json:"id" gorm:"primaryKey;autoIncrement"`

	// The composite unique index is the serialization point for the
	// one-review-per-(author, title) invariant: concurrent creates for
	// the same pair resolve to one success and one unique violation.
	TitleID  int64  `json:"-" gorm:"not null;uniqueIndex:idx_reviews_title_author"`
	AuthorID string `json:"-" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_title_author"`

	Text    string    `json:"text" gorm:"type:text;not null"`
	Score   int       `json:"score" gorm:"not null;check:score >= 1 AND score <= 10"`
	PubDate time.Time `json:"pub_date" gorm:"autoCreateTime"`

	Author User  `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
	Title  Title `json:"-" gorm:"foreignKey:TitleID;constraint:OnDelete:CASCADE;"`
}

func (Review) TableName() string {
	return "reviews"
}
