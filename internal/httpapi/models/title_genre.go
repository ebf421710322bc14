package models

// explicit join model so the association table gets proper indexes
type TitleGenre struct {
	ID      int64 `gorm:"primaryKey;autoIncrement"`
	TitleID int64 `gorm:"index;not null"`
	GenreID int64 `gorm:"index;not null"`
}

func (TitleGenre) TableName() string {
	return "title_genres"
}
