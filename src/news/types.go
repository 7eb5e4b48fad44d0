package news

import "time"

// Users
type User struct {
	ID           uint64 `gorm:"primaryKey"`
	Username     string `gorm:"size:64;uniqueIndex;not null"`
	Email        string `gorm:"size:256;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:128;not null"`
	Admin        bool   `gorm:"default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RSS feeds articles are ingested from
type Feed struct {
	ID            uint32 `gorm:"primaryKey"`
	Name          string `gorm:"size:128;not null"`
	URL           string `gorm:"size:512;uniqueIndex;not null"`
	SiteURL       string `gorm:"size:512"`
	Active        bool   `gorm:"default:true"`
	LastFetchedAt *time.Time
	CreatedAt     time.Time
	Articles      []Article `gorm:"foreignKey:FeedID"`
}

// Articles. CredibilityScore and FactCheckVerdict are denormalized
// from the article's FactCheckRecord; -1 means never checked.
type Article struct {
	ID               uint64    `gorm:"primaryKey"`
	FeedID           *uint32   `gorm:"index"`
	Title            string    `gorm:"size:512;not null"`
	URL              string    `gorm:"size:768;uniqueIndex;not null"`
	Author           string    `gorm:"size:256"`
	Summary          string    `gorm:"type:text"`
	PublishedAt      time.Time `gorm:"index"`
	Score            int       `gorm:"default:0"` // denormalized vote tally
	CredibilityScore int       `gorm:"default:-1"`
	FactCheckVerdict string    `gorm:"size:32"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Feed             *Feed     `gorm:"foreignKey:FeedID"`
	Comments         []Comment `gorm:"foreignKey:ArticleID"`
}

// Votes, one per user per article
type Vote struct {
	ID        uint64 `gorm:"primaryKey"`
	ArticleID uint64 `gorm:"uniqueIndex:idx_vote_once;not null"`
	UserID    uint64 `gorm:"uniqueIndex:idx_vote_once;not null"`
	Value     int8   `gorm:"not null"` // +1 or -1
	CreatedAt time.Time
}

// Comments, optionally threaded
type Comment struct {
	ID        uint64  `gorm:"primaryKey"`
	ArticleID uint64  `gorm:"index;not null"`
	UserID    uint64  `gorm:"index;not null"`
	ParentID  *uint64 `gorm:"index"`
	Body      string  `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Bookmarks
type Bookmark struct {
	ID        uint64 `gorm:"primaryKey"`
	UserID    uint64 `gorm:"uniqueIndex:idx_bookmark_once;not null"`
	ArticleID uint64 `gorm:"uniqueIndex:idx_bookmark_once;not null"`
	CreatedAt time.Time
}
