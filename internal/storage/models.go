package storage

import (
	"time"
)

// Preferences are the UI settings that survive restarts.
type Preferences struct {
	PageSize  int       `json:"page_size"`
	SortKey   string    `json:"sort_key"`
	SortDesc  bool      `json:"sort_desc"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Deletion is one journal entry for a post deleted through postdeck.
type Deletion struct {
	Seq       uint64    `json:"seq"`
	PostID    int       `json:"post_id"`
	OwnerID   int       `json:"owner_id"`
	Title     string    `json:"title"`
	DeletedAt time.Time `json:"deleted_at"`
}
