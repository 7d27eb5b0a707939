package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment represents a short public or private post. LikeCount and ViewCount
// are derived from the Likes and ViewedBy arrays and recomputed on every
// save, never incremented in place.
type Comment struct {
	ID         uuid.UUID   `json:"id"`
	Text       string      `json:"text"`
	Topics     []string    `json:"topics"`
	UserID     uuid.UUID   `json:"user"`
	Likes      []uuid.UUID `json:"likes"`
	LikeCount  int         `json:"likeCount"`
	Replies    []uuid.UUID `json:"replies"`
	ReplyCount int         `json:"replyCount"`
	ViewedBy   []uuid.UUID `json:"viewedBy"`
	ViewCount  int         `json:"viewCount"`
	Public     bool        `json:"public"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// RecomputeCounts refreshes the derived counters from their backing arrays.
// Mirrors the pre-save behavior of the comment schema: the counters can never
// drift from the arrays because they are always recomputed in full.
func (c *Comment) RecomputeCounts() {
	c.LikeCount = len(c.Likes)
	c.ReplyCount = len(c.Replies)
	c.ViewCount = len(c.ViewedBy)
}

// LikedBy reports whether id is present in the comment's likes array.
func (c *Comment) LikedBy(id uuid.UUID) bool {
	for _, l := range c.Likes {
		if l == id {
			return true
		}
	}
	return false
}

// ViewedByUser reports whether id is present in the comment's viewedBy array.
func (c *Comment) ViewedByUser(id uuid.UUID) bool {
	for _, v := range c.ViewedBy {
		if v == id {
			return true
		}
	}
	return false
}

// Feed filter values accepted by the comments listing.
const (
	FeedFilterAll       = "ALL"
	FeedFilterFollowing = "FOLLOWING"
	FeedFilterTrending  = "TRENDING"
)

// FeedPageSize is the fixed page size of the comment feed.
const FeedPageSize = 6

// ValidFeedFilter reports whether f is a recognized feed filter.
func ValidFeedFilter(f string) bool {
	return f == FeedFilterAll || f == FeedFilterFollowing || f == FeedFilterTrending
}
