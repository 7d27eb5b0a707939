package models

import (
	"time"

	"github.com/google/uuid"
)

// Gender values accepted at profile setup.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// ValidGender reports whether g is one of the accepted gender values.
func ValidGender(g string) bool {
	return g == GenderMale || g == GenderFemale || g == GenderOther
}

type User struct {
	ID            uuid.UUID   `json:"id"`
	Email         string      `json:"email"`
	Username      string      `json:"username"`
	PublicID      string      `json:"publicId"`
	Gender        string      `json:"gender"`
	Age           int         `json:"age"`
	ProfilePic    string      `json:"profilePic"`
	Likes         int         `json:"likes"`
	Followers     []uuid.UUID `json:"followers"`
	Followed      []uuid.UUID `json:"followed"`
	TotalComments int         `json:"totalComments"`
	Bookmarked    []uuid.UUID `json:"bookmarked"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// HasFollower reports whether id is present in the user's followers array.
func (u *User) HasFollower(id uuid.UUID) bool {
	for _, f := range u.Followers {
		if f == id {
			return true
		}
	}
	return false
}

// IsFollowing reports whether id is present in the user's followed array.
func (u *User) IsFollowing(id uuid.UUID) bool {
	for _, f := range u.Followed {
		if f == id {
			return true
		}
	}
	return false
}

// UserSummary is the trimmed projection served by discovery, search and the
// following-profiles listing.
type UserSummary struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	PublicID   string    `json:"publicId"`
	ProfilePic string    `json:"profilePic"`
}
