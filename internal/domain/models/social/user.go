package social

import "time"

// User is the local projection of an identity owned by the external auth provider.
// Only ID and Email are required; everything else is profile data.
type User struct {
	ID            string     `json:"id" db:"id"`
	Name          *string    `json:"name,omitempty" db:"name"`
	Email         string     `json:"email" db:"email"`
	EmailVerified *time.Time `json:"email_verified,omitempty" db:"email_verified"`
	Image         *string    `json:"image,omitempty" db:"image"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

// Follow is a directed edge FollowerID -> FollowedID.
type Follow struct {
	ID         string    `json:"id" db:"id"`
	FollowerID string    `json:"follower_id" db:"follower_id"`
	FollowedID string    `json:"followed_id" db:"followed_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// FollowCounts holds the sizes of a user's follower and following sets
type FollowCounts struct {
	UserID    string `json:"user_id"`
	Followers int    `json:"followers"`
	Following int    `json:"following"`
}
