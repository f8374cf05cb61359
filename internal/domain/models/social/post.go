package social

import "time"

type Post struct {
	ID        string     `json:"id" db:"id"`
	Title     string     `json:"title" db:"title"`
	Content   *string    `json:"content,omitempty" db:"content"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" db:"updated_at"` // NULL until first edit
	BranchID  string     `json:"branch_id" db:"branch_id"`
	AuthorID  string     `json:"author_id" db:"author_id"`
}

// PostMedia is an attachment reference; the binary lives at URL.
type PostMedia struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	URL       string    `json:"url" db:"url"`
	PostID    string    `json:"post_id" db:"post_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
