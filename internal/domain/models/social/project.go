package social

import "time"

// DefaultBranchName is the name of the branch created together with every project
const DefaultBranchName = "main"

type Project struct {
	ID          string     `json:"id" db:"id"`
	Picture     *string    `json:"picture,omitempty" db:"picture"`
	Name        string     `json:"name" db:"name"`
	Description *string    `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty" db:"updated_at"`
	AuthorID    string     `json:"author_id" db:"author_id"`
}

type Branch struct {
	ID           string     `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Description  *string    `json:"description,omitempty" db:"description"`
	Default      bool       `json:"default" db:"is_default"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty" db:"updated_at"`
	ProjectID    string     `json:"project_id" db:"project_id"`
	AuthorID     string     `json:"author_id" db:"author_id"`
	ForkedFromID *string    `json:"forked_from_id,omitempty" db:"forked_from_id"` // NULL = created from scratch
}
