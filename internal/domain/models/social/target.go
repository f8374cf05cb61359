package social

import "fmt"

// TargetKind tags which aggregate a polymorphic row (interaction, permissions) points at
type TargetKind string

const (
	TargetProject TargetKind = "project"
	TargetBranch  TargetKind = "branch"
	TargetPost    TargetKind = "post"
)

// Valid reports whether k is one of the known kinds
func (k TargetKind) Valid() bool {
	switch k {
	case TargetProject, TargetBranch, TargetPost:
		return true
	}
	return false
}

// SupportsPermissions reports whether a Permissions record can be attached to k
func (k TargetKind) SupportsPermissions() bool {
	return k == TargetProject || k == TargetBranch
}

// Target identifies a single project, branch or post
type Target struct {
	Kind TargetKind `json:"kind"`
	ID   string     `json:"id"`
}

func (t Target) String() string {
	return fmt.Sprintf("%s %s", t.Kind, t.ID)
}

// ParseTargetKind accepts both singular and plural route segments ("post", "posts").
func ParseTargetKind(s string) (TargetKind, bool) {
	switch s {
	case "project", "projects":
		return TargetProject, true
	case "branch", "branches":
		return TargetBranch, true
	case "post", "posts":
		return TargetPost, true
	}
	return "", false
}
