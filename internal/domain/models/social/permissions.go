package social

import (
	"slices"
	"time"
)

// Action is a capability checked by the permission evaluator
type Action string

const (
	ActionView        Action = "view"
	ActionBranch      Action = "branch"
	ActionShare       Action = "share"
	ActionCollaborate Action = "collaborate"
)

// Actions lists every action in evaluation order
var Actions = []Action{ActionView, ActionBranch, ActionShare, ActionCollaborate}

func (a Action) Valid() bool {
	return slices.Contains(Actions, a)
}

// Permissions gates visibility and capabilities of one project or branch.
// AllowedUsers is persisted as join rows (permission_allowed_users), never as JSON.
type Permissions struct {
	ID               string     `json:"id" db:"id"`
	TargetKind       TargetKind `json:"target_kind" db:"target_kind"`
	TargetID         string     `json:"target_id" db:"target_id"`
	Private          bool       `json:"private" db:"private"`
	AllowedUsers     []string   `json:"allowed_users"`
	AllowCollaborate bool       `json:"allow_collaborate" db:"allow_collaborate"`
	AllowBranch      bool       `json:"allow_branch" db:"allow_branch"`
	AllowShare       bool       `json:"allow_share" db:"allow_share"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// DefaultPermissions is what applies when a target has no Permissions record:
// public, with every capability enabled.
func DefaultPermissions(target Target) *Permissions {
	return &Permissions{
		TargetKind:       target.Kind,
		TargetID:         target.ID,
		Private:          false,
		AllowedUsers:     []string{},
		AllowCollaborate: true,
		AllowBranch:      true,
		AllowShare:       true,
	}
}

// IsAllowed reports whether userID appears in the allow-list
func (p *Permissions) IsAllowed(userID string) bool {
	return slices.Contains(p.AllowedUsers, userID)
}

// Capability returns the flag that gates a after visibility is granted.
// ActionView is always true here.
func (p *Permissions) Capability(a Action) bool {
	switch a {
	case ActionBranch:
		return p.AllowBranch
	case ActionShare:
		return p.AllowShare
	case ActionCollaborate:
		return p.AllowCollaborate
	default:
		return true
	}
}

// Decision is the outcome of a permission evaluation
type Decision struct {
	Target  Target `json:"target"`
	Action  Action `json:"action"`
	Granted bool   `json:"granted"`
	IsOwner bool   `json:"is_owner"`
	// Explicit is false when no Permissions record exists and defaults applied
	Explicit bool   `json:"explicit"`
	Reason   string `json:"reason,omitempty"`
}

func (p *Permissions) Target() Target {
	return Target{Kind: p.TargetKind, ID: p.TargetID}
}
