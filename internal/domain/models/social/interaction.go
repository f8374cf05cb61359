package social

import (
	"slices"
	"strings"
	"time"
)

type InteractionType string

const (
	InteractionLike     InteractionType = "LIKE"
	InteractionShare    InteractionType = "SHARE"
	InteractionBookmark InteractionType = "BOOKMARK"
	InteractionReport   InteractionType = "REPORT"
	InteractionHide     InteractionType = "HIDE"
)

// InteractionTypes lists every interaction type in display order
var InteractionTypes = []InteractionType{
	InteractionLike,
	InteractionShare,
	InteractionBookmark,
	InteractionReport,
	InteractionHide,
}

func (t InteractionType) Valid() bool {
	return slices.Contains(InteractionTypes, t)
}

// ParseInteractionType is case-insensitive ("like" and "LIKE" both parse)
func ParseInteractionType(s string) (InteractionType, bool) {
	t := InteractionType(strings.ToUpper(strings.TrimSpace(s)))
	return t, t.Valid()
}

// Interaction is one ledger row. At most one row exists per
// (TargetKind, TargetID, UserID, Type).
type Interaction struct {
	ID         string          `json:"id" db:"id"`
	Type       InteractionType `json:"type" db:"type"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	TargetKind TargetKind      `json:"target_kind" db:"target_kind"`
	TargetID   string          `json:"target_id" db:"target_id"`
	UserID     string          `json:"user_id" db:"user_id"`
}

func (i *Interaction) Target() Target {
	return Target{Kind: i.TargetKind, ID: i.TargetID}
}

// InteractionSummary aggregates the ledger for one target
type InteractionSummary struct {
	Target Target                  `json:"target"`
	Counts map[InteractionType]int `json:"counts"`
	// Mine holds the types the requesting viewer has recorded
	Mine []InteractionType `json:"mine"`
}

// ToggleResult reports the state after a toggle
type ToggleResult struct {
	Active bool `json:"active"`
	Count  int  `json:"count"`
}
