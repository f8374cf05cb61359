package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"arbor/internal/domain"
)

func TestProblemFor(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantFields map[string]any
	}{
		{"validation", fmt.Errorf("%w: title is required", domain.ErrValidation), http.StatusBadRequest, nil},
		{"not found", fmt.Errorf("post p1: %w", domain.ErrNotFound), http.StatusNotFound, nil},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized, nil},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, nil},
		{
			name:       "permission denied",
			err:        fmt.Errorf("edit: %w", &domain.PermissionDeniedError{Action: "edit", TargetKind: "post", TargetID: "p1", Reason: "not the author"}),
			wantStatus: http.StatusForbidden,
			wantFields: map[string]any{"action": "edit", "target_kind": "post", "target_id": "p1", "reason": "not the author"},
		},
		{
			name:       "conflict",
			err:        &domain.ConflictError{Message: "branch name 'main' already exists", ResourceType: "branch", ResourceID: "b1"},
			wantStatus: http.StatusConflict,
			wantFields: map[string]any{"resource_type": "branch", "resource_id": "b1"},
		},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := problemFor(tt.err)
			if p.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d", p.Status, tt.wantStatus)
			}
			if p.Title != http.StatusText(tt.wantStatus) {
				t.Errorf("Title = %q", p.Title)
			}
			if len(p.Fields) != len(tt.wantFields) {
				t.Errorf("Fields = %v, want %v", p.Fields, tt.wantFields)
			}
			for k, v := range tt.wantFields {
				if p.Fields[k] != v {
					t.Errorf("Fields[%s] = %v, want %v", k, p.Fields[k], v)
				}
			}
		})
	}

	if p := problemFor(errors.New("pq: secret")); p.Detail != "internal server error" {
		t.Errorf("internal error leaked: %q", p.Detail)
	}
}
