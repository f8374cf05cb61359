package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"
)

// ErrAdminUserNotFound is returned when no identity matches an email.
var ErrAdminUserNotFound = errors.New("identity user not found")

// AdminClient talks to the identity provider's admin API.
// It is used by cmd/seed to create login identities for fixture users,
// never by the request path.
type AdminClient struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// NewAdminClient creates an admin API client. serviceKey must carry admin rights.
func NewAdminClient(baseURL, serviceKey string) *AdminClient {
	return &AdminClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// AdminUser is an identity as returned by the admin API
type AdminUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type createAdminUserRequest struct {
	Email        string         `json:"email"`
	Password     string         `json:"password"`
	EmailConfirm bool           `json:"email_confirm"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

type listAdminUsersResponse struct {
	Users []AdminUser `json:"users"`
}

// EnsureUser returns the id of the identity for email, creating a confirmed
// identity with password when none exists.
func (c *AdminClient) EnsureUser(ctx context.Context, email, password, name string) (string, error) {
	id, err := c.FindUserIDByEmail(ctx, email)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, ErrAdminUserNotFound) {
		return "", err
	}
	return c.CreateUser(ctx, email, password, name)
}

// CreateUser creates a confirmed identity and returns its id.
func (c *AdminClient) CreateUser(ctx context.Context, email, password, name string) (string, error) {
	payload := createAdminUserRequest{
		Email:        email,
		Password:     password,
		EmailConfirm: true,
	}
	if name != "" {
		payload.UserMetadata = map[string]any{"name": name}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal create request: %w", err)
	}

	var created AdminUser
	if err := c.do(ctx, http.MethodPost, "/admin/users", bytes.NewReader(body), &created, http.StatusOK, http.StatusCreated); err != nil {
		return "", fmt.Errorf("create identity %s: %w", email, err)
	}

	return created.ID, nil
}

// FindUserIDByEmail returns ErrAdminUserNotFound when no identity has email.
func (c *AdminClient) FindUserIDByEmail(ctx context.Context, email string) (string, error) {
	var list listAdminUsersResponse
	if err := c.do(ctx, http.MethodGet, "/admin/users", nil, &list, http.StatusOK); err != nil {
		return "", fmt.Errorf("list identities: %w", err)
	}

	for _, user := range list.Users {
		if strings.EqualFold(user.Email, email) {
			return user.ID, nil
		}
	}

	return "", ErrAdminUserNotFound
}

// DeleteUserByEmail is idempotent: a missing identity is not an error.
func (c *AdminClient) DeleteUserByEmail(ctx context.Context, email string) error {
	id, err := c.FindUserIDByEmail(ctx, email)
	if errors.Is(err, ErrAdminUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := c.do(ctx, http.MethodDelete, "/admin/users/"+url.PathEscape(id), nil, nil, http.StatusOK, http.StatusNoContent); err != nil {
		return fmt.Errorf("delete identity %s: %w", email, err)
	}
	return nil
}

func (c *AdminClient) do(ctx context.Context, method, path string, body io.Reader, dest any, okStatus ...int) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if !slices.Contains(okStatus, resp.StatusCode) {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
	}

	if dest == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
