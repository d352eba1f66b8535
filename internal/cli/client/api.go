package client

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"
)

// User is the authenticated principal as the API returns it
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
}

// SignInRequest represents the sign-in request body
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse represents the sign-in response
type SessionResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// RegisterRequest represents the sign-up request body
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest carries any subset of the profile fields.
// Changing the password requires OldPassword.
type UpdateProfileRequest struct {
	Name            string `json:"name,omitempty"`
	Email           string `json:"email,omitempty"`
	Password        string `json:"password,omitempty"`
	OldPassword     string `json:"old_password,omitempty"`
	ConfirmPassword string `json:"confirm_password,omitempty"`
}

// Exercise is a catalog entry
type Exercise struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Series      int       `json:"series"`
	Repetitions int       `json:"repetitions"`
	Group       string    `json:"group"`
	Demo        string    `json:"demo"`
	Thumb       string    `json:"thumb"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HistoryEntry is one completed exercise
type HistoryEntry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Group     string    `json:"group"`
	Hour      string    `json:"hour"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryByDay groups history entries under a day title (DD.MM.YYYY)
type HistoryByDay struct {
	Title string         `json:"title"`
	Data  []HistoryEntry `json:"data"`
}

type registerHistoryRequest struct {
	ExerciseID string `json:"exercise_id"`
}

// SignIn authenticates with email and password. It does not install the
// returned token; the session store decides when that happens.
func (c *Client) SignIn(ctx context.Context, email, password string) (*SessionResponse, error) {
	var resp SessionResponse
	if err := c.Post(ctx, "/sessions", SignInRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil || resp.Token == "" {
		return nil, &TransportError{
			Method: "POST",
			Path:   "/sessions",
			Err:    fmt.Errorf("response is missing user or token"),
		}
	}
	return &resp, nil
}

// Register creates a new account
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.Post(ctx, "/users", req, nil)
}

// UpdateProfile updates the authenticated user's profile. The returned user
// is nil when the API answers without a body.
func (c *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*User, error) {
	var user User
	if err := c.Put(ctx, "/users", req, &user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, nil
	}
	return &user, nil
}

// UploadAvatar replaces the authenticated user's photo
func (c *Client) UploadAvatar(ctx context.Context, filename string, file io.Reader) (*User, error) {
	var user User
	if err := c.PatchMultipart(ctx, "/users/avatar", "avatar", filename, file, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Groups lists muscle groups
func (c *Client) Groups(ctx context.Context) ([]string, error) {
	var groups []string
	if err := c.Get(ctx, "/groups", &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// ExercisesByGroup lists the exercises of one muscle group
func (c *Client) ExercisesByGroup(ctx context.Context, group string) ([]Exercise, error) {
	var exercises []Exercise
	if err := c.Get(ctx, "/exercises/bygroup/"+url.PathEscape(group), &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

// Exercise fetches a single exercise
func (c *Client) Exercise(ctx context.Context, id string) (*Exercise, error) {
	var exercise Exercise
	if err := c.Get(ctx, "/exercises/"+url.PathEscape(id), &exercise); err != nil {
		return nil, err
	}
	return &exercise, nil
}

// RegisterHistory marks an exercise as completed now
func (c *Client) RegisterHistory(ctx context.Context, exerciseID string) error {
	return c.Post(ctx, "/history", registerHistoryRequest{ExerciseID: exerciseID}, nil)
}

// History returns the authenticated user's history, newest day first
func (c *Client) History(ctx context.Context) ([]HistoryByDay, error) {
	var days []HistoryByDay
	if err := c.Get(ctx, "/history", &days); err != nil {
		return nil, err
	}
	return days, nil
}

// AvatarURL returns the public address of an avatar file
func (c *Client) AvatarURL(avatar string) string {
	return c.URL("/avatar/" + url.PathEscape(avatar))
}

// DemoURL returns the public address of an exercise demo animation
func (c *Client) DemoURL(demo string) string {
	return c.URL("/exercise/demo/" + url.PathEscape(demo))
}

// ThumbURL returns the public address of an exercise thumbnail
func (c *Client) ThumbURL(thumb string) string {
	return c.URL("/exercise/thumb/" + url.PathEscape(thumb))
}
