// Package matrix is huddle's handle to the messaging channel, consumption
// side only: password login and room-scoped event sends. Room and message
// semantics beyond that live elsewhere.
package matrix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Client struct {
	homeserver string
	http       *http.Client

	token  string
	userID string
}

func NewClient(homeserver string) *Client {
	return &Client{
		homeserver: strings.TrimRight(homeserver, "/"),
		http:       &http.Client{Timeout: 30 * time.Second},
	}
}

type apiError struct {
	Code    string `json:"errcode"`
	Message string `json:"error"`
}

type loginRequest struct {
	Type       string          `json:"type"`
	Identifier loginIdentifier `json:"identifier"`
	Password   string          `json:"password"`
	DeviceName string          `json:"initial_device_display_name,omitempty"`
}

type loginIdentifier struct {
	Type string `json:"type"`
	User string `json:"user"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
}

// Login performs a password login and stores the resulting access token on
// the client.
func (c *Client) Login(ctx context.Context, user, password string) error {
	req := loginRequest{
		Type:       "m.login.password",
		Identifier: loginIdentifier{Type: "m.id.user", User: user},
		Password:   password,
		DeviceName: "huddle",
	}

	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/_matrix/client/v3/login", req, &resp); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	c.token = resp.AccessToken
	c.userID = resp.UserID
	log.Info().Str("user_id", resp.UserID).Msg("logged in to homeserver")
	return nil
}

// AccessToken is the identity credential presented to the token relay.
func (c *Client) AccessToken() string {
	return c.token
}

func (c *Client) UserID() string {
	return c.userID
}

// Whoami resolves the user id behind the current access token.
func (c *Client) Whoami(ctx context.Context) (string, error) {
	var resp struct {
		UserID string `json:"user_id"`
	}
	if err := c.do(ctx, http.MethodGet, "/_matrix/client/v3/account/whoami", nil, &resp); err != nil {
		return "", fmt.Errorf("whoami: %w", err)
	}
	return resp.UserID, nil
}

// SendRoomEvent posts one room-scoped event. The transaction id is a fresh
// uuid so the homeserver never deduplicates distinct sends.
func (c *Client) SendRoomEvent(ctx context.Context, roomID, eventType string, content any) error {
	path := fmt.Sprintf("/_matrix/client/v3/rooms/%s/send/%s/%s",
		url.PathEscape(roomID), url.PathEscape(eventType), uuid.NewString())
	if err := c.do(ctx, http.MethodPut, path, content, nil); err != nil {
		return fmt.Errorf("send %s to %s: %w", eventType, roomID, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.homeserver+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var apiErr apiError
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Code != "" {
			return fmt.Errorf("%s: %s (%s)", resp.Status, apiErr.Message, apiErr.Code)
		}
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
