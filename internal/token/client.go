// Package token consumes the voice token relay: a black-box endpoint that
// validates the caller's identity credential and mints a short-lived
// transport room credential. Issuance itself is out of scope here.
package token

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	base string
	http *http.Client
}

func NewClient(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

// TURNServer is relay-provided ICE fallback, passed through as-is.
type TURNServer struct {
	URLs       string `json:"urls"`
	Username   string `json:"username"`
	Credential string `json:"credential"`
}

// Grant is a minted transport room credential.
type Grant struct {
	URL         string       `json:"url"`
	Token       string       `json:"token"`
	TURNServers []TURNServer `json:"turn_servers,omitempty"`
}

type mintRequest struct {
	RoomID string `json:"room_id"`
}

// Mint exchanges identityToken for a join credential scoped to roomID.
func (c *Client) Mint(ctx context.Context, identityToken, roomID string) (*Grant, error) {
	body, err := json.Marshal(mintRequest{RoomID: roomID})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.base+"/v1/voice/token", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+identityToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token relay: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token relay: unexpected status %s", resp.Status)
	}

	var grant Grant
	if err := json.NewDecoder(resp.Body).Decode(&grant); err != nil {
		return nil, fmt.Errorf("token relay: decode response: %w", err)
	}
	if grant.URL == "" || grant.Token == "" {
		return nil, fmt.Errorf("token relay: incomplete grant")
	}
	return &grant, nil
}
