package matrix

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLoginStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/_matrix/client/v3/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if req["type"] != "m.login.password" {
			t.Errorf("login type = %v", req["type"])
		}
		json.NewEncoder(w).Encode(map[string]string{
			"access_token": "syt_secret",
			"user_id":      "@ana:example.org",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if err := c.Login(context.Background(), "ana", "pass"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if c.AccessToken() != "syt_secret" {
		t.Errorf("token = %q", c.AccessToken())
	}
	if c.UserID() != "@ana:example.org" {
		t.Errorf("user id = %q", c.UserID())
	}
}

func TestSendRoomEvent(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]string{"event_id": "$ev1"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.token = "syt_secret"

	err := c.SendRoomEvent(context.Background(), "!voice:example.org", "io.huddle.voice.mute",
		map[string]bool{"muted": true})
	if err != nil {
		t.Fatalf("SendRoomEvent: %v", err)
	}

	if !strings.HasPrefix(gotPath, "/_matrix/client/v3/rooms/%21voice:example.org/send/io.huddle.voice.mute/") {
		t.Errorf("path = %q", gotPath)
	}
	// Transaction id must be present and non-empty.
	if strings.HasSuffix(gotPath, "/") {
		t.Errorf("missing txn id in %q", gotPath)
	}
	if gotAuth != "Bearer syt_secret" {
		t.Errorf("auth = %q", gotAuth)
	}
	if gotBody["muted"] != true {
		t.Errorf("body = %v", gotBody)
	}
}

func TestErrorStatusSurfacesErrcode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{
			"errcode": "M_FORBIDDEN",
			"error":   "not in room",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	err := c.SendRoomEvent(context.Background(), "!x:y", "io.huddle.voice.leave", struct{}{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "M_FORBIDDEN") {
		t.Errorf("err = %v, want errcode included", err)
	}
}
