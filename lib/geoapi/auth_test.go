package geoapi

import (
	"context"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStartDeviceLogin(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/auth/device", r.URL.Path)
		body := decodeBody(t, r)
		require.Equal(t, "hydroclip-cli", body["client_id"])

		writeJson(w, http.StatusOK, map[string]any{
			"device_code":      "dev-123",
			"user_code":        "WDPL-HKTQ",
			"verification_url": "https://platform.example.com/activate",
			"expires_in":       600,
		})
	}))

	login, err := client.StartDeviceLogin(context.Background(), "hydroclip-cli", "exports")
	require.NoError(t, err)
	require.Equal(t, "dev-123", login.DeviceCode)
	require.Equal(t, "WDPL-HKTQ", login.UserCode)
	// the server left the interval out, the client must not hot-loop
	require.Equal(t, 5, login.Interval)
}

func TestPollDeviceToken(t *testing.T) {
	var polls atomic.Int64
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/auth/token", r.URL.Path)
		body := decodeBody(t, r)
		require.Equal(t, "dev-123", body["device_code"])

		if polls.Add(1) < 3 {
			writeJson(w, http.StatusBadRequest, map[string]any{
				"error": "authorization_pending",
			})
			return
		}
		writeJson(w, http.StatusOK, map[string]any{
			"access_token": "tok-abc",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))

	token, err := client.PollDeviceToken(context.Background(), DeviceLogin{
		DeviceCode: "dev-123",
	})
	require.NoError(t, err)
	require.Equal(t, "tok-abc", token.AccessToken)
	require.Equal(t, int64(3), polls.Load())
	require.False(t, token.Expired())

	// the token must be installed on the client for later calls
	require.Equal(t, "tok-abc", client.Http.Token)
}

func TestPollDeviceTokenSlowDown(t *testing.T) {
	original := slowDownStep
	slowDownStep = time.Millisecond * 5
	defer func() { slowDownStep = original }()

	var polls atomic.Int64
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch polls.Add(1) {
		case 1:
			writeJson(w, http.StatusBadRequest, map[string]any{"error": "slow_down"})
		default:
			writeJson(w, http.StatusOK, map[string]any{
				"access_token": "tok-abc",
				"token_type":   "Bearer",
			})
		}
	}))

	_, err := client.PollDeviceToken(context.Background(), DeviceLogin{DeviceCode: "dev-123"})
	require.NoError(t, err)
	require.Equal(t, int64(2), polls.Load())
}

func TestPollDeviceTokenExpired(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJson(w, http.StatusBadRequest, map[string]any{"error": "expired_token"})
	}))

	_, err := client.PollDeviceToken(context.Background(), DeviceLogin{DeviceCode: "dev-123"})
	require.ErrorIs(t, err, ErrDeviceCodeExpired)
}

func TestPollDeviceTokenCancelled(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJson(w, http.StatusBadRequest, map[string]any{"error": "authorization_pending"})
	}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond*50)
	defer cancel()

	_, err := client.PollDeviceToken(ctx, DeviceLogin{DeviceCode: "dev-123", Interval: 1})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPollDeviceTokenMalformedResponse(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJson(w, http.StatusOK, map[string]any{})
	}))

	_, err := client.PollDeviceToken(context.Background(), DeviceLogin{DeviceCode: "dev-123"})
	require.ErrorIs(t, err, ErrMalformedTokenResponse)
}

func TestTokenCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hydroclip", "token.json")

	saved := Token{
		AccessToken: "tok-abc",
		TokenType:   "Bearer",
		ExpiresAt:   time.Now().Add(time.Hour).Truncate(time.Second),
	}
	require.NoError(t, SaveToken(path, saved))

	loaded, err := LoadCachedToken(path)
	require.NoError(t, err)
	require.Equal(t, saved.AccessToken, loaded.AccessToken)

	expired := Token{AccessToken: "old", ExpiresAt: time.Now().Add(-time.Hour)}
	require.NoError(t, SaveToken(path, expired))

	_, err = LoadCachedToken(path)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestLoadCachedTokenMissing(t *testing.T) {
	_, err := LoadCachedToken(filepath.Join(t.TempDir(), "token.json"))
	require.Error(t, err)
}
