package geoapi

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var ErrDeviceCodeExpired = fmt.Errorf("device code expired before the login was approved")
var ErrTokenExpired = fmt.Errorf("cached token is expired")
var ErrMalformedTokenResponse = fmt.Errorf("token endpoint replied with success but no access token")

// how much the poll interval widens on a `slow_down` response
var slowDownStep = 5 * time.Second

// DeviceLogin is the handle returned when starting a device-code
// login. the analyst opens VerificationUrl in a browser and enters
// UserCode there, while the client polls for the resulting token.
type DeviceLogin struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationUrl string `json:"verification_url"`
	// seconds between token polls, the server may ask to slow down
	Interval  int `json:"interval"`
	ExpiresIn int `json:"expires_in"`
}

type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (t Token) Expired() bool {
	return !t.ExpiresAt.IsZero() && time.Now().After(t.ExpiresAt)
}

func (c *Client) StartDeviceLogin(ctx context.Context, clientId, scope string) (DeviceLogin, error) {
	ctx, span := tracer.Start(ctx, "client:StartDeviceLogin")
	defer span.End()

	span.SetAttributes(attribute.String("client_id", clientId))

	var login DeviceLogin
	res, err := c.Http.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"client_id": clientId,
			"scope":     scope,
		}).
		SetResult(&login).
		Post("/v1/auth/device")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to request device code")
		return DeviceLogin{}, err
	}
	if res.IsError() {
		err := apiError(res)
		span.SetStatus(codes.Error, err.Error())
		return DeviceLogin{}, err
	}
	if login.Interval <= 0 {
		login.Interval = 5
	}
	return login, nil
}

type tokenPollResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Error       string `json:"error"`
}

// PollDeviceToken blocks until the login started by StartDeviceLogin is
// approved in the browser, the device code expires, or ctx is
// cancelled. `authorization_pending` keeps polling, `slow_down` widens
// the poll interval per the oauth device-flow contract.
func (c *Client) PollDeviceToken(ctx context.Context, login DeviceLogin) (Token, error) {
	ctx, span := tracer.Start(ctx, "client:PollDeviceToken")
	defer span.End()

	interval := time.Duration(login.Interval) * time.Second
	deadline := time.Now().Add(time.Duration(login.ExpiresIn) * time.Second)

	for {
		select {
		case <-ctx.Done():
			return Token{}, ctx.Err()
		case <-time.After(interval):
		}
		if login.ExpiresIn > 0 && time.Now().After(deadline) {
			span.SetStatus(codes.Error, ErrDeviceCodeExpired.Error())
			return Token{}, ErrDeviceCodeExpired
		}

		var poll tokenPollResponse
		res, err := c.Http.R().
			SetContext(ctx).
			SetBody(map[string]string{
				"device_code": login.DeviceCode,
				"grant_type":  "urn:ietf:params:oauth:grant-type:device_code",
			}).
			SetResult(&poll).
			SetError(&poll).
			Post("/v1/auth/token")
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to poll token endpoint")
			return Token{}, err
		}

		switch {
		case res.IsSuccess() && poll.AccessToken != "":
			token := Token{
				AccessToken: poll.AccessToken,
				TokenType:   poll.TokenType,
			}
			if poll.ExpiresIn > 0 {
				token.ExpiresAt = time.Now().Add(time.Duration(poll.ExpiresIn) * time.Second)
			}
			c.SetToken(token)
			return token, nil
		case res.IsSuccess() && poll.Error == "":
			// a 2xx body with neither token nor oauth error code is a
			// broken server, not something worth retrying
			span.SetStatus(codes.Error, ErrMalformedTokenResponse.Error())
			return Token{}, ErrMalformedTokenResponse
		case poll.Error == "authorization_pending":
			continue
		case poll.Error == "slow_down":
			interval += slowDownStep
		case poll.Error == "expired_token":
			span.SetStatus(codes.Error, ErrDeviceCodeExpired.Error())
			return Token{}, ErrDeviceCodeExpired
		default:
			err := apiError(res)
			span.SetStatus(codes.Error, err.Error())
			return Token{}, err
		}
	}
}

func SaveToken(path string, token Token) error {
	err := os.MkdirAll(filepath.Dir(path), 0700)
	if err != nil {
		return err
	}
	contents, err := json.Marshal(token)
	if err != nil {
		return err
	}
	return os.WriteFile(path, contents, 0600)
}

func LoadCachedToken(path string) (Token, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return Token{}, err
	}
	var token Token
	err = json.Unmarshal(contents, &token)
	if err != nil {
		return Token{}, err
	}
	if token.Expired() {
		return Token{}, ErrTokenExpired
	}
	return token, nil
}
