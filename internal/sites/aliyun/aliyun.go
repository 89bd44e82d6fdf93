// Package aliyun checks in against the Aliyun Drive member activity
// endpoints. The credential is a refresh token which is first exchanged
// for a short-lived access token; when that exchange fails the check-in
// short-circuits without attempting the dependent calls.
package aliyun

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MrSnakeDoc/checkin/internal/httpx"
	"github.com/MrSnakeDoc/checkin/internal/logger"
	"github.com/MrSnakeDoc/checkin/internal/sites"
)

// Endpoints are the upstream URLs, overridable in tests.
type Endpoints struct {
	Token  string
	Sign   string
	Reward string
}

func defaultEndpoints() Endpoints {
	return Endpoints{
		Token:  "https://auth.aliyundrive.com/v2/account/token",
		Sign:   "https://member.aliyundrive.com/v1/activity/sign_in_list",
		Reward: "https://member.aliyundrive.com/v1/activity/sign_in_reward",
	}
}

// Connector implements the check-in contract for Aliyun Drive.
type Connector struct {
	http      *httpx.Client
	log       logger.Logger
	endpoints Endpoints
}

// Option customizes a Connector.
type Option func(*Connector)

// WithEndpoints overrides the upstream URLs. Used in tests.
func WithEndpoints(e Endpoints) Option {
	return func(c *Connector) { c.endpoints = e }
}

// New builds the Aliyun Drive connector.
func New(client *httpx.Client, log logger.Logger, opts ...Option) *Connector {
	c := &Connector{
		http:      client,
		log:       log.Named("aliyun"),
		endpoints: defaultEndpoints(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Connector) ID() string   { return "aliyun" }
func (c *Connector) Name() string { return "Aliyun Drive" }

// Checkin exchanges the refresh token, signs in, and claims the daily
// reward. Overall success tracks the sign step; the reward claim is
// best-effort and only contributes to the message.
func (c *Connector) Checkin(ctx context.Context, refreshToken string) sites.CheckinResult {
	accessToken, err := c.exchangeToken(ctx, refreshToken)
	if err != nil {
		return sites.Failure(time.Now(), err.Error())
	}

	sign, signInDay := c.sign(ctx, accessToken)
	reward := c.claimReward(ctx, accessToken, signInDay)

	result := sites.Combine(time.Now(), sign, reward)
	result.Success = sign.Success
	return result
}

func (c *Connector) exchangeToken(ctx context.Context, refreshToken string) (string, error) {
	resp, err := c.http.PostJSON(ctx, c.endpoints.Token, map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": refreshToken,
	}, nil)
	if err != nil {
		return "", fmt.Errorf("token refresh: %w", err)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		Message     string `json:"message"`
	}
	if err := resp.Decode(&body); err != nil {
		return "", fmt.Errorf("token refresh: %w", err)
	}
	if body.AccessToken == "" {
		msg := body.Message
		if msg == "" {
			msg = "no access token in response"
		}
		return "", fmt.Errorf("token refresh: %s", msg)
	}
	return body.AccessToken, nil
}

func (c *Connector) sign(ctx context.Context, accessToken string) (sites.SubResult, int) {
	const task = "sign"

	resp, err := c.http.PostJSON(ctx, c.endpoints.Sign, map[string]any{}, bearer(accessToken))
	if err != nil {
		return sites.SubFail(task, err.Error()), 0
	}

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Result  struct {
			SignInCount int `json:"signInCount"`
		} `json:"result"`
	}
	if err := resp.Decode(&body); err != nil {
		return sites.SubFail(task, err.Error()), 0
	}

	if !body.Success {
		msg := body.Message
		if msg == "" {
			msg = "sign-in failed"
		}
		return sites.SubFail(task, msg), 0
	}

	day := body.Result.SignInCount
	return sites.SubOK(task, fmt.Sprintf("signed in %d days running", day)), day
}

func (c *Connector) claimReward(ctx context.Context, accessToken string, signInDay int) sites.SubResult {
	const task = "reward"

	resp, err := c.http.PostJSON(ctx, c.endpoints.Reward, map[string]int{
		"signInDay": signInDay,
	}, bearer(accessToken))
	if err != nil {
		return sites.SubFail(task, err.Error())
	}

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Result  struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		} `json:"result"`
	}
	if err := resp.Decode(&body); err != nil {
		return sites.SubFail(task, err.Error())
	}

	if !body.Success {
		msg := body.Message
		if msg == "" {
			msg = "reward claim failed"
		}
		return sites.SubFail(task, msg)
	}

	name := body.Result.Name
	if name == "" {
		name = "reward"
	}
	return sites.SubOK(task, strings.TrimSpace(fmt.Sprintf("got %s %s", name, body.Result.Description)))
}

// CheckLogin verifies the refresh token by performing the exchange; the
// token endpoint has no read-only probe.
func (c *Connector) CheckLogin(ctx context.Context, refreshToken string) sites.LoginStatus {
	if _, err := c.exchangeToken(ctx, refreshToken); err != nil {
		return sites.LoginStatus{LoggedIn: false, Error: err.Error()}
	}
	return sites.LoginStatus{LoggedIn: true}
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}
