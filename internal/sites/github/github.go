// Package github "checks in" on GitHub: there is no reward endpoint, so
// the daily ritual is a presence probe. The token is validated, today's
// public events are counted, and notifications are polled to register
// activity. Overall success tracks token validity.
package github

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/checkin/internal/httpx"
	"github.com/MrSnakeDoc/checkin/internal/logger"
	"github.com/MrSnakeDoc/checkin/internal/sites"
)

// Endpoints are the upstream URLs, overridable in tests.
type Endpoints struct {
	API string // base URL of the REST API
}

func defaultEndpoints() Endpoints {
	return Endpoints{API: "https://api.github.com"}
}

// Connector implements the check-in contract for GitHub.
// The credential is a personal access token.
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

// New builds the GitHub connector.
func New(client *httpx.Client, log logger.Logger, opts ...Option) *Connector {
	c := &Connector{
		http:      client,
		log:       log.Named("github"),
		endpoints: defaultEndpoints(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Connector) ID() string   { return "github" }
func (c *Connector) Name() string { return "GitHub" }

func (c *Connector) Checkin(ctx context.Context, token string) sites.CheckinResult {
	login, err := c.user(ctx, token)
	if err != nil {
		return sites.Failure(time.Now(), err.Error())
	}

	user := sites.SubOK("user", fmt.Sprintf("user %s", login))
	events := c.todayEvents(ctx, token, login)
	activity := c.pollNotifications(ctx, token)

	result := sites.Combine(time.Now(), user, events, activity)
	result.Success = true
	return result
}

func (c *Connector) user(ctx context.Context, token string) (string, error) {
	resp, err := c.http.Get(ctx, c.endpoints.API+"/user", apiHeaders(token))
	if err != nil {
		return "", fmt.Errorf("token check: %w", err)
	}

	var body struct {
		Login string `json:"login"`
	}
	if err := resp.Decode(&body); err != nil {
		return "", fmt.Errorf("token check: %w", err)
	}
	if body.Login == "" {
		return "", fmt.Errorf("token check: token invalid or expired")
	}
	return body.Login, nil
}

func (c *Connector) todayEvents(ctx context.Context, token, login string) sites.SubResult {
	const task = "contributions"

	resp, err := c.http.Get(ctx, fmt.Sprintf("%s/users/%s/events", c.endpoints.API, login), apiHeaders(token))
	if err != nil {
		return sites.SubFail(task, err.Error())
	}

	var events []struct {
		CreatedAt string `json:"created_at"`
	}
	if err := resp.Decode(&events); err != nil {
		return sites.SubFail(task, err.Error())
	}

	today := time.Now().UTC().Format("2006-01-02")
	count := 0
	for _, ev := range events {
		if len(ev.CreatedAt) >= len(today) && ev.CreatedAt[:len(today)] == today {
			count++
		}
	}
	return sites.SubOK(task, fmt.Sprintf("%d events today", count))
}

func (c *Connector) pollNotifications(ctx context.Context, token string) sites.SubResult {
	const task = "activity"

	resp, err := c.http.Get(ctx, c.endpoints.API+"/notifications", apiHeaders(token))
	if err != nil {
		return sites.SubFail(task, err.Error())
	}

	var notifications []struct {
		ID string `json:"id"`
	}
	if err := resp.Decode(&notifications); err != nil {
		return sites.SubFail(task, err.Error())
	}
	return sites.SubOK(task, fmt.Sprintf("%d notifications", len(notifications)))
}

// CheckLogin validates the token against /user; no side effect.
func (c *Connector) CheckLogin(ctx context.Context, token string) sites.LoginStatus {
	login, err := c.user(ctx, token)
	if err != nil {
		return sites.LoginStatus{LoggedIn: false, Error: err.Error()}
	}
	return sites.LoginStatus{LoggedIn: true, UserInfo: map[string]any{"login": login}}
}

func apiHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + token,
		"Accept":        "application/vnd.github.v3+json",
		"User-Agent":    "checkin-cli",
	}
}
