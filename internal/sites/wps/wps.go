// Package wps checks in against the WPS membership sign endpoint.
// Single sub-task; the upstream only reports a repeat sign-in through
// free-text, so the "已签到" substring match lives here and nowhere else.
package wps

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/MrSnakeDoc/checkin/internal/httpx"
	"github.com/MrSnakeDoc/checkin/internal/logger"
	"github.com/MrSnakeDoc/checkin/internal/sites"
)

// Endpoints are the upstream URLs, overridable in tests.
type Endpoints struct {
	Sign      string
	UserCheck string
}

func defaultEndpoints() Endpoints {
	return Endpoints{
		Sign:      "https://vip.wps.cn/sign/v2",
		UserCheck: "https://account.wps.cn/p/auth/check",
	}
}

// Connector implements the check-in contract for WPS.
// The credential is the browser cookie string.
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

// New builds the WPS connector.
func New(client *httpx.Client, log logger.Logger, opts ...Option) *Connector {
	c := &Connector{
		http:      client,
		log:       log.Named("wps"),
		endpoints: defaultEndpoints(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Connector) ID() string   { return "wps" }
func (c *Connector) Name() string { return "WPS" }

func (c *Connector) Checkin(ctx context.Context, cookie string) sites.CheckinResult {
	sign := c.sign(ctx, cookie)
	return sites.Combine(time.Now(), sign)
}

func (c *Connector) sign(ctx context.Context, cookie string) sites.SubResult {
	const task = "sign"

	resp, err := c.http.RequestWithCookie(ctx, c.endpoints.Sign, cookie, httpx.Options{
		Method: http.MethodPost,
		Body:   map[string]string{"platform": "web"},
	})
	if err != nil {
		return sites.SubFail(task, err.Error())
	}

	var body struct {
		Result string `json:"result"`
		Msg    string `json:"msg"`
	}
	if err := resp.Decode(&body); err != nil {
		return sites.SubFail(task, err.Error())
	}

	if body.Result == "ok" {
		return sites.SubOK(task, "sign-in ok")
	}
	// The upstream has no dedicated repeat code, only free text.
	if strings.Contains(body.Msg, "已签到") {
		return sites.SubAlready(task, "already signed today")
	}
	msg := body.Msg
	if msg == "" {
		msg = "sign-in failed"
	}
	return sites.SubFail(task, msg)
}

// CheckLogin probes the account check endpoint; no side effect.
func (c *Connector) CheckLogin(ctx context.Context, cookie string) sites.LoginStatus {
	resp, err := c.http.RequestWithCookie(ctx, c.endpoints.UserCheck, cookie, httpx.Options{})
	if err != nil {
		return sites.LoginStatus{LoggedIn: false, Error: err.Error()}
	}

	var body struct {
		Result string `json:"result"`
		UserID string `json:"userid"`
	}
	if err := resp.Decode(&body); err != nil {
		return sites.LoginStatus{LoggedIn: false, Error: err.Error()}
	}

	status := sites.LoginStatus{LoggedIn: body.Result == "ok"}
	if status.LoggedIn && body.UserID != "" {
		status.UserInfo = map[string]any{"userid": body.UserID}
	}
	return status
}
