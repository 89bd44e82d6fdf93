package aliyun

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/checkin/internal/httpx"
	"github.com/MrSnakeDoc/checkin/internal/logger"
)

func testClient() *httpx.Client {
	return httpx.New(httpx.Config{
		Timeout:    2 * time.Second,
		Retries:    1,
		RetryDelay: time.Millisecond,
	})
}

func jsonHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}
}

type callCounter struct {
	sign, reward int
}

func newTestConnector(t *testing.T, handlers map[string]http.HandlerFunc) (*Connector, *callCounter) {
	t.Helper()
	counter := &callCounter{}
	mux := http.NewServeMux()
	for path, h := range handlers {
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			switch path {
			case "/sign":
				counter.sign++
			case "/reward":
				counter.reward++
			}
			h(w, r)
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := New(testClient(), logger.Nop(), WithEndpoints(Endpoints{
		Token:  srv.URL + "/token",
		Sign:   srv.URL + "/sign",
		Reward: srv.URL + "/reward",
	}))
	return c, counter
}

func TestCheckinHappyPath(t *testing.T) {
	c, _ := newTestConnector(t, map[string]http.HandlerFunc{
		"/token":  jsonHandler(`{"access_token":"at-1"}`),
		"/sign":   jsonHandler(`{"success":true,"result":{"signInCount":7}}`),
		"/reward": jsonHandler(`{"success":true,"result":{"name":"好运瓶","description":"抽奖机会"}}`),
	})

	result := c.Checkin(context.Background(), "refresh-token")

	assert.True(t, result.Success)
	assert.Contains(t, result.Message, "7 days running")
	assert.Contains(t, result.Message, "好运瓶")
}

func TestCheckinTokenFailureShortCircuits(t *testing.T) {
	c, counter := newTestConnector(t, map[string]http.HandlerFunc{
		"/token":  jsonHandler(`{"code":"InvalidParameter.RefreshToken","message":"refresh token invalid"}`),
		"/sign":   jsonHandler(`{"success":true}`),
		"/reward": jsonHandler(`{"success":true}`),
	})

	result := c.Checkin(context.Background(), "bad-token")

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "refresh token invalid")
	assert.Empty(t, result.Details)
	assert.Zero(t, counter.sign, "token failure must not reach the sign endpoint")
	assert.Zero(t, counter.reward)
}

func TestCheckinSuccessTracksSignNotReward(t *testing.T) {
	c, _ := newTestConnector(t, map[string]http.HandlerFunc{
		"/token":  jsonHandler(`{"access_token":"at-1"}`),
		"/sign":   jsonHandler(`{"success":true,"result":{"signInCount":2}}`),
		"/reward": jsonHandler(`{"success":false,"message":"reward not available"}`),
	})

	result := c.Checkin(context.Background(), "refresh-token")
	assert.True(t, result.Success, "reward claim is best-effort")
}

func TestCheckinSignFailure(t *testing.T) {
	c, _ := newTestConnector(t, map[string]http.HandlerFunc{
		"/token":  jsonHandler(`{"access_token":"at-1"}`),
		"/sign":   jsonHandler(`{"success":false,"message":"not eligible"}`),
		"/reward": jsonHandler(`{"success":true,"result":{"name":"x"}}`),
	})

	result := c.Checkin(context.Background(), "refresh-token")
	assert.False(t, result.Success)
}

func TestSignSendsBearerToken(t *testing.T) {
	var gotAuth string
	c, _ := newTestConnector(t, map[string]http.HandlerFunc{
		"/token": jsonHandler(`{"access_token":"at-42"}`),
		"/sign": func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"success":true,"result":{"signInCount":1}}`)
		},
		"/reward": jsonHandler(`{"success":true,"result":{"name":"x"}}`),
	})

	c.Checkin(context.Background(), "refresh-token")
	assert.Equal(t, "Bearer at-42", gotAuth)
}

func TestCheckLogin(t *testing.T) {
	c, counter := newTestConnector(t, map[string]http.HandlerFunc{
		"/token": jsonHandler(`{"access_token":"at-1"}`),
	})

	status := c.CheckLogin(context.Background(), "refresh-token")
	require.True(t, status.LoggedIn)
	assert.Zero(t, counter.sign, "login probe must not sign in")
}

func TestCheckLoginInvalidToken(t *testing.T) {
	c, _ := newTestConnector(t, map[string]http.HandlerFunc{
		"/token": jsonHandler(`{"message":"token expired"}`),
	})

	status := c.CheckLogin(context.Background(), "stale")
	assert.False(t, status.LoggedIn)
	assert.Contains(t, status.Error, "token expired")
}
