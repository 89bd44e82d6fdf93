// Package sites defines the uniform capability set every site connector
// implements, and the result types the engine consumes. Connectors live
// in subpackages, one per upstream service.
package sites

import (
	"context"
	"strings"
	"time"
)

// AllFailedMessage is the aggregate message when no sub-task succeeded.
const AllFailedMessage = "all sign-in tasks failed"

// SubResult is the outcome of one named sub-task within a connector.
// Sub-tasks are independent: one failing never aborts its siblings.
type SubResult struct {
	Name          string `json:"name"`
	Success       bool   `json:"success"`
	AlreadySigned bool   `json:"already_signed,omitempty"`
	Message       string `json:"message"`
}

// CheckinResult is the outcome of one check-in invocation against one site.
// Immutable once returned. Skipped is set by the engine's daily gate,
// never by a connector.
type CheckinResult struct {
	Success   bool        `json:"success"`
	Skipped   bool        `json:"skipped,omitempty"`
	Message   string      `json:"message"`
	Details   []SubResult `json:"details,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// LoginStatus is the outcome of a lightweight credential probe.
type LoginStatus struct {
	LoggedIn bool           `json:"logged_in"`
	UserInfo map[string]any `json:"user_info,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// Connector is the contract every site adapter implements.
//
// Checkin must never propagate an upstream failure as a panic or error:
// anything going wrong is converted into a CheckinResult with
// Success=false. CheckLogin is read-only and must not perform the
// check-in side effect.
type Connector interface {
	ID() string
	Name() string
	Checkin(ctx context.Context, credential string) CheckinResult
	CheckLogin(ctx context.Context, credential string) LoginStatus
}

// Combine folds independent sub-task outcomes into one result: the
// check-in counts as successful when any sub-task succeeded, and the
// message joins the messages of the successful sub-tasks.
func Combine(now time.Time, subs ...SubResult) CheckinResult {
	var messages []string
	success := false
	for _, sub := range subs {
		if sub.Success {
			success = true
			messages = append(messages, sub.Message)
		}
	}

	message := AllFailedMessage
	if len(messages) > 0 {
		message = strings.Join(messages, ", ")
	}

	return CheckinResult{
		Success:   success,
		Message:   message,
		Details:   subs,
		Timestamp: now,
	}
}

// Failure builds a failed result with no sub-task breakdown.
func Failure(now time.Time, message string) CheckinResult {
	return CheckinResult{Success: false, Message: message, Timestamp: now}
}

// SubOK builds a successful sub-task outcome.
func SubOK(name, message string) SubResult {
	return SubResult{Name: name, Success: true, Message: message}
}

// SubAlready marks an idempotent no-op on the remote side: the site
// reported the task was already done today. Counts as success.
func SubAlready(name, message string) SubResult {
	return SubResult{Name: name, Success: true, AlreadySigned: true, Message: message}
}

// SubFail builds a failed sub-task outcome.
func SubFail(name, message string) SubResult {
	return SubResult{Name: name, Success: false, Message: message}
}
