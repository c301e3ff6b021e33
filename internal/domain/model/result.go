package model

import "fmt"

// ErrorKind classifies every failure the engine can hand back to a user.
type ErrorKind string

const (
	ErrNotAuthorized        ErrorKind = "not_authorized"
	ErrParse                ErrorKind = "parse_error"
	ErrNoPendingAction      ErrorKind = "no_pending_action"
	ErrConfirmationMismatch ErrorKind = "confirmation_mismatch"
	ErrClusterForbidden     ErrorKind = "cluster_forbidden"
	ErrClusterNotFound      ErrorKind = "cluster_not_found"
	ErrClusterUnavailable   ErrorKind = "cluster_unavailable"
	ErrTimeout              ErrorKind = "timeout"
	ErrInternal             ErrorKind = "internal"
)

type ResultStatus string

const (
	ResultSuccess        ResultStatus = "success"
	ResultPartialFailure ResultStatus = "partial_failure"
	ResultFailure        ResultStatus = "failure"
)

// Result is the outcome of one dispatched Intent. Produced exactly once per
// execution and never mutated afterwards.
type Result struct {
	Status  ResultStatus `json:"status"`
	Payload string       `json:"payload,omitempty"`
	Detail  string       `json:"detail,omitempty"`
	Kind    ErrorKind    `json:"error_kind,omitempty"`
	Message string       `json:"message,omitempty"`
}

func Success(payload string) Result {
	return Result{Status: ResultSuccess, Payload: payload}
}

func PartialFailure(payload, detail string) Result {
	return Result{Status: ResultPartialFailure, Payload: payload, Detail: detail}
}

func Failure(kind ErrorKind, message string) Result {
	return Result{Status: ResultFailure, Kind: kind, Message: message}
}

func (r Result) OK() bool { return r.Status == ResultSuccess }

// Summary renders a short single-line description for history and logs.
func (r Result) Summary() string {
	switch r.Status {
	case ResultSuccess:
		return "ok"
	case ResultPartialFailure:
		return fmt.Sprintf("partial failure: %s", r.Detail)
	default:
		return fmt.Sprintf("%s: %s", r.Kind, r.Message)
	}
}
