package apperrors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/yigit/campusportal/internal/pkg/httpclient"
)

// Kind tags which failure category produced a NormalizedError
type Kind string

// Categories in the order they are matched
const (
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindValidation   Kind = "validation"
	KindEnvelope     Kind = "envelope"
	KindHTTP         Kind = "http"
	KindNoResponse   Kind = "no_response"
	KindUnknown      Kind = "unknown"
)

// User-facing messages
const (
	MsgSessionExpired = "session expired, please log in again."
	MsgAccessDenied   = "access denied."
	MsgInvalidData    = "invalid data"
	MsgRequestFailed  = "request failed"
	MsgNoResponse     = "no response from server"
	MsgUnknownPrefix  = "unknown error: "
)

// NormalizedError is the single error shape shown to users
type NormalizedError struct {
	Kind    Kind
	Status  int
	Message string
	Data    interface{}
	cause   error
}

func (e *NormalizedError) Error() string {
	return e.Message
}

func (e *NormalizedError) Unwrap() error {
	return e.cause
}

// NewValidationError is a 400 raised by the portal itself, before any
// request goes out
func NewValidationError(detail interface{}) *NormalizedError {
	return &NormalizedError{Kind: KindValidation, Status: http.StatusBadRequest, Message: MsgInvalidData, Data: detail}
}

// Notifier shows a transient message to the user
type Notifier interface {
	Notify(message string, detail interface{})
}

// Normalizer turns request failures into NormalizedErrors and notifies the user
type Normalizer struct {
	notifier Notifier
	logger   zerolog.Logger
}

// NewNormalizer creates a Normalizer. notifier may be nil.
func NewNormalizer(notifier Notifier, logger zerolog.Logger) *Normalizer {
	return &Normalizer{notifier: notifier, logger: logger}
}

// Handle normalizes err, shows it and returns it. It never returns nil.
// It does not touch the session; callers decide what a 401 means for them.
func (n *Normalizer) Handle(err error) *NormalizedError {
	ne := Normalize(err)

	if ne.Kind == KindUnknown {
		n.logger.Error().Err(err).Msg("Unexpected client error")
	} else {
		n.logger.Warn().Str("kind", string(ne.Kind)).Int("status", ne.Status).Str("message", ne.Message).Msg("Request failed")
	}

	if n.notifier != nil {
		n.notifier.Notify(ne.Message, ne.Data)
	}
	return ne
}

// Normalize maps err onto a NormalizedError without side effects
func Normalize(err error) *NormalizedError {
	var already *NormalizedError
	if errors.As(err, &already) {
		return already
	}

	var respErr *httpclient.ResponseError
	if errors.As(err, &respErr) {
		return fromResponse(respErr)
	}

	var transportErr *httpclient.TransportError
	if errors.As(err, &transportErr) {
		return &NormalizedError{Kind: KindNoResponse, Status: 0, Message: MsgNoResponse, cause: err}
	}

	msg := "nil error"
	if err != nil {
		msg = err.Error()
	}
	return &NormalizedError{Kind: KindUnknown, Status: 0, Message: MsgUnknownPrefix + msg, cause: err}
}

func fromResponse(respErr *httpclient.ResponseError) *NormalizedError {
	switch respErr.StatusCode {
	case http.StatusUnauthorized:
		return &NormalizedError{Kind: KindUnauthorized, Status: respErr.StatusCode, Message: MsgSessionExpired, cause: respErr}
	case http.StatusForbidden:
		return &NormalizedError{Kind: KindForbidden, Status: respErr.StatusCode, Message: MsgAccessDenied, cause: respErr}
	case http.StatusBadRequest:
		var data interface{} = string(respErr.Body)
		if msg, ok := firstFieldError(respErr.Body); ok {
			data = msg
		}
		return &NormalizedError{Kind: KindValidation, Status: respErr.StatusCode, Message: MsgInvalidData, Data: data, cause: respErr}
	}

	if env, ok := decodeEnvelope(respErr.Body); ok {
		return &NormalizedError{Kind: KindEnvelope, Status: env.status, Message: env.message, Data: env.data, cause: respErr}
	}

	msg := MsgRequestFailed
	if server, ok := serverMessage(respErr.Body); ok {
		msg = server
	}
	return &NormalizedError{Kind: KindHTTP, Status: respErr.StatusCode, Message: msg, cause: respErr}
}

type envelope struct {
	status  int
	message string
	data    interface{}
}

// decodeEnvelope succeeds only when status, message and data keys are all present
func decodeEnvelope(body []byte) (envelope, bool) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return envelope{}, false
	}

	rawStatus, okStatus := raw["status"]
	rawMessage, okMessage := raw["message"]
	rawData, okData := raw["data"]
	if !okStatus || !okMessage || !okData {
		return envelope{}, false
	}

	var env envelope
	if err := json.Unmarshal(rawStatus, &env.status); err != nil {
		return envelope{}, false
	}
	if err := json.Unmarshal(rawMessage, &env.message); err != nil {
		return envelope{}, false
	}
	if err := json.Unmarshal(rawData, &env.data); err != nil {
		return envelope{}, false
	}
	return env, true
}

func firstFieldError(body []byte) (string, bool) {
	var payload struct {
		Data []struct {
			ErrorMessage string `json:"errorMessage"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", false
	}
	for _, fe := range payload.Data {
		if fe.ErrorMessage != "" {
			return fe.ErrorMessage, true
		}
	}
	return "", false
}

func serverMessage(body []byte) (string, bool) {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Message == "" {
		return "", false
	}
	return payload.Message, true
}

// IsKind reports whether err normalizes to the given kind
func IsKind(err error, kind Kind) bool {
	var ne *NormalizedError
	return errors.As(err, &ne) && ne.Kind == kind
}
