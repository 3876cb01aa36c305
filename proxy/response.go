package proxy

import (
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/pkg/errors"
)

// KindInternal is reported for failures that carry no more specific kind.
const KindInternal = "InternalError"

// MaxFailureMessage is the longest error description, in runes, placed into
// a failure envelope.
const MaxFailureMessage = 500

// Headers returns the headers attached to every response.
func Headers() map[string]string {
	return map[string]string{
		"Content-Type":                 "application/json",
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type,Authorization",
	}
}

// Respond builds a response envelope. A string body is used verbatim, any
// other value is encoded as JSON.
func Respond(status int, body interface{}) events.APIGatewayProxyResponse {
	var text string

	switch b := body.(type) {
	case string:
		text = b
	case []byte:
		text = string(b)
	default:
		encoded, err := json.Marshal(b)
		if err != nil {
			return Failure(errors.Wrap(err, "failed encoding response body"))
		}
		text = string(encoded)
	}

	return events.APIGatewayProxyResponse{
		StatusCode:      status,
		Headers:         Headers(),
		Body:            text,
		IsBase64Encoded: false,
	}
}

// FailureBody is the payload of a failure envelope.
type FailureBody struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Failure converts err into an envelope with status 200 and an ok:false body.
// Callers must inspect the ok field.
func Failure(err error) events.APIGatewayProxyResponse {
	if err == nil {
		err = errors.New("unknown failure")
	}

	body := FailureBody{
		OK:      false,
		Error:   ErrorKind(err),
		Message: truncate(err.Error(), MaxFailureMessage),
	}

	// FailureBody only holds strings and a bool so encoding cannot fail.
	encoded, _ := json.Marshal(body)

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    Headers(),
		Body:       string(encoded),
	}
}

// Error is an error tagged with the kind reported in a failure envelope.
type Error struct {
	kind string
	err  error
}

// NewError tags err with kind.
func NewError(kind string, err error) error {
	if err == nil {
		err = errors.New(kind)
	}
	return &Error{kind: kind, err: err}
}

func (e *Error) Error() string { return e.err.Error() }

// Kind returns the failure kind.
func (e *Error) Kind() string { return e.kind }

// Cause supports errors.Cause.
func (e *Error) Cause() error { return e.err }

// Unwrap supports errors.Is and errors.As.
func (e *Error) Unwrap() error { return e.err }

// ErrorKind names the kind of failure err represents: the kind of a tagged
// Error, the code of an aws error, or KindInternal.
func ErrorKind(err error) string {
	var kinded interface{ Kind() string }
	if errors.As(err, &kinded) {
		return kinded.Kind()
	}

	var aerr awserr.Error
	if errors.As(err, &aerr) {
		return aerr.Code()
	}

	return KindInternal
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
