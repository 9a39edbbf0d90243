// Package stage defines the typed outcome every pipeline stage reports on failure.
package stage

import (
	"errors"
	"fmt"
	"io"

	pkgerrors "github.com/pkg/errors"
)

// Name identifies one step of the pipeline.
type Name string

const (
	Script    Name = "script"
	Voice     Name = "voice"
	Image     Name = "image"
	Subtitles Name = "subtitles"
	Render    Name = "render"
	Metadata  Name = "metadata"
	Publish   Name = "publish"
)

// Kind separates upstream failures from bad payloads and local processing faults.
type Kind int

const (
	KindService Kind = iota + 1
	KindMalformed
	KindLocal
)

func (k Kind) String() string {
	switch k {
	case KindService:
		return "service error"
	case KindMalformed:
		return "malformed response"
	case KindLocal:
		return "local failure"
	}
	return "unknown"
}

// Sentinels matched by errors.Is against any *Error of the same kind.
var (
	ErrService   = errors.New("service error")
	ErrMalformed = errors.New("malformed response")
	ErrLocal     = errors.New("local failure")
)

// Error is a stage-aware failure with an optional upstream response body.
type Error struct {
	Stage   Name
	Kind    Kind
	Message string
	Body    string
	Err     error
}

// Service reports a non-success answer or transport failure from an external API.
func Service(name Name, msg string, err error) *Error {
	return newError(name, KindService, msg, err)
}

// Malformed reports a response that lacks the fields the stage needs.
func Malformed(name Name, msg string, err error) *Error {
	return newError(name, KindMalformed, msg, err)
}

// Local reports a failure of local processing: files, models, encoders.
func Local(name Name, msg string, err error) *Error {
	return newError(name, KindLocal, msg, err)
}

func newError(name Name, kind Kind, msg string, err error) *Error {
	if err == nil {
		err = errors.New(msg)
	}
	return &Error{Stage: name, Kind: kind, Message: msg, Err: pkgerrors.WithStack(err)}
}

// WithBody attaches the raw upstream response body.
func (e *Error) WithBody(body string) *Error {
	e.Body = body
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Stage, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Message, pkgerrors.Cause(e.Err))
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches the kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrService:
		return e.Kind == KindService
	case ErrMalformed:
		return e.Kind == KindMalformed
	case ErrLocal:
		return e.Kind == KindLocal
	}
	return false
}

// Format prints the stack of the wrapped error for %+v.
func (e *Error) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			fmt.Fprintf(s, "stage: %s\nkind: %s\nmessage: %s\n", e.Stage, e.Kind, e.Message)
			if e.Body != "" {
				fmt.Fprintf(s, "body: %s\n", e.Body)
			}
			fmt.Fprintf(s, "%+v", e.Err)
			return
		}
		fallthrough
	case 's':
		_, _ = io.WriteString(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}

// UserMessage is the one generic line shown for a failed stage.
func (e *Error) UserMessage() string {
	if e.Stage == Voice && e.Body != "" {
		return "typecast api error: " + e.Body
	}
	return UserMessage(e.Stage)
}

// UserMessage returns the generic failure text for a stage.
func UserMessage(name Name) string {
	switch name {
	case Script:
		return "script generation failed"
	case Voice:
		return "voice synthesis failed"
	case Image:
		return "image download failed"
	case Subtitles:
		return "subtitle extraction failed"
	case Render:
		return "video rendering failed"
	case Metadata:
		return "metadata generation failed"
	case Publish:
		return "upload failed"
	}
	return "stage failed"
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
