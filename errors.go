package openpgpjs

import "log"

// Kind classifies a pipeline failure.
type Kind int

const (
	// InvalidInputType marks a payload or parameter of the wrong shape,
	// rejected before any cryptographic work runs.
	InvalidInputType Kind = iota + 1
	// InvalidUserId marks a malformed user identity record.
	InvalidUserId
	// InvalidFormat marks an unsupported decrypt output format.
	InvalidFormat
	// MissingCredential marks a call without the keys or passwords it
	// requires.
	MissingCredential
	// ResolutionFailure marks a decryption where no supplied credential
	// could unwrap a session key.
	ResolutionFailure
	// PrimitiveFailure marks a failed packet or algorithm operation.
	PrimitiveFailure
	// WorkerFailure marks a failed delegated call.
	WorkerFailure
)

func (k Kind) String() string {
	switch k {
	case InvalidInputType:
		return "invalid input type"
	case InvalidUserId:
		return "invalid user id"
	case InvalidFormat:
		return "invalid format"
	case MissingCredential:
		return "missing credential"
	case ResolutionFailure:
		return "resolution failure"
	case PrimitiveFailure:
		return "primitive failure"
	case WorkerFailure:
		return "worker failure"
	}
	return "unknown"
}

// Error is the failure contract of every operation: a kind from the taxonomy,
// the operation's user-facing description, and the underlying cause.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// newError builds a validation error raised before any cryptographic work.
func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// translate wraps a pipeline failure with the operation's user-facing
// description. Errors already carrying an operation pass through unchanged,
// so a cause translated deeper in the pipeline keeps its original context.
func translate(op string, kind Kind, err error) error {
	if e, ok := err.(*Error); ok {
		if e.Op == "" {
			e.Op = op
		}
		logError(e)
		return e
	}
	e := &Error{Kind: kind, Op: op, Cause: err}
	logError(e)
	return e
}

func logError(e *Error) {
	if GetConfig().Debug {
		log.Println("openpgpjs: " + e.Error())
	}
}
