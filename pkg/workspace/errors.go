package workspace

import (
	"errors"
	"fmt"

	smtypes "github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
	"github.com/aws/smithy-go"
)

// FailureClass classifies a remote-call failure for orchestration decisions.
type FailureClass string

const (
	// FailureAbsent indicates the target resource does not exist. Treated as
	// success for deletes and as terminal Deleted for status polls.
	FailureAbsent FailureClass = "absent"

	// FailureRejected indicates the control plane refused a mutation for a
	// substantive reason: bad configuration, permission, quota.
	FailureRejected FailureClass = "rejected"

	// FailureConvergence indicates the polling bound was exhausted with
	// resources still non-terminal.
	FailureConvergence FailureClass = "convergence"

	// FailureTransport indicates network or control-plane unavailability.
	FailureTransport FailureClass = "transport"
)

// OpError is a classified error from a control-plane operation.
type OpError struct {
	// Class is the failure classification.
	Class FailureClass

	// Message is the human-readable error message.
	Message string

	// Resource is the resource the operation targeted, if applicable.
	Resource string

	// Operation is the control-plane operation being performed.
	Operation string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *OpError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("[%s] %s %s: %s", e.Class, e.Operation, e.Resource, e.unwrapMessage())
	}
	return fmt.Sprintf("[%s] %s: %s", e.Class, e.Operation, e.unwrapMessage())
}

// Unwrap returns the underlying error for error chain inspection.
func (e *OpError) Unwrap() error {
	return e.Err
}

// Is implements class-based equality for errors.Is.
func (e *OpError) Is(target error) bool {
	t, ok := target.(*OpError)
	if !ok {
		return false
	}
	return e.Class == t.Class
}

func (e *OpError) unwrapMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ""
}

// NewRejectedError creates a rejected-class error.
func NewRejectedError(operation, resource string, err error) *OpError {
	return &OpError{Class: FailureRejected, Operation: operation, Resource: resource, Err: err}
}

// NewTransportError creates a transport-class error.
func NewTransportError(operation, resource string, err error) *OpError {
	return &OpError{Class: FailureTransport, Operation: operation, Resource: resource, Err: err}
}

// NewConvergenceError creates a convergence-class error.
func NewConvergenceError(resource string, pending int) *OpError {
	return &OpError{
		Class:     FailureConvergence,
		Operation: "await_convergence",
		Resource:  resource,
		Message:   fmt.Sprintf("%d resource(s) still non-terminal at the polling bound", pending),
	}
}

// IsAbsent returns true if the error is classified as absent.
func IsAbsent(err error) bool {
	return hasClass(err, FailureAbsent)
}

// IsRejected returns true if the error is classified as rejected.
func IsRejected(err error) bool {
	return hasClass(err, FailureRejected)
}

// IsConvergence returns true if the error is classified as convergence.
func IsConvergence(err error) bool {
	return hasClass(err, FailureConvergence)
}

// IsTransport returns true if the error is classified as transport.
func IsTransport(err error) bool {
	return hasClass(err, FailureTransport)
}

func hasClass(err error, class FailureClass) bool {
	var e *OpError
	if errors.As(err, &e) {
		return e.Class == class
	}
	return false
}

// classify wraps a raw SDK error into an OpError. Modeled not-found errors
// become absent; in-use, limit, validation and access errors become rejected;
// everything else is transport.
func classify(operation, resource string, err error) *OpError {
	if err == nil {
		return nil
	}

	var notFound *smtypes.ResourceNotFound
	if errors.As(err, &notFound) {
		return &OpError{Class: FailureAbsent, Operation: operation, Resource: resource, Err: err}
	}

	var inUse *smtypes.ResourceInUse
	if errors.As(err, &inUse) {
		return NewRejectedError(operation, resource, err)
	}

	var limit *smtypes.ResourceLimitExceeded
	if errors.As(err, &limit) {
		return NewRejectedError(operation, resource, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ValidationException", "AccessDeniedException", "UnauthorizedOperation":
			return NewRejectedError(operation, resource, err)
		}
	}

	return NewTransportError(operation, resource, err)
}
