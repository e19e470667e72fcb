package workspace

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	smtypes "github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
	"github.com/aws/smithy-go"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureClass
	}{
		{
			name: "not found is absent",
			err:  &smtypes.ResourceNotFound{Message: aws.String("gone")},
			want: FailureAbsent,
		},
		{
			name: "in use is rejected",
			err:  &smtypes.ResourceInUse{Message: aws.String("busy")},
			want: FailureRejected,
		},
		{
			name: "limit exceeded is rejected",
			err:  &smtypes.ResourceLimitExceeded{Message: aws.String("quota")},
			want: FailureRejected,
		},
		{
			name: "validation is rejected",
			err:  &smithy.GenericAPIError{Code: "ValidationException", Message: "bad input"},
			want: FailureRejected,
		},
		{
			name: "access denied is rejected",
			err:  &smithy.GenericAPIError{Code: "AccessDeniedException", Message: "no"},
			want: FailureRejected,
		},
		{
			name: "unknown api error is transport",
			err:  &smithy.GenericAPIError{Code: "ThrottlingException", Message: "slow down"},
			want: FailureTransport,
		},
		{
			name: "plain error is transport",
			err:  errors.New("connection refused"),
			want: FailureTransport,
		},
		{
			name: "wrapped not found is absent",
			err:  fmt.Errorf("describe: %w", &smtypes.ResourceNotFound{}),
			want: FailureAbsent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify("op", "res", tt.err)
			if got.Class != tt.want {
				t.Errorf("classify() class = %s, want %s", got.Class, tt.want)
			}
		})
	}
}

func TestClassifyNil(t *testing.T) {
	if classify("op", "res", nil) != nil {
		t.Error("expected nil for nil error")
	}
}

func TestOpErrorClassEquality(t *testing.T) {
	err := classify("delete_app", "JupyterServer/lab", inUseErr())
	wrapped := fmt.Errorf("teardown: %w", err)

	if !IsRejected(wrapped) {
		t.Error("expected rejected class through wrapping")
	}
	if IsAbsent(wrapped) {
		t.Error("did not expect absent class")
	}
	if !errors.Is(wrapped, &OpError{Class: FailureRejected}) {
		t.Error("errors.Is should match on class")
	}
}

func TestConvergenceErrorClass(t *testing.T) {
	err := NewConvergenceError("alice", 2)
	wrapped := fmt.Errorf("teardown: %w", err)

	if !IsConvergence(wrapped) {
		t.Error("expected convergence class through wrapping")
	}
	if IsTransport(wrapped) {
		t.Error("did not expect transport class")
	}
	want := "[convergence] await_convergence alice: 2 resource(s) still non-terminal at the polling bound"
	if err.Error() != want {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestOpErrorMessage(t *testing.T) {
	err := NewTransportError("list_apps", "alice", errors.New("timeout"))
	msg := err.Error()
	if msg != "[transport] list_apps alice: timeout" {
		t.Errorf("unexpected message: %s", msg)
	}
}
