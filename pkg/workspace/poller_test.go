package workspace

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	smtypes "github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
)

func testPollOptions() PollOptions {
	return PollOptions{Interval: time.Millisecond, MaxTicks: 3}
}

// statusScript serves DescribeApp from a mutable per-app status table.
type statusScript struct {
	mu       sync.Mutex
	statuses map[string]smtypes.AppStatus
}

func newStatusScript(statuses map[string]smtypes.AppStatus) *statusScript {
	return &statusScript{statuses: statuses}
}

func (s *statusScript) describe(in *sagemaker.DescribeAppInput) (*sagemaker.DescribeAppOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status, ok := s.statuses[aws.ToString(in.AppName)]
	if !ok {
		return nil, notFoundErr()
	}
	return &sagemaker.DescribeAppOutput{Status: status}, nil
}

func (s *statusScript) set(name string, status smtypes.AppStatus) {
	s.mu.Lock()
	s.statuses[name] = status
	s.mu.Unlock()
}

func TestAwaitConvergenceTerminalAtEntryNeverRequeried(t *testing.T) {
	api := newFakeAPI()
	poller := NewPoller(NewDirectory(api, "d-test", 0, testLogger()), testPollOptions(), testLogger())

	children := []ChildResource{
		{ChildRef: ChildRef{Name: "a", Type: "JupyterServer"}, Status: ChildStatusDeleted},
		{ChildRef: ChildRef{Name: "b", Type: "KernelGateway"}, Status: ChildStatusFailed},
	}
	outcome, err := poller.AwaitConvergence(context.Background(), "alice", children)
	if err != nil {
		t.Fatalf("AwaitConvergence failed: %v", err)
	}
	if !outcome.Converged() {
		t.Error("expected convergence with only terminal apps")
	}
	if len(outcome.Deleted) != 1 || len(outcome.Failed) != 1 {
		t.Errorf("unexpected partition: %+v", outcome)
	}
	if api.count("DescribeApp") != 0 {
		t.Errorf("terminal apps must not be re-queried, got %d describes", api.count("DescribeApp"))
	}
}

func TestAwaitConvergenceTracksUntilTerminal(t *testing.T) {
	script := newStatusScript(map[string]smtypes.AppStatus{"a": smtypes.AppStatusDeleting})
	api := newFakeAPI()
	api.describeAppFn = script.describe

	// The app turns Deleted after the first tick observes it Deleting.
	go func() {
		time.Sleep(500 * time.Microsecond)
		script.set("a", smtypes.AppStatusDeleted)
	}()

	poller := NewPoller(NewDirectory(api, "d-test", 0, testLogger()), PollOptions{Interval: time.Millisecond, MaxTicks: 50}, testLogger())
	children := []ChildResource{{ChildRef: ChildRef{Name: "a", Type: "JupyterServer"}, Status: ChildStatusDeleting}}

	outcome, err := poller.AwaitConvergence(context.Background(), "alice", children)
	if err != nil {
		t.Fatalf("AwaitConvergence failed: %v", err)
	}
	if !outcome.Converged() {
		t.Fatalf("expected convergence, pending: %v", outcome.Pending)
	}
	if len(outcome.Deleted) != 1 {
		t.Errorf("expected 1 deleted app, got %d", len(outcome.Deleted))
	}
}

func TestAwaitConvergenceBoundExhaustion(t *testing.T) {
	script := newStatusScript(map[string]smtypes.AppStatus{"stuck": smtypes.AppStatusInService})
	api := newFakeAPI()
	api.describeAppFn = script.describe

	poller := NewPoller(NewDirectory(api, "d-test", 0, testLogger()), testPollOptions(), testLogger())
	children := []ChildResource{{ChildRef: ChildRef{Name: "stuck", Type: "JupyterServer"}, Status: ChildStatusInService}}

	outcome, err := poller.AwaitConvergence(context.Background(), "alice", children)
	if err != nil {
		t.Fatalf("bound exhaustion must not be an error, got %v", err)
	}
	if outcome.Converged() {
		t.Fatal("expected a non-converged outcome")
	}
	if len(outcome.Pending) != 1 || outcome.Pending[0].Name != "stuck" {
		t.Errorf("unexpected pending set: %v", outcome.Pending)
	}
	if got := api.count("DescribeApp"); got != 3 {
		t.Errorf("expected exactly MaxTicks describes, got %d", got)
	}
}

func TestAwaitConvergenceVanishedAppCountsDeleted(t *testing.T) {
	// No entry in the script table: DescribeApp reports not found.
	script := newStatusScript(map[string]smtypes.AppStatus{})
	api := newFakeAPI()
	api.describeAppFn = script.describe

	poller := NewPoller(NewDirectory(api, "d-test", 0, testLogger()), testPollOptions(), testLogger())
	children := []ChildResource{{ChildRef: ChildRef{Name: "gone", Type: "JupyterServer"}, Status: ChildStatusDeleting}}

	outcome, err := poller.AwaitConvergence(context.Background(), "alice", children)
	if err != nil {
		t.Fatalf("AwaitConvergence failed: %v", err)
	}
	if len(outcome.Deleted) != 1 {
		t.Errorf("vanished app should count as Deleted, got %+v", outcome)
	}
}

func TestAwaitConvergenceTransportCarriesPartialOutcome(t *testing.T) {
	api := newFakeAPI()
	api.describeAppFn = func(in *sagemaker.DescribeAppInput) (*sagemaker.DescribeAppOutput, error) {
		if aws.ToString(in.AppName) == "a" {
			return nil, notFoundErr()
		}
		return nil, errors.New("connection reset")
	}

	poller := NewPoller(NewDirectory(api, "d-test", 0, testLogger()), testPollOptions(), testLogger())
	children := []ChildResource{
		{ChildRef: ChildRef{Name: "a", Type: "JupyterServer"}, Status: ChildStatusDeleting},
		{ChildRef: ChildRef{Name: "b", Type: "KernelGateway"}, Status: ChildStatusDeleting},
		{ChildRef: ChildRef{Name: "c", Type: "KernelGateway"}, Status: ChildStatusDeleting},
	}

	outcome, err := poller.AwaitConvergence(context.Background(), "alice", children)
	if !IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if len(outcome.Deleted) != 1 {
		t.Errorf("partial progress lost: %+v", outcome)
	}
	// The failing app and everything not yet re-queried stay pending.
	if len(outcome.Pending) != 2 {
		t.Errorf("expected 2 pending apps, got %v", outcome.Pending)
	}
}

func TestAwaitConvergenceContextCancel(t *testing.T) {
	script := newStatusScript(map[string]smtypes.AppStatus{"a": smtypes.AppStatusInService})
	api := newFakeAPI()
	api.describeAppFn = script.describe

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	poller := NewPoller(NewDirectory(api, "d-test", 0, testLogger()), PollOptions{Interval: time.Minute, MaxTicks: 10}, testLogger())
	children := []ChildResource{{ChildRef: ChildRef{Name: "a", Type: "JupyterServer"}, Status: ChildStatusInService}}

	outcome, err := poller.AwaitConvergence(ctx, "alice", children)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(outcome.Pending) != 1 {
		t.Errorf("expected the app to stay pending, got %+v", outcome)
	}
}

func TestAwaitParentAbsent(t *testing.T) {
	var mu sync.Mutex
	remaining := 2
	api := newFakeAPI()
	api.describeUserProfileFn = func(*sagemaker.DescribeUserProfileInput) (*sagemaker.DescribeUserProfileOutput, error) {
		mu.Lock()
		defer mu.Unlock()
		if remaining > 0 {
			remaining--
			return profileOutput("alice", "arn:role", nil), nil
		}
		return nil, notFoundErr()
	}

	poller := NewPoller(NewDirectory(api, "d-test", 0, testLogger()), PollOptions{Interval: time.Millisecond, MaxTicks: 10}, testLogger())
	absent, err := poller.AwaitParentAbsent(context.Background(), "alice")
	if err != nil {
		t.Fatalf("AwaitParentAbsent failed: %v", err)
	}
	if !absent {
		t.Error("expected the profile to become absent")
	}
}

func TestAwaitParentAbsentBoundExhaustion(t *testing.T) {
	api := newFakeAPI()
	api.describeUserProfileFn = func(*sagemaker.DescribeUserProfileInput) (*sagemaker.DescribeUserProfileOutput, error) {
		return profileOutput("alice", "arn:role", nil), nil
	}

	poller := NewPoller(NewDirectory(api, "d-test", 0, testLogger()), testPollOptions(), testLogger())
	absent, err := poller.AwaitParentAbsent(context.Background(), "alice")
	if err != nil {
		t.Fatalf("bound exhaustion must not be an error, got %v", err)
	}
	if absent {
		t.Error("expected the profile to still be present")
	}
	if got := api.count("DescribeUserProfile"); got != 3 {
		t.Errorf("expected exactly MaxTicks describes, got %d", got)
	}
}
