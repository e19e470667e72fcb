package workspace

import (
	"fmt"

	smtypes "github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
)

// ChildStatus represents the lifecycle status of a Studio app.
type ChildStatus string

const (
	// ChildStatusCreating indicates the app is being provisioned.
	ChildStatusCreating ChildStatus = "Creating"

	// ChildStatusInService indicates the app is running.
	ChildStatusInService ChildStatus = "InService"

	// ChildStatusDeleting indicates a delete has been initiated but not finished.
	ChildStatusDeleting ChildStatus = "Deleting"

	// ChildStatusDeleted indicates the app is gone. Terminal.
	ChildStatusDeleted ChildStatus = "Deleted"

	// ChildStatusFailed indicates the app ended in an error state. Terminal.
	ChildStatusFailed ChildStatus = "Failed"
)

// IsTerminal returns true if the status is one the app will not leave without
// a new create request. Once terminal, an app is never re-queried.
func (s ChildStatus) IsTerminal() bool {
	return s == ChildStatusDeleted || s == ChildStatusFailed
}

// Validate checks if the child status is valid.
func (s ChildStatus) Validate() error {
	switch s {
	case ChildStatusCreating, ChildStatusInService, ChildStatusDeleting,
		ChildStatusDeleted, ChildStatusFailed:
		return nil
	default:
		return fmt.Errorf("invalid child status: %s", s)
	}
}

// childStatusFromAPI maps the control plane's app status to a ChildStatus.
// The control plane reports freshly requested apps as Pending.
func childStatusFromAPI(s smtypes.AppStatus) ChildStatus {
	switch s {
	case smtypes.AppStatusPending:
		return ChildStatusCreating
	case smtypes.AppStatusInService:
		return ChildStatusInService
	case smtypes.AppStatusDeleting:
		return ChildStatusDeleting
	case smtypes.AppStatusDeleted:
		return ChildStatusDeleted
	case smtypes.AppStatusFailed:
		return ChildStatusFailed
	default:
		return ChildStatus(s)
	}
}

// ChildRef identifies an app within exactly one user profile.
type ChildRef struct {
	// Name is the app name.
	Name string `json:"name"`

	// Type is the app type (JupyterServer, KernelGateway, ...).
	Type string `json:"type"`
}

// String returns the ref in type/name form for logs.
func (r ChildRef) String() string {
	return r.Type + "/" + r.Name
}

// ChildResource is an app together with its last observed status.
type ChildResource struct {
	ChildRef

	// Status is the status reported by the control plane at enumeration time.
	Status ChildStatus `json:"status"`
}

// ParentResource is a user profile together with the settings needed to
// recreate an equivalent profile.
type ParentResource struct {
	// DomainID is the Studio domain owning the profile.
	DomainID string `json:"domain_id"`

	// Name is the profile name, unique within the domain.
	Name string `json:"name"`

	// Status is the profile status as reported by the control plane.
	Status string `json:"status"`

	// ExecutionRole is the IAM role assumed by apps in this profile.
	ExecutionRole string `json:"execution_role,omitempty"`

	// SecurityGroups are the security groups attached to the profile.
	SecurityGroups []string `json:"security_groups,omitempty"`
}

// Spec returns the creation spec that recreates an equivalent profile.
func (p ParentResource) Spec() ParentSpec {
	return ParentSpec{
		Name:           p.Name,
		ExecutionRole:  p.ExecutionRole,
		SecurityGroups: p.SecurityGroups,
	}
}

// ParentSpec is the configuration for creating a user profile.
type ParentSpec struct {
	// Name is the profile name. Required.
	Name string `json:"name"`

	// ExecutionRole is the IAM role ARN for apps in the profile. Required.
	ExecutionRole string `json:"execution_role"`

	// SecurityGroups are optional security group IDs.
	SecurityGroups []string `json:"security_groups,omitempty"`

	// Tags are optional resource tags.
	Tags map[string]string `json:"tags,omitempty"`
}

// ParentFilter selects user profiles for list and bulk operations.
type ParentFilter struct {
	// NameContains restricts results to profiles whose name contains the
	// given substring. Empty matches all profiles in the domain.
	NameContains string `json:"name_contains,omitempty"`
}

// Domain describes a Studio domain.
type Domain struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
	URL    string `json:"url,omitempty"`
}

// DomainSpec is the configuration for creating a Studio domain.
type DomainSpec struct {
	Name           string            `json:"name"`
	ExecutionRole  string            `json:"execution_role"`
	VpcID          string            `json:"vpc_id"`
	SubnetIDs      []string          `json:"subnet_ids"`
	SecurityGroups []string          `json:"security_groups,omitempty"`
	EfsKmsKeyID    string            `json:"efs_kms_key_id,omitempty"`
	VpcOnly        bool              `json:"vpc_only,omitempty"`
	Tags           map[string]string `json:"tags,omitempty"`
}

// Outcome partitions the apps tracked during one convergence poll. It is
// computed per invocation and never persisted.
type Outcome struct {
	// Deleted are apps that reached Deleted (including apps that vanished
	// from the directory mid-poll).
	Deleted []ChildRef `json:"deleted"`

	// Failed are apps that reached Failed. They do not block the profile
	// delete; they are logged and skipped.
	Failed []ChildRef `json:"failed"`

	// Pending are apps still non-terminal when the polling bound was hit.
	Pending []ChildRef `json:"pending"`
}

// Converged returns true when no tracked app is left non-terminal.
func (o *Outcome) Converged() bool {
	return len(o.Pending) == 0
}

// Total returns the number of apps tracked by this outcome.
func (o *Outcome) Total() int {
	return len(o.Deleted) + len(o.Failed) + len(o.Pending)
}

// Phase is the teardown state machine position for one profile.
type Phase string

const (
	// PhaseIdle is the initial state before any remote call.
	PhaseIdle Phase = "idle"

	// PhaseChildrenEnumerated means the profile's apps have been listed.
	PhaseChildrenEnumerated Phase = "children_enumerated"

	// PhaseChildDeletesRequested means deletes were issued for every app not
	// already terminal or mid-deletion.
	PhaseChildDeletesRequested Phase = "child_deletes_requested"

	// PhaseConverging means the poller is tracking app status.
	PhaseConverging Phase = "converging"

	// PhaseParentDeletable means every app reached a terminal status.
	PhaseParentDeletable Phase = "parent_deletable"

	// PhaseParentDeleted means the profile delete was issued. Terminal.
	PhaseParentDeleted Phase = "parent_deleted"

	// PhaseBlocked means the polling bound was exhausted with apps still
	// non-terminal; the profile delete was refused. Terminal, retryable by
	// invoking teardown again later.
	PhaseBlocked Phase = "blocked"
)

// TeardownResult reports one profile teardown.
type TeardownResult struct {
	// Parent is the profile name.
	Parent string `json:"parent"`

	// Phase is the state the teardown ended in: PhaseParentDeleted on
	// success, PhaseBlocked when convergence timed out.
	Phase Phase `json:"phase"`

	// Outcome partitions the tracked apps. Nil when the profile was already
	// absent and the teardown short-circuited.
	Outcome *Outcome `json:"outcome,omitempty"`

	// RequestFailures records apps whose delete request was rejected. Those
	// apps remain tracked by the poller; they may still converge.
	RequestFailures map[ChildRef]error `json:"-"`
}

// Blocked returns true if the profile delete was refused.
func (r *TeardownResult) Blocked() bool {
	return r.Phase == PhaseBlocked
}

// ReplaceStatus is the per-profile result of a bulk replace.
type ReplaceStatus string

const (
	// ReplaceStatusReplaced means teardown and recreate both completed, or
	// an equivalent healthy profile already existed.
	ReplaceStatusReplaced ReplaceStatus = "replaced"

	// ReplaceStatusBlocked means teardown could not converge; the profile
	// was not deleted and nothing was recreated.
	ReplaceStatusBlocked ReplaceStatus = "blocked"

	// ReplaceStatusCreateRejected means teardown succeeded but the control
	// plane refused the recreate. Reported, never rolled back or retried.
	ReplaceStatusCreateRejected ReplaceStatus = "create_rejected"

	// ReplaceStatusFailed means a transport failure interrupted this
	// profile's replace. Other profiles in the batch are unaffected.
	ReplaceStatusFailed ReplaceStatus = "failed"
)

// ReplaceResult reports one profile replace.
type ReplaceResult struct {
	// Parent is the profile name.
	Parent string `json:"parent"`

	// Status is the final replace status.
	Status ReplaceStatus `json:"status"`

	// Outcome is the teardown outcome, when teardown ran.
	Outcome *Outcome `json:"outcome,omitempty"`

	// Err is the error behind CreateRejected or Failed, if any.
	Err error `json:"-"`
}

// ReplaceReport maps profile names to their replace results.
type ReplaceReport map[string]ReplaceResult
