package workspace

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
)

// ControlPlaneAPI is the subset of the SageMaker API the package depends on.
// *sagemaker.Client satisfies it; tests substitute a scripted fake. The client
// is constructed once per process and passed in explicitly.
type ControlPlaneAPI interface {
	ListApps(ctx context.Context, params *sagemaker.ListAppsInput, optFns ...func(*sagemaker.Options)) (*sagemaker.ListAppsOutput, error)
	DescribeApp(ctx context.Context, params *sagemaker.DescribeAppInput, optFns ...func(*sagemaker.Options)) (*sagemaker.DescribeAppOutput, error)
	DeleteApp(ctx context.Context, params *sagemaker.DeleteAppInput, optFns ...func(*sagemaker.Options)) (*sagemaker.DeleteAppOutput, error)

	ListUserProfiles(ctx context.Context, params *sagemaker.ListUserProfilesInput, optFns ...func(*sagemaker.Options)) (*sagemaker.ListUserProfilesOutput, error)
	DescribeUserProfile(ctx context.Context, params *sagemaker.DescribeUserProfileInput, optFns ...func(*sagemaker.Options)) (*sagemaker.DescribeUserProfileOutput, error)
	CreateUserProfile(ctx context.Context, params *sagemaker.CreateUserProfileInput, optFns ...func(*sagemaker.Options)) (*sagemaker.CreateUserProfileOutput, error)
	DeleteUserProfile(ctx context.Context, params *sagemaker.DeleteUserProfileInput, optFns ...func(*sagemaker.Options)) (*sagemaker.DeleteUserProfileOutput, error)

	ListDomains(ctx context.Context, params *sagemaker.ListDomainsInput, optFns ...func(*sagemaker.Options)) (*sagemaker.ListDomainsOutput, error)
	CreateDomain(ctx context.Context, params *sagemaker.CreateDomainInput, optFns ...func(*sagemaker.Options)) (*sagemaker.CreateDomainOutput, error)
	DeleteDomain(ctx context.Context, params *sagemaker.DeleteDomainInput, optFns ...func(*sagemaker.Options)) (*sagemaker.DeleteDomainOutput, error)

	DescribeImage(ctx context.Context, params *sagemaker.DescribeImageInput, optFns ...func(*sagemaker.Options)) (*sagemaker.DescribeImageOutput, error)
	DescribeImageVersion(ctx context.Context, params *sagemaker.DescribeImageVersionInput, optFns ...func(*sagemaker.Options)) (*sagemaker.DescribeImageVersionOutput, error)
	CreateImageVersion(ctx context.Context, params *sagemaker.CreateImageVersionInput, optFns ...func(*sagemaker.Options)) (*sagemaker.CreateImageVersionOutput, error)
	DeleteImage(ctx context.Context, params *sagemaker.DeleteImageInput, optFns ...func(*sagemaker.Options)) (*sagemaker.DeleteImageOutput, error)
	DeleteImageVersion(ctx context.Context, params *sagemaker.DeleteImageVersionInput, optFns ...func(*sagemaker.Options)) (*sagemaker.DeleteImageVersionOutput, error)
}

// Recorder receives audit events for teardown and replace runs. Implementations
// must tolerate being called concurrently for independent runs.
type Recorder interface {
	// RunStarted opens a run and returns its identifier.
	RunStarted(ctx context.Context, operation, target string) (string, error)

	// RunEvent appends a leveled event to a run.
	RunEvent(ctx context.Context, runID, level, resource, message string) error

	// RunFinished closes a run with a final status and optional error.
	RunFinished(ctx context.Context, runID, status string, runErr error) error
}

// Metrics receives operational counters from the orchestration core. A nil
// Metrics is valid and disables collection.
type Metrics interface {
	// RecordTeardown records a completed teardown with its final phase.
	RecordTeardown(phase string, seconds float64)

	// RecordPollTicks records the number of ticks one convergence poll used.
	RecordPollTicks(n int)

	// RecordReplace records a completed per-profile replace.
	RecordReplace(status string)

	// RecordAPIError records a classified control-plane failure.
	RecordAPIError(class string)
}
