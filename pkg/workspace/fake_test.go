package workspace

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	smtypes "github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
	"github.com/rs/zerolog"
)

// fakeAPI is a scripted ControlPlaneAPI. Each method counts its calls and
// delegates to the corresponding function field; unset fields return empty
// outputs. Safe for concurrent use.
type fakeAPI struct {
	mu    sync.Mutex
	calls map[string]int

	listAppsFn            func(*sagemaker.ListAppsInput) (*sagemaker.ListAppsOutput, error)
	describeAppFn         func(*sagemaker.DescribeAppInput) (*sagemaker.DescribeAppOutput, error)
	deleteAppFn           func(*sagemaker.DeleteAppInput) (*sagemaker.DeleteAppOutput, error)
	listUserProfilesFn    func(*sagemaker.ListUserProfilesInput) (*sagemaker.ListUserProfilesOutput, error)
	describeUserProfileFn func(*sagemaker.DescribeUserProfileInput) (*sagemaker.DescribeUserProfileOutput, error)
	createUserProfileFn   func(*sagemaker.CreateUserProfileInput) (*sagemaker.CreateUserProfileOutput, error)
	deleteUserProfileFn   func(*sagemaker.DeleteUserProfileInput) (*sagemaker.DeleteUserProfileOutput, error)
	listDomainsFn         func(*sagemaker.ListDomainsInput) (*sagemaker.ListDomainsOutput, error)
	createDomainFn        func(*sagemaker.CreateDomainInput) (*sagemaker.CreateDomainOutput, error)
	deleteDomainFn        func(*sagemaker.DeleteDomainInput) (*sagemaker.DeleteDomainOutput, error)

	describeImageFn        func(*sagemaker.DescribeImageInput) (*sagemaker.DescribeImageOutput, error)
	describeImageVersionFn func(*sagemaker.DescribeImageVersionInput) (*sagemaker.DescribeImageVersionOutput, error)
	createImageVersionFn   func(*sagemaker.CreateImageVersionInput) (*sagemaker.CreateImageVersionOutput, error)
	deleteImageFn          func(*sagemaker.DeleteImageInput) (*sagemaker.DeleteImageOutput, error)
	deleteImageVersionFn   func(*sagemaker.DeleteImageVersionInput) (*sagemaker.DeleteImageVersionOutput, error)
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{calls: make(map[string]int)}
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) ListApps(_ context.Context, params *sagemaker.ListAppsInput, _ ...func(*sagemaker.Options)) (*sagemaker.ListAppsOutput, error) {
	f.record("ListApps")
	if f.listAppsFn != nil {
		return f.listAppsFn(params)
	}
	return &sagemaker.ListAppsOutput{}, nil
}

func (f *fakeAPI) DescribeApp(_ context.Context, params *sagemaker.DescribeAppInput, _ ...func(*sagemaker.Options)) (*sagemaker.DescribeAppOutput, error) {
	f.record("DescribeApp")
	if f.describeAppFn != nil {
		return f.describeAppFn(params)
	}
	return &sagemaker.DescribeAppOutput{}, nil
}

func (f *fakeAPI) DeleteApp(_ context.Context, params *sagemaker.DeleteAppInput, _ ...func(*sagemaker.Options)) (*sagemaker.DeleteAppOutput, error) {
	f.record("DeleteApp")
	if f.deleteAppFn != nil {
		return f.deleteAppFn(params)
	}
	return &sagemaker.DeleteAppOutput{}, nil
}

func (f *fakeAPI) ListUserProfiles(_ context.Context, params *sagemaker.ListUserProfilesInput, _ ...func(*sagemaker.Options)) (*sagemaker.ListUserProfilesOutput, error) {
	f.record("ListUserProfiles")
	if f.listUserProfilesFn != nil {
		return f.listUserProfilesFn(params)
	}
	return &sagemaker.ListUserProfilesOutput{}, nil
}

func (f *fakeAPI) DescribeUserProfile(_ context.Context, params *sagemaker.DescribeUserProfileInput, _ ...func(*sagemaker.Options)) (*sagemaker.DescribeUserProfileOutput, error) {
	f.record("DescribeUserProfile")
	if f.describeUserProfileFn != nil {
		return f.describeUserProfileFn(params)
	}
	return &sagemaker.DescribeUserProfileOutput{}, nil
}

func (f *fakeAPI) CreateUserProfile(_ context.Context, params *sagemaker.CreateUserProfileInput, _ ...func(*sagemaker.Options)) (*sagemaker.CreateUserProfileOutput, error) {
	f.record("CreateUserProfile")
	if f.createUserProfileFn != nil {
		return f.createUserProfileFn(params)
	}
	return &sagemaker.CreateUserProfileOutput{}, nil
}

func (f *fakeAPI) DeleteUserProfile(_ context.Context, params *sagemaker.DeleteUserProfileInput, _ ...func(*sagemaker.Options)) (*sagemaker.DeleteUserProfileOutput, error) {
	f.record("DeleteUserProfile")
	if f.deleteUserProfileFn != nil {
		return f.deleteUserProfileFn(params)
	}
	return &sagemaker.DeleteUserProfileOutput{}, nil
}

func (f *fakeAPI) ListDomains(_ context.Context, params *sagemaker.ListDomainsInput, _ ...func(*sagemaker.Options)) (*sagemaker.ListDomainsOutput, error) {
	f.record("ListDomains")
	if f.listDomainsFn != nil {
		return f.listDomainsFn(params)
	}
	return &sagemaker.ListDomainsOutput{}, nil
}

func (f *fakeAPI) CreateDomain(_ context.Context, params *sagemaker.CreateDomainInput, _ ...func(*sagemaker.Options)) (*sagemaker.CreateDomainOutput, error) {
	f.record("CreateDomain")
	if f.createDomainFn != nil {
		return f.createDomainFn(params)
	}
	return &sagemaker.CreateDomainOutput{}, nil
}

func (f *fakeAPI) DeleteDomain(_ context.Context, params *sagemaker.DeleteDomainInput, _ ...func(*sagemaker.Options)) (*sagemaker.DeleteDomainOutput, error) {
	f.record("DeleteDomain")
	if f.deleteDomainFn != nil {
		return f.deleteDomainFn(params)
	}
	return &sagemaker.DeleteDomainOutput{}, nil
}

func (f *fakeAPI) DescribeImage(_ context.Context, params *sagemaker.DescribeImageInput, _ ...func(*sagemaker.Options)) (*sagemaker.DescribeImageOutput, error) {
	f.record("DescribeImage")
	if f.describeImageFn != nil {
		return f.describeImageFn(params)
	}
	return &sagemaker.DescribeImageOutput{}, nil
}

func (f *fakeAPI) DescribeImageVersion(_ context.Context, params *sagemaker.DescribeImageVersionInput, _ ...func(*sagemaker.Options)) (*sagemaker.DescribeImageVersionOutput, error) {
	f.record("DescribeImageVersion")
	if f.describeImageVersionFn != nil {
		return f.describeImageVersionFn(params)
	}
	return &sagemaker.DescribeImageVersionOutput{}, nil
}

func (f *fakeAPI) CreateImageVersion(_ context.Context, params *sagemaker.CreateImageVersionInput, _ ...func(*sagemaker.Options)) (*sagemaker.CreateImageVersionOutput, error) {
	f.record("CreateImageVersion")
	if f.createImageVersionFn != nil {
		return f.createImageVersionFn(params)
	}
	return &sagemaker.CreateImageVersionOutput{}, nil
}

func (f *fakeAPI) DeleteImage(_ context.Context, params *sagemaker.DeleteImageInput, _ ...func(*sagemaker.Options)) (*sagemaker.DeleteImageOutput, error) {
	f.record("DeleteImage")
	if f.deleteImageFn != nil {
		return f.deleteImageFn(params)
	}
	return &sagemaker.DeleteImageOutput{}, nil
}

func (f *fakeAPI) DeleteImageVersion(_ context.Context, params *sagemaker.DeleteImageVersionInput, _ ...func(*sagemaker.Options)) (*sagemaker.DeleteImageVersionOutput, error) {
	f.record("DeleteImageVersion")
	if f.deleteImageVersionFn != nil {
		return f.deleteImageVersionFn(params)
	}
	return &sagemaker.DeleteImageVersionOutput{}, nil
}

// fakeRecorder captures audit calls.
type fakeRecorder struct {
	mu       sync.Mutex
	started  []string
	events   []string
	finished map[string]string
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{finished: make(map[string]string)}
}

func (r *fakeRecorder) RunStarted(_ context.Context, operation, target string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := operation + ":" + target
	r.started = append(r.started, id)
	return id, nil
}

func (r *fakeRecorder) RunEvent(_ context.Context, runID, _, _, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, runID+": "+message)
	return nil
}

func (r *fakeRecorder) RunFinished(_ context.Context, runID, status string, _ error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished[runID] = status
	return nil
}

func notFoundErr() error {
	return &smtypes.ResourceNotFound{Message: aws.String("does not exist")}
}

func inUseErr() error {
	return &smtypes.ResourceInUse{Message: aws.String("resource in use")}
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// profileOutput builds a DescribeUserProfile response with the modeled settings.
func profileOutput(name, role string, groups []string) *sagemaker.DescribeUserProfileOutput {
	return &sagemaker.DescribeUserProfileOutput{
		DomainId:        aws.String("d-test"),
		UserProfileName: aws.String(name),
		Status:          smtypes.UserProfileStatusInService,
		UserSettings: &smtypes.UserSettings{
			ExecutionRole:  aws.String(role),
			SecurityGroups: groups,
		},
	}
}
