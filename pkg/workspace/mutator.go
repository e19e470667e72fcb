package workspace

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	smtypes "github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
	"github.com/rs/zerolog"
)

// Mutator issues create and delete requests against the control plane. All
// deletes are idempotent from the caller's perspective: a request against a
// resource that is already absent or already mid-deletion succeeds. The
// mutator retains no local state.
type Mutator struct {
	api      ControlPlaneAPI
	domainID string
	log      zerolog.Logger
	metrics  Metrics
}

// NewMutator creates a mutator scoped to one Studio domain.
func NewMutator(api ControlPlaneAPI, domainID string, log zerolog.Logger) *Mutator {
	return &Mutator{
		api:      api,
		domainID: domainID,
		log:      log.With().Str("component", "mutator").Logger(),
	}
}

// WithMetrics attaches a metrics sink. Nil disables collection.
func (m *Mutator) WithMetrics(metrics Metrics) *Mutator {
	m.metrics = metrics
	return m
}

// DeleteChild requests deletion of one app. Absence is success. Rejections
// and transport failures propagate classified.
func (m *Mutator) DeleteChild(ctx context.Context, parent string, ref ChildRef) error {
	_, err := m.api.DeleteApp(ctx, &sagemaker.DeleteAppInput{
		DomainId:        aws.String(m.domainID),
		UserProfileName: aws.String(parent),
		AppName:         aws.String(ref.Name),
		AppType:         smtypes.AppType(ref.Type),
	})
	return m.deleteResult("delete_app", ref.String(), err)
}

// DeleteParent requests deletion of one profile. The control plane only
// initiates teardown; callers must confirm absence separately. Absence is
// success.
func (m *Mutator) DeleteParent(ctx context.Context, name string) error {
	_, err := m.api.DeleteUserProfile(ctx, &sagemaker.DeleteUserProfileInput{
		DomainId:        aws.String(m.domainID),
		UserProfileName: aws.String(name),
	})
	return m.deleteResult("delete_user_profile", name, err)
}

// DeleteDomain requests deletion of the domain itself, discarding its home
// EFS file system. Absence is success.
func (m *Mutator) DeleteDomain(ctx context.Context) error {
	_, err := m.api.DeleteDomain(ctx, &sagemaker.DeleteDomainInput{
		DomainId: aws.String(m.domainID),
		RetentionPolicy: &smtypes.RetentionPolicy{
			HomeEfsFileSystem: smtypes.RetentionTypeDelete,
		},
	})
	return m.deleteResult("delete_domain", m.domainID, err)
}

// CreateParent requests creation of a profile from a spec and returns the new
// profile's ARN. Control-plane refusals surface as rejected-class errors.
func (m *Mutator) CreateParent(ctx context.Context, spec ParentSpec) (string, error) {
	input := &sagemaker.CreateUserProfileInput{
		DomainId:        aws.String(m.domainID),
		UserProfileName: aws.String(spec.Name),
		UserSettings: &smtypes.UserSettings{
			ExecutionRole:  aws.String(spec.ExecutionRole),
			SecurityGroups: spec.SecurityGroups,
		},
		Tags: tagsFromMap(spec.Tags),
	}

	out, err := m.api.CreateUserProfile(ctx, input)
	if err != nil {
		cerr := classify("create_user_profile", spec.Name, err)
		m.countError(cerr)
		return "", cerr
	}
	m.log.Info().Str("profile", spec.Name).Str("role", spec.ExecutionRole).Msg("profile created")
	return aws.ToString(out.UserProfileArn), nil
}

// CreateDomain requests creation of a Studio domain and returns its ARN.
func (m *Mutator) CreateDomain(ctx context.Context, spec DomainSpec) (string, error) {
	access := smtypes.AppNetworkAccessTypePublicInternetOnly
	if spec.VpcOnly {
		access = smtypes.AppNetworkAccessTypeVpcOnly
	}
	input := &sagemaker.CreateDomainInput{
		DomainName: aws.String(spec.Name),
		AuthMode:   smtypes.AuthModeIam,
		DefaultUserSettings: &smtypes.UserSettings{
			ExecutionRole:  aws.String(spec.ExecutionRole),
			SecurityGroups: spec.SecurityGroups,
		},
		VpcId:                aws.String(spec.VpcID),
		SubnetIds:            spec.SubnetIDs,
		AppNetworkAccessType: access,
		Tags:                 tagsFromMap(spec.Tags),
	}
	if spec.EfsKmsKeyID != "" {
		input.KmsKeyId = aws.String(spec.EfsKmsKeyID)
	}

	out, err := m.api.CreateDomain(ctx, input)
	if err != nil {
		cerr := classify("create_domain", spec.Name, err)
		m.countError(cerr)
		return "", cerr
	}
	m.log.Info().Str("domain", spec.Name).Msg("domain created")
	return aws.ToString(out.DomainArn), nil
}

// deleteResult maps a raw delete error to the idempotent contract: absence is
// success, everything else propagates classified.
func (m *Mutator) deleteResult(operation, resource string, err error) error {
	if err == nil {
		return nil
	}
	cerr := classify(operation, resource, err)
	if IsAbsent(cerr) {
		m.log.Info().Str("resource", resource).Str("op", operation).Msg("already absent")
		return nil
	}
	m.countError(cerr)
	return cerr
}

func (m *Mutator) countError(err *OpError) {
	if m.metrics != nil {
		m.metrics.RecordAPIError(string(err.Class))
	}
}

func tagsFromMap(tags map[string]string) []smtypes.Tag {
	if len(tags) == 0 {
		return nil
	}
	out := make([]smtypes.Tag, 0, len(tags))
	for k, v := range tags {
		out = append(out, smtypes.Tag{Key: aws.String(k), Value: aws.String(v)})
	}
	return out
}
