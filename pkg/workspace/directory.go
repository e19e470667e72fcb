package workspace

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	smtypes "github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
	"github.com/rs/zerolog"
)

// defaultPageSize bounds one list request, matching the control plane cap.
const defaultPageSize = 100

// Directory provides read-only enumeration of profiles, apps and domains.
// All methods are side-effect free.
type Directory struct {
	api      ControlPlaneAPI
	domainID string
	pageSize int32
	log      zerolog.Logger
}

// NewDirectory creates a directory scoped to one Studio domain. pageSize <= 0
// selects the default page size.
func NewDirectory(api ControlPlaneAPI, domainID string, pageSize int32, log zerolog.Logger) *Directory {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Directory{
		api:      api,
		domainID: domainID,
		pageSize: pageSize,
		log:      log.With().Str("component", "directory").Logger(),
	}
}

// DomainID returns the Studio domain this directory is scoped to.
func (d *Directory) DomainID() string {
	return d.domainID
}

// ListChildren enumerates the apps owned by a profile, newest first,
// following pagination until exhausted.
func (d *Directory) ListChildren(ctx context.Context, parent string) ([]ChildResource, error) {
	var (
		children []ChildResource
		token    *string
	)
	for {
		out, err := d.api.ListApps(ctx, &sagemaker.ListAppsInput{
			DomainIdEquals:        aws.String(d.domainID),
			UserProfileNameEquals: aws.String(parent),
			SortBy:                smtypes.AppSortKeyCreationTime,
			SortOrder:             smtypes.SortOrderDescending,
			MaxResults:            aws.Int32(d.pageSize),
			NextToken:             token,
		})
		if err != nil {
			return nil, classify("list_apps", parent, err)
		}
		for _, app := range out.Apps {
			children = append(children, ChildResource{
				ChildRef: ChildRef{
					Name: aws.ToString(app.AppName),
					Type: string(app.AppType),
				},
				Status: childStatusFromAPI(app.Status),
			})
		}
		if out.NextToken == nil || aws.ToString(out.NextToken) == "" {
			break
		}
		token = out.NextToken
	}
	return children, nil
}

// GetChildStatus re-queries the status of one app. An app that no longer
// exists is reported as Deleted, never as an error: once a delete has been
// initiated the directory entry may vanish before the status turns Deleted.
func (d *Directory) GetChildStatus(ctx context.Context, parent string, ref ChildRef) (ChildStatus, error) {
	out, err := d.api.DescribeApp(ctx, &sagemaker.DescribeAppInput{
		DomainId:        aws.String(d.domainID),
		UserProfileName: aws.String(parent),
		AppName:         aws.String(ref.Name),
		AppType:         smtypes.AppType(ref.Type),
	})
	if err != nil {
		cerr := classify("describe_app", ref.String(), err)
		if IsAbsent(cerr) {
			d.log.Debug().Str("app", ref.String()).Msg("app gone from directory, treating as deleted")
			return ChildStatusDeleted, nil
		}
		return "", cerr
	}
	return childStatusFromAPI(out.Status), nil
}

// ListParents enumerates the profiles in the domain matching the filter.
// The entries carry identity and status only; use GetParent for the full
// settings needed to recreate a profile.
func (d *Directory) ListParents(ctx context.Context, filter ParentFilter) ([]ParentResource, error) {
	input := &sagemaker.ListUserProfilesInput{
		DomainIdEquals: aws.String(d.domainID),
		MaxResults:     aws.Int32(d.pageSize),
	}
	if filter.NameContains != "" {
		input.UserProfileNameContains = aws.String(filter.NameContains)
	}

	var parents []ParentResource
	for {
		out, err := d.api.ListUserProfiles(ctx, input)
		if err != nil {
			return nil, classify("list_user_profiles", d.domainID, err)
		}
		for _, p := range out.UserProfiles {
			parents = append(parents, ParentResource{
				DomainID: aws.ToString(p.DomainId),
				Name:     aws.ToString(p.UserProfileName),
				Status:   string(p.Status),
			})
		}
		if out.NextToken == nil || aws.ToString(out.NextToken) == "" {
			break
		}
		input.NextToken = out.NextToken
	}
	return parents, nil
}

// GetParent describes one profile including the settings snapshot used for
// recreation. Returns an absent-class error when the profile does not exist.
func (d *Directory) GetParent(ctx context.Context, name string) (ParentResource, error) {
	out, err := d.api.DescribeUserProfile(ctx, &sagemaker.DescribeUserProfileInput{
		DomainId:        aws.String(d.domainID),
		UserProfileName: aws.String(name),
	})
	if err != nil {
		return ParentResource{}, classify("describe_user_profile", name, err)
	}

	parent := ParentResource{
		DomainID: aws.ToString(out.DomainId),
		Name:     aws.ToString(out.UserProfileName),
		Status:   string(out.Status),
	}
	if out.UserSettings != nil {
		parent.ExecutionRole = aws.ToString(out.UserSettings.ExecutionRole)
		parent.SecurityGroups = out.UserSettings.SecurityGroups
	}
	return parent, nil
}

// ListDomains enumerates the Studio domains visible to the caller.
func (d *Directory) ListDomains(ctx context.Context) ([]Domain, error) {
	var (
		domains []Domain
		token   *string
	)
	for {
		out, err := d.api.ListDomains(ctx, &sagemaker.ListDomainsInput{NextToken: token})
		if err != nil {
			return nil, classify("list_domains", "", err)
		}
		for _, dom := range out.Domains {
			domains = append(domains, Domain{
				ID:     aws.ToString(dom.DomainId),
				Name:   aws.ToString(dom.DomainName),
				Status: string(dom.Status),
				URL:    aws.ToString(dom.Url),
			})
		}
		if out.NextToken == nil || aws.ToString(out.NextToken) == "" {
			break
		}
		token = out.NextToken
	}
	return domains, nil
}
