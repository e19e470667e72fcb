package workspace

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/rs/zerolog"
)

// Image describes a custom Studio image.
type Image struct {
	Name   string `json:"name"`
	ARN    string `json:"arn"`
	Status string `json:"status"`
}

// ImageVersion describes one version of a custom Studio image.
type ImageVersion struct {
	ImageName string `json:"image_name"`
	ARN       string `json:"arn"`
	Version   int32  `json:"version"`
	Status    string `json:"status"`
}

// Images provides single-request passthroughs for custom Studio images.
// Absence is reported through the boolean return, never as an error.
type Images struct {
	api ControlPlaneAPI
	log zerolog.Logger
}

// NewImages creates an image passthrough client.
func NewImages(api ControlPlaneAPI, log zerolog.Logger) *Images {
	return &Images{api: api, log: log.With().Str("component", "images").Logger()}
}

// Describe looks up one image. The boolean is false when the image does not exist.
func (i *Images) Describe(ctx context.Context, name string) (Image, bool, error) {
	out, err := i.api.DescribeImage(ctx, &sagemaker.DescribeImageInput{ImageName: aws.String(name)})
	if err != nil {
		cerr := classify("describe_image", name, err)
		if IsAbsent(cerr) {
			return Image{}, false, nil
		}
		return Image{}, false, cerr
	}
	return Image{
		Name:   aws.ToString(out.ImageName),
		ARN:    aws.ToString(out.ImageArn),
		Status: string(out.ImageStatus),
	}, true, nil
}

// DescribeVersion looks up the latest version of an image. The boolean is
// false when no version exists.
func (i *Images) DescribeVersion(ctx context.Context, name string) (ImageVersion, bool, error) {
	out, err := i.api.DescribeImageVersion(ctx, &sagemaker.DescribeImageVersionInput{ImageName: aws.String(name)})
	if err != nil {
		cerr := classify("describe_image_version", name, err)
		if IsAbsent(cerr) {
			return ImageVersion{}, false, nil
		}
		return ImageVersion{}, false, cerr
	}
	return ImageVersion{
		ImageName: name,
		ARN:       aws.ToString(out.ImageVersionArn),
		Version:   aws.ToInt32(out.Version),
		Status:    string(out.ImageVersionStatus),
	}, true, nil
}

// CreateVersion registers a new version of an image from a container image URI.
func (i *Images) CreateVersion(ctx context.Context, name, baseImageURI string) (string, error) {
	out, err := i.api.CreateImageVersion(ctx, &sagemaker.CreateImageVersionInput{
		ImageName: aws.String(name),
		BaseImage: aws.String(baseImageURI),
	})
	if err != nil {
		return "", classify("create_image_version", name, err)
	}
	i.log.Info().Str("image", name).Str("base", baseImageURI).Msg("image version created")
	return aws.ToString(out.ImageVersionArn), nil
}

// Delete removes an image. Absence is success.
func (i *Images) Delete(ctx context.Context, name string) error {
	_, err := i.api.DeleteImage(ctx, &sagemaker.DeleteImageInput{ImageName: aws.String(name)})
	if err != nil {
		cerr := classify("delete_image", name, err)
		if IsAbsent(cerr) {
			i.log.Info().Str("image", name).Msg("image already absent")
			return nil
		}
		return cerr
	}
	return nil
}

// DeleteVersion removes one version of an image. Absence is success.
func (i *Images) DeleteVersion(ctx context.Context, name string, version int32) error {
	_, err := i.api.DeleteImageVersion(ctx, &sagemaker.DeleteImageVersionInput{
		ImageName: aws.String(name),
		Version:   aws.Int32(version),
	})
	if err != nil {
		cerr := classify("delete_image_version", name, err)
		if IsAbsent(cerr) {
			return nil
		}
		return cerr
	}
	return nil
}
