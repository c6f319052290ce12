package store

import (
	"context"
	"errors"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type S3Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	Prefix          string
}

// NewDriverS3 returns a driver keeping objects in an S3 bucket. A custom
// Endpoint switches to path-style addressing for S3-compatible servers.
func NewDriverS3(s3Config S3Config) (Driver, error) {
	if s3Config.Bucket == "" {
		return nil, errors.New("s3 driver requires a bucket")
	}

	return &driverS3{
		client: s3.New(
			s3.Options{
				BaseEndpoint: func() *string {
					if s3Config.Endpoint != "" {
						return aws.String(s3Config.Endpoint)
					}

					return nil
				}(),
				UsePathStyle: s3Config.Endpoint != "",
				Region: func() string {
					if s3Config.Endpoint != "" && s3Config.Region == "" {
						return "auto"
					}

					return s3Config.Region
				}(),
				Credentials: aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
					return aws.Credentials{
						AccessKeyID:     s3Config.AccessKeyID,
						SecretAccessKey: s3Config.AccessKeySecret,
					}, nil
				}),
			},
		),
		bucket: s3Config.Bucket,
		prefix: s3Config.Prefix,
	}, nil
}

type driverS3 struct {
	client *s3.Client
	bucket string
	prefix string
}

func (driver *driverS3) key(objectPath string) *string {
	return aws.String(driver.prefix + objectPath)
}

func (driver *driverS3) Get(ctx context.Context, objectPath string) (io.ReadCloser, error) {
	result, err := driver.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(driver.bucket),
		Key:    driver.key(objectPath),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, notFound(objectPath)
		}

		return nil, err
	}

	return result.Body, nil
}

func (driver *driverS3) Put(
	ctx context.Context,
	objectPath string,
	payload io.Reader,
) error {
	if _, err := driver.client.PutObject(
		ctx,
		&s3.PutObjectInput{
			Bucket: aws.String(driver.bucket),
			Key:    driver.key(objectPath),
			Body:   payload,
		},
	); err != nil {
		return err
	}

	return nil
}

func (driver *driverS3) Delete(ctx context.Context, objectPath string) error {
	if _, err := driver.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(driver.bucket),
		Key:    driver.key(objectPath),
	}); err != nil {
		return err
	}

	return nil
}

func (driver *driverS3) IsReady(ctx context.Context) error {
	if _, err := driver.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(driver.bucket),
	}); err != nil {
		return err
	}

	return nil
}

func (driver *driverS3) Exists(ctx context.Context, objectPath string) (bool, error) {
	if _, err := driver.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(driver.bucket),
		Key:    driver.key(objectPath),
	}); err != nil {
		var oe *types.NotFound
		if errors.As(err, &oe) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}
