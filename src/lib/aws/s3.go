package aws

import (
	"cinco/src/config"
	"cinco/src/lib"
	"context"
	"log"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func GetS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := lib.AWSGetConfig(ctx)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(*cfg), nil
}

// S3AssetStore uploads generated QR images to the assets bucket.
type S3AssetStore struct {
	bucket string
	client *s3.Client
}

func NewS3AssetStore(ctx context.Context) (*S3AssetStore, error) {
	client, err := GetS3Client(ctx)
	if err != nil {
		return nil, err
	}
	return &S3AssetStore{bucket: config.AssetsBucket(), client: client}, nil
}

func (s *S3AssetStore) Name() string { return "S3" }

func (s *S3AssetStore) PutAsset(ctx context.Context, key, path, contentType string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		log.Printf("Could not open file to upload: %s\n", err.Error())
		return "", err
	}
	defer file.Close()
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		log.Printf("Could not put object to S3 bucket: %s\n", err.Error())
		return "", err
	}
	err = s3.NewObjectExistsWaiter(s.client).Wait(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, time.Minute)
	if err != nil {
		log.Printf("Failed attempt to wait for object %s to exist: %s\n", key, err.Error())
		return "", err
	}
	log.Printf("Added object '%s' to bucket '%s'", key, s.bucket)
	return key, nil
}

func (s *S3AssetStore) DeleteAsset(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}
