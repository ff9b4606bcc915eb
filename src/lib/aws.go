package lib

import (
	appconfig "cinco/src/config"
	"context"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

var awsConfig *aws.Config

// AWSGetConfig loads the default AWS config. When AWS_IAM_ROLE_ARN is set the
// role is assumed and its temporary credentials are used instead.
func AWSGetConfig(ctx context.Context) (*aws.Config, error) {
	if awsConfig != nil {
		return awsConfig, nil
	}
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Printf("Error loading default config: %s\n", err.Error())
		return nil, err
	}
	iamRole := appconfig.AWSRoleArn()
	if iamRole != "" {
		stsClient := sts.NewFromConfig(cfg)
		output, err := stsClient.AssumeRole(ctx, &sts.AssumeRoleInput{
			RoleArn:         aws.String(iamRole),
			RoleSessionName: aws.String("cinco-registration"),
		})
		if err != nil {
			log.Printf("Error configuring STS client: %s\n", err.Error())
			return nil, err
		}
		creds := output.Credentials
		cfg, err = config.LoadDefaultConfig(ctx, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(*creds.AccessKeyId, *creds.SecretAccessKey, *creds.SessionToken),
		))
		if err != nil {
			log.Printf("Error configuration: %s\n", err.Error())
			return nil, err
		}
	}
	awsConfig = &cfg
	return awsConfig, nil
}

// AssetStore keeps a copy of a generated file somewhere other than local disk.
type AssetStore interface {
	Name() string
	PutAsset(ctx context.Context, key, path, contentType string) (string, error)
	DeleteAsset(ctx context.Context, key string) error
}

var assetStore AssetStore

// GetAssetStore returns nil when generated files stay on local disk only.
func GetAssetStore() AssetStore {
	return assetStore
}

// NewAssetStore Replace asset store instance with custom implementation
func NewAssetStore(s AssetStore) {
	assetStore = s
}
