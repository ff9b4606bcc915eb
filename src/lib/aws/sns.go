package aws

import (
	"cinco/src/lib"
	"context"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func GetSNSClient(ctx context.Context) (*sns.Client, error) {
	cfg, err := lib.AWSGetConfig(ctx)
	if err != nil {
		return nil, err
	}
	return sns.NewFromConfig(*cfg), nil
}

// SNSSMSSender publishes transactional SMS directly to a phone number.
type SNSSMSSender struct {
	senderID string
	inner    snsAPI
}

func NewSNSSMSSender(ctx context.Context, senderID string) (*SNSSMSSender, error) {
	c, err := GetSNSClient(ctx)
	if err != nil {
		return nil, err
	}
	return &SNSSMSSender{senderID: senderID, inner: c}, nil
}

func (s *SNSSMSSender) Name() string { return "SNS" }

func (s *SNSSMSSender) SendSMS(ctx context.Context, to, message string) error {
	attrs := map[string]types.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {
			DataType:    aws.String("String"),
			StringValue: aws.String("Transactional"),
		},
	}
	if s.senderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(s.senderID),
		}
	}
	out, err := s.inner.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       aws.String("+" + strings.TrimPrefix(to, "+")),
		Message:           aws.String(message),
		MessageAttributes: attrs,
	})
	if err != nil {
		return err
	}
	log.Printf("[SNS] Published sms with id: %s\n", aws.ToString(out.MessageId))
	return nil
}
