package aws

import (
	"cinco/src/config"
	"cinco/src/lib"
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func GetSESClient(ctx context.Context) (*ses.Client, error) {
	cfg, err := lib.AWSGetConfig(ctx)
	if err != nil {
		return nil, err
	}
	return ses.NewFromConfig(*cfg), nil
}

type SESEmailSender struct {
	source string
	inner  sesAPI
}

func NewSESEmailSender(ctx context.Context) (*SESEmailSender, error) {
	c, err := GetSESClient(ctx)
	if err != nil {
		return nil, err
	}
	return newSESEmailSender(c), nil
}

func newSESEmailSender(c sesAPI) *SESEmailSender {
	return &SESEmailSender{
		source: fmt.Sprintf("%s <%s>", config.MailFromName(), config.MailFrom()),
		inner:  c,
	}
}

func (s *SESEmailSender) Name() string { return "SES" }

func (s *SESEmailSender) SendEmail(ctx context.Context, to, subject, html string) error {
	out, err := s.inner.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{ToAddresses: []string{to}},
		Source:      aws.String(s.source),
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(html), Charset: aws.String("UTF-8")},
			},
		},
	})
	if err != nil {
		return err
	}
	log.Printf("Sent email with id: %s\n", aws.ToString(out.MessageId))
	return nil
}
