package cloud

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/domain"
)

// SNS caps subjects at 100 characters.
const maxSubjectLen = 100

// truncateSubject cuts s to maxSubjectLen runes without splitting one.
func truncateSubject(s string) string {
	if utf8.RuneCountInString(s) <= maxSubjectLen {
		return s
	}
	n := 0
	for i := range s {
		if n == maxSubjectLen {
			return s[:i]
		}
		n++
	}
	return s
}

type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSClient wraps AWS SNS client for report notifications
type SNSClient struct {
	svc      SNSAPI
	topicArn string
}

// NewSNSClient creates a new SNS client instance
func NewSNSClient(ctx context.Context, region, topicArn string) (*SNSClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	return NewSNSClientWith(sns.NewFromConfig(cfg), topicArn), nil
}

func NewSNSClientWith(svc SNSAPI, topicArn string) *SNSClient {
	return &SNSClient{svc: svc, topicArn: topicArn}
}

// Publish sends a message to the configured topic
func (c *SNSClient) Publish(ctx context.Context, subject, message string) error {
	subject = truncateSubject(subject)
	input := &sns.PublishInput{
		TopicArn: aws.String(c.topicArn),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	}

	result, err := c.svc.Publish(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to publish to SNS: %w", err)
	}

	log.Info().Str("message_id", aws.ToString(result.MessageId)).Str("subject", subject).Msg("notification published")
	return nil
}

// PublishWeeklyReport sends a generated weekly summary to subscribers
func (c *SNSClient) PublishWeeklyReport(ctx context.Context, from, to time.Time, summary string) error {
	subject := fmt.Sprintf("Weekly growth report %s to %s",
		from.Format(domain.DateLayout), to.Format(domain.DateLayout))
	return c.Publish(ctx, subject, summary)
}
