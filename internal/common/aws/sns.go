// internal/common/aws/sns.go
package aws

import (
	"context"
	"encoding/json"
	"fmt"

	"site-composer/internal/models"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

const overrideEventType = "variant.selection.recorded"

// OverridePublisher fans selection log entries out to other systems.
type OverridePublisher interface {
	PublishOverride(ctx context.Context, record models.OverrideRecord) error
}

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSPublisher publishes selection records to an SNS topic.
type SNSPublisher struct {
	client   snsAPI
	topicARN string
}

func NewSNSPublisher(ctx context.Context, region, topicARN string) (*SNSPublisher, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &SNSPublisher{client: sns.NewFromConfig(cfg), topicARN: topicARN}, nil
}

func (p *SNSPublisher) PublishOverride(ctx context.Context, record models.OverrideRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal override event: %w", err)
	}

	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: awssdk.String(p.topicARN),
		Message:  awssdk.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"eventType": {
				DataType:    awssdk.String("String"),
				StringValue: awssdk.String(overrideEventType),
			},
			"sectionType": {
				DataType:    awssdk.String("String"),
				StringValue: awssdk.String(record.SectionType),
			},
			"isOverride": {
				DataType:    awssdk.String("String"),
				StringValue: awssdk.String(fmt.Sprintf("%t", record.IsOverride)),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("publish override event: %w", err)
	}
	return nil
}

// NoopPublisher drops events; used when SNS is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishOverride(context.Context, models.OverrideRecord) error { return nil }
