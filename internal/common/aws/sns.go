// internal/common/aws/sns.go
package aws

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// EventPublisher sends JSON domain events to one SNS topic. The event type
// travels as the eventType message attribute so subscribers can filter on it.
type EventPublisher struct {
	client   SNSService
	topicARN string
}

func NewEventPublisher(ctx context.Context, region, topicARN string) (*EventPublisher, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return NewEventPublisherWith(sns.NewFromConfig(cfg), topicARN), nil
}

func NewEventPublisherWith(client SNSService, topicARN string) *EventPublisher {
	return &EventPublisher{client: client, topicARN: topicARN}
}

func (p *EventPublisher) TopicARN() string { return p.topicARN }

// Publish encodes payload as JSON and returns the SNS message id.
func (p *EventPublisher) Publish(ctx context.Context, eventType string, payload interface{}) (string, error) {
	message, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode %s event: %w", eventType, err)
	}

	out, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(message)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"eventType": {
				DataType:    aws.String("String"),
				StringValue: aws.String(eventType),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("publish %s event: %w", eventType, err)
	}
	return aws.ToString(out.MessageId), nil
}
