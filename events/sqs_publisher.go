package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	config "github.com/anjiri1684/course_marketplace/configs"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// MessageSender is the part of the SQS client the publisher needs.
type MessageSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

type SQSPublisher struct {
	client   MessageSender
	queueURL string
	fifo     bool
}

func NewSQSPublisher(client MessageSender, queueURL string) *SQSPublisher {
	return &SQSPublisher{
		client:   client,
		queueURL: queueURL,
		fifo:     strings.HasSuffix(queueURL, ".fifo"),
	}
}

// NewPublisher returns an SQS publisher when a queue is configured and a
// NopPublisher otherwise.
func NewPublisher(ctx context.Context, cfg config.EventsConfig) (Publisher, error) {
	if cfg.SQSQueueURL == "" {
		return NopPublisher{}, nil
	}

	var (
		awsCfg aws.Config
		err    error
	)
	if cfg.AWSAccessKey != "" && cfg.AWSSecret != "" {
		awsCfg, err = awsConfig.LoadDefaultConfig(ctx,
			awsConfig.WithRegion(cfg.AWSRegion),
			awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AWSAccessKey,
				cfg.AWSSecret,
				"",
			)),
		)
	} else {
		awsCfg, err = awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(cfg.AWSRegion))
	}
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	log.Printf("✅ Purchase events will be published to %s", cfg.SQSQueueURL)
	return NewSQSPublisher(sqs.NewFromConfig(awsCfg), cfg.SQSQueueURL), nil
}

func (p *SQSPublisher) PublishPurchaseCompleted(ctx context.Context, event PurchaseCompleted) error {
	if event.Type == "" {
		event.Type = TypePurchaseCompleted
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", event.Type, err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"type": {DataType: aws.String("String"), StringValue: aws.String(event.Type)},
		},
	}
	if p.fifo {
		input.MessageGroupId = aws.String(event.CourseID)
		input.MessageDeduplicationId = aws.String(event.OrderID)
	}

	if _, err := p.client.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("send %s for order %s: %w", event.Type, event.OrderID, err)
	}
	return nil
}
