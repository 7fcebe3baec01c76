// internal/report/sns.go
package report

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"archetype-resolver/internal/archetype"
	apperrors "archetype-resolver/internal/common/errors"
)

// Publisher is the part of the SNS client the notifier needs.
type Publisher interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

// SNSNotifier publishes the batch Summary as JSON.
type SNSNotifier struct {
	publisher Publisher
	topicARN  string
}

func NewSNSNotifier(p Publisher, topicARN string) *SNSNotifier {
	return &SNSNotifier{publisher: p, topicARN: topicARN}
}

func (n *SNSNotifier) Name() string { return "sns" }

func (n *SNSNotifier) Export(ctx context.Context, res *archetype.BatchResult) error {
	summary := Summarize(res)
	body, err := json.Marshal(summary)
	if err != nil {
		return apperrors.NewReportExportError(n.Name(), err)
	}

	_, err = n.publisher.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String("archetype batch " + summary.RunID),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"eventType": {
				DataType:    aws.String("String"),
				StringValue: aws.String("archetype.batch.completed"),
			},
			"failed": {
				DataType:    aws.String("Number"),
				StringValue: aws.String(strconv.Itoa(summary.Failed)),
			},
		},
	})
	if err != nil {
		return apperrors.NewReportExportError(n.Name(), err)
	}
	return nil
}
