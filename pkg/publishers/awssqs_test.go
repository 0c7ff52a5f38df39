package publishers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/samvad-hq/samvad-newsdesk/internal/domain"
)

type fakeSQSClient struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQSClient) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

func TestSQSPublisherSendsAttributes(t *testing.T) {
	client := &fakeSQSClient{}
	pub := &sqsPublisher{id: "q", typ: TypeSQS, queueURL: "https://sqs.local/q", client: client, log: ensureLogger(nil)}

	evt := NewEvent(7, domain.Query{Country: "gb"}, StateEmpty, nil, nil)
	if err := pub.Publish(context.Background(), evt); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if got := aws.ToString(client.input.QueueUrl); got != "https://sqs.local/q" {
		t.Fatalf("QueueUrl = %s", got)
	}
	if got := aws.ToString(client.input.MessageAttributes["state"].StringValue); got != StateEmpty {
		t.Fatalf("state attribute = %q", got)
	}
	if got := aws.ToString(client.input.MessageAttributes["kind"].StringValue); got != domain.KindTopHeadlines {
		t.Fatalf("kind attribute = %q", got)
	}

	var body Event
	if err := json.Unmarshal([]byte(aws.ToString(client.input.MessageBody)), &body); err != nil {
		t.Fatalf("body is not an event: %v", err)
	}
	if body.Generation != 7 || body.Country != "gb" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestSQSPublisherWrapsSendError(t *testing.T) {
	boom := errors.New("boom")
	pub := &sqsPublisher{id: "q", client: &fakeSQSClient{err: boom}, log: ensureLogger(nil)}
	if err := pub.Publish(context.Background(), Event{}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped send error, got %v", err)
	}
}

func TestNewSQSPublisherWithStaticCredentials(t *testing.T) {
	pub, err := newSQSPublisher(context.Background(), PublisherConfig{
		ID:   "local",
		Type: TypeSQS,
		SQS: &SQSPublisherConfig{
			QueueURL: "http://localhost:4566/000000000000/outcomes",
			Region:   "us-east-1",
			AWSAccess: AWSAccess{
				AccessKeyID:     "test",
				SecretAccessKey: "test",
				Endpoint:        "http://localhost:4566",
			},
		},
	}, nil)
	if err != nil {
		t.Fatalf("newSQSPublisher: %v", err)
	}
	if pub.Type() != TypeSQS || pub.ID() != "local" {
		t.Fatalf("unexpected publisher %s/%s", pub.Type(), pub.ID())
	}
}

func TestLoadAWSConfigUsesStaticKeys(t *testing.T) {
	cfg, err := loadAWSConfig(context.Background(), "eu-west-1", AWSAccess{AccessKeyID: "AKID", SecretAccessKey: "secret"})
	if err != nil {
		t.Fatalf("loadAWSConfig: %v", err)
	}
	creds, err := cfg.Credentials.Retrieve(context.Background())
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if creds.AccessKeyID != "AKID" || cfg.Region != "eu-west-1" {
		t.Fatalf("unexpected config region=%s key=%s", cfg.Region, creds.AccessKeyID)
	}
}
