package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type fakeSQS struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	return &sqs.SendMessageOutput{}, f.err
}

func TestSQSClientSendEncodesMessage(t *testing.T) {
	fake := &fakeSQS{}
	client := NewSQSClientWithAPI(fake, "https://sqs.example/queue")

	msg := Message{Type: TypeEnroll, SessionID: "s1", Course: "Design", RequestID: "r1", Version: CurrentVersion}
	if err := client.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if aws.ToString(fake.input.QueueUrl) != "https://sqs.example/queue" {
		t.Fatalf("unexpected queue url %q", aws.ToString(fake.input.QueueUrl))
	}
	got, err := DecodeMessage([]byte(aws.ToString(fake.input.MessageBody)))
	if err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got != msg {
		t.Fatalf("unexpected message %+v", got)
	}
}

func TestSQSClientSendWrapsError(t *testing.T) {
	fake := &fakeSQS{err: errors.New("throttled")}
	client := NewSQSClientWithAPI(fake, "q")
	if err := client.Send(context.Background(), Message{Type: TypeMentor}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestMemoryClientRecords(t *testing.T) {
	client := NewMemoryClient()
	if err := client.Send(context.Background(), Message{Type: TypeMentor, SessionID: "s", Course: "c"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(client.Sent()) != 1 {
		t.Fatalf("expected one recorded message")
	}
}
