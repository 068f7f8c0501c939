package main

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-lambda-go/events"

	"pathfinder-backend/internal/queue"
	"pathfinder-backend/internal/workerproc"
)

type flakyLog struct{ failFor string }

func (f flakyLog) Record(_ context.Context, msg queue.Message) (bool, error) {
	if msg.RequestID == f.failFor {
		return false, errors.New("db down")
	}
	return true, nil
}

func body(t *testing.T, requestID string) string {
	t.Helper()
	raw, err := queue.EncodeMessage(queue.Message{
		Type:      queue.TypeMentor,
		SessionID: "s1",
		Course:    "BBA",
		RequestID: requestID,
		Version:   queue.CurrentVersion,
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return string(raw)
}

func TestProcessBatchReportsOnlyRetryableFailures(t *testing.T) {
	event := events.SQSEvent{Records: []events.SQSMessage{
		{MessageId: "ok", Body: body(t, "req-ok")},
		{MessageId: "bad", Body: "{not json"},
		{MessageId: "retry", Body: body(t, "req-retry")},
	}}

	resp := processBatch(context.Background(), flakyLog{failFor: "req-retry"}, event)

	if len(resp.BatchItemFailures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(resp.BatchItemFailures))
	}
	if resp.BatchItemFailures[0].ItemIdentifier != "retry" {
		t.Fatalf("unexpected failure %q", resp.BatchItemFailures[0].ItemIdentifier)
	}
}

func TestProcessBatchRecordsIntoLog(t *testing.T) {
	log := workerproc.NewMemoryLog()
	event := events.SQSEvent{Records: []events.SQSMessage{
		{MessageId: "a", Body: body(t, "req-a")},
		{MessageId: "b", Body: body(t, "req-a")},
	}}

	resp := processBatch(context.Background(), log, event)

	if len(resp.BatchItemFailures) != 0 {
		t.Fatalf("expected no failures, got %d", len(resp.BatchItemFailures))
	}
	if len(log.Recorded()) != 1 {
		t.Fatalf("expected deduplicated record, got %d", len(log.Recorded()))
	}
}
