package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-worker

import (
	"context"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"pathfinder-backend/internal/bootstrap"
	"pathfinder-backend/internal/shared/config"
	"pathfinder-backend/internal/shared/metrics"
	"pathfinder-backend/internal/shared/telemetry"
	"pathfinder-backend/internal/workerproc"
)

var (
	initOnce  sync.Once
	initErr   error
	mentorLog workerproc.RequestLog
)

func initApp() {
	cfg := config.Load()
	app, err := bootstrap.BuildServices(context.Background(), cfg)
	if err != nil {
		initErr = err
		return
	}
	mentorLog = app.MentorLog
}

func handler(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	initOnce.Do(initApp)
	if initErr != nil {
		telemetry.Error("lambda.bootstrap_failed", map[string]any{"error": initErr})
		failures := make([]events.SQSBatchItemFailure, 0, len(event.Records))
		for _, record := range event.Records {
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
		}
		return events.SQSEventResponse{BatchItemFailures: failures}, initErr
	}
	return processBatch(ctx, mentorLog, event), nil
}

// processBatch reports only retryable failures; unrecoverable payloads are acknowledged.
func processBatch(ctx context.Context, log workerproc.RequestLog, event events.SQSEvent) events.SQSEventResponse {
	failures := make([]events.SQSBatchItemFailure, 0)
	for _, record := range event.Records {
		msg, recorded, err := workerproc.HandleMessage(ctx, log, record.Body)
		fields := map[string]any{"sqs_message_id": record.MessageId, "request_id": msg.RequestID}
		switch {
		case err != nil && workerproc.Unrecoverable(err):
			fields["error"] = err.Error()
			telemetry.Error("worker.mentor.dropped", fields)
			metrics.IncMentorRequest(metrics.MentorDropped)
		case err != nil:
			fields["error"] = err.Error()
			telemetry.Error("worker.mentor.failed", fields)
			metrics.IncMentorRequest(metrics.MentorFailed)
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
		case recorded:
			telemetry.Info("worker.mentor.recorded", fields)
			metrics.IncMentorRequest(metrics.MentorRecorded)
		default:
			metrics.IncMentorRequest(metrics.MentorDuplicate)
		}
	}
	return events.SQSEventResponse{BatchItemFailures: failures}
}

func main() {
	defer telemetry.Sync()
	lambda.Start(handler)
}
