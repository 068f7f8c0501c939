package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"

	"pathfinder-backend/internal/bootstrap"
	"pathfinder-backend/internal/shared/config"
	"pathfinder-backend/internal/shared/server/respond"
	"pathfinder-backend/internal/shared/telemetry"
)

// proxy lazily builds the router on the first invocation of a warm container.
type proxy struct {
	build func() (*gin.Engine, error)

	once    sync.Once
	err     error
	adapter *ginadapter.GinLambdaV2
}

func (p *proxy) init() {
	engine, err := p.build()
	if err != nil {
		p.err = err
		return
	}
	p.adapter = ginadapter.NewV2(engine)
}

func (p *proxy) handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	p.once.Do(p.init)
	if p.err != nil {
		telemetry.Error("lambda.bootstrap_failed", map[string]any{
			"error":      p.err,
			"request_id": req.RequestContext.RequestID,
		})
		return errorResponse(http.StatusInternalServerError, "bootstrap_failed", "service failed to start"), nil
	}
	return p.adapter.ProxyWithContext(ctx, req)
}

func errorResponse(status int, code, message string) events.APIGatewayV2HTTPResponse {
	body, _ := json.Marshal(respond.NewError(code, message, nil))
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Body:       string(body),
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

func buildRouter() (*gin.Engine, error) {
	cfg := config.Load()
	app, err := bootstrap.Build(cfg)
	if err != nil {
		return nil, err
	}
	telemetry.Info("lambda.ready", map[string]any{"env": cfg.Env, "llm_provider": cfg.LLMProvider})
	return app.Router, nil
}

func main() {
	defer telemetry.Sync()
	p := &proxy{build: buildRouter}
	lambda.Start(p.handle)
}
