// Command lambda-http serves the wizard API behind an API Gateway HTTP API.
//
//	GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http
package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"jobtailor/internal/bootstrap"
	"jobtailor/internal/shared/config"
	"jobtailor/internal/shared/telemetry"
)

type proxy interface {
	ProxyWithContext(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)
}

func newHandler(p proxy) func(context.Context, events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		resp, err := p.ProxyWithContext(ctx, req)
		if err != nil {
			telemetry.Error("lambda.proxy_failed", map[string]any{
				"route":      req.RouteKey,
				"request_id": req.RequestContext.RequestID,
				"error":      err.Error(),
			})
		}
		return resp, err
	}
}

// Wiring happens during the init phase so a bad config fails the cold start
// instead of every invocation.
func main() {
	app, err := bootstrap.Build(config.Load())
	if err != nil {
		log.Printf("lambda: bootstrap failed: %v", err)
		os.Exit(1)
	}
	// Sweeps only run while the container is warm.
	app.StartBackground(context.Background())

	lambda.Start(newHandler(ginadapter.NewV2(app.Router)))
}
