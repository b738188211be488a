// Command dynapatch runs the dynapatch update handler as an AWS Lambda function.
//
// The deployment configuration is read from the environment (see
// dynapatch.PlatformContext) and AWS access from the default credential chain.
package main

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambda/messages"
	"github.com/nisimpson/dynapatch"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx := context.Background()
	hc := dynapatch.PlatformContext{}

	// Invocations report INVALID_CONFIG until the configuration is fixed.
	if _, err := hc.RecordLocation(ctx); err != nil {
		logger.Warn("Invalid deployment configuration", zap.Error(err))
	}

	handler, err := dynapatch.NewHandlerFromContext(ctx, hc, dynapatch.WithLogger(logger))
	if err != nil {
		// Invocations still run and report NO_SDK_CONFIG to the caller.
		logger.Warn("No store access configured", zap.Error(err))
		handler = dynapatch.NewHandler(nil, dynapatch.WithLogger(logger))
	}

	lambda.Start(newFunction(handler, hc))
}

// newFunction decodes the raw payload itself so malformed requests surface as
// INVALID_REQUEST rather than a runtime decoding fault.
func newFunction(handler *dynapatch.Handler, hc dynapatch.HandlerContext) func(context.Context, json.RawMessage) (*dynapatch.Response, error) {
	return func(ctx context.Context, payload json.RawMessage) (*dynapatch.Response, error) {
		resp, err := handler.Invoke(ctx, hc, payload)
		if err != nil {
			return nil, invokeError(err)
		}
		return resp, nil
	}
}

// invokeError reports handler errors with their code as the Lambda error type.
func invokeError(err error) error {
	var herr *dynapatch.Error
	if !errors.As(err, &herr) {
		return err
	}
	return messages.InvokeResponse_Error{
		Type:    herr.Code,
		Message: herr.Error(),
	}
}
