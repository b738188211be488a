package dynapatch

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler applies partial updates to single records. A Handler holds no
// per-invocation state and is safe for concurrent use.
type Handler struct {
	Client UpdateItemAPI // DynamoDB client; a nil client fails every update with ErrMissingBackendConfig
	Logger *zap.Logger   // Defaults to a no-op logger
	Tick   Clock         // Clock for the modification timestamp
}

// NewHandler creates a Handler that submits updates through client.
func NewHandler(client UpdateItemAPI, opts ...func(*Handler)) *Handler {
	h := &Handler{
		Client: client,
		Logger: zap.NewNop(),
		Tick:   DefaultClock,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewHandlerFromContext creates a Handler whose DynamoDB client is built from
// the SDK configuration supplied by hc.
func NewHandlerFromContext(ctx context.Context, hc HandlerContext, opts ...func(*Handler)) (*Handler, error) {
	cfg, err := hc.SDKConfig(ctx)
	if err != nil {
		return nil, err
	}
	return NewHandler(dynamodb.NewFromConfig(cfg), opts...), nil
}

// WithLogger sets the handler logger.
func WithLogger(logger *zap.Logger) func(*Handler) {
	return func(h *Handler) {
		h.Logger = logger
	}
}

// WithClock sets the clock used for modification timestamps.
func WithClock(tick Clock) func(*Handler) {
	return func(h *Handler) {
		h.Tick = tick
	}
}

func (h *Handler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

func (h *Handler) clock() Clock {
	if h.Tick == nil {
		return DefaultClock
	}
	return h.Tick
}

// MarshalUpdate marshals req into an update item request against loc. The
// filter must contain loc.PrimaryKey and is used in full as the item key.
func (h *Handler) MarshalUpdate(loc RecordLocation, req Request) (*dynamodb.UpdateItemInput, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}

	if _, ok := req.Filter[loc.PrimaryKey]; !ok {
		return nil, ErrInvalidFilter
	}

	stmt, err := CompileUpdate(req.Data, func(co *CompileOptions) {
		co.Tick = h.clock()
	})
	if err != nil {
		return nil, err
	}

	key, err := attributevalue.MarshalMap(req.Filter)
	if err != nil {
		return nil, newError(CodeInvalidFilter, "failed to marshal filter", err)
	}

	return &dynamodb.UpdateItemInput{
		TableName:                 aws.String(loc.TableName),
		Key:                       key,
		UpdateExpression:          aws.String(stmt.Expression),
		ExpressionAttributeNames:  stmt.Names,
		ExpressionAttributeValues: stmt.Values,
	}, nil
}

// Update sets the fields of req.Data on the record identified by req.Filter and
// refreshes its modification timestamp. The update is unconditional; concurrent
// updates of the same record are last-write-wins.
func (h *Handler) Update(ctx context.Context, loc RecordLocation, req Request) (*Response, error) {
	logger := h.logger().With(
		zap.String("invocation", uuid.NewString()),
		zap.String("table", loc.TableName),
	)

	if h.Client == nil {
		logger.Error("no store client configured")
		return nil, ErrMissingBackendConfig
	}

	input, err := h.MarshalUpdate(loc, req)
	if err != nil {
		logger.Warn("rejected update request", zap.Error(err))
		return nil, err
	}

	logger.Debug("compiled update",
		zap.String("expression", aws.ToString(input.UpdateExpression)),
		zap.Any("names", input.ExpressionAttributeNames),
		zap.Any("values", input.ExpressionAttributeValues),
	)

	if _, err := h.Client.UpdateItem(ctx, input); err != nil {
		err = ClassifyStoreError(err)
		logger.Error("update failed", zap.Error(err), zap.Bool("retryable", IsRetryable(err)))
		return nil, err
	}

	logger.Info("updated record", zap.Int("fields", len(input.ExpressionAttributeNames)-1))
	return &Response{Message: SuccessMessage}, nil
}

// Invoke decodes payload into a [Request] and applies it against the record
// location supplied by hc.
func (h *Handler) Invoke(ctx context.Context, hc HandlerContext, payload json.RawMessage) (*Response, error) {
	loc, err := hc.RecordLocation(ctx)
	if err != nil {
		return nil, err
	}

	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, newError(CodeInvalidRequest, "failed to decode request", err)
	}

	return h.Update(ctx, loc, req)
}
