package dynamock

import (
	"context"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/nisimpson/dynapatch"
)

type DynamoDBAPICall[T, U any] = func(context.Context, *T, ...func(*dynamodb.Options)) (*U, error)

// DynamoDBAPI defines the DynamoDB operations used by dynapatch and its test helpers.
type DynamoDBAPI interface {
	dynapatch.UpdateItemAPI
	DynamoDBPutter
	DynamoDBGetter
}

// MockClient is a simple expectation-based mock for DynamoDB operations.
// Every UpdateItem request is recorded, whether or not UpdateFunc succeeds.
type MockClient struct {
	PutFunc    DynamoDBAPICall[dynamodb.PutItemInput, dynamodb.PutItemOutput]
	GetFunc    DynamoDBAPICall[dynamodb.GetItemInput, dynamodb.GetItemOutput]
	UpdateFunc DynamoDBAPICall[dynamodb.UpdateItemInput, dynamodb.UpdateItemOutput]

	mu      sync.Mutex
	updates []*dynamodb.UpdateItemInput
}

// Ensure MockClient implements DynamoDBAPI
var _ DynamoDBAPI = (*MockClient)(nil)

// NewMockClient creates a new mock DynamoDB client that fails the test on any
// call without an expectation.
func NewMockClient(t *testing.T) *MockClient {
	return &MockClient{
		PutFunc:    defaultFunc[dynamodb.PutItemInput, dynamodb.PutItemOutput](t),
		GetFunc:    defaultFunc[dynamodb.GetItemInput, dynamodb.GetItemOutput](t),
		UpdateFunc: defaultFunc[dynamodb.UpdateItemInput, dynamodb.UpdateItemOutput](t),
	}
}

func defaultFunc[T, U any](t *testing.T) DynamoDBAPICall[T, U] {
	return func(ctx context.Context, params *T, optFns ...func(*dynamodb.Options)) (*U, error) {
		t.Fatal("unexpected call")
		return nil, nil
	}
}

// ExpectUpdate sets UpdateFunc to accept every update. Each request is passed to
// check, when provided, before the call succeeds.
func (m *MockClient) ExpectUpdate(check func(*dynamodb.UpdateItemInput)) *MockClient {
	m.UpdateFunc = func(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
		if check != nil {
			check(params)
		}
		return &dynamodb.UpdateItemOutput{}, nil
	}
	return m
}

// FailUpdate sets UpdateFunc to fail every update with err.
func (m *MockClient) FailUpdate(err error) *MockClient {
	m.UpdateFunc = func(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
		return nil, err
	}
	return m
}

// Updates returns the update requests received so far.
func (m *MockClient) Updates() []*dynamodb.UpdateItemInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*dynamodb.UpdateItemInput, len(m.updates))
	copy(out, m.updates)
	return out
}

// PutItem stores an item in the mock table.
func (m *MockClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	return m.PutFunc(ctx, params, optFns...)
}

// GetItem retrieves an item from the mock table.
func (m *MockClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return m.GetFunc(ctx, params, optFns...)
}

// UpdateItem records the request and delegates to UpdateFunc.
func (m *MockClient) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	m.mu.Lock()
	m.updates = append(m.updates, params)
	m.mu.Unlock()
	return m.UpdateFunc(ctx, params, optFns...)
}

// DynamoDBPutter is the subset of DynamoDBAPI used to seed records.
type DynamoDBPutter interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoDBGetter is the subset of DynamoDBAPI used to read records back.
type DynamoDBGetter interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}
