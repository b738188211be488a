package dynamock

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/nisimpson/dynapatch"
)

// DefaultLocalPort is the default port for DynamoDB Local.
const DefaultLocalPort = 8000

// ErrRecordNotFound is returned when a record read back from the table does not exist.
var ErrRecordNotFound = errors.New("record not found")

// localCredentials are static credentials; DynamoDB Local accepts any signed request.
var localCredentials = aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
	return aws.Credentials{AccessKeyID: "local", SecretAccessKey: "local", Source: "dynamock"}, nil
})

// LocalDynamoDB represents a connection to a local DynamoDB instance.
type LocalDynamoDB struct {
	Client   *dynamodb.Client
	Endpoint string
	Port     int
}

// NewLocalClient creates a DynamoDB client configured to connect to a local DynamoDB instance.
//
// Example usage:
//
//	client := dynamock.NewLocalClient(8000)
//	handler := dynapatch.NewHandler(client)
func NewLocalClient(port int) *dynamodb.Client {
	return NewLocalClientFromConfig(aws.Config{Region: "us-east-1"}, port)
}

// NewLocalClientFromConfig creates a local DynamoDB client using the provided AWS config.
// The endpoint and credentials of cfg are replaced.
func NewLocalClientFromConfig(cfg aws.Config, port int) *dynamodb.Client {
	cfg.BaseEndpoint = aws.String(localEndpoint(port))
	cfg.Credentials = localCredentials
	if cfg.Region == "" {
		cfg.Region = "us-east-1" // DynamoDB Local doesn't care about region
	}
	return dynamodb.NewFromConfig(cfg)
}

// NewLocalDynamoDB creates a LocalDynamoDB instance with the specified port.
func NewLocalDynamoDB(port int) *LocalDynamoDB {
	return &LocalDynamoDB{
		Client:   NewLocalClient(port),
		Endpoint: localEndpoint(port),
		Port:     port,
	}
}

// NewDefaultLocalDynamoDB creates a LocalDynamoDB instance using the default port (8000).
func NewDefaultLocalDynamoDB() *LocalDynamoDB {
	return NewLocalDynamoDB(DefaultLocalPort)
}

func localEndpoint(port int) string {
	return fmt.Sprintf("http://localhost:%d", port)
}

// IsAvailable checks if DynamoDB Local is running on the configured port.
func (l *LocalDynamoDB) IsAvailable(ctx context.Context) bool {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("localhost:%d", l.Port), 2*time.Second)
	if err != nil {
		return false
	}
	conn.Close()

	// Try to list tables to verify it's actually DynamoDB
	_, err = l.Client.ListTables(ctx, &dynamodb.ListTablesInput{})
	return err == nil
}

// WaitForAvailable waits for DynamoDB Local to become available.
func (l *LocalDynamoDB) WaitForAvailable(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		if l.IsAvailable(ctx) {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}

	return fmt.Errorf("DynamoDB Local not available at %s after %v", l.Endpoint, timeout)
}

// CreateRecordTable creates a table keyed by the primary key of loc and waits
// for it to become active.
func (l *LocalDynamoDB) CreateRecordTable(ctx context.Context, loc dynapatch.RecordLocation) error {
	input := &dynamodb.CreateTableInput{
		TableName: aws.String(loc.TableName),
		AttributeDefinitions: []types.AttributeDefinition{
			{
				AttributeName: aws.String(loc.PrimaryKey),
				AttributeType: types.ScalarAttributeTypeS,
			},
		},
		KeySchema: []types.KeySchemaElement{
			{
				AttributeName: aws.String(loc.PrimaryKey),
				KeyType:       types.KeyTypeHash,
			},
		},
		BillingMode: types.BillingModePayPerRequest,
	}

	if _, err := l.Client.CreateTable(ctx, input); err != nil {
		return fmt.Errorf("failed to create table %s: %w", loc.TableName, err)
	}

	return l.WaitForTableActive(ctx, loc.TableName, 30*time.Second)
}

// WaitForTableActive waits for a table to become active.
func (l *LocalDynamoDB) WaitForTableActive(ctx context.Context, tableName string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		output, err := l.Client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
			TableName: aws.String(tableName),
		})
		if err != nil {
			return fmt.Errorf("failed to describe table %s: %w", tableName, err)
		}

		if output.Table.TableStatus == types.TableStatusActive {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}

	return fmt.Errorf("table %s did not become active within %v", tableName, timeout)
}

// DeleteTable deletes a table and waits for it to be fully deleted.
func (l *LocalDynamoDB) DeleteTable(ctx context.Context, tableName string) error {
	_, err := l.Client.DeleteTable(ctx, &dynamodb.DeleteTableInput{
		TableName: aws.String(tableName),
	})
	if err != nil {
		return fmt.Errorf("failed to delete table %s: %w", tableName, err)
	}

	return l.WaitForTableDeleted(ctx, tableName, 30*time.Second)
}

// WaitForTableDeleted waits for a table to be fully deleted.
func (l *LocalDynamoDB) WaitForTableDeleted(ctx context.Context, tableName string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		_, err := l.Client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
			TableName: aws.String(tableName),
		})
		if err != nil {
			var notFoundErr *types.ResourceNotFoundException
			if errors.As(err, &notFoundErr) {
				return nil
			}
			return fmt.Errorf("error checking table deletion status: %w", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}

	return fmt.Errorf("table %s was not deleted within %v", tableName, timeout)
}

// PutRecord stores record in the table of loc. The record must contain the primary key.
func (l *LocalDynamoDB) PutRecord(ctx context.Context, loc dynapatch.RecordLocation, record map[string]any) error {
	return putRecord(ctx, l.Client, loc, record)
}

// GetRecord reads the record identified by key. When fields are given, only
// those attributes are returned.
func (l *LocalDynamoDB) GetRecord(ctx context.Context, loc dynapatch.RecordLocation, key dynapatch.Filter, fields ...string) (dynapatch.Item, error) {
	return getRecord(ctx, l.Client, loc, key, fields...)
}

func putRecord(ctx context.Context, client DynamoDBPutter, loc dynapatch.RecordLocation, record map[string]any) error {
	if _, ok := record[loc.PrimaryKey]; !ok {
		return fmt.Errorf("record missing primary key %q", loc.PrimaryKey)
	}

	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	_, err = client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(loc.TableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put record: %w", err)
	}

	return nil
}

func getRecord(ctx context.Context, client DynamoDBGetter, loc dynapatch.RecordLocation, key dynapatch.Filter, fields ...string) (dynapatch.Item, error) {
	k, err := attributevalue.MarshalMap(key)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal key: %w", err)
	}

	input := &dynamodb.GetItemInput{
		TableName:      aws.String(loc.TableName),
		Key:            k,
		ConsistentRead: aws.Bool(true),
	}

	if len(fields) > 0 {
		projection := expression.NamesList(expression.Name(fields[0]))
		for _, field := range fields[1:] {
			projection = projection.AddNames(expression.Name(field))
		}

		expr, err := expression.NewBuilder().WithProjection(projection).Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build projection: %w", err)
		}

		input.ProjectionExpression = expr.Projection()
		input.ExpressionAttributeNames = expr.Names()
	}

	output, err := client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	if output.Item == nil {
		return nil, ErrRecordNotFound
	}

	return output.Item, nil
}
