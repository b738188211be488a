package dynamock

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/nisimpson/dynapatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocalDynamoDB(t *testing.T) {
	local := NewLocalDynamoDB(8000)

	require.NotNil(t, local)
	assert.NotNil(t, local.Client)
	assert.Equal(t, "http://localhost:8000", local.Endpoint)
	assert.Equal(t, 8000, local.Port)

	assert.Equal(t, DefaultLocalPort, NewDefaultLocalDynamoDB().Port)
}

func TestNewLocalClientFromConfig(t *testing.T) {
	client := NewLocalClientFromConfig(aws.Config{Region: "us-west-2"}, 8001)
	require.NotNil(t, client)

	opts := client.Options()
	assert.Equal(t, "us-west-2", opts.Region)
	assert.Equal(t, "http://localhost:8001", aws.ToString(opts.BaseEndpoint))

	creds, err := opts.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "local", creds.AccessKeyID)
}

func TestGetRecord_Projection(t *testing.T) {
	loc := dynapatch.NewRecordLocation("functions", "id")
	mock := NewMockClient(t)

	mock.GetFunc = func(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
		assert.Equal(t, "functions", aws.ToString(params.TableName))
		assert.Equal(t, &types.AttributeValueMemberS{Value: "F1"}, params.Key["id"])
		assert.True(t, aws.ToBool(params.ConsistentRead))
		require.NotNil(t, params.ProjectionExpression)
		assert.Len(t, params.ExpressionAttributeNames, 2)

		projected := make([]string, 0, len(params.ExpressionAttributeNames))
		for _, name := range params.ExpressionAttributeNames {
			projected = append(projected, name)
		}
		assert.ElementsMatch(t, []string{"name", "updated_at"}, projected)

		return &dynamodb.GetItemOutput{Item: dynapatch.Item{
			"name": &types.AttributeValueMemberS{Value: "resize"},
		}}, nil
	}

	item, err := getRecord(context.Background(), mock, loc, dynapatch.Filter{"id": "F1"}, "name", "updated_at")
	require.NoError(t, err)
	assert.Len(t, item, 1)
}

func TestGetRecord_NotFound(t *testing.T) {
	mock := NewMockClient(t)
	mock.GetFunc = func(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
		assert.Nil(t, params.ProjectionExpression)
		return &dynamodb.GetItemOutput{}, nil
	}

	_, err := getRecord(context.Background(), mock, dynapatch.NewRecordLocation("functions", "id"), dynapatch.Filter{"id": "F1"})
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

// TestLocalDynamoDB_Integration is skipped unless DynamoDB Local is running.
func TestLocalDynamoDB_Integration(t *testing.T) {
	WithDefaultLocalDynamoDB(t, func(local *LocalDynamoDB) {
		ctx := context.Background()
		loc := dynapatch.NewRecordLocation(NewTestTable("local-test"), "pk")

		require.NoError(t, local.CreateRecordTable(ctx, loc))
		defer func() {
			assert.NoError(t, local.DeleteTable(ctx, loc.TableName))
		}()

		require.NoError(t, local.PutRecord(ctx, loc, map[string]any{"pk": "R1", "name": "first"}))

		item, err := local.GetRecord(ctx, loc, dynapatch.Filter{"pk": "R1"})
		require.NoError(t, err)
		assert.Equal(t, &types.AttributeValueMemberS{Value: "first"}, item["name"])

		_, err = local.GetRecord(ctx, loc, dynapatch.Filter{"pk": "R2"})
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})
}
