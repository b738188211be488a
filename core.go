package dynapatch

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Clock is a function type that returns the current time for dependency injection.
type Clock func() time.Time

// DefaultClock returns the current UTC time.
func DefaultClock() time.Time {
	return time.Now().UTC()
}

// Item is an alias for the dynamodb attribute value map.
type Item = map[string]types.AttributeValue

// Filter identifies exactly one record. It must contain the primary key field
// configured on the [RecordLocation]; the whole filter is used as the item key.
type Filter = map[string]string

// Fields maps attribute names to their new values. Values may be any type
// supported by the attributevalue package (nil, bool, numbers, strings, slices, maps).
type Fields = map[string]any

const (
	// AttributeNameUpdated is the attribute that receives the modification timestamp.
	AttributeNameUpdated = "updated_at"

	// SuccessMessage is returned to callers after a successful update.
	SuccessMessage = "Successfully updated record"
)

// Request is the inbound payload of an update invocation.
type Request struct {
	Filter Filter `json:"filter"` // Identifies the record; must include the primary key
	Data   Fields `json:"data"`   // Attributes to set
}

// Response is the payload returned after a successful update.
type Response struct {
	Message string `json:"message"`
}

// UpdateItemAPI is the single DynamoDB operation the handler depends on.
type UpdateItemAPI interface {
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}
