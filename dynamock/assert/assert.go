// Package assert provides fluent assertion utilities for testing dynapatch
// update requests and the records they produce.
//
// # Usage
//
//	import "github.com/nisimpson/dynapatch/dynamock/assert"
//
//	// Assert on an update request
//	assert.Update(t, input).
//		HasTable("functions").
//		HasKey("id", "F1").
//		SetsField("name", "update_function").
//		HasTimestamp()
//
//	// Assert on a stored record
//	assert.Record(t, item).
//		HasAttribute("name", "update_function").
//		HasUpdatedAt()
package assert

import (
	"reflect"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/nisimpson/dynapatch"
)

var placeholderPattern = regexp.MustCompile(`[#:][A-Za-z0-9_]+`)

// UpdateAssertion provides fluent assertions for update item requests.
type UpdateAssertion struct {
	t     *testing.T
	input *dynamodb.UpdateItemInput
}

// Update creates a new UpdateAssertion for the given request.
func Update(t *testing.T, input *dynamodb.UpdateItemInput) *UpdateAssertion {
	if input == nil {
		t.Fatal("expected update request, got nil")
	}
	return &UpdateAssertion{
		t:     t,
		input: input,
	}
}

// HasTable asserts that the request targets the table.
func (a *UpdateAssertion) HasTable(expected string) *UpdateAssertion {
	if got := aws.ToString(a.input.TableName); got != expected {
		a.t.Errorf("expected table %s, got %s", expected, got)
	}
	return a
}

// HasKey asserts that the request key contains the string attribute.
func (a *UpdateAssertion) HasKey(field, expected string) *UpdateAssertion {
	checkString(a.t, "key", a.input.Key, field, expected)
	return a
}

// HasKeyCount asserts the number of key attributes.
func (a *UpdateAssertion) HasKeyCount(expected int) *UpdateAssertion {
	if len(a.input.Key) != expected {
		a.t.Errorf("expected %d key attributes, got %d", expected, len(a.input.Key))
	}
	return a
}

// HasExpression asserts the exact update expression.
func (a *UpdateAssertion) HasExpression(expected string) *UpdateAssertion {
	if got := aws.ToString(a.input.UpdateExpression); got != expected {
		a.t.Errorf("expected expression %q, got %q", expected, got)
	}
	return a
}

// HasPlaceholderCount asserts that both placeholder maps hold expected entries.
func (a *UpdateAssertion) HasPlaceholderCount(expected int) *UpdateAssertion {
	if n := len(a.input.ExpressionAttributeNames); n != expected {
		a.t.Errorf("expected %d name placeholders, got %d", expected, n)
	}
	if n := len(a.input.ExpressionAttributeValues); n != expected {
		a.t.Errorf("expected %d value placeholders, got %d", expected, n)
	}
	return a
}

// IsWellFormed asserts that every placeholder in the expression is bound in
// exactly one placeholder map and that every binding is referenced.
func (a *UpdateAssertion) IsWellFormed() *UpdateAssertion {
	referenced := make(map[string]bool)
	for _, token := range placeholderPattern.FindAllString(aws.ToString(a.input.UpdateExpression), -1) {
		referenced[token] = true
		_, isName := a.input.ExpressionAttributeNames[token]
		_, isValue := a.input.ExpressionAttributeValues[token]
		if isName == isValue {
			a.t.Errorf("placeholder %s must be bound in exactly one map", token)
		}
	}

	for name := range a.input.ExpressionAttributeNames {
		if !referenced[name] {
			a.t.Errorf("name placeholder %s is not referenced", name)
		}
	}
	for value := range a.input.ExpressionAttributeValues {
		if !referenced[value] {
			a.t.Errorf("value placeholder %s is not referenced", value)
		}
	}
	return a
}

// SetsField asserts that the request binds field to the marshaled form of expected.
func (a *UpdateAssertion) SetsField(field string, expected any) *UpdateAssertion {
	name, value := dynapatch.NamePlaceholder(field), dynapatch.ValuePlaceholder(field)
	if got := a.input.ExpressionAttributeNames[name]; got != field {
		a.t.Errorf("expected %s to bind %s, got %q", name, field, got)
		return a
	}
	checkValue(a.t, "value placeholder", a.input.ExpressionAttributeValues, value, expected)
	return a
}

// DoesNotSet asserts that field has no placeholder binding.
func (a *UpdateAssertion) DoesNotSet(field string) *UpdateAssertion {
	if _, ok := a.input.ExpressionAttributeNames[dynapatch.NamePlaceholder(field)]; ok {
		a.t.Errorf("expected field %s not to be set", field)
	}
	return a
}

// HasTimestamp asserts that the modification timestamp is bound to a
// non-negative integer.
func (a *UpdateAssertion) HasTimestamp() *UpdateAssertion {
	a.timestamp()
	return a
}

// HasTimestampAt asserts that the modification timestamp equals tm in Unix nanoseconds.
func (a *UpdateAssertion) HasTimestampAt(tm time.Time) *UpdateAssertion {
	if got, ok := a.timestamp(); ok && got != tm.UnixNano() {
		a.t.Errorf("expected timestamp %d, got %d", tm.UnixNano(), got)
	}
	return a
}

func (a *UpdateAssertion) timestamp() (int64, bool) {
	field := dynapatch.AttributeNameUpdated
	if got := a.input.ExpressionAttributeNames[dynapatch.NamePlaceholder(field)]; got != field {
		a.t.Errorf("expected timestamp name binding, got %q", got)
		return 0, false
	}
	return checkNanos(a.t, a.input.ExpressionAttributeValues, dynapatch.ValuePlaceholder(field))
}

// RecordAssertion provides fluent assertions for stored records.
type RecordAssertion struct {
	t    *testing.T
	item dynapatch.Item
}

// Record creates a new RecordAssertion for the given item.
func Record(t *testing.T, item dynapatch.Item) *RecordAssertion {
	return &RecordAssertion{
		t:    t,
		item: item,
	}
}

// HasAttribute asserts that the item holds the marshaled form of expected.
func (a *RecordAssertion) HasAttribute(name string, expected any) *RecordAssertion {
	checkValue(a.t, "attribute", a.item, name, expected)
	return a
}

// HasUpdatedAt asserts that the item carries a modification timestamp.
func (a *RecordAssertion) HasUpdatedAt() *RecordAssertion {
	checkNanos(a.t, a.item, dynapatch.AttributeNameUpdated)
	return a
}

// UpdatedSince asserts that the modification timestamp is not before tm.
func (a *RecordAssertion) UpdatedSince(tm time.Time) *RecordAssertion {
	if got, ok := checkNanos(a.t, a.item, dynapatch.AttributeNameUpdated); ok && got < tm.UnixNano() {
		a.t.Errorf("expected updated_at >= %d, got %d", tm.UnixNano(), got)
	}
	return a
}

func checkString(t *testing.T, kind string, item dynapatch.Item, name, expected string) {
	if attr, exists := item[name]; !exists {
		t.Errorf("%s missing %s", kind, name)
	} else if s, ok := attr.(*types.AttributeValueMemberS); !ok {
		t.Errorf("%s %s is not a string", kind, name)
	} else if s.Value != expected {
		t.Errorf("%s %s expected %s, got %s", kind, name, expected, s.Value)
	}
}

func checkValue(t *testing.T, kind string, item dynapatch.Item, name string, expected any) {
	want, err := attributevalue.Marshal(expected)
	if err != nil {
		t.Errorf("failed to marshal expected value for %s: %v", name, err)
		return
	}

	got, exists := item[name]
	if !exists {
		t.Errorf("%s %s not found", kind, name)
		return
	}

	if !reflect.DeepEqual(want, got) {
		t.Errorf("%s %s expected %#v, got %#v", kind, name, want, got)
	}
}

func checkNanos(t *testing.T, item dynapatch.Item, name string) (int64, bool) {
	attr, exists := item[name]
	if !exists {
		t.Errorf("missing timestamp %s", name)
		return 0, false
	}

	n, ok := attr.(*types.AttributeValueMemberN)
	if !ok {
		t.Errorf("timestamp %s is not a number", name)
		return 0, false
	}

	nanos, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil || nanos < 0 {
		t.Errorf("timestamp %s is not a non-negative integer: %q", name, n.Value)
		return 0, false
	}

	return nanos, true
}
