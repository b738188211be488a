package dynapatch

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fieldNamePattern is the character set DynamoDB accepts after the '#' and ':'
// placeholder prefixes.
var fieldNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// UpdateStatement is a compiled SET expression together with its placeholder bindings.
// Every placeholder referenced by Expression is a key of exactly one of Names or Values.
// Names and Values always have the same length.
type UpdateStatement struct {
	Expression string            // The update expression, e.g. "set #name_key = :name_val"
	Names      map[string]string // Name placeholder to attribute name
	Values     Item              // Value placeholder to attribute value
}

// CompileOptions contains configuration options for compiling update statements.
type CompileOptions struct {
	Tick Clock // Function to get the current time for the modification timestamp
}

func (co *CompileOptions) apply(opts []func(*CompileOptions)) {
	for _, opt := range opts {
		opt(co)
	}
}

func newCompileOptions(opts ...func(*CompileOptions)) CompileOptions {
	options := CompileOptions{
		Tick: DefaultClock,
	}
	options.apply(opts)
	return options
}

// NamePlaceholder returns the expression attribute name placeholder for field.
func NamePlaceholder(field string) string {
	return "#" + field + "_key"
}

// ValuePlaceholder returns the expression attribute value placeholder for field.
func ValuePlaceholder(field string) string {
	return ":" + field + "_val"
}

// ValidateFieldName returns an [ErrInvalidField] error if name cannot be used
// to derive placeholders.
func ValidateFieldName(name string) error {
	if !fieldNamePattern.MatchString(name) {
		return newError(CodeInvalidField, fmt.Sprintf("field name %q may only contain letters, digits and underscores", name), nil)
	}
	return nil
}

// CompileUpdate compiles fields into a SET update statement. Each field k is bound
// as "#k_key = :k_val", and the modification timestamp is always bound last as
// "#updated_at_key = :updated_at_val" with the current time in Unix nanoseconds.
// A caller supplied updated_at field is ignored in favor of the timestamp, so
// Names and Values each hold one entry per field other than updated_at, plus
// one for the timestamp.
//
// Fields are emitted in name order, so equal inputs compile to equal expressions.
func CompileUpdate(fields Fields, opts ...func(*CompileOptions)) (*UpdateStatement, error) {
	options := newCompileOptions(opts...)

	names := make([]string, 0, len(fields))
	for name := range fields {
		if name == AttributeNameUpdated {
			continue
		}
		if err := ValidateFieldName(name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	slices.Sort(names)

	stmt := &UpdateStatement{
		Names:  make(map[string]string, len(names)+1),
		Values: make(Item, len(names)+1),
	}

	fragments := make([]string, 0, len(names)+1)
	for _, name := range names {
		av, err := attributevalue.Marshal(fields[name])
		if err != nil {
			return nil, newError(CodeInvalidField, fmt.Sprintf("failed to marshal field %q", name), err)
		}

		fragments = append(fragments, bind(stmt, name, av))
	}

	updated := &types.AttributeValueMemberN{
		Value: strconv.FormatInt(options.Tick().UnixNano(), 10),
	}
	fragments = append(fragments, bind(stmt, AttributeNameUpdated, updated))

	stmt.Expression = "set " + strings.Join(fragments, ", ")
	return stmt, nil
}

// bind registers the placeholders for field and returns its SET fragment.
func bind(stmt *UpdateStatement, field string, av types.AttributeValue) string {
	var (
		name  = NamePlaceholder(field)
		value = ValuePlaceholder(field)
	)
	stmt.Names[name] = field
	stmt.Values[value] = av
	return name + " = " + value
}
