package dynapatch

import (
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func fixedClock(co *CompileOptions) {
	co.Tick = func() time.Time { return fixedTime }
}

func nanos(t *testing.T, stmt *UpdateStatement) int64 {
	t.Helper()
	n, ok := stmt.Values[":updated_at_val"].(*types.AttributeValueMemberN)
	require.True(t, ok, "timestamp must be a number attribute")
	v, err := strconv.ParseInt(n.Value, 10, 64)
	require.NoError(t, err)
	require.GreaterOrEqual(t, v, int64(0))
	return v
}

func TestCompileUpdate(t *testing.T) {
	t.Run("single field", func(t *testing.T) {
		stmt, err := CompileUpdate(Fields{"name": "update_function"}, fixedClock)
		require.NoError(t, err)

		assert.Equal(t, "set #name_key = :name_val, #updated_at_key = :updated_at_val", stmt.Expression)
		assert.Equal(t, map[string]string{
			"#name_key":       "name",
			"#updated_at_key": "updated_at",
		}, stmt.Names)
		assert.Equal(t, &types.AttributeValueMemberS{Value: "update_function"}, stmt.Values[":name_val"])
		assert.Equal(t, fixedTime.UnixNano(), nanos(t, stmt))
		assert.Len(t, stmt.Values, 2)
	})

	t.Run("empty fields", func(t *testing.T) {
		for _, fields := range []Fields{{}, nil} {
			stmt, err := CompileUpdate(fields, fixedClock)
			require.NoError(t, err)

			assert.Equal(t, "set #updated_at_key = :updated_at_val", stmt.Expression)
			assert.Equal(t, map[string]string{"#updated_at_key": "updated_at"}, stmt.Names)
			assert.Len(t, stmt.Values, 1)
		}
	})

	t.Run("fields are sorted", func(t *testing.T) {
		stmt, err := CompileUpdate(Fields{"zeta": 1, "alpha": 2, "mid": 3}, fixedClock)
		require.NoError(t, err)

		assert.Equal(t,
			"set #alpha_key = :alpha_val, #mid_key = :mid_val, #zeta_key = :zeta_val, #updated_at_key = :updated_at_val",
			stmt.Expression,
		)
	})

	t.Run("caller updated_at is overridden", func(t *testing.T) {
		stmt, err := CompileUpdate(Fields{"updated_at": "yesterday", "name": "x"}, fixedClock)
		require.NoError(t, err)

		assert.Equal(t, "set #name_key = :name_val, #updated_at_key = :updated_at_val", stmt.Expression)
		assert.Equal(t, 1, strings.Count(stmt.Expression, "#updated_at_key"))
		assert.Equal(t, fixedTime.UnixNano(), nanos(t, stmt))
		assert.Len(t, stmt.Names, 2)
		assert.Len(t, stmt.Values, 2)
	})

	t.Run("value kinds", func(t *testing.T) {
		stmt, err := CompileUpdate(Fields{
			"nothing": nil,
			"enabled": true,
			"memory":  256,
			"ratio":   0.5,
			"tags":    []any{"a", false},
			"env":     map[string]any{"STAGE": "prod"},
		}, fixedClock)
		require.NoError(t, err)

		assert.Equal(t, &types.AttributeValueMemberNULL{Value: true}, stmt.Values[":nothing_val"])
		assert.Equal(t, &types.AttributeValueMemberBOOL{Value: true}, stmt.Values[":enabled_val"])
		assert.Equal(t, &types.AttributeValueMemberN{Value: "256"}, stmt.Values[":memory_val"])
		assert.Equal(t, &types.AttributeValueMemberN{Value: "0.5"}, stmt.Values[":ratio_val"])
		assert.IsType(t, &types.AttributeValueMemberL{}, stmt.Values[":tags_val"])
		assert.IsType(t, &types.AttributeValueMemberM{}, stmt.Values[":env_val"])
	})
}

func TestCompileUpdatePlaceholderCompleteness(t *testing.T) {
	sets := []Fields{
		{},
		{"a": 1},
		{"a": 1, "b": "two", "c": nil},
		{"name": "n", "description": "d", "runtime": "go", "memory": 128, "timeout": 30},
	}

	for _, fields := range sets {
		stmt, err := CompileUpdate(fields)
		require.NoError(t, err)

		assert.Len(t, stmt.Names, len(fields)+1)
		assert.Len(t, stmt.Values, len(fields)+1)

		body := strings.TrimPrefix(stmt.Expression, "set ")
		for _, fragment := range strings.Split(body, ", ") {
			parts := strings.Split(fragment, " = ")
			require.Len(t, parts, 2, fragment)

			name, value := parts[0], parts[1]
			assert.Contains(t, stmt.Names, name)
			assert.NotContains(t, stmt.Values, name)
			assert.Contains(t, stmt.Values, value)
			assert.NotContains(t, stmt.Names, value)
		}
	}
}

func TestCompileUpdateTimestampFreshness(t *testing.T) {
	first, err := CompileUpdate(Fields{"a": 1})
	require.NoError(t, err)
	second, err := CompileUpdate(Fields{"a": 1})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, nanos(t, second), nanos(t, first))

	tick := fixedTime
	stepping := func(co *CompileOptions) {
		co.Tick = func() time.Time {
			tick = tick.Add(time.Nanosecond)
			return tick
		}
	}

	first, err = CompileUpdate(Fields{"a": 1}, stepping)
	require.NoError(t, err)
	second, err = CompileUpdate(Fields{"a": 1}, stepping)
	require.NoError(t, err)
	assert.Greater(t, nanos(t, second), nanos(t, first))
}

func TestCompileUpdateIsOrderIndependent(t *testing.T) {
	names := []string{"name", "runtime", "memory", "handler", "description"}

	forward := make(Fields)
	for _, name := range names {
		forward[name] = name
	}
	backward := make(Fields)
	for i := len(names) - 1; i >= 0; i-- {
		backward[names[i]] = names[i]
	}

	for i := 0; i < 10; i++ {
		a, err := CompileUpdate(forward, fixedClock)
		require.NoError(t, err)
		b, err := CompileUpdate(backward, fixedClock)
		require.NoError(t, err)

		assert.Equal(t, a, b)
	}
}

func TestCompileUpdateRejectsFieldNames(t *testing.T) {
	for _, name := range []string{"", "a b", "#name", ":name", "name.first", "first-name", "a=b", "ñame", "x, #y"} {
		t.Run(name, func(t *testing.T) {
			stmt, err := CompileUpdate(Fields{name: "v", "ok": 1})
			assert.Nil(t, stmt)
			assert.True(t, errors.Is(err, ErrInvalidField), "got %v", err)
		})
	}
}

func TestValidateFieldName(t *testing.T) {
	for _, name := range []string{"name", "Name2", "_private", "updated_at", "0"} {
		assert.NoError(t, ValidateFieldName(name), name)
	}
	assert.Error(t, ValidateFieldName("bad name"))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "#name_key", NamePlaceholder("name"))
	assert.Equal(t, ":name_val", ValuePlaceholder("name"))
}
