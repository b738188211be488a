package dynamock

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/nisimpson/dynapatch"
)

// DefaultPrimaryKey is the primary key used for tables created by the test helpers.
const DefaultPrimaryKey = "id"

// TableManager manages DynamoDB tables for testing, providing automatic cleanup.
type TableManager struct {
	local  *LocalDynamoDB
	tables []string // track created tables for cleanup
}

// NewTableManager creates a new table manager with the given DynamoDB client.
func NewTableManager(client *dynamodb.Client) *TableManager {
	return &TableManager{
		local:  &LocalDynamoDB{Client: client},
		tables: make([]string, 0),
	}
}

// CreateTestTable creates a table for loc and tracks it for cleanup.
func (tm *TableManager) CreateTestTable(ctx context.Context, loc dynapatch.RecordLocation) error {
	if err := tm.local.CreateRecordTable(ctx, loc); err != nil {
		return err
	}

	tm.tables = append(tm.tables, loc.TableName)
	return nil
}

// Cleanup deletes all tables created by this manager.
func (tm *TableManager) Cleanup(ctx context.Context) error {
	for _, tableName := range tm.tables {
		if err := tm.local.DeleteTable(ctx, tableName); err != nil {
			return fmt.Errorf("failed to delete table %s: %w", tableName, err)
		}
	}

	tm.tables = tm.tables[:0]
	return nil
}

// GetTableNames returns the names of all tables managed by this manager.
func (tm *TableManager) GetTableNames() []string {
	names := make([]string, len(tm.tables))
	copy(names, tm.tables)
	return names
}

// NewTestTable generates a unique table name for testing.
func NewTestTable(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// WithIsolatedTable runs a test function with an isolated table keyed by
// primaryKey that is automatically cleaned up.
func WithIsolatedTable(t *testing.T, client *dynamodb.Client, primaryKey string, fn func(loc dynapatch.RecordLocation)) {
	ctx := context.Background()
	loc := dynapatch.NewRecordLocation(NewTestTable("test"), primaryKey)
	tm := NewTableManager(client)

	// Ensure cleanup happens even if test panics
	defer func() {
		if err := tm.Cleanup(ctx); err != nil {
			t.Errorf("Failed to cleanup table %s: %v", loc.TableName, err)
		}
	}()

	if err := tm.CreateTestTable(ctx, loc); err != nil {
		t.Fatalf("Failed to create test table %s: %v", loc.TableName, err)
	}

	fn(loc)
}

// WithLocalDynamoDB runs a test function with a local DynamoDB instance.
// It skips the test if DynamoDB Local is not available or in short mode.
func WithLocalDynamoDB(t *testing.T, port int, fn func(local *LocalDynamoDB)) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	local := NewLocalDynamoDB(port)
	if !local.IsAvailable(context.Background()) {
		t.Skipf("DynamoDB Local not available on port %d", port)
	}

	fn(local)
}

// WithDefaultLocalDynamoDB runs a test function with the default local DynamoDB instance (port 8000).
func WithDefaultLocalDynamoDB(t *testing.T, fn func(local *LocalDynamoDB)) {
	WithLocalDynamoDB(t, DefaultLocalPort, fn)
}

// IntegrationTestConfig holds configuration for integration tests.
type IntegrationTestConfig struct {
	Port             int
	SkipIfNotRunning bool
	TablePrefix      string
	PrimaryKey       string
	CleanupTimeout   time.Duration
}

// DefaultIntegrationTestConfig returns a default configuration for integration tests.
func DefaultIntegrationTestConfig() *IntegrationTestConfig {
	return &IntegrationTestConfig{
		Port:             DefaultLocalPort,
		SkipIfNotRunning: true,
		TablePrefix:      "integration-test",
		PrimaryKey:       DefaultPrimaryKey,
		CleanupTimeout:   30 * time.Second,
	}
}

// RunIntegrationTest runs fn against a fresh table on DynamoDB Local and
// deletes the table afterwards.
func RunIntegrationTest(t *testing.T, config *IntegrationTestConfig, fn func(local *LocalDynamoDB, loc dynapatch.RecordLocation)) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	if config == nil {
		config = DefaultIntegrationTestConfig()
	}

	local := NewLocalDynamoDB(config.Port)
	ctx := context.Background()

	if !local.IsAvailable(ctx) {
		if config.SkipIfNotRunning {
			t.Skipf("DynamoDB Local not available on port %d", config.Port)
		} else {
			t.Fatalf("DynamoDB Local not available on port %d", config.Port)
		}
	}

	loc := dynapatch.NewRecordLocation(NewTestTable(config.TablePrefix), config.PrimaryKey)
	if err := local.CreateRecordTable(ctx, loc); err != nil {
		t.Fatalf("Failed to create test table %s: %v", loc.TableName, err)
	}

	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), config.CleanupTimeout)
		defer cancel()

		if err := local.DeleteTable(cleanupCtx, loc.TableName); err != nil {
			t.Errorf("Failed to cleanup table %s: %v", loc.TableName, err)
		}
	}()

	fn(local, loc)
}

// SeedTestData is a helper for seeding test records into a table.
type SeedTestData struct {
	client DynamoDBPutter
	loc    dynapatch.RecordLocation
}

// NewSeedTestData creates a new test data seeder.
func NewSeedTestData(client DynamoDBPutter, loc dynapatch.RecordLocation) *SeedTestData {
	return &SeedTestData{
		client: client,
		loc:    loc,
	}
}

// SeedRecord seeds a single record into the table.
func (s *SeedTestData) SeedRecord(ctx context.Context, record map[string]any) error {
	return putRecord(ctx, s.client, s.loc, record)
}

// SeedRecords seeds multiple records into the table.
func (s *SeedTestData) SeedRecords(ctx context.Context, records ...map[string]any) error {
	for i, record := range records {
		if err := s.SeedRecord(ctx, record); err != nil {
			return fmt.Errorf("failed to seed record %d: %w", i, err)
		}
	}
	return nil
}
