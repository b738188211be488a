// Package dynamock provides testing utilities for the dynapatch library.
//
// This package includes:
//   - Expectation-based mock DynamoDB client for unit testing
//   - Request builders with functional options
//   - Local DynamoDB integration utilities
//   - Record seeding helpers, including JSON fixtures
//   - Integration test utilities with automatic cleanup
//
// # Mock Client
//
// The MockClient fails the test on any call without an expectation, which
// makes "no store call was issued" the default assertion:
//
//	mock := dynamock.NewMockClient(t).ExpectUpdate(func(in *dynamodb.UpdateItemInput) {
//		// Verify the request
//	})
//
//	handler := dynapatch.NewHandler(mock)
//	_, err := handler.Update(ctx, loc, req)
//	updates := mock.Updates()
//
// Store failures are simulated with FailUpdate:
//
//	mock := dynamock.NewMockClient(t).FailUpdate(errors.New("boom"))
//
// # Request Builders
//
//	req := dynamock.NewRequest(
//		dynamock.WithID("F1"),
//		dynamock.WithField("name", "update_function"),
//	).Build()
//
// # Local DynamoDB Integration
//
// For integration testing with DynamoDB Local:
//
//	dynamock.RunIntegrationTest(t, nil, func(local *dynamock.LocalDynamoDB, loc dynapatch.RecordLocation) {
//		seeder := dynamock.NewSeedTestData(local.Client, loc)
//		_ = seeder.SeedRecord(ctx, map[string]any{"id": "F1", "name": "old"})
//
//		handler := dynapatch.NewHandler(local.Client)
//		_, err := handler.Update(ctx, loc, req)
//
//		item, err := local.GetRecord(ctx, loc, dynapatch.Filter{"id": "F1"}, "name", "updated_at")
//	})
//
// Integration tests are skipped in short mode and when DynamoDB Local is not
// listening on the configured port (8000 by default).
//
// # Seeding From JSON
//
// Fixtures can be stored as a JSON array of records, each containing the
// table's primary key:
//
//	[
//	  {"id": "F1", "name": "resize", "runtime": "go"},
//	  {"id": "F2", "name": "thumbnail", "memory": 256}
//	]
//
//	count, err := seeder.SeedFromJSON(ctx, file)
package dynamock
