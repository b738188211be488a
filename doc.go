// Package dynapatch performs partial updates of a single DynamoDB record.
//
// A caller supplies a filter that identifies the record by its configured
// primary key and a set of fields to overwrite. The fields are compiled into
// an UpdateExpression that references attribute names and values only through
// placeholders, so caller input never becomes expression syntax and never
// collides with DynamoDB reserved words.
//
// # Compiling updates
//
// Each field k is bound as "#k_key = :k_val", and every statement ends with the
// modification timestamp binding:
//
//	stmt, err := dynapatch.CompileUpdate(dynapatch.Fields{"name": "update_function"})
//	// stmt.Expression: "set #name_key = :name_val, #updated_at_key = :updated_at_val"
//	// stmt.Names:      {"#name_key": "name", "#updated_at_key": "updated_at"}
//	// stmt.Values:     {":name_val": S("update_function"), ":updated_at_val": N(<unix nanos>)}
//
// Field names may only contain letters, digits and underscores.
//
// # Handling requests
//
// The Handler validates the filter, compiles the fields and submits the
// update:
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	handler := dynapatch.NewHandler(dynamodb.NewFromConfig(cfg))
//	loc := dynapatch.NewRecordLocation("functions", "id")
//	resp, err := handler.Update(ctx, loc, dynapatch.Request{
//	    Filter: dynapatch.Filter{"id": "9b999589-e1eb-4356-a477-c38df2d3a681"},
//	    Data:   dynapatch.Fields{"name": "update_function"},
//	})
//
// Failures are returned as *Error values with a machine-readable code such as
// INVALID_FILTER or STORE_ERROR, and match the package sentinels with errors.Is.
//
// # Handler context
//
// Deployment configuration and AWS access are supplied through a
// HandlerContext: StaticContext carries them as values, while PlatformContext
// resolves them from the environment and the AWS default credential chain.
package dynapatch
