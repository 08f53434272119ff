// Package migrations holds the run store schema. SQL migrations are embedded;
// Go migrations register themselves with goose on import.
package migrations

import "embed"

// FS contains the SQL migration files
//
//go:embed *.sql
var FS embed.FS
