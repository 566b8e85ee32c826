// Package migrations holds the embedded sqlite migration scripts.
package migrations

import "embed"

// All contains the migration scripts, named like "0001_create_audit_log.sql".
//
//go:embed *.sql
var All embed.FS
