// Package migrations contains the SQL migrations for the quill database.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
