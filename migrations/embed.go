// Package migrations ships the SQL schema inside the binaries.
package migrations

import "embed"

// FS holds the numbered golang-migrate files in this directory
//
//go:embed *.sql
var FS embed.FS
