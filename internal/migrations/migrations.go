// Package migrations carries the SQL schema, embedded so the binary can
// bootstrap its own ledger tables.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
