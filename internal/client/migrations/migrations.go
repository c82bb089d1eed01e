// Package migrations holds the schema of the guest store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
