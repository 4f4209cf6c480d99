// Package migrations holds the goose SQL migrations for the users, trips and
// places tables.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
