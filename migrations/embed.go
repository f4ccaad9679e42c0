package migrations

import "embed"

// Files holds goose SQL migrations shared by the sqlite and postgres drivers.
//
//go:embed *.sql
var Files embed.FS
