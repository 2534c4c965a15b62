// Package migrations embeds the SQL migration files so the migrate CLI and
// the server can apply the schema without a migrations directory on disk.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
