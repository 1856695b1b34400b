// Package migrations embeds the versioned schema files so the deployed binary
// carries its own schema history.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
