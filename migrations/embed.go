// Package migrations embeds the contig-alias schema so the server and the loader
// do not depend on the working directory.
package migrations

import "embed"

// FS holds the numbered up/down migration files.
//
//go:embed *.sql
var FS embed.FS
