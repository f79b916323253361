// Package migrations embeds the SQL schema files applied by the migrate
// command, in lexical order.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
