// Package schemas содержит JSON Schema контракты вебхуков платформы,
// встроенные в бинарник через embed.
package schemas

import "embed"

//go:embed webhooks
var SchemasFS embed.FS
