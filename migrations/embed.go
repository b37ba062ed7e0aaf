// Package migrations ships the attempt_ledger and audit_events schema.
// Only the integration test harness applies it.
package migrations

import "embed"

// Schema holds numbered NNNN_name.{up,down}.sql pairs.
//
//go:embed *.up.sql *.down.sql
var Schema embed.FS
