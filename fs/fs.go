// Package appfs embeds the files the binaries ship with: SQL migrations & email templates.
package appfs

import "embed"

//go:embed migrations templates
var FS embed.FS

const (
	MigrationsDir     = "migrations"
	EmailTemplatesDir = "templates/email"
)
