// Package appfs embeds the files the binaries need at runtime.
package appfs

import (
	"embed"
	"io/fs"
)

//go:embed migrations/*.sql templates/email/*
var FS embed.FS

const MigrationsDir = "migrations"

// EmailTemplates returns the email templates directory as the root of a fs.FS.
func EmailTemplates() fs.FS {
	sub, err := fs.Sub(FS, "templates/email")
	if err != nil {
		panic(err)
	}
	return sub
}
