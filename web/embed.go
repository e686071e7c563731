// Package web contains embedded templates and static assets for the report UI.
package web

import "embed"

//go:embed templates/* static/*

// Assets contains the embedded frontend files.
var Assets embed.FS
