// Package embedded provides embedded static assets for the application.
package embedded

import (
	"embed"
)

// Files holds the browser view served at / and /assets/*:
// web/index.html plus its script and stylesheet under web/assets.
//
//go:embed web
var Files embed.FS
