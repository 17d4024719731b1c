// Package portal provides embedded assets for production builds.
package portal

import "embed"

// StaticFS holds the portal's client bundle. In dev mode (IsDev=true) the
// files are served from disk so edits show up without a rebuild; production
// builds serve from this embedded filesystem.
//
//go:embed all:static
var StaticFS embed.FS
