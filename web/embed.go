package web

import "embed"

// Templates embeds the library's built-in HTML templates. Applications can
// shadow any of them by placing a file with the same name on the configured
// template search path.
//
//go:embed templates/*.html
var Templates embed.FS
