// Package dev provides the husk development server.
//
// The server binds exactly the resolved dev port (strict-port policy: it
// fails instead of substituting another port, so the shell host never has to
// guess), serves the most recent build of the project, watches the source
// tree, and refreshes connected browsers over WebSocket.
//
// Components:
//
//   - Watcher: fsnotify-based file watching with debounce and ignores
//   - ReloadServer: broadcasts reload/css/error messages to browsers
//   - Server: HTTP surface (entry documents, assets, /metrics) plus the
//     rebuild loop driving the bundle pipeline
//
// # Reload protocol
//
// Browsers connect to /__husk/reload. Messages are JSON-encoded:
//
//	{"type": "reload"}                 // full page reload
//	{"type": "css", "file": "..."}     // CSS-only reload
//	{"type": "error", "error": "..."}  // show error overlay
//	{"type": "clear"}                  // clear error overlay
package dev
