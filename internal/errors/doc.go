// Package errors provides husk's structured error system.
//
// Every user-facing failure carries a registered code (e.g. "E301"), a
// category, a short message, and optionally a detail, a fix suggestion, a
// source location, and a documentation link. Codes keep terminal output and
// docs stable while the wording evolves.
//
// Code ranges:
//
//	E1xx  project configuration (husk.json)
//	E2xx  bundling / production build
//	E3xx  development server
//	E4xx  deployment
//	E5xx  CLI usage
//
// Typical construction:
//
//	return errors.New("E301").
//	    WithDetail(fmt.Sprintf("port %d is in use", port)).
//	    WithSuggestion("Stop the process holding the port; the dev server never substitutes another one")
//
// Errors wrap an underlying cause where one exists, so errors.Is/As keep
// working through the chain.
package errors
