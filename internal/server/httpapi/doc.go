// Package httpapi exposes the perfumekeeper JSON API over HTTP.
//
// Routes live under /api/v1; /health and /metrics sit at the root. Every
// error response has the shape
//
//	{"error_code": "NOT_FOUND", "message": "perfume not found"}
//
// and is produced by writeError, which maps the sentinel errors of
// internal/common to status codes in one table.
package httpapi
