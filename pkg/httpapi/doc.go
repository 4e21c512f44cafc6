// Package httpapi exposes a tenantdb.Service over HTTP with chi.
//
// Every response uses the same envelope:
//
//	{"code": "ok", "data": [...], "meta": {"tenant_id": "acme", "row_count": 2}}
//	{"code": "QUERY_EXECUTION_FAILED", "error": {"code": "...", "message": "...", "context": {...}}}
//
// Statement endpoints take {"sql": "...", "args": [...]}. Errors map to
// statuses through StatusFor: not initialized is 503, a bad tenant id 400,
// a failing statement 422, attach/detach failures 502 and everything else 500.
//
// Requests carry an X-Request-ID; RequestIDExtractor puts it on log records.
package httpapi
