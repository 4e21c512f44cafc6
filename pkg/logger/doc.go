// Package logger builds *slog.Logger instances for tenantdb services and
// provides attribute helpers that keep log keys consistent across packages.
//
// New assembles a JSON or text handler, applies static attributes such as
// the service name, and optionally wraps the handler so values stored in a
// context.Context (a request id, for example) are added to every record
// logged with that context.
//
//	log := logger.New(
//	    logger.WithService("tenantdbd"),
//	    logger.WithLevelName("debug"),
//	    logger.WithContextExtractors(httpapi.RequestIDExtractor()),
//	)
//	log.InfoContext(ctx, "tenant attached", logger.TenantID("acme"), logger.Duration(d))
//
// Packages that accept an optional logger fall back to Discard.
//
// Error and Errors return an empty attribute for nil errors, so they can be
// passed unconditionally.
package logger
