// Package httpserver runs an http.Handler with graceful shutdown.
//
// Run binds the listener, serves until the context is canceled or the
// process gets SIGINT/SIGTERM, drains in-flight requests and then runs the
// funcs registered with WithShutdownFunc, all within the shutdown timeout.
// Registering the tenant service's Shutdown there guarantees tenants are
// detached only after the last request using them has finished.
//
//	srv := httpserver.NewFromConfig(cfg.HTTP,
//		httpserver.WithLogger(log),
//		httpserver.WithShutdownFunc(svc.Shutdown),
//	)
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// Listen errors are wrapped with ErrStart and shutdown errors with
// ErrShutdown.
package httpserver
