package httpserver

import "time"

type Config struct {
	Addr            string        `env:"TENANTDB_HTTP_ADDR" envDefault:":8080"`           // Addr is the address the server listens on.
	ReadTimeout     time.Duration `env:"TENANTDB_HTTP_READ_TIMEOUT" envDefault:"30s"`     // ReadTimeout bounds reading the whole request.
	WriteTimeout    time.Duration `env:"TENANTDB_HTTP_WRITE_TIMEOUT" envDefault:"60s"`    // WriteTimeout bounds writing the response; long analytical queries need headroom.
	IdleTimeout     time.Duration `env:"TENANTDB_HTTP_IDLE_TIMEOUT" envDefault:"120s"`    // IdleTimeout applies between keep-alive requests.
	ShutdownTimeout time.Duration `env:"TENANTDB_HTTP_SHUTDOWN_TIMEOUT" envDefault:"15s"` // ShutdownTimeout covers draining requests and the shutdown funcs.
}

// NewFromConfig creates a Server from cfg. Zero values keep the defaults.
func NewFromConfig(cfg Config, opts ...Option) *Server {
	configOpts := make([]Option, 0, 5+len(opts))

	if cfg.Addr != "" {
		configOpts = append(configOpts, WithAddr(cfg.Addr))
	}
	if cfg.ReadTimeout > 0 {
		configOpts = append(configOpts, WithReadTimeout(cfg.ReadTimeout))
	}
	if cfg.WriteTimeout > 0 {
		configOpts = append(configOpts, WithWriteTimeout(cfg.WriteTimeout))
	}
	if cfg.IdleTimeout > 0 {
		configOpts = append(configOpts, WithIdleTimeout(cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout > 0 {
		configOpts = append(configOpts, WithShutdownTimeout(cfg.ShutdownTimeout))
	}

	return New(append(configOpts, opts...)...)
}
