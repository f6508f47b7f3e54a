package api

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"
	"golang.org/x/time/rate"

	"coviddash/internal/config"
	"coviddash/internal/logging"
)

const shutdownTimeout = 10 * time.Second

// NewServer wires middleware, static assets, templates and routes.
func NewServer(h *Handler, conf config.Config, logger *zap.Logger) (*echo.Echo, error) {
	serverConf := conf.Server

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(logging.EchoLevel(conf.Log.Level))
	e.JSONSerializer = goJSONSerializer{}
	e.HTTPErrorHandler = errorHandler(logger)

	if serverConf.CertDir != "" {
		e.Pre(middleware.HTTPSRedirect())
	}
	e.Pre(middleware.RemoveTrailingSlash())
	if serverConf.AcmeEnabled && len(serverConf.Hostnames) > 0 {
		e.Pre(echo.MiddlewareFunc(func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				req := c.Request()
				url := req.URL
				if req.Host != serverConf.Hostnames[0] {
					url.Host = serverConf.Hostnames[0]
					logger.Info("redirect to canonical hostname", zap.String("original_hostname", req.Host))
					return c.Redirect(http.StatusPermanentRedirect, url.String())
				}
				return next(c)
			}
		}))
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))

	// configure rate limiting if enabled
	if serverConf.RateLimit > 0 {
		identifierExtractor := func(c echo.Context) (string, error) {
			return c.Request().RemoteAddr, nil
		}
		if serverConf.BehindLoadBalancer {
			identifierExtractor = func(c echo.Context) (string, error) {
				return c.RealIP(), nil
			}
		}

		e.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Skipper: middleware.DefaultSkipper,
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(
				middleware.RateLimiterMemoryStoreConfig{
					Rate:      rate.Limit(serverConf.RateLimit),
					Burst:     3 * serverConf.RateLimit,
					ExpiresIn: 3 * time.Minute,
				},
			),
			IdentifierExtractor: identifierExtractor,
			ErrorHandler: func(c echo.Context, err error) error {
				return c.String(http.StatusForbidden, "Forbidden")
			},
			DenyHandler: func(c echo.Context, identifier string, err error) error {
				return c.String(http.StatusTooManyRequests, "Too Many Requests")
			},
		}))
	}

	if serverConf.GzipLevel != 0 {
		e.Use(middleware.GzipWithConfig(middleware.GzipConfig{Level: serverConf.GzipLevel, MinLength: 512}))
	}

	if serverConf.TimeoutSeconds != 0 {
		e.Use(middleware.ContextTimeout(time.Duration(serverConf.TimeoutSeconds) * time.Second))
	}

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogError:     true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogLatency:   serverConf.LogLatency,
		HandleError:  true, // forwards error to the global error handler, so it can decide appropriate status code
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.String("remote_ip", v.RemoteIP),
				zap.String("request_id", v.RequestID),
				zap.Int64("latency_ms", v.Latency.Milliseconds()),
			}
			if v.Error != nil {
				logger.Error("REQUEST_ERROR", append(fields, zap.Error(v.Error))...)
			} else {
				logger.Info("REQUEST", fields...)
			}
			return nil
		},
	}))

	staticDir, err := fs.Sub(staticFs, "static")
	if err != nil {
		return nil, err
	}
	assets, err := NewHashFS(staticDir, logger)
	if err != nil {
		return nil, fmt.Errorf("hash static assets: %w", err)
	}

	e.Renderer = NewTemplateRenderer(assets)
	e.GET("/static/*", echo.WrapHandler(http.StripPrefix("/static/", assets)))

	h.RegisterRoutes(e)
	return e, nil
}

// Serve runs e until ctx is cancelled, then shuts it down gracefully.
func Serve(ctx context.Context, e *echo.Echo, conf config.ServerConfig, logger *zap.Logger) error {
	addr := fmt.Sprintf("%s:%d", conf.Addr, conf.Port)

	errCh := make(chan error, 1)
	go func() {
		switch {
		case conf.CertDir != "" && conf.AcmeEnabled:
			logger.Info("using TLS with ACME", zap.String("dir", conf.CertDir), zap.String("addr", addr))
			e.AutoTLSManager.HostPolicy = autocert.HostWhitelist(conf.Hostnames...)
			e.AutoTLSManager.Cache = autocert.DirCache(conf.CertDir)
			errCh <- e.StartAutoTLS(addr)
		case conf.CertDir != "":
			logger.Info("using TLS with certDir", zap.String("dir", conf.CertDir), zap.String("addr", addr))
			errCh <- e.StartTLS(addr, path.Join(conf.CertDir, "fullchain.pem"), path.Join(conf.CertDir, "privkey.pem"))
		default:
			logger.Info("server listening", zap.String("addr", addr))
			errCh <- e.Start(addr)
		}
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	}
}
