package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/10664kls/monthlyp-annotator-api/internal/annotate"
	"github.com/10664kls/monthlyp-annotator-api/internal/config"
	"github.com/10664kls/monthlyp-annotator-api/internal/gen"
	"github.com/10664kls/monthlyp-annotator-api/internal/server"
	"github.com/labstack/echo/v4"
	stdmw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	zlog, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer zlog.Sync()
	zap.ReplaceGlobals(zlog)
	zlog.Info("Logger replaced in globals")
	zlog.Info("Logger initialized")

	layout, err := cfg.Layout()
	if err != nil {
		return fmt.Errorf("failed to load layout: %w", err)
	}
	zlog.Info("Layout loaded",
		zap.String("mode", string(layout.Mode)),
		zap.String("reference", layout.ReferenceSheet),
		zap.String("comparison", layout.ComparisonSheet),
	)
	if off := layout.Disabled(); len(off) > 0 {
		zlog.Warn("Layout columns disabled", zap.Strings("columns", off))
	}

	annotator, err := annotate.NewAnnotator(layout, zlog)
	if err != nil {
		return fmt.Errorf("failed to create annotator: %w", err)
	}

	// Initialize the annotate service
	annotateSvc, err := annotate.NewService(ctx, annotator, cfg.TempDir, zlog)
	if err != nil {
		return fmt.Errorf("failed to create annotate service: %w", err)
	}
	zlog.Info("Annotate service initialized", zap.String("temp_dir", cfg.TempDir))

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = server.HTTPErrorHandler
	e.Pre(stdmw.RemoveTrailingSlash())
	e.Use(stdmw.RequestIDWithConfig(stdmw.RequestIDConfig{
		Generator: gen.ID,
	}))
	e.Use(httpLogger(zlog))
	e.Use(stdMws(cfg)...)

	serve := must(server.NewServer(annotateSvc))
	if err := serve.Install(e, cfg.AnnotateRoute); err != nil {
		return fmt.Errorf("failed to install annotate service: %w", err)
	}

	errCh := make(chan error)
	go func() {
		errCh <- e.Start(fmt.Sprintf(":%s", cfg.Port))
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		zlog.Info("Received shutdown signal, shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		zlog.Info("Waiting for server to shut down...")
		if err := e.Shutdown(ctx); err != nil {
			zlog.Error("Error shutting down server", zap.Error(err))
			return err
		}
		zlog.Info("Server shut down gracefully")

	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error("Error starting server", zap.Error(err))
			return err
		}
	}

	return nil
}

func httpLogger(zlog *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			fields := []zapcore.Field{
				zap.String("remote_ip", c.RealIP()),
				zap.String("host", req.Host),
				zap.String("request", fmt.Sprintf("%s %s", req.Method, req.RequestURI)),
				zap.Int("status", res.Status),
				zap.Int64("size", res.Size),
				zap.String("user_agent", req.UserAgent()),
			}

			id := res.Header().Get(echo.HeaderXRequestID)
			if id != "" {
				fields = append(fields, zap.String("request_id", id))
			}

			n := res.Status
			switch {
			case n >= 500:
				zlog.
					With(zap.Error(err)).
					Error("HTTP Error", fields...)

			case n >= 400:
				zlog.
					With(zap.Error(err)).
					Warn("HTTP Error", fields...)

			case n >= 300:
				zlog.
					Info("Redirect", fields...)

			default:
				zlog.
					Info("HTTP Request", fields...)
			}

			return nil
		}
	}
}

func stdMws(cfg config.Config) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		stdmw.Recover(),
		stdmw.CORSWithConfig((stdmw.CORSConfig{
			AllowOriginFunc: func(origin string) (bool, error) {
				return true, nil
			},
			AllowMethods: []string{
				http.MethodGet,
				http.MethodPost,
				http.MethodOptions,
			},
			ExposeHeaders: []string{
				echo.HeaderContentDisposition,
				server.HeaderMatched,
				server.HeaderSkipped,
			},
			AllowCredentials: true,
			MaxAge:           3600,
		})),
		stdmw.Secure(),
		stdmw.BodyLimit(cfg.UploadLimit),
		stdmw.RateLimiter(stdmw.NewRateLimiterMemoryStore(cfg.RateLimit)),
	}
}

func newLogger(level zapcore.Level) (*zap.Logger, error) {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("02/01/2006 15:04:05 Z07:00"),
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	zconf := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	zlog, err := zconf.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return zlog, nil
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
