package app

import (
	"fmt"
	"io/fs"
	"strings"

	"allumino/internal/config"
	"allumino/internal/delivery/http/middleware"
	"allumino/internal/pkg/logger"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

// Bootstrap builds the container and the fiber app on top of it.
func Bootstrap(cfg config.Config, log *logger.Logger, migrations fs.FS) (*App, error) {
	ctn, err := NewContainer(cfg, log, migrations)
	if err != nil {
		return nil, err
	}

	f := fiber.New(fiber.Config{
		AppName: cfg.App.AppName,
	})

	errMw := middleware.NewErrorMiddleware(log, cfg.App.IsDevelopment())
	accessMw := middleware.NewAccessLogMiddleware(log)

	// Error normalization sits outermost so panics in any later layer still
	// produce the uniform error body.
	f.Use(errMw.Middleware())
	f.Use(accessMw.Middleware())

	ctn.Registry.Register(f)

	return &App{Fiber: f, Container: ctn}, nil
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
