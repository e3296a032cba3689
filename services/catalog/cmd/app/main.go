package main

import (
	"animov/pkg/config"
	app "animov/services/catalog/internal/app"
)

// @title           Catalog Service API
// @version         1.0
// @description     Search, trending and details over TMDB, Jikan and Google Books

// @host      localhost:8005
// @BasePath  /api/v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		panic(err)
	}

	if err := application.Run(); err != nil {
		panic(err)
	}

	application.Wait()

	if err := application.Shutdown(); err != nil {
		panic(err)
	}
}
