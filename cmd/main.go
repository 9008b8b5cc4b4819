package main

import (
	"go.uber.org/fx"

	"signtusk/internal/config"
	deliveryhttp "signtusk/internal/delivery/http"
	"signtusk/internal/infrastructure/crypto"
	"signtusk/internal/infrastructure/database"
	"signtusk/internal/infrastructure/logger"
	"signtusk/internal/infrastructure/redis"
	"signtusk/internal/infrastructure/repository"
	"signtusk/internal/server"
	"signtusk/internal/usecase"
	"signtusk/internal/workers"
)

func main() {
	fx.New(
		// Configuration
		config.Module,

		// Infrastructure
		logger.Module,
		database.Module,
		redis.Module,
		crypto.Module,
		repository.Module,

		// Business Logic
		usecase.Module,

		// Delivery
		deliveryhttp.Module,

		// Background workers
		workers.Module,

		// Server
		server.Module,
	).Run()
}
