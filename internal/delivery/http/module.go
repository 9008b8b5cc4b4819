package http

import (
	"go.uber.org/fx"

	"signtusk/internal/delivery/http/handler"
	"signtusk/internal/delivery/http/router"
)

var Module = fx.Module("http",
	fx.Provide(
		handler.NewDocumentHandler,
		handler.NewMultiSignHandler,
		handler.NewVerifyHandler,
		handler.NewHealthHandler,
		router.NewRouter,
	),
)
