package usecase

import (
	"go.uber.org/fx"

	"signtusk/internal/lifecycle"
)

var Module = fx.Module("usecase",
	fx.Provide(lifecycle.NewStateMachine),
	fx.Provide(NewDuplicateDetector),
	fx.Provide(NewLifecycleUsecase),
	fx.Provide(NewMultiSignUsecase),
	fx.Provide(NewVerifyUsecase),
	fx.Provide(NewAuditUsecase),
	fx.Provide(NewKeyUsecase),
)
