package workers

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"signtusk/internal/config"
	"signtusk/internal/domain/entity"
	"signtusk/internal/domain/repository"
	"signtusk/internal/usecase"
)

// FinalizerActor is the actor identity recorded for background completions.
const FinalizerActor = "system:finalizer"

// Finalizer promotes signed documents to completed on a schedule, so
// finalization does not depend on the signer coming back. Finalize is
// idempotent, so overlapping runs are harmless.
type Finalizer struct {
	config    *config.Config
	docs      repository.DocumentRepository
	lifecycle usecase.LifecycleUsecase
	logger    *zap.Logger
	cron      *cron.Cron
}

func NewFinalizer(
	cfg *config.Config,
	docs repository.DocumentRepository,
	lifecycle usecase.LifecycleUsecase,
	logger *zap.Logger,
) *Finalizer {
	return &Finalizer{
		config:    cfg,
		docs:      docs,
		lifecycle: lifecycle,
		logger:    logger,
		cron:      cron.New(),
	}
}

// RunOnce performs a single promotion pass.
func (f *Finalizer) RunOnce(ctx context.Context) {
	docs, err := f.docs.ListByStatus(ctx, entity.StatusSigned, f.config.Finalizer.BatchSize)
	if err != nil {
		f.logger.Error("Finalizer failed to list signed documents", zap.Error(err))
		return
	}

	for _, doc := range docs {
		if _, err := f.lifecycle.Finalize(ctx, doc.ID, FinalizerActor); err != nil {
			// A concurrent transition is expected occasionally; the next
			// pass picks the document up again if it is still signed.
			f.logger.Warn("Finalizer could not finalize document",
				zap.String("document_id", doc.ID),
				zap.Error(err),
			)
			continue
		}
		f.logger.Info("Finalizer completed document",
			zap.String("document_id", doc.ID),
		)
	}
}

func RegisterFinalizer(lc fx.Lifecycle, f *Finalizer) error {
	if !f.config.Finalizer.Enabled {
		f.logger.Info("Finalizer disabled by configuration")
		return nil
	}

	_, err := f.cron.AddFunc(f.config.Finalizer.Schedule, func() {
		f.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			f.logger.Info("Starting finalizer",
				zap.String("schedule", f.config.Finalizer.Schedule),
			)
			f.cron.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			f.logger.Info("Stopping finalizer")
			stopCtx := f.cron.Stop()
			select {
			case <-stopCtx.Done():
			case <-ctx.Done():
			}
			return nil
		},
	})
	return nil
}

var Module = fx.Module("workers",
	fx.Provide(NewFinalizer),
	fx.Invoke(RegisterFinalizer),
)
