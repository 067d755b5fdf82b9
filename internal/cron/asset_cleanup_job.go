package cron

import (
	"context"
	"fmt"

	"github.com/tatame/tatame-backend/pkg/logger"
)

const AssetCleanupJobName = "expired-asset-cleanup"

type assetPurger interface {
	PurgeExpired(ctx context.Context) (int, error)
}

type AssetCleanupJobParams struct {
	Logger *logger.Logger
	Assets assetPurger
}

func NewAssetCleanupJob(params AssetCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Assets == nil {
		return nil, fmt.Errorf("asset purger required")
	}
	return &assetCleanupJob{logg: params.Logger, assets: params.Assets}, nil
}

type assetCleanupJob struct {
	logg   *logger.Logger
	assets assetPurger
}

func (j *assetCleanupJob) Name() string { return AssetCleanupJobName }

func (j *assetCleanupJob) Run(ctx context.Context) error {
	deleted, err := j.assets.PurgeExpired(ctx)
	if err != nil {
		return fmt.Errorf("purge expired assets: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "rows_deleted", deleted), "expired asset cleanup complete")
	return nil
}
