package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/qforge/fmea-backend/internal/platform/logger"
	"github.com/qforge/fmea-backend/internal/types"
)

type RebuildRunRepo interface {
	Create(ctx context.Context, tx *gorm.DB, run *types.RebuildRun) error
	LatestByAnalysisID(ctx context.Context, tx *gorm.DB, analysisID string) (*types.RebuildRun, error)
}

type rebuildRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRebuildRunRepo(db *gorm.DB, baseLog *logger.Logger) RebuildRunRepo {
	return &rebuildRunRepo{db: db, log: baseLog.With("repo", "RebuildRunRepo")}
}

func (r *rebuildRunRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *rebuildRunRepo) Create(ctx context.Context, tx *gorm.DB, run *types.RebuildRun) error {
	return r.conn(tx).WithContext(ctx).Create(run).Error
}

func (r *rebuildRunRepo) LatestByAnalysisID(ctx context.Context, tx *gorm.DB, analysisID string) (*types.RebuildRun, error) {
	var runs []types.RebuildRun
	if err := r.conn(tx).WithContext(ctx).
		Where("analysis_id = ?", analysisID).
		Order("created_at DESC").
		Limit(1).
		Find(&runs).Error; err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}
