package repos

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qforge/fmea-backend/internal/platform/logger"
	"github.com/qforge/fmea-backend/internal/types"
)

type AnalysisRowRepo interface {
	GetByAnalysisID(ctx context.Context, tx *gorm.DB, analysisID string) ([]types.FailureAnalysisRow, error)
	// ReplaceForAnalysis swaps the stored rows for one analysis wholesale.
	ReplaceForAnalysis(ctx context.Context, tx *gorm.DB, analysisID string, rows []types.FailureAnalysisRow) error
	DeleteByAnalysisID(ctx context.Context, tx *gorm.DB, analysisID string) error
}

type analysisRowRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnalysisRowRepo(db *gorm.DB, baseLog *logger.Logger) AnalysisRowRepo {
	return &analysisRowRepo{db: db, log: baseLog.With("repo", "AnalysisRowRepo")}
}

func (r *analysisRowRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *analysisRowRepo) GetByAnalysisID(ctx context.Context, tx *gorm.DB, analysisID string) ([]types.FailureAnalysisRow, error) {
	var rows []types.FailureAnalysisRow
	if err := r.conn(tx).WithContext(ctx).
		Where("analysis_id = ?", analysisID).
		Order("sort_order").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *analysisRowRepo) ReplaceForAnalysis(ctx context.Context, tx *gorm.DB, analysisID string, rows []types.FailureAnalysisRow) error {
	conn := r.conn(tx).WithContext(ctx)
	if err := conn.Where("analysis_id = ?", analysisID).Delete(&types.FailureAnalysisRow{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return conn.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func (r *analysisRowRepo) DeleteByAnalysisID(ctx context.Context, tx *gorm.DB, analysisID string) error {
	return r.conn(tx).WithContext(ctx).
		Where("analysis_id = ?", analysisID).
		Delete(&types.FailureAnalysisRow{}).Error
}
