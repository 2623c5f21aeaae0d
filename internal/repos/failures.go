package repos

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qforge/fmea-backend/internal/platform/logger"
	"github.com/qforge/fmea-backend/internal/types"
)

// FailureRepo covers the three failure families, the links joining them and
// the per-link scoring rows. Links have no identity worth preserving across
// rebuilds (their identity is the fm/fe/fc triple), so they are always purged
// and reinserted wholesale.
type FailureRepo interface {
	InsertEffects(ctx context.Context, tx *gorm.DB, rows []types.FailureEffect) error
	InsertModes(ctx context.Context, tx *gorm.DB, rows []types.FailureMode) error
	InsertCauses(ctx context.Context, tx *gorm.DB, rows []types.FailureCause) error
	InsertLinks(ctx context.Context, tx *gorm.DB, rows []types.FailureLink) error
	InsertRisks(ctx context.Context, tx *gorm.DB, rows []types.RiskAnalysis) error
	InsertOptimizations(ctx context.Context, tx *gorm.DB, rows []types.Optimization) error
	GetEffects(ctx context.Context, tx *gorm.DB, analysisID string) ([]types.FailureEffect, error)
	GetModes(ctx context.Context, tx *gorm.DB, analysisID string) ([]types.FailureMode, error)
	GetCauses(ctx context.Context, tx *gorm.DB, analysisID string) ([]types.FailureCause, error)
	GetLinks(ctx context.Context, tx *gorm.DB, analysisID string) ([]types.FailureLink, error)
	GetRisks(ctx context.Context, tx *gorm.DB, analysisID string) ([]types.RiskAnalysis, error)
	GetOptimizations(ctx context.Context, tx *gorm.DB, analysisID string) ([]types.Optimization, error)
	DeleteByAnalysisID(ctx context.Context, tx *gorm.DB, analysisID string) error
}

type failureRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFailureRepo(db *gorm.DB, baseLog *logger.Logger) FailureRepo {
	return &failureRepo{db: db, log: baseLog.With("repo", "FailureRepo")}
}

func (r *failureRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *failureRepo) InsertEffects(ctx context.Context, tx *gorm.DB, rows []types.FailureEffect) error {
	if len(rows) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

func (r *failureRepo) InsertModes(ctx context.Context, tx *gorm.DB, rows []types.FailureMode) error {
	if len(rows) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

func (r *failureRepo) InsertCauses(ctx context.Context, tx *gorm.DB, rows []types.FailureCause) error {
	if len(rows) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

func (r *failureRepo) InsertLinks(ctx context.Context, tx *gorm.DB, rows []types.FailureLink) error {
	if len(rows) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Create(&rows).Error
}

func (r *failureRepo) InsertRisks(ctx context.Context, tx *gorm.DB, rows []types.RiskAnalysis) error {
	if len(rows) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

func (r *failureRepo) InsertOptimizations(ctx context.Context, tx *gorm.DB, rows []types.Optimization) error {
	if len(rows) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

func (r *failureRepo) GetEffects(ctx context.Context, tx *gorm.DB, analysisID string) ([]types.FailureEffect, error) {
	var rows []types.FailureEffect
	if err := r.conn(tx).WithContext(ctx).
		Where("analysis_id = ?", analysisID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *failureRepo) GetModes(ctx context.Context, tx *gorm.DB, analysisID string) ([]types.FailureMode, error) {
	var rows []types.FailureMode
	if err := r.conn(tx).WithContext(ctx).
		Where("analysis_id = ?", analysisID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *failureRepo) GetCauses(ctx context.Context, tx *gorm.DB, analysisID string) ([]types.FailureCause, error) {
	var rows []types.FailureCause
	if err := r.conn(tx).WithContext(ctx).
		Where("analysis_id = ?", analysisID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *failureRepo) GetLinks(ctx context.Context, tx *gorm.DB, analysisID string) ([]types.FailureLink, error) {
	var rows []types.FailureLink
	if err := r.conn(tx).WithContext(ctx).
		Where("analysis_id = ?", analysisID).
		Order("sort_order").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *failureRepo) GetRisks(ctx context.Context, tx *gorm.DB, analysisID string) ([]types.RiskAnalysis, error) {
	var rows []types.RiskAnalysis
	if err := r.conn(tx).WithContext(ctx).
		Where("analysis_id = ?", analysisID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *failureRepo) GetOptimizations(ctx context.Context, tx *gorm.DB, analysisID string) ([]types.Optimization, error) {
	var rows []types.Optimization
	if err := r.conn(tx).WithContext(ctx).
		Where("analysis_id = ?", analysisID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *failureRepo) DeleteByAnalysisID(ctx context.Context, tx *gorm.DB, analysisID string) error {
	conn := r.conn(tx).WithContext(ctx)
	if err := conn.Where("analysis_id = ?", analysisID).Delete(&types.Optimization{}).Error; err != nil {
		return err
	}
	if err := conn.Where("analysis_id = ?", analysisID).Delete(&types.RiskAnalysis{}).Error; err != nil {
		return err
	}
	if err := conn.Where("analysis_id = ?", analysisID).Delete(&types.FailureLink{}).Error; err != nil {
		return err
	}
	if err := conn.Where("analysis_id = ?", analysisID).Delete(&types.FailureCause{}).Error; err != nil {
		return err
	}
	if err := conn.Where("analysis_id = ?", analysisID).Delete(&types.FailureMode{}).Error; err != nil {
		return err
	}
	return conn.Where("analysis_id = ?", analysisID).Delete(&types.FailureEffect{}).Error
}
