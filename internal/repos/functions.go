package repos

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qforge/fmea-backend/internal/platform/logger"
	"github.com/qforge/fmea-backend/internal/types"
)

type FunctionRepo interface {
	InsertL1(ctx context.Context, tx *gorm.DB, rows []types.L1Function) error
	InsertL2(ctx context.Context, tx *gorm.DB, rows []types.L2Function) error
	InsertL3(ctx context.Context, tx *gorm.DB, rows []types.L3Function) error
	GetL1(ctx context.Context, tx *gorm.DB, analysisID string) ([]types.L1Function, error)
	GetL2(ctx context.Context, tx *gorm.DB, analysisID string) ([]types.L2Function, error)
	GetL3(ctx context.Context, tx *gorm.DB, analysisID string) ([]types.L3Function, error)
	DeleteByAnalysisID(ctx context.Context, tx *gorm.DB, analysisID string) error
}

type functionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFunctionRepo(db *gorm.DB, baseLog *logger.Logger) FunctionRepo {
	return &functionRepo{db: db, log: baseLog.With("repo", "FunctionRepo")}
}

func (r *functionRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *functionRepo) InsertL1(ctx context.Context, tx *gorm.DB, rows []types.L1Function) error {
	if len(rows) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

func (r *functionRepo) InsertL2(ctx context.Context, tx *gorm.DB, rows []types.L2Function) error {
	if len(rows) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

func (r *functionRepo) InsertL3(ctx context.Context, tx *gorm.DB, rows []types.L3Function) error {
	if len(rows) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

func (r *functionRepo) GetL1(ctx context.Context, tx *gorm.DB, analysisID string) ([]types.L1Function, error) {
	var rows []types.L1Function
	if err := r.conn(tx).WithContext(ctx).
		Where("analysis_id = ?", analysisID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *functionRepo) GetL2(ctx context.Context, tx *gorm.DB, analysisID string) ([]types.L2Function, error) {
	var rows []types.L2Function
	if err := r.conn(tx).WithContext(ctx).
		Where("analysis_id = ?", analysisID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *functionRepo) GetL3(ctx context.Context, tx *gorm.DB, analysisID string) ([]types.L3Function, error) {
	var rows []types.L3Function
	if err := r.conn(tx).WithContext(ctx).
		Where("analysis_id = ?", analysisID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *functionRepo) DeleteByAnalysisID(ctx context.Context, tx *gorm.DB, analysisID string) error {
	conn := r.conn(tx).WithContext(ctx)
	if err := conn.Where("analysis_id = ?", analysisID).Delete(&types.L3Function{}).Error; err != nil {
		return err
	}
	if err := conn.Where("analysis_id = ?", analysisID).Delete(&types.L2Function{}).Error; err != nil {
		return err
	}
	return conn.Where("analysis_id = ?", analysisID).Delete(&types.L1Function{}).Error
}
