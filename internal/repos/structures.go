package repos

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qforge/fmea-backend/internal/platform/logger"
	"github.com/qforge/fmea-backend/internal/types"
)

// StructureRepo covers the three structure levels of one analysis. Inserts
// skip duplicate ids so a retried rebuild never fails on rows it already
// wrote.
type StructureRepo interface {
	InsertL1(ctx context.Context, tx *gorm.DB, row *types.L1Structure) error
	InsertL2(ctx context.Context, tx *gorm.DB, rows []types.L2Structure) error
	InsertL3(ctx context.Context, tx *gorm.DB, rows []types.L3Structure) error
	GetL1(ctx context.Context, tx *gorm.DB, analysisID string) (*types.L1Structure, error)
	GetL2(ctx context.Context, tx *gorm.DB, analysisID string) ([]types.L2Structure, error)
	GetL3(ctx context.Context, tx *gorm.DB, analysisID string) ([]types.L3Structure, error)
	DeleteByAnalysisID(ctx context.Context, tx *gorm.DB, analysisID string) error
}

type structureRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStructureRepo(db *gorm.DB, baseLog *logger.Logger) StructureRepo {
	return &structureRepo{db: db, log: baseLog.With("repo", "StructureRepo")}
}

func (r *structureRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *structureRepo) InsertL1(ctx context.Context, tx *gorm.DB, row *types.L1Structure) error {
	if row == nil {
		return nil
	}
	return r.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row).Error
}

func (r *structureRepo) InsertL2(ctx context.Context, tx *gorm.DB, rows []types.L2Structure) error {
	if len(rows) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

func (r *structureRepo) InsertL3(ctx context.Context, tx *gorm.DB, rows []types.L3Structure) error {
	if len(rows) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

func (r *structureRepo) GetL1(ctx context.Context, tx *gorm.DB, analysisID string) (*types.L1Structure, error) {
	var rows []types.L1Structure
	if err := r.conn(tx).WithContext(ctx).
		Where("analysis_id = ?", analysisID).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *structureRepo) GetL2(ctx context.Context, tx *gorm.DB, analysisID string) ([]types.L2Structure, error) {
	var rows []types.L2Structure
	if err := r.conn(tx).WithContext(ctx).
		Where("analysis_id = ?", analysisID).
		Order("sort_order").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *structureRepo) GetL3(ctx context.Context, tx *gorm.DB, analysisID string) ([]types.L3Structure, error) {
	var rows []types.L3Structure
	if err := r.conn(tx).WithContext(ctx).
		Where("analysis_id = ?", analysisID).
		Order("sort_order").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *structureRepo) DeleteByAnalysisID(ctx context.Context, tx *gorm.DB, analysisID string) error {
	conn := r.conn(tx).WithContext(ctx)
	if err := conn.Where("analysis_id = ?", analysisID).Delete(&types.L3Structure{}).Error; err != nil {
		return err
	}
	if err := conn.Where("analysis_id = ?", analysisID).Delete(&types.L2Structure{}).Error; err != nil {
		return err
	}
	return conn.Where("analysis_id = ?", analysisID).Delete(&types.L1Structure{}).Error
}
