package services

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/qforge/fmea-backend/internal/platform/logger"
	"github.com/qforge/fmea-backend/internal/repos"
	"github.com/qforge/fmea-backend/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&types.L1Structure{},
		&types.L2Structure{},
		&types.L3Structure{},
		&types.L1Function{},
		&types.L2Function{},
		&types.L3Function{},
		&types.FailureEffect{},
		&types.FailureMode{},
		&types.FailureCause{},
		&types.FailureLink{},
		&types.RiskAnalysis{},
		&types.Optimization{},
		&types.FailureAnalysisRow{},
		&types.RebuildRun{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

type testEnv struct {
	db         *gorm.DB
	log        *logger.Logger
	structures repos.StructureRepo
	functions  repos.FunctionRepo
	failures   repos.FailureRepo
	rows       repos.AnalysisRowRepo
	runs       repos.RebuildRunRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	log := logger.NewNop()
	return &testEnv{
		db:         db,
		log:        log,
		structures: repos.NewStructureRepo(db, log),
		functions:  repos.NewFunctionRepo(db, log),
		failures:   repos.NewFailureRepo(db, log),
		rows:       repos.NewAnalysisRowRepo(db, log),
		runs:       repos.NewRebuildRunRepo(db, log),
	}
}

func sampleDocument() *types.Document {
	return &types.Document{
		Subject: "Drive Housing",
		ScopeFunctions: []types.L1FunctionNode{
			{
				Category:     "fit",
				FunctionName: "Seal housing",
				Requirement:  "No leakage",
				Effects: []types.FailureEffectNode{
					{ID: "fe-leak", Category: "customer", Effect: "Oil leak", Severity: 8},
				},
			},
		},
		Processes: []types.ProcessNode{
			{
				No:   "10",
				Name: "Assembly",
				Functions: []types.L2FunctionNode{
					{
						FunctionName: "Press bearing",
						ProductChar:  "press depth",
						SpecialChar:  "SC",
						Modes: []types.FailureModeNode{
							{
								ID:   "fm-shallow",
								Mode: "Bearing too shallow",
								Links: []types.FailureLinkNode{
									{
										EffectID: "fe-leak",
										CauseID:  "fc-worn",
										Risk:     &types.RiskNode{Severity: 8, Occurrence: 3, Detection: 4},
									},
								},
							},
						},
					},
					{
						FunctionName: "Torque screws",
						ProductChar:  "torque",
					},
				},
				WorkElements: []types.WorkElementNode{
					{
						M4:   "MC",
						Name: "Press P-100",
						Functions: []types.L3FunctionNode{
							{
								FunctionName: "Apply force",
								ProcessChar:  "press force",
								Causes: []types.FailureCauseNode{
									{ID: "fc-worn", Cause: "Worn tool", Occurrence: 3},
								},
							},
						},
					},
				},
			},
		},
	}
}
