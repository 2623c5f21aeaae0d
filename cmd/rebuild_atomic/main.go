package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/qforge/fmea-backend/internal/db"
	"github.com/qforge/fmea-backend/internal/docstore"
	"github.com/qforge/fmea-backend/internal/engine/normalize"
	"github.com/qforge/fmea-backend/internal/platform/envutil"
	"github.com/qforge/fmea-backend/internal/platform/logger"
	"github.com/qforge/fmea-backend/internal/repos"
	"github.com/qforge/fmea-backend/internal/services"
)

type idList []string

func (l *idList) String() string { return strings.Join(*l, ",") }
func (l *idList) Set(v string) error {
	v = strings.TrimSpace(v)
	if v != "" {
		*l = append(*l, v)
	}
	return nil
}

func main() {
	var analyses idList
	var all bool
	flag.Var(&analyses, "analysis", "analysis id to rebuild (repeatable)")
	flag.BoolVar(&all, "all", false, "rebuild every analysis found in the document store")
	flag.Parse()

	if !all && len(analyses) == 0 {
		fmt.Println("nothing to do: pass -analysis <id> or -all")
		os.Exit(1)
	}

	log, err := logger.New(envutil.GetEnv("LOG_MODE", "development"))
	if err != nil {
		fmt.Printf("init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		fmt.Printf("init postgres: %v\n", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		fmt.Printf("auto migrate: %v\n", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	redisAddr := envutil.GetEnv("REDIS_ADDR", "localhost:6379")
	docs, err := docstore.NewRedisStore(log, redisAddr)
	if err != nil {
		fmt.Printf("init redis document store: %v\n", err)
		os.Exit(1)
	}

	structureRepo := repos.NewStructureRepo(thePG, log)
	functionRepo := repos.NewFunctionRepo(thePG, log)
	failureRepo := repos.NewFailureRepo(thePG, log)
	rebuildRunRepo := repos.NewRebuildRunRepo(thePG, log)
	rebuildService := services.NewRebuildService(thePG, log, docs, structureRepo, functionRepo, failureRepo, rebuildRunRepo, normalize.Options{
		RequireCompleteChain: envutil.GetEnvAsBool("RISK_REQUIRE_COMPLETE_CHAIN", false),
	})

	ctx := context.Background()

	targets := make([]string, 0, len(analyses))
	for _, id := range analyses {
		targets = append(targets, docstore.NormalizeAnalysisID(id))
	}
	if all {
		ids, err := docs.ListAnalysisIDs(ctx)
		if err != nil {
			fmt.Printf("list analyses: %v\n", err)
			os.Exit(1)
		}
		targets = append(targets, ids...)
	}

	seen := make(map[string]bool, len(targets))
	rebuilt, failed := 0, 0
	for _, id := range targets {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		report, err := rebuildService.Rebuild(ctx, id)
		if err != nil {
			failed++
			fmt.Printf("rebuild %s: %v\n", id, err)
			continue
		}
		rebuilt++
		fmt.Printf("rebuilt %s: %v\n", id, report.Rebuilt)
	}
	fmt.Printf("done: %d rebuilt, %d failed\n", rebuilt, failed)
	if failed > 0 {
		os.Exit(1)
	}
}
