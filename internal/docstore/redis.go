package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/qforge/fmea-backend/internal/platform/logger"
	"github.com/qforge/fmea-backend/internal/types"
)

type redisStore struct {
	log *logger.Logger
	rdb *goredis.Client
}

func NewRedisStore(log *logger.Logger, addr string) (Store, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &redisStore{
		log: log.With("store", "RedisDocStore"),
		rdb: rdb,
	}, nil
}

func (s *redisStore) LoadDocument(ctx context.Context, analysisID string) (*types.Document, error) {
	for _, prefix := range documentPrefixes {
		raw, err := s.rdb.Get(ctx, prefix+analysisID).Bytes()
		if err == goredis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load document %s: %w", analysisID, err)
		}
		var doc types.Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			s.log.Warn("Skipping unparseable document payload", "analysis_id", analysisID, "prefix", prefix, "error", err)
			continue
		}
		if !doc.HasStructure() {
			continue
		}
		return &doc, nil
	}
	return nil, nil
}

func (s *redisStore) SaveDocument(ctx context.Context, analysisID string, doc *types.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document %s: %w", analysisID, err)
	}
	if err := s.rdb.Set(ctx, documentPrefixes[0]+analysisID, raw, 0).Err(); err != nil {
		return fmt.Errorf("save document %s: %w", analysisID, err)
	}
	return nil
}

func (s *redisStore) LoadConfirmedState(ctx context.Context, analysisID string) (*types.ConfirmedSteps, error) {
	raw, err := s.rdb.Get(ctx, confirmPrefix+analysisID).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load confirmed state %s: %w", analysisID, err)
	}
	var steps types.ConfirmedSteps
	if err := json.Unmarshal(raw, &steps); err != nil {
		return nil, fmt.Errorf("decode confirmed state %s: %w", analysisID, err)
	}
	return &steps, nil
}

func (s *redisStore) SaveConfirmedState(ctx context.Context, analysisID string, steps *types.ConfirmedSteps) error {
	raw, err := json.Marshal(steps)
	if err != nil {
		return fmt.Errorf("marshal confirmed state %s: %w", analysisID, err)
	}
	if err := s.rdb.Set(ctx, confirmPrefix+analysisID, raw, 0).Err(); err != nil {
		return fmt.Errorf("save confirmed state %s: %w", analysisID, err)
	}
	return nil
}

func (s *redisStore) LoadControlPlan(ctx context.Context, cpNo string) (*types.ControlPlanDocument, error) {
	raw, err := s.rdb.Get(ctx, controlPlanPrefix+cpNo).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load control plan %s: %w", cpNo, err)
	}
	var doc types.ControlPlanDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode control plan %s: %w", cpNo, err)
	}
	return &doc, nil
}

func (s *redisStore) SaveControlPlan(ctx context.Context, cpNo string, doc *types.ControlPlanDocument) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal control plan %s: %w", cpNo, err)
	}
	if err := s.rdb.Set(ctx, controlPlanPrefix+cpNo, raw, 0).Err(); err != nil {
		return fmt.Errorf("save control plan %s: %w", cpNo, err)
	}
	return nil
}

func (s *redisStore) ListAnalysisIDs(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	var ids []string
	for _, prefix := range documentPrefixes {
		var cursor uint64
		for {
			keys, next, err := s.rdb.Scan(ctx, cursor, prefix+"*", 500).Result()
			if err != nil {
				return nil, fmt.Errorf("scan %s: %w", prefix, err)
			}
			for _, key := range keys {
				id := key[len(prefix):]
				if !seen[id] {
					seen[id] = true
					ids = append(ids, id)
				}
			}
			cursor = next
			if cursor == 0 {
				break
			}
		}
	}
	return ids, nil
}
