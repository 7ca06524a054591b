package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"infinite-experiment/flightsurety/internal/client"
	"infinite-experiment/flightsurety/internal/common"
	"infinite-experiment/flightsurety/internal/config"
	"infinite-experiment/flightsurety/internal/constants"
	"infinite-experiment/flightsurety/internal/logging"
	"infinite-experiment/flightsurety/internal/models/dtos"
	"infinite-experiment/flightsurety/internal/models/entities"
	"infinite-experiment/flightsurety/internal/providers"
	"infinite-experiment/flightsurety/internal/workers"
)

// oracled answers oracle requests for the oracles listed in the bootstrap
// config artifact.
func main() {
	var (
		workerCount = flag.Int("workers", 2, "concurrent stream consumers")
		workerID    = flag.String("id", "", "consumer name prefix (default hostname)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	if cfg.RedisAddr == "" {
		logging.Fatal("REDIS_ADDR is required to consume oracle requests")
	}

	artifact, err := readArtifact(cfg.ConfigArtifact)
	if err != nil {
		logging.Fatal("Failed to read config artifact", "path", cfg.ConfigArtifact, "error", err)
	}
	oracles, err := oraclesFromArtifact(artifact)
	if err != nil {
		logging.Fatal("Invalid oracle list in config artifact", "error", err)
	}

	if *workerID == "" {
		host, _ := os.Hostname()
		*workerID = "oracled-" + host
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := common.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logging.Fatal("Failed to connect to Redis", "addr", cfg.RedisAddr, "error", err)
	}

	var provider providers.StatusProvider
	if cfg.StatusProviderURL != "" {
		provider = providers.NewHTTPStatusProvider(cfg.StatusProviderURL, cfg.StatusProviderKey)
	} else {
		provider = providers.NewRandomProvider(time.Now().UnixNano())
	}

	worker := workers.NewOracleWorker(
		*workerID,
		common.NewRedisQueueService(redisClient, constants.OracleRequestStream),
		provider,
		client.NewSuretyClient(artifact.URL, common.NewCallerTokenService([]byte(cfg.TokenSecret), nil)),
		oracles,
	)

	if err := worker.Start(ctx, *workerCount); err != nil {
		logging.Fatal("Oracle worker failed", "error", err)
	}
}

func readArtifact(path string) (*dtos.SuretyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var artifact dtos.SuretyConfig
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if artifact.URL == "" {
		return nil, fmt.Errorf("%s: missing url", path)
	}
	return &artifact, nil
}

// oraclesFromArtifact returns the artifact's oracles sorted by identity
func oraclesFromArtifact(artifact *dtos.SuretyConfig) ([]entities.Oracle, error) {
	oracles := make([]entities.Oracle, 0, len(artifact.Oracles))
	for id, indexes := range artifact.Oracles {
		identity, err := entities.ParseAddress(id)
		if err != nil {
			return nil, err
		}
		if len(indexes) != 3 {
			return nil, fmt.Errorf("oracle %s: expected 3 indexes, got %d", id, len(indexes))
		}
		o := entities.Oracle{Identity: identity}
		for i, idx := range indexes {
			if idx < 0 || idx > 255 {
				return nil, fmt.Errorf("oracle %s: index %d out of range", id, idx)
			}
			o.Indexes[i] = uint8(idx)
		}
		oracles = append(oracles, o)
	}
	sort.Slice(oracles, func(i, j int) bool { return oracles[i].Identity < oracles[j].Identity })

	if len(oracles) == 0 {
		return nil, fmt.Errorf("no oracles configured")
	}
	return oracles, nil
}
