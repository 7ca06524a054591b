package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"infinite-experiment/flightsurety/internal/client"
	"infinite-experiment/flightsurety/internal/common"
	"infinite-experiment/flightsurety/internal/config"
	"infinite-experiment/flightsurety/internal/logging"
)

// bootstrap seeds a running server with the demo consortium: six airlines,
// five flights and an oracle per account. It writes the config artifact
// read by oracled and front ends.
func main() {
	var (
		url      = flag.String("url", "http://localhost:8080", "surety API base URL")
		out      = flag.String("out", "", "config artifact path (default SURETY_CONFIG_PATH)")
		accounts = flag.Int("accounts", 20, "number of accounts to derive")
		seed     = flag.String("seed", "flightsurety", "account derivation seed")
		parallel = flag.Int("parallel", 8, "concurrent oracle registrations")
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

	if *out == "" {
		*out = cfg.ConfigArtifact
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	d := &deployment{
		api:         client.NewSuretyClient(*url, common.NewCallerTokenService([]byte(cfg.TokenSecret), nil)),
		accounts:    deriveAccounts(*seed, *accounts),
		fundEther:   common.FormatEther(cfg.Params.ActivationFunding),
		oracleFee:   common.FormatEther(cfg.Params.OracleFee),
		concurrency: *parallel,
		now:         time.Now,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	artifact, err := d.run(ctx)
	if err != nil {
		logging.Fatal("Bootstrap failed", "error", err)
	}
	artifact.URL = *url
	artifact.DataAddress = cfg.Owner.String()
	artifact.AppAddress = cfg.App.String()

	data, err := json.MarshalIndent(artifact, "", "\t")
	if err != nil {
		logging.Fatal("Failed to encode config artifact", "error", err)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		logging.Fatal("Failed to write config artifact", "path", *out, "error", err)
	}

	logging.Info("Bootstrap complete",
		"path", *out,
		"flights", len(artifact.Flights),
		"oracles", len(artifact.Oracles),
	)
}
