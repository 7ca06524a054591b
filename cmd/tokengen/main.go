package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"infinite-experiment/flightsurety/internal/common"
	"infinite-experiment/flightsurety/internal/constants"
	"infinite-experiment/flightsurety/internal/models/entities"
)

func main() {
	identity := flag.String("identity", "", "caller address (0x...)")
	role := flag.String("role", "passenger", "owner, airline, passenger or oracle")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	revoke := flag.String("revoke", "", "token id to revoke (needs REDIS_ADDR)")
	flag.Parse()

	secret := os.Getenv("TOKEN_SECRET")
	if secret == "" {
		log.Fatal("TOKEN_SECRET is not set")
	}

	if *revoke != "" {
		addr := os.Getenv("REDIS_ADDR")
		if addr == "" {
			log.Fatal("REDIS_ADDR is required to revoke tokens")
		}
		client := common.NewRedisClient(addr, os.Getenv("REDIS_PASSWORD"), 0)
		defer client.Close()

		tokens := common.NewCallerTokenService([]byte(secret), client)
		if err := tokens.Revoke(context.Background(), *revoke, *ttl); err != nil {
			log.Fatalf("revoke token: %v", err)
		}
		fmt.Println("Revoked:", *revoke)
		return
	}

	addr, err := entities.ParseAddress(*identity)
	if err != nil {
		log.Fatalf("identity: %v", err)
	}

	token, err := common.NewCallerTokenService([]byte(secret), nil).Issue(addr, constants.CallerRole(*role), *ttl)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}

	fmt.Println(token)
}
