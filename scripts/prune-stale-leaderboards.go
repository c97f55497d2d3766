package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/redis/go-redis/v9"
)

// Leaderboard sorted sets keep a member per player. When a player's stats
// hashes are deleted by hand (GDPR requests, test accounts) the leaderboard
// member sticks around with a stale score. This script finds members with no
// backing stats:player:{id} hash and removes them after confirmation.

var leaderboards = []string{"stats:lb:kills", "stats:lb:completions"}

func main() {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatal("Failed to parse Redis URL:", err)
	}

	client := redis.NewClient(opt)
	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	fmt.Println("Connected to Redis:", redisURL)
	fmt.Println("Scanning leaderboards for stale members...")

	stale := make(map[string][]string)
	var checkedCount, staleCount int

	for _, lb := range leaderboards {
		members, err := client.ZRange(ctx, lb, 0, -1).Result()
		if err != nil {
			fmt.Printf("Error reading %s: %v\n", lb, err)
			continue
		}

		for _, playerID := range members {
			checkedCount++
			exists, err := client.Exists(ctx, "stats:player:"+playerID).Result()
			if err != nil {
				fmt.Printf("Error checking %s: %v\n", playerID, err)
				continue
			}
			if exists == 0 {
				fmt.Printf("✗ Stale member in %s: %s\n", lb, playerID)
				stale[lb] = append(stale[lb], playerID)
				staleCount++
			}
		}
	}

	fmt.Printf("\nChecked %d members, found %d stale entries\n", checkedCount, staleCount)

	if staleCount == 0 {
		fmt.Println("No stale members found!")
		return
	}

	fmt.Print("\nDo you want to REMOVE these members? (yes/no): ")
	var response string
	fmt.Scanln(&response)

	if response != "yes" {
		fmt.Println("Aborted - no changes made")
		return
	}

	for lb, members := range stale {
		for _, playerID := range members {
			if err := client.ZRem(ctx, lb, playerID).Err(); err != nil {
				fmt.Printf("Failed to remove %s from %s: %v\n", playerID, lb, err)
			} else {
				fmt.Printf("Removed %s from %s\n", playerID, lb)
			}
		}
	}
	fmt.Println("\nCleanup complete!")
}
