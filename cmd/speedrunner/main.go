// Package main - speedrunner
// Plays the full escape game against a running server, as fast as the
// server's rate limit allows, and reports per-action latency.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/MRamiBalles/EscapeRoomGame/server/internal/domain/room"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/domain/score"
)

func main() {
	serverURL := flag.String("url", "ws://localhost:8080/ws", "WebSocket server URL")
	runs := flag.Int("runs", 1, "Number of consecutive playthroughs")
	interval := flag.Duration("interval", 60*time.Millisecond, "Pause between actions")
	timeout := flag.Duration("timeout", 5*time.Second, "Max wait for each reply")
	output := flag.String("out", "", "Write results as JSON to this file")
	flag.Parse()

	fmt.Println("=========================================")
	fmt.Println("🏃 SPEEDRUNNER")
	fmt.Println("=========================================")
	fmt.Printf("Server:   %s\n", *serverURL)
	fmt.Printf("Runs:     %d\n", *runs)
	fmt.Printf("Interval: %v\n", *interval)
	fmt.Println("=========================================")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	runner := &Runner{
		URL:      *serverURL,
		Catalog:  room.DefaultCatalog(),
		Interval: *interval,
		Timeout:  *timeout,
	}

	var results []RunResult
	failed := 0
	for i := 1; i <= *runs; i++ {
		res, err := runner.Run(ctx)
		if err != nil {
			failed++
			fmt.Printf("❌ Run %d failed after %d actions: %v\n", i, res.Actions, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		results = append(results, res)
		fmt.Printf("✅ Run %d: %s in game time, %d actions, %v wall\n", i, score.FormatTime(res.GameSeconds), res.Actions, res.Wall.Round(time.Millisecond))
	}

	summary := summarize(results, failed)
	printSummary(summary)

	if *output != "" {
		data, _ := json.MarshalIndent(summary, "", "  ")
		if err := os.WriteFile(*output, data, 0644); err != nil {
			fmt.Printf("⚠️ Could not write %s: %v\n", *output, err)
		} else {
			fmt.Printf("\n📁 Results saved to %s\n", *output)
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// Summary aggregates every successful run.
type Summary struct {
	Completed   int     `json:"completed"`
	Failed      int     `json:"failed"`
	Actions     int     `json:"actions"`
	Events      int     `json:"events"`
	Rejected    int     `json:"rejected"`
	BestGame    int     `json:"best_game_seconds"`
	MinLatency  string  `json:"min_latency"`
	AvgLatency  string  `json:"avg_latency"`
	MaxLatency  string  `json:"max_latency"`
	ActionsRate float64 `json:"actions_per_sec"`
}

func summarize(results []RunResult, failed int) Summary {
	s := Summary{Completed: len(results), Failed: failed, BestGame: -1}

	var total, wall, min, max time.Duration
	n := 0
	for _, r := range results {
		s.Actions += r.Actions
		s.Events += r.Events
		s.Rejected += r.Rejected
		wall += r.Wall
		if s.BestGame < 0 || r.GameSeconds < s.BestGame {
			s.BestGame = r.GameSeconds
		}
		for _, l := range r.Latencies {
			if n == 0 || l < min {
				min = l
			}
			if l > max {
				max = l
			}
			total += l
			n++
		}
	}
	if n > 0 {
		s.MinLatency = min.String()
		s.AvgLatency = (total / time.Duration(n)).String()
		s.MaxLatency = max.String()
	}
	if wall > 0 {
		s.ActionsRate = float64(s.Actions) / wall.Seconds()
	}
	return s
}

func printSummary(s Summary) {
	fmt.Println("\n=========================================")
	fmt.Println("📊 RESULTS")
	fmt.Println("=========================================")
	fmt.Printf("Completed:  %d\n", s.Completed)
	fmt.Printf("Failed:     %d\n", s.Failed)
	fmt.Printf("Actions:    %d (%.2f/sec)\n", s.Actions, s.ActionsRate)
	fmt.Printf("Events:     %d\n", s.Events)
	fmt.Printf("Rejected:   %d\n", s.Rejected)
	if s.BestGame >= 0 {
		fmt.Printf("Best game:  %s\n", score.FormatTime(s.BestGame))
	}
	if s.MinLatency != "" {
		fmt.Printf("\nLatency:\n")
		fmt.Printf("  Min: %s\n", s.MinLatency)
		fmt.Printf("  Avg: %s\n", s.AvgLatency)
		fmt.Printf("  Max: %s\n", s.MaxLatency)
	}
	fmt.Println("=========================================")
}
