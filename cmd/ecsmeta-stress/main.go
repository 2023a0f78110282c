package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/brennic/ecsmeta/ecsmeta"
)

func main() {
	scenarioPath := flag.String("scenario", "", "Path to a YAML scenario file. Unset uses the built-in defaults.")
	duration := flag.Duration("duration", 0, "Overrides the scenario's run duration.")
	entityCount := flag.Int("entities", 0, "Overrides the scenario's initial entity count.")
	workerCount := flag.Int("workers", 0, "Overrides the scenario's worker count.")
	flag.Parse()

	scenario, err := loadScenario(*scenarioPath)
	if err != nil {
		log.Fatalf("failed to load scenario: %v", err)
	}
	if *duration > 0 {
		scenario.DurationText = duration.String()
	}
	if *entityCount > 0 {
		scenario.Entities = *entityCount
	}
	if *workerCount > 0 {
		scenario.WorkerCount = *workerCount
	}

	log.Println("Starting ecsmeta stress test...")

	registry := ecsmeta.NewTypeRegistry()
	registerComponents(registry)
	manager := ecsmeta.NewManager(registry,
		ecsmeta.WithCapacity(scenario.Entities),
		ecsmeta.WithWorkerCount(scenario.WorkerCount),
		ecsmeta.WithShardFactor(scenario.ShardFactor),
	)

	log.Printf("Populating manager with %d entities...\n", scenario.Entities)
	for i := 0; i < scenario.Entities; i++ {
		spawnRandomEntity(manager, scenario.Weights)
	}
	log.Println("Population complete.")

	report := &Report{
		Duration:    scenario.Duration(),
		Entities:    scenario.Entities,
		WorkerCount: scenario.WorkerCount,
		ShardFactor: scenario.ShardFactor,
		Parallel:    scenario.Parallel,
		TickTime: Stats{
			Samples: make([]time.Duration, 0),
		},
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	log.Printf("Running simulation for %s...\n", report.Duration)
	ctx, cancel := context.WithTimeout(context.Background(), report.Duration)
	defer cancel()

	startTime := time.Now()
	var totalTicks, totalMatches int64
	lastTick := time.Now()

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			dt := time.Since(lastTick).Seconds()
			lastTick = time.Now()

			tickStart := time.Now()
			var matched atomic.Int64
			ecsmeta.ForMatchingSignature[movingBody](manager, func(e ecsmeta.EntityID, _ any, row *movingBody) {
				if ecsmeta.HasTag[Dead](manager, e) {
					return
				}
				row.Position.X += row.Velocity.X * dt
				row.Position.Y += row.Velocity.Y * dt
				matched.Add(1)
			}, nil, scenario.Parallel)
			tickDuration := time.Since(tickStart)

			report.TickTime.Samples = append(report.TickTime.Samples, tickDuration)
			totalTicks++
			totalMatches += matched.Load()
		}
	}

	report.TotalTime = time.Since(startTime)
	report.TotalTicks = totalTicks
	report.TotalMatches = totalMatches
	report.TickTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)

	manager.Pool().Close()

	log.Println("Simulation finished.")

	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatalf("failed to generate report: %v", err)
	}
	fmt.Println("--- End of Report ---")

	log.Println("Stress test complete.")
}
