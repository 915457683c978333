// Command agesim runs the discrete-event simulation of a self-organizing,
// prefix-partitioned overlay: repeated ticks of churn injection and
// split/merge/relocation protocol, until the configured number of
// iterations completes or a safety invariant is violated.
package main

import (
	"flag"
	"log"

	"github.com/dsprotocol/agesim/chain"
	"github.com/dsprotocol/agesim/network"
)

var configFile = flag.String("config", "", "Location of config file.")

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile | log.LUTC)
	flag.Parse()

	if *configFile == "" {
		log.Fatalf("No config file provided, see --help.")
	}
	config, err := ReadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config file: %v", err)
	}

	go metrics(config.MetricsAddr)

	n := network.New(config.Params)

	if config.ChainDBFile != "" {
		store, err := chain.NewLevelDBStore(config.ChainDBFile)
		if err != nil {
			log.Fatalf("Failed to open chain database: %v", err)
		}
		defer store.Close()
		n.AttachStore(store)
	}

	log.Printf("Starting simulation: %d iterations, seed=%v", config.Params.NumIterations, config.Params.Seed)

	for i := 0; i < config.Params.NumIterations; i++ {
		if !n.Tick(i) {
			log.Fatalf("Safety check failed at iteration %d: a section exceeded max_section_size", i)
		}

		summary := n.Stats().Summary()
		nodesGauge.Set(float64(summary.Nodes))
		sectionsGauge.Set(float64(summary.Sections))
		mergesCounter.Set(float64(summary.Merges))
		splitsCounter.Set(float64(summary.Splits))
		relocationsCounter.Set(float64(summary.Relocations))
		rejectionsCounter.Set(float64(summary.Rejections))

		if i%100 == 0 {
			log.Printf("Iteration %d: %s", i, summary)
		}
	}

	log.Printf("Simulation complete. Writing stats to %s", config.StatsFile)
	if err := n.Stats().WriteToFile(config.StatsFile); err != nil {
		log.Fatalf("Failed to write stats file: %v", err)
	}
}
