package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hyunwoooim-star/ai-market-sub000/ai"
	"github.com/hyunwoooim-star/ai-market-sub000/anchor"
	"github.com/hyunwoooim-star/ai-market-sub000/api"
	"github.com/hyunwoooim-star/ai-market-sub000/api/handlers"
	"github.com/hyunwoooim-star/ai-market-sub000/config"
	"github.com/hyunwoooim-star/ai-market-sub000/ledger"
	"github.com/hyunwoooim-star/ai-market-sub000/messaging"
	"github.com/hyunwoooim-star/ai-market-sub000/sim"
	"github.com/hyunwoooim-star/ai-market-sub000/storage"
)

func main() {
	apiPort := flag.Int("api-port", 3000, "API server port")
	dataDir := flag.String("data", "./data", "Data directory")
	natsURL := flag.String("nats", "nats://localhost:4222", "NATS URL, empty to disable")
	epochCount := flag.Int("epochs", 3, "Epochs per run")
	interval := flag.Duration("interval", 5*time.Second, "Delay between epochs")
	auto := flag.Bool("auto", false, "Run a simulation batch at startup")
	flag.Parse()

	store, err := storage.Open(storage.DefaultConfig(*dataDir))
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer store.Close()

	agentRepo := storage.NewAgentRepository(store)
	txRepo := storage.NewTransactionRepository(store)
	epochRepo := storage.NewEpochRepository(store)
	anchorRepo := storage.NewAnchorRepository(store)

	if err := sim.SeedAgents(agentRepo); err != nil {
		log.Fatalf("Failed to seed agents: %v", err)
	}

	var bus *messaging.Messenger
	if *natsURL != "" {
		bus, err = messaging.NewMessenger(*natsURL)
		if err != nil {
			log.Printf("Warning: NATS unavailable at %s, events disabled: %v", *natsURL, err)
			bus = nil
		} else {
			defer bus.Close()
			log.Printf("Connected to NATS at %s", *natsURL)
		}
	}

	var ledgerClient anchor.LedgerClient
	if key := config.LedgerSigningKey(); key != "" {
		client, err := ledger.NewClient(config.LedgerRPCURL(), key)
		if err != nil {
			log.Fatalf("Invalid LEDGER_SIGNING_KEY: %v", err)
		}
		ledgerClient = client
		log.Printf("Ledger anchoring enabled, signing account %s", client.Address())
	} else {
		log.Println("Warning: LEDGER_SIGNING_KEY not set, anchors will be hash-only")
	}

	decider := ai.NewOpenAIDecider(config.OpenAIKey())
	engine := sim.NewEngine(agentRepo, txRepo, epochRepo, decider, bus, *interval, nil)
	anchorSvc := anchor.NewService(epochRepo, txRepo, agentRepo, anchorRepo, ledgerClient, bus, config.AnchorSecret())

	if *auto {
		go func() {
			if _, err := engine.RunEpochs(context.Background(), *epochCount); err != nil {
				log.Printf("Startup simulation run failed: %v", err)
			}
		}()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, handlers.New(engine, anchorSvc, agentRepo, epochRepo, txRepo))

	log.Printf("AI market engine listening on :%d", *apiPort)
	log.Fatal(router.Run(fmt.Sprintf(":%d", *apiPort)))
}
