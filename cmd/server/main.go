package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/discount-generator/internal/api"
	"github.com/ignite/discount-generator/internal/auth"
	"github.com/ignite/discount-generator/internal/config"
	"github.com/ignite/discount-generator/internal/datanorm"
	"github.com/ignite/discount-generator/internal/offers"
	"github.com/ignite/discount-generator/internal/pkg/distlock"
	"github.com/ignite/discount-generator/internal/pkg/logger"
	"github.com/ignite/discount-generator/internal/repository/memory"
	"github.com/ignite/discount-generator/internal/repository/redisrepo"
	"github.com/ignite/discount-generator/internal/segmentation"
	"github.com/ignite/discount-generator/internal/service/campaign"
	"github.com/ignite/discount-generator/internal/storage"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

// sweepSessions drops expired in-memory sessions until ctx is done.
func sweepSessions(ctx context.Context, repo *memory.SessionRepo, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := repo.Sweep(); n > 0 {
				logger.Debug("expired sessions swept", "count", n)
			}
		}
	}
}

func main() {
	log.Println("╔════════════════════════════════════════════════════════════╗")
	log.Println("║  Discount Generator Dashboard API (cmd/server)            ║")
	log.Println("║  Upload, segment, price and export customer offers        ║")
	log.Println("╚════════════════════════════════════════════════════════════╝")

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	logger.SetRedactPII(cfg.Logging.RedactEnabled())

	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Session repository: Redis when configured, otherwise process memory
	var repo campaign.Repository
	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		redisClient, err = redisrepo.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		repo = redisrepo.NewSessionRepo(redisClient, cfg.Redis.KeyPrefix)
		log.Println("Session store: redis")
	} else {
		mem := memory.NewSessionRepo()
		go sweepSessions(ctx, mem, 5*time.Minute)
		repo = mem
		log.Println("Session store: memory (set REDIS_URL to share sessions between replicas)")
	}

	ingestOpts, err := datanorm.OptionsFromConfig(cfg.Ingest)
	if err != nil {
		log.Fatalf("Failed to load column aliases: %v", err)
	}
	importer := datanorm.NewImporter(ingestOpts)

	generator, err := offers.NewGeneratorFromConfig(cfg.Offers)
	if err != nil {
		log.Fatalf("Failed to initialize offer generator: %v", err)
	}
	pipeline := campaign.NewPipeline(segmentation.NewClassifier(), generator, nil)

	svcOpts := []campaign.Option{
		campaign.WithTTL(cfg.Session.TTL()),
		campaign.WithLocks(distlock.NewFactory(redisClient, 5*time.Minute)),
	}
	if cfg.Source.DSN != "" && cfg.Source.Query != "" {
		db, err := datanorm.OpenSQL(cfg.Source.Driver, cfg.Source.DSN)
		if err != nil {
			log.Fatalf("Failed to open source database: %v", err)
		}
		defer db.Close()
		src := datanorm.NewSQLSource(db, importer)
		svcOpts = append(svcOpts, campaign.WithSource(src, cfg.Source.Query, cfg.Source.Timeout()))
		log.Printf("Source import: %s", cfg.Source.Driver)
	}
	store, err := storage.New(ctx, cfg.Export)
	if err != nil {
		log.Printf("Export store disabled: %v", err)
		store = nil
	} else {
		svcOpts = append(svcOpts, campaign.WithExportStore(store))
		log.Printf("Export store: %s", store.Backend())
	}
	svc := campaign.NewService(repo, importer, pipeline, svcOpts...)

	// Initialize authentication manager if enabled
	var authManager *auth.AuthManager
	if cfg.Auth.Enabled && cfg.Auth.GoogleClientID != "" {
		if cfg.Auth.BaseURL == "" {
			cfg.Auth.BaseURL = fmt.Sprintf("http://%s:%d", host, port)
		}
		authManager = auth.NewAuthManager(cfg.Auth)
		authManager.CleanupExpiredSessions(ctx, 5*time.Minute)
		log.Printf("Google OAuth enabled for domain %s", cfg.Auth.AllowedDomain)
	}

	server := api.NewServer(cfg.Server, svc, authManager, api.NewHealthChecker(redisClient, store))

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", host, port)
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
