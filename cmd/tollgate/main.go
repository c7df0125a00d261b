package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	slogctx "github.com/veqryn/slog-context"

	"github.com/layer-3/tollgate/adapters/events"
	"github.com/layer-3/tollgate/adapters/ledger"
	"github.com/layer-3/tollgate/adapters/store"
	"github.com/layer-3/tollgate/adapters/tokenizer"
	"github.com/layer-3/tollgate/config"
	"github.com/layer-3/tollgate/metrics"
	"github.com/layer-3/tollgate/service"
	transport "github.com/layer-3/tollgate/transport/http"
)

func main() {
	slog.SetDefault(slog.New(slogctx.NewHandler(slog.NewJSONHandler(os.Stdout, nil), nil)))

	cfg, err := config.Load(os.Getenv("TOLLGATE_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Generate a new ECDSA signing key (you would normally load this from
	// somewhere secure)
	signKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		log.Fatalf("Failed to generate signing key: %v", err)
	}

	redisURL := cfg.Redis.URL
	if env := os.Getenv("REDIS_URL"); env != "" {
		redisURL = env
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(opts)

	// Initialize Watermill Redis publisher
	wmLogger := watermill.NewStdLogger(false, false)
	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: redisClient,
		},
		wmLogger,
	)
	if err != nil {
		log.Fatalf("Failed to create Redis publisher: %v", err)
	}

	ethClient, err := ethclient.Dial(cfg.Ledger.RPCURL)
	if err != nil {
		log.Fatalf("Failed to connect to ledger RPC: %v", err)
	}

	accessLedger, err := ledger.NewERC1155Ledger(
		ethClient,
		common.HexToAddress(cfg.Ledger.Contract),
		cfg.LedgerTimeout(),
	)
	if err != nil {
		log.Fatalf("Failed to create ledger client: %v", err)
	}

	purchaseOptions, err := purchaseOptions(cfg)
	if err != nil {
		log.Fatalf("Failed to parse purchase options: %v", err)
	}

	challenges := store.NewRedisStore(redisClient, cfg.ChallengeTTL())
	sessionTokenizer := tokenizer.NewJWTTokenizer(signKey, cfg.SessionTTL())
	eventPub := events.NewWatermillPublisher(publisher)

	authService := service.NewAuthService(challenges, sessionTokenizer, eventPub)
	resolver := service.NewRequirementResolver(service.AccessPolicy{
		Exact:    cfg.Access.Exact,
		Prefixes: cfg.Access.Prefixes,
		Default:  cfg.Access.Default,
	})
	validator := service.NewTokenValidator(accessLedger)

	gate := transport.NewGate(
		resolver,
		sessionTokenizer,
		validator,
		eventPub,
		transport.NewResponseBuilder(purchaseOptions),
		transport.GateConfig{
			ExcludedPrefixes: cfg.Access.Excluded,
			APIPrefixes:      cfg.Access.APIPrefixes,
		},
	)

	handlers := transport.NewAuthHandlers(authService, cfg.SessionTTL(), cfg.Session.CookieSecure)

	metrics.Register(prometheus.DefaultRegisterer)

	router := transport.SetupRouter(gate, handlers)

	if err := router.Run(cfg.Server.Addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// purchaseOptions parses the configured purchase options, converting decimal
// price strings.
func purchaseOptions(cfg *config.Config) ([]transport.PurchaseOption, error) {
	options := make([]transport.PurchaseOption, 0, len(cfg.Purchase))
	for _, p := range cfg.Purchase {
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return nil, fmt.Errorf("invalid price %q for provider %s: %w", p.Price, p.Provider, err)
		}
		options = append(options, transport.PurchaseOption{
			Method:   p.Method,
			Provider: p.Provider,
			URL:      p.URL,
			Price:    price,
		})
	}
	return options, nil
}
