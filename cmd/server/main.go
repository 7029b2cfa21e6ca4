package main

import (
	"context"
	"database/sql"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"

	accesshandler "zeno-access/internal/access/handler"
	"zeno-access/internal/audit"
	auditrepo "zeno-access/internal/audit/repository"
	"zeno-access/internal/businessuser/client"
	bizrepo "zeno-access/internal/businessuser/repository"
	"zeno-access/internal/businessuser/service"
	"zeno-access/internal/config"
	"zeno-access/internal/db"
	healthhandler "zeno-access/internal/health/handler"
	"zeno-access/internal/policy/engine"
	policyrepo "zeno-access/internal/policy/repository"
	"zeno-access/internal/security"
	"zeno-access/internal/server"
	"zeno-access/internal/server/interceptors"
	"zeno-access/internal/telemetry"
	telemetryotel "zeno-access/internal/telemetry/otel"
)

const (
	memoryAuditCapacity = 10000
	shutdownTimeout     = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	ctx := context.Background()

	providers, err := telemetryotel.NewProviders(ctx, telemetryotel.Options{
		Endpoint:    cfg.OTelEndpoint,
		ServiceName: cfg.OTelServiceName,
		Environment: cfg.Env,
		Insecure:    cfg.OTelInsecure,
	})
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()
	metrics, err := telemetry.NewDecisionMetrics(providers.MeterProvider)
	if err != nil {
		log.Fatalf("telemetry: metrics: %v", err)
	}
	emitter := telemetryotel.NewEventEmitter(providers.LoggerProvider)

	var (
		conn       *sql.DB
		assignRepo bizrepo.Repository
		auditRepo  auditrepo.Repository
		policyRepo policyrepo.Repository
	)
	if cfg.DatabaseURL != "" {
		conn, err = db.Open(ctx, cfg.DatabaseURL, cfg.PingTimeout())
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		defer conn.Close()
		assignRepo = bizrepo.NewPostgresRepository(conn)
		auditRepo = auditrepo.NewPostgresRepository(conn)
		policyRepo = policyrepo.NewPostgresRepository(conn)
	} else {
		log.Println("db: DATABASE_URL not set; using in-memory repositories")
		assignRepo = bizrepo.NewMemoryRepository()
		auditRepo = auditrepo.NewMemoryRepository(memoryAuditCapacity)
		policyRepo = policyrepo.NewMemoryRepository()
	}

	var (
		evaluator     engine.Evaluator = engine.StaticEvaluator{}
		policyChecker healthhandler.PolicyChecker
	)
	if cfg.UsesOPA() {
		opa := engine.NewOPAEvaluator(policyRepo)
		evaluator = opa
		policyChecker = opa
	}

	access := accesshandler.Options{
		Evaluator: evaluator,
		AuditRepo: auditRepo,
		Emitter:   emitter,
		Metrics:   metrics,
	}
	if cfg.AssignmentsAPIURL != "" {
		// Assignments are owned by the external API; the team workflow is not served here.
		log.Printf("assignments: reading from %s", cfg.AssignmentsAPIURL)
		api := client.NewHTTPClient(cfg.AssignmentsAPIURL, cfg.AssignmentsAPIToken)
		api.TokenSource = interceptors.AccessToken
		access.Lister = api
	} else {
		access.Lister = assignRepo
		access.Team = service.NewTeamService(assignRepo, evaluator, audit.NewLogger(auditRepo, interceptors.ClientIP))
	}

	deps := server.Deps{
		Access:              access,
		PolicyRepo:          policyRepo,
		HealthPolicyChecker: policyChecker,
	}
	if conn != nil {
		deps.HealthPinger = conn
	}

	var tokens interceptors.TokenValidator
	if cfg.AuthEnabled() {
		signer, pub, err := security.LoadKeyPair(cfg.JWTPrivateKey, cfg.JWTPublicKey)
		if err != nil {
			log.Fatalf("jwt keys: %v", err)
		}
		tokens = security.NewTokenProvider(signer, pub, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())
	} else {
		log.Println("auth: JWT_PUBLIC_KEY not set; only public RPCs will be served")
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	defer lis.Close()

	s := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(server.UnaryInterceptors(tokens, deps)...),
	)
	server.RegisterServices(s, deps)

	go func() {
		log.Printf("gRPC server listening on %s (policy engine %s)", cfg.GRPCAddr, cfg.PolicyEngine)
		if err := s.Serve(lis); err != nil {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down gRPC server...")
	s.GracefulStop()
	// Let in-flight async telemetry emits finish before the exporters close.
	time.Sleep(telemetry.ShutdownDrainDuration)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("telemetry: shutdown: %v", err)
	}
	log.Println("gRPC server stopped")
}
