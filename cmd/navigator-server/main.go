package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"

	"github.com/joelkehle/trial-navigator/internal/httpapi"
	"github.com/joelkehle/trial-navigator/internal/navigator"
	"github.com/joelkehle/trial-navigator/internal/session"
	"github.com/joelkehle/trial-navigator/internal/trials"
)

func main() {
	_ = godotenv.Load()

	registryURL := flag.String("registry-url", trials.DefaultBaseURL, "ClinicalTrials.gov API base URL")
	sessionTTL := flag.Duration("session-ttl", 2*time.Hour, "idle session lifetime (0 disables expiry)")
	refineIters := flag.Int("refine-iters", 0, "max automatic search refinements per run (0 = linear pipeline)")
	flag.Parse()

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownTracing := setupTracing(ctx)
	defer shutdownTracing()

	searcher := trials.NewClient(trials.ClientConfig{
		BaseURL:  *registryURL,
		PageSize: envInt("NAVIGATOR_PAGE_SIZE", trials.DefaultPageSize),
	})

	var llm navigator.LLMCaller
	if caller, err := navigator.NewAnthropicCallerFromEnv(); err != nil {
		log.Printf("navigator-server llm_disabled reason=%q (static fallbacks in effect)", err.Error())
	} else {
		llm = caller
		log.Printf("navigator-server llm_enabled model=%s", caller.ModelName())
	}

	var opts []navigator.Option
	if *refineIters > 0 {
		opts = append(opts, navigator.WithRefinement(*refineIters))
	}
	pipeline := navigator.NewPipeline(searcher, llm, opts...)
	if err := pipeline.ValidateConfig(); err != nil {
		log.Fatal(err)
	}

	sessions := session.NewStore(*sessionTTL)
	srv := &http.Server{
		Addr:    addr,
		Handler: httpapi.NewServer(pipeline, sessions),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("navigator-server listening on %s (registry=%s)", addr, *registryURL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

// setupTracing wires the OTLP/HTTP trace exporter when
// NAVIGATOR_OTLP_ENDPOINT is set; otherwise spans stay no-op.
func setupTracing(ctx context.Context) func() {
	endpoint := strings.TrimSpace(os.Getenv("NAVIGATOR_OTLP_ENDPOINT"))
	if endpoint == "" {
		return func() {}
	}
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		log.Printf("navigator-server tracing_disabled err=%q", err.Error())
		return func() {}
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName("trial-navigator"),
		)),
	)
	otel.SetTracerProvider(tp)
	log.Printf("navigator-server tracing_enabled endpoint=%s", endpoint)
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
	}
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	if n <= 0 {
		return fallback
	}
	return n
}
