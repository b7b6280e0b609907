package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"egym-strava-sync/internal/config"
	"egym-strava-sync/internal/egym"
	"egym-strava-sync/internal/logging"
	"egym-strava-sync/internal/metrics"
	"egym-strava-sync/internal/strava"
	"egym-strava-sync/internal/strava/persistence"
	"egym-strava-sync/internal/syncer"
	"egym-strava-sync/internal/tracing"
	"egym-strava-sync/internal/util"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "Path to a YAML settings file (defaults to $SYNC_CONFIG_FILE)")
	dryRun := flag.Bool("dry-run", false, "Log planned activity updates without sending them")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return syncer.ExitConfig
	}
	if *dryRun {
		cfg.DryRun = true
	}

	log := logging.New(cfg.Env).With("run_id", uuid.NewString())
	defer func() { _ = log.Sync() }()

	if applied, err := persistence.ApplyStoredRefreshToken(&cfg.Credentials); err != nil {
		log.Warnw("stored refresh token ignored", "dir", cfg.TokenStorageDir, "err", err)
	} else if applied {
		log.Infow("using stored refresh token", "dir", cfg.TokenStorageDir)
	}

	if err = cfg.Validate(); err != nil {
		log.Errorw("invalid configuration", "err", err)
		return syncer.ExitConfig
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx)
	if err != nil {
		log.Warnw("tracing disabled", "err", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warnw("tracing shutdown", "err", err)
		}
	}()

	httpClient := util.NewHttpClient(cfg.HTTPTimeout)

	store, err := persistence.NewStore(cfg.Credentials, httpClient)
	if err != nil {
		log.Warnw("secret store unavailable, rotated refresh token will not reach it",
			"fallback", store.Name(), "err", err)
	}

	stravaClient := strava.NewClient(strava.ClientConfig{
		OAuthURL:     cfg.StravaOAuthURL,
		APIURL:       cfg.StravaAPIURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RefreshToken: cfg.RefreshToken,
	}, httpClient, log)

	egymClient := egym.NewClient(egym.ClientConfig{
		BaseURL:  cfg.EgymBaseURL,
		APIURL:   cfg.EgymAPIURL,
		Email:    cfg.Email,
		Password: cfg.Password,
		Since:    cfg.WorkoutsSince,
	}, httpClient, log)

	recorder := metrics.New()
	runner := syncer.NewRunner(stravaClient, egymClient, store, recorder, log, syncer.Options{
		RefreshToken:     cfg.RefreshToken,
		ActivityPageSize: cfg.ActivityPageSize,
		CircuitThreshold: cfg.CircuitThreshold,
		SkipSynced:       cfg.SkipSynced,
		DryRun:           cfg.DryRun,
		ExcludedSource:   egym.SourceGarmin,
	})

	log.Infow("sync started", "tenant", cfg.Tenant, "dry_run", cfg.DryRun, "secret_store", store.Name())
	runErr := runner.Run(ctx)

	pushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := recorder.Push(pushCtx, cfg.PushgatewayURL); err != nil {
		log.Warnw("push metrics failed", "err", err)
	}

	code := syncer.ExitCode(runErr)
	if runErr != nil {
		log.Errorw("sync finished with error", "err", runErr, "exit_code", code)
	} else {
		log.Infow("sync finished")
	}
	return code
}
