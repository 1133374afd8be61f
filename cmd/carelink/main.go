package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"carelink/internal/app"
	"carelink/internal/authtoken"
	"carelink/internal/config"
	"carelink/internal/demo"
	"carelink/internal/ratelimit"
	"carelink/internal/server"
	"carelink/internal/util"
	"carelink/pkg/notify"
	"carelink/pkg/speech"
	"carelink/pkg/storage"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load config: %v\n", err)
		os.Exit(1)
	}

	util.InitLogger(cfg.LogLevel)

	tokens, err := authtoken.NewManager(authtoken.Config{Secret: cfg.TokenSecret})
	if err != nil {
		util.Fatal("failed to init token manager", "err", err)
	}

	appCfg := app.Config{
		DatabaseURL:  cfg.DatabaseURL,
		OracleAPIKey: cfg.OracleAPIKey,
		OracleModel:  cfg.OracleModel,
		Tokens:       tokens,
	}

	if cfg.AMQPURL != "" {
		pusher, err := notify.NewAMQPPusher(cfg.AMQPURL, cfg.PushExchange)
		if err != nil {
			util.Fatal("failed to connect push broker", "err", err)
		}
		defer pusher.Close()
		appCfg.Pusher = pusher
	}

	var limiter *ratelimit.FixedWindowLimiter
	if cfg.RedisAddr != "" {
		cache, err := demo.NewSessionCache(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			util.Fatal("failed to connect redis", "err", err)
		}
		appCfg.DemoCache = cache

		if cfg.DemoRateLimitPerMinute > 0 {
			limiter, err = ratelimit.New(cfg.RedisAddr, cfg.RedisPassword, cfg.DemoRateLimitPerMinute, time.Minute)
			if err != nil {
				util.Fatal("failed to init rate limiter", "err", err)
			}
		}
	}

	if cfg.TTSAPIKey != "" {
		synth, err := speech.NewOpenAIClient(cfg.TTSAPIKey)
		if err != nil {
			util.Fatal("failed to init speech client", "err", err)
		}
		if cfg.MinioEndpoint != "" {
			store, err := storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
			if err != nil {
				util.Fatal("failed to init audio store", "err", err)
			}
			appCfg.Speech = speech.NewCachedSynthesizer(synth, store)
		} else {
			appCfg.Speech = synth
		}
	}

	appCore, err := app.New(appCfg)
	if err != nil {
		util.Fatal("failed to init app", "err", err)
	}

	proxies, err := util.NewTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		util.Fatal("failed to parse trusted proxies", "err", err)
	}

	httpServer := server.New(server.Config{
		App:            appCore,
		PublicLimiter:  limiter,
		TrustedProxies: proxies,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("carelink server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "err", err)
	}
}
