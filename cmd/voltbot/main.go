package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tbran/voltbot/internal/command"
	appcfg "github.com/tbran/voltbot/internal/config"
	"github.com/tbran/voltbot/internal/dispatch"
	"github.com/tbran/voltbot/internal/moderation"
	"github.com/tbran/voltbot/internal/obslog"
	"github.com/tbran/voltbot/internal/permit"
	"github.com/tbran/voltbot/internal/showdown"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer obslog.Sync()

	perms, err := permit.LoadFile(cfg.PermissionsFile)
	if err != nil {
		obslog.L().Fatal("permissions_load_failed", zap.String("file", cfg.PermissionsFile), zap.Error(err))
	}

	corrections, err := moderation.LoadCorrections(cfg.AutocorrectFile)
	if err != nil {
		obslog.L().Fatal("autocorrect_load_failed", zap.Error(err))
	}

	registry, err := command.Builtins(showdown.NewTextFetcher())
	if err != nil {
		obslog.L().Fatal("command_registry_failed", zap.Error(err))
	}

	ws := showdown.NewWebSocket(cfg.WSURL, 5, time.Second)
	sender := showdown.NewSender(ws, showdown.DefaultThrottle)
	loginClient := showdown.NewLoginClient(cfg.ActionURL)

	var session *dispatch.Session
	engine := moderation.NewEngine(moderation.Config{
		AllowMute:              cfg.AllowMute,
		ModeratedRooms:         cfg.ModeratedRooms,
		PrivateRooms:           cfg.PrivateRooms,
		Whitelist:              cfg.ModWhitelist,
		Punishments:            cfg.Punishments,
		ZeroToleranceThreshold: cfg.ZeroTolerance,
		Corrections:            corrections,
	}, moderation.RankViewFunc(func(room string) rune {
		return session.RoomSymbol(room)
	}), engineOptions(cfg)...)

	sessionOpts := []dispatch.SessionOption{
		dispatch.WithOnFatal(func(reason string) {
			obslog.L().Error("session_fatal", zap.String("reason", reason))
			os.Exit(1)
		}),
	}

	var audit *moderation.Repository
	if cfg.DatabaseURL != "" {
		audit, err = moderation.NewRepository(cfg.DatabaseURL)
		if err != nil {
			obslog.L().Fatal("audit_repository_failed", zap.Error(err))
		}
		sessionOpts = append(sessionOpts, dispatch.WithAuditLog(audit))
	}

	session = dispatch.NewSession(cfg, sender, loginClient, perms, registry, engine, sessionOpts...)

	ws.OnFrame(session.HandleFrame)
	ws.OnStateChange(func(state showdown.WebSocketState) {
		obslog.L().Info("ws_state", zap.String("state", string(state)))
		if state == showdown.WSStateDisconnected || state == showdown.WSStateReconnecting {
			session.Reset()
		}
	})

	sender.Start()

	cctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = ws.Connect(cctx)
	cancel()
	if err != nil {
		obslog.L().Fatal("ws_connect_failed", zap.Error(err))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	session.Close()
	sender.Close()
	_ = ws.Close(context.Background())
	if audit != nil {
		_ = audit.Close()
	}
}

// engineOptions wires the optional redis-backed zero-tolerance store.
func engineOptions(cfg *appcfg.AppConfig) []moderation.Option {
	if cfg.RedisURL == "" {
		return nil
	}
	store, err := moderation.NewRedisStoreURL(cfg.RedisURL)
	if err != nil {
		obslog.L().Fatal("redis_store_failed", zap.Error(err))
	}
	return []moderation.Option{moderation.WithZeroToleranceStore(store)}
}
