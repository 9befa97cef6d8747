package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/coin-snake/internal/app"
	"github.com/vovakirdan/coin-snake/internal/config"
	"github.com/vovakirdan/coin-snake/internal/platform/tui"
	"github.com/vovakirdan/coin-snake/internal/platform/web"
)

var (
	flagSSHAddr  string
	flagHTTPAddr string
	flagHostKey  string
	flagStatic   string
	flagNoWatch  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve players over SSH and HTTP",
	Long: `Start the SSH server for terminal players and the HTTP API for
browsers and Mini App web views. Both share one wallet database.

Pass an empty address to disable a server. The config file is watched and
reloaded on change; new sessions pick up the new settings.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.coinsnake/ssh_host_ed25519

Examples:
  coinsnake serve                        # SSH on :23234, HTTP on :8080
  coinsnake serve --ssh ""               # HTTP only
  coinsnake serve --http :9000 --static ./webapp

Users can connect with:
  ssh localhost -p 23234`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (default from config)")
	serveCmd.Flags().StringVar(&flagHTTPAddr, "http", "", "HTTP server address (default from config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file")
	serveCmd.Flags().StringVar(&flagStatic, "static", "", "Directory with the web app to serve")
	serveCmd.Flags().BoolVar(&flagNoWatch, "no-watch", false, "Do not reload the config file on change")
}

func runServe(cmd *cobra.Command, _ []string) error {
	srvCfg := appCfg.Server
	if cmd.Flags().Changed("ssh") {
		srvCfg.SSHAddr = flagSSHAddr
	}
	if cmd.Flags().Changed("http") {
		srvCfg.HTTPAddr = flagHTTPAddr
	}
	if flagHostKey != "" {
		srvCfg.HostKeyPath = flagHostKey
	}
	if flagStatic != "" {
		srvCfg.StaticDir = flagStatic
	}
	if srvCfg.SSHAddr == "" && srvCfg.HTTPAddr == "" {
		return fmt.Errorf("nothing to serve: both --ssh and --http are empty")
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	factory := app.NewFactory(store, appCfg, logger)
	if cfgPath != "" && !flagNoWatch {
		if err := watchConfig(ctx, factory); err != nil {
			logger.Warn("config reload disabled", "err", err)
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	if srvCfg.SSHAddr != "" {
		sshSrv, err := tui.NewSSHServer(tui.SSHServerConfig{
			Address:     srvCfg.SSHAddr,
			HostKeyPath: srvCfg.HostKeyPath,
			IdleTimeout: srvCfg.IdleTimeout(),
			MaxSessions: srvCfg.MaxSessions,
		}, factory, store, logger)
		if err != nil {
			return err
		}
		g.Go(func() error { return sshSrv.ListenAndServe(ctx) })
	}

	if srvCfg.HTTPAddr != "" {
		if logger.GetLevel() > log.DebugLevel {
			gin.SetMode(gin.ReleaseMode)
		}
		webSrv := web.NewServer(web.Config{
			Address:        srvCfg.HTTPAddr,
			StaticDir:      srvCfg.StaticDir,
			BotToken:       appCfg.Bridge.BotToken,
			InitMaxAge:     appCfg.Bridge.InitMaxAge(),
			FallbackUserID: appCfg.Bridge.FallbackUserID,
			IdleTimeout:    srvCfg.IdleTimeout(),
			MaxSessions:    srvCfg.MaxSessions,
			TileSize:       appCfg.Game.TileSize,
		}, factory, store, logger)
		g.Go(func() error { return webSrv.ListenAndServe(ctx) })
	}

	return g.Wait()
}

// watchConfig applies edits of the config file to new sessions.
func watchConfig(ctx context.Context, factory *app.Factory) error {
	return config.Watch(ctx, cfgPath,
		func(cfg config.AppConfig) {
			if err := config.ApplyEnv(&cfg, os.LookupEnv); err != nil {
				logger.Error("config reload rejected", "err", err)
				return
			}
			// The database cannot move while serving.
			cfg.Storage = appCfg.Storage
			factory.SetConfig(cfg)
		},
		func(err error) {
			logger.Error("config reload failed", "err", err)
		},
	)
}
