package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"

	"github.com/Ning0612/nasbrowser/internal/adapter/local"
	"github.com/Ning0612/nasbrowser/internal/config"
	"github.com/Ning0612/nasbrowser/internal/core/classify"
	"github.com/Ning0612/nasbrowser/internal/daemon"
	"github.com/Ning0612/nasbrowser/internal/logger"
	"github.com/Ning0612/nasbrowser/internal/server"
	"github.com/Ning0612/nasbrowser/internal/service"
)

type serveOptions struct {
	configPath string
	root       string
	listen     string
	pidFile    string
	qr         bool
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP file browser",
		Example: `  nasbrowser serve --root /mnt/nas
  nasbrowser serve --listen 127.0.0.1:8080 --qr`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.configPath, _ = cmd.Flags().GetString("config")
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.root, "root", "r", "", "directory to serve (overrides config)")
	cmd.Flags().StringVarP(&opts.listen, "listen", "l", "", "listen address host:port (overrides config)")
	cmd.Flags().StringVar(&opts.pidFile, "pid-file", "", "write the process ID here while serving (overrides config)")
	cmd.Flags().BoolVar(&opts.qr, "qr", false, "print the LAN address as a QR code")

	return cmd
}

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("root") {
		cfg.Root = config.ExpandPath(opts.root)
	}
	if cmd.Flags().Changed("listen") {
		cfg.Listen = opts.listen
	}
	if cmd.Flags().Changed("pid-file") {
		cfg.PIDFile = config.ExpandPath(opts.pidFile)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logger.Init(cfg.LoggerConfig()); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Shutdown()

	if err := cfg.EnsureRoot(); err != nil {
		return err
	}

	table, err := classify.NewTable(cfg.CategoryOverrides())
	if err != nil {
		return fmt.Errorf("invalid categories: %w", err)
	}

	store, err := local.New(cfg.Root, table)
	if err != nil {
		return fmt.Errorf("failed to open root %q: %w", cfg.Root, err)
	}
	defer store.Close()

	browser, err := service.NewBrowser(store, cfg.RootLabel)
	if err != nil {
		return err
	}

	srv, err := server.New(browser, server.Options{MaxUploadBytes: cfg.MaxUploadBytes()})
	if err != nil {
		return err
	}

	if cfg.PIDFile != "" {
		pidFile := daemon.NewPIDFile(cfg.PIDFile)
		if err := pidFile.Acquire(); err != nil {
			return err
		}
		defer func() {
			if err := pidFile.Release(); err != nil {
				logger.Get().Warn("failed to remove PID file", "path", cfg.PIDFile, "error", err)
			}
		}()
	}

	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen %q failed: %w", cfg.Listen, err)
	}

	logger.Get().Info("nasbrowser starting",
		"version", version,
		"root", store.Root(),
		"listen", ln.Addr().String(),
		"extensions", table.Extensions())

	printBanner(cmd.OutOrStdout(), store.Root(), ln.Addr(), opts.qr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx, ln); err != nil {
		return err
	}

	logger.Get().Info("nasbrowser stopped")
	return nil
}

// printBanner tells the operator where the server can be reached
func printBanner(w io.Writer, root string, addr net.Addr, withQR bool) {
	url := browseURL(addr)

	fmt.Fprintf(w, "Serving %s\n", root)
	fmt.Fprintf(w, "Open %s\n", url)

	if !withQR {
		return
	}

	qr, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		logger.Get().Warn("failed to render QR code", "url", url, "error", err)
		return
	}
	fmt.Fprintln(w, qr.ToSmallString(false))
}
