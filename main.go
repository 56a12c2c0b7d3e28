package main

import (
	"context"
	"flag"
	"os"

	"github.com/go-logr/logr"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/bayleafwalker/quire/internal/config"
	"github.com/bayleafwalker/quire/internal/platform"
	"github.com/bayleafwalker/quire/internal/server"
	"github.com/bayleafwalker/quire/internal/telemetry"
)

var setupLog = ctrl.Log.WithName("setup")

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The logger is not configured yet.
		ctrl.SetLogger(zap.New())
		setupLog.Error(err, "unable to load configuration")
		os.Exit(1)
	}

	flag.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Directory holding file-backed stores.")
	flag.StringVar(&cfg.AdminAddr, "admin-bind-address", cfg.AdminAddr, "The address the probe, metrics and debug endpoints bind to.")
	flag.StringVar(&cfg.GRPCAddr, "grpc-bind-address", cfg.GRPCAddr, "The address the gRPC health service binds to.")
	flag.StringVar(&cfg.BridgeURL, "bridge-url", cfg.BridgeURL, "Loopback URL of the native shell bridge.")
	flag.StringVar(&cfg.AccountID, "account-id", cfg.AccountID, "Signed-in account.")

	opts := zap.Options{Development: true}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()

	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))

	if err := cfg.Validate(); err != nil {
		setupLog.Error(err, "invalid configuration")
		os.Exit(1)
	}
	if err := cfg.ValidateFor(platform.Current); err != nil {
		setupLog.Error(err, "invalid configuration for platform", "platform", platform.Current)
		os.Exit(1)
	}

	ctx := logr.NewContext(ctrl.SetupSignalHandler(), ctrl.Log.WithName("quire"))

	shutdownTracing, err := telemetry.Setup(ctx, cfg, "quire", platform.Current)
	if err != nil {
		setupLog.Error(err, "unable to set up tracing")
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			setupLog.Error(err, "problem flushing traces")
		}
	}()

	ready := server.NewReadiness()
	c, err := platform.Build(ctx, cfg)
	if err != nil {
		setupLog.Error(err, "unable to build capability container", "platform", platform.Current)
		os.Exit(1)
	}
	ready.ObserveContainer(c)

	srv, err := server.New(c, ready, cfg.AdminAddr, cfg.GRPCAddr)
	if err != nil {
		setupLog.Error(err, "unable to start servers")
		_ = c.Close(ctx)
		os.Exit(1)
	}
	if err := srv.MarkReady(); err != nil {
		setupLog.Error(err, "container is not ready")
	}

	setupLog.Info("starting quire", "platform", platform.Current, "capabilities", len(c.Plan().Order))
	serveErr := srv.Serve(ctx)

	if err := c.Close(context.Background()); err != nil {
		setupLog.Error(err, "problem closing capabilities")
	}
	if serveErr != nil {
		setupLog.Error(serveErr, "problem running servers")
		os.Exit(1)
	}
}
