package flags

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ruteri/hostkey-panel/actions"
	"github.com/ruteri/hostkey-panel/api"
	"github.com/ruteri/hostkey-panel/common"
	"github.com/urfave/cli/v2"
)

func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJsonFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUidFlag.Name)
	logService := cCtx.String("log-service")

	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   logDebug,
		JSON:    logJSON,
		Service: logService,
		Version: common.Version,
	})

	if logUID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

func ConfigureServer(cCtx *cli.Context, logger *slog.Logger, listenAddr string) *api.HTTPServerConfig {
	metricsAddr := cCtx.String(MetricsAddrFlag.Name)
	enablePprof := cCtx.Bool(PprofFlag.Name)
	drainDuration := time.Duration(cCtx.Int64(DrainSecondsFlag.Name)) * time.Second
	actionTimeout := cCtx.Duration(ActionTimeoutFlag.Name)

	return &api.HTTPServerConfig{
		ListenAddr:               listenAddr,
		MetricsAddr:              metricsAddr,
		Log:                      logger,
		EnablePprof:              enablePprof,
		DrainDuration:            drainDuration,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             2*actionTimeout + 10*time.Second,
		IdleTimeout:              120 * time.Second,
	}
}

var ListenAddrFlag = &cli.StringFlag{
	Name:    "listen-addr",
	Value:   "127.0.0.1:8080",
	Usage:   "address to listen on for the panel",
	EnvVars: []string{"PANEL_LISTEN_ADDR"},
}

var ServerAddrFlag = &cli.StringFlag{
	Name:    "server-addr",
	Value:   "http://127.0.0.1:8080",
	Usage:   "panel server address to request",
	EnvVars: []string{"PANEL_SERVER_ADDR"},
}

var ActionsDirFlag = &cli.StringFlag{
	Name:    "actions-dir",
	Value:   actions.DefaultActionsDir,
	Usage:   "directory holding the privileged helper scripts",
	EnvVars: []string{"PANEL_ACTIONS_DIR"},
}

var SudoFlag = &cli.BoolFlag{
	Name:    "sudo",
	Value:   true,
	Usage:   "run helpers through 'sudo -n'",
	EnvVars: []string{"PANEL_SUDO"},
}

var ActionTimeoutFlag = &cli.DurationFlag{
	Name:  "action-timeout",
	Value: 60 * time.Second,
	Usage: "maximum run time of a synchronous helper invocation",
}

var DomainsFileFlag = &cli.StringFlag{
	Name:     "domains-file",
	Usage:    "YAML file listing the configured domains by type",
	Required: true,
	EnvVars:  []string{"PANEL_DOMAINS_FILE"},
}

var WatchDomainsFlag = &cli.BoolFlag{
	Name:  "watch-domains",
	Value: true,
	Usage: "reload the domains file when it changes",
}

var FlashTTLFlag = &cli.DurationFlag{
	Name:  "flash-ttl",
	Value: 10 * time.Minute,
	Usage: "how long undelivered notifications are kept for a session",
}

var LogJsonFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}
var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}

var LogServiceFlagFn = func(service string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "log-service",
		Value: service,
		Usage: "add 'service' tag to logs",
	}
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}
var DrainSecondsFlag = &cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 45,
	Usage: "seconds to wait in drain HTTP request",
}
var MetricsAddrFlag = &cli.StringFlag{
	Name:  "metrics-addr",
	Value: "127.0.0.1:8090",
	Usage: "address to listen on for Prometheus metrics",
}

var CommonFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	PprofFlag,
	DrainSecondsFlag,
	MetricsAddrFlag,
}
