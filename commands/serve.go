package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/mauzo/sheets-gateway/config"
	"github.com/mauzo/sheets-gateway/gateway"
	"github.com/mauzo/sheets-gateway/log"
	"github.com/mauzo/sheets-gateway/sheets"
	"github.com/mauzo/sheets-gateway/telemetry"
)

// NewServeCmd returns the 'serve' command, which runs the HTTP gateway until interrupted.
func NewServeCmd(options *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Runs the HTTP gateway",
		Long: `Runs the HTTP gateway. The gateway is configured from the environment:

  PORT                listening port (default 3000)
  SHEET_ID            spreadsheet ID or URL (required)
  SHEET_RANGE         range to read (default 'Mauzo!A1:J')
  GOOGLE_CREDENTIALS  service account key file (default 'service-account.json')
  TRUST_PROXY         identify clients by the X-Forwarded-For address set by the nearest proxy
  CORS_ORIGINS        comma separated list of permitted origins (default '*')
  RATE_LIMIT_WINDOW   rate limit window (default 15m)
  RATE_LIMIT_MAX      requests per client per window (default 100)
  BODY_LIMIT          maximum JSON request body size in bytes (default 102400)
  MAX_CONNECTIONS     maximum concurrent connections (default unlimited)
  METRICS             expose Prometheus metrics on /metrics (default true)
  TRACING             trace exporter, 'stdout' or 'none' (default none)
  DEBUG               enable debug logging`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), options)
		},
	}
}

func serve(ctx context.Context, options *Options) error {
	conf, err := config.Load(os.Getenv)
	if err != nil {
		return err
	}

	if options.Debug {
		conf.Debug = true
	}

	log.SetDebug(conf.Debug)
	defer log.Sync()

	if !conf.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	shutdown, err := telemetry.Init(conf.Tracing, gateway.SERVICE)
	if err != nil {
		return err
	}

	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Warnf("error stopping tracer (%v)", err)
		}
	}()

	if ctx == nil {
		ctx = context.Background()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Debugf("spreadsheet:%v  range:%v  credentials:%v", conf.Spreadsheet, conf.Range, conf.Credentials)

	client := sheets.NewClient(conf.Credentials)
	server := gateway.NewServer(*conf, client)

	return server.Run(ctx)
}
