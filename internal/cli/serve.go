package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/botbridge/botbridge/internal/bridge"
	"github.com/botbridge/botbridge/internal/bus"
	"github.com/botbridge/botbridge/internal/config"
	"github.com/botbridge/botbridge/internal/connector"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveVerbose bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Bot Framework gateway",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "enable debug logging")
}

func runServe(cmd *cobra.Command, args []string) error {
	printHeader("🌐 BotBridge Gateway")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	level := slog.LevelInfo
	if serveVerbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	msgBus := bus.NewMessageBus()
	host := bridge.NewBusHost(msgBus)

	seeds := make(map[string]connector.ChannelSeed, len(cfg.BotFramework.Channels))
	for id, seed := range cfg.BotFramework.Channels {
		seeds[id] = connector.ChannelSeed{
			ServiceURL: seed.ServiceURL,
			BotID:      seed.BotID,
			BotName:    seed.BotName,
		}
	}

	conn := connector.New(connector.Options{
		AppID:     cfg.BotFramework.AppID,
		AppSecret: cfg.BotFramework.AppSecret,
		TokenURL:  cfg.BotFramework.TokenURL,
		Host:      host,
		Seeds:     seeds,
		DedupeTTL: cfg.BotFramework.DedupeTTL,
	})
	if conn.EmulatorMode() {
		fmt.Println(color.YellowString("⚠️  No app credentials configured: running unauthenticated (emulator mode)"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Outbound leg: bus subscriptions feed the connector.
	msgBus.Subscribe("", func(msg *bus.OutboundMessage) {
		sendCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := conn.SendTo(sendCtx, msg.Channel, msg.UserID, msg.Content); err != nil {
			slog.Warn("outbound delivery failed",
				"channel", msg.Channel, "user", msg.UserID, "error", err)
		}
	})

	mux := http.NewServeMux()
	mux.HandleFunc(cfg.Gateway.WebhookPath, conn.HandleWebhook)
	mux.HandleFunc("/status", conn.HandleStatus)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ok":true}`)
	})
	srv := &http.Server{Addr: cfg.Gateway.ListenAddr(), Handler: mux}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return msgBus.DispatchOutbound(gctx) })

	if cfg.Kafka.Enabled {
		sink := bridge.NewSink(cfg.Kafka.BrokerList(), cfg.Kafka.InboundTopic)
		defer sink.Close()
		fwd := bridge.NewForwarder(msgBus, sink)
		g.Go(func() error { return fwd.Run(gctx) })

		src := bridge.NewSource(cfg.Kafka.BrokerList(), cfg.Kafka.OutboundTopic, cfg.Kafka.ConsumerGroup, msgBus)
		defer src.Close()
		g.Go(func() error { return src.Run(gctx) })
		slog.Info("kafka bridge started",
			"brokers", cfg.Kafka.Brokers,
			"inbound_topic", cfg.Kafka.InboundTopic,
			"outbound_topic", cfg.Kafka.OutboundTopic)
	} else {
		echo := bridge.NewEcho(msgBus)
		g.Go(func() error { return echo.Run(gctx) })
		slog.Info("kafka disabled, echo responder active")
	}

	g.Go(func() error {
		slog.Info("gateway listening", "addr", srv.Addr, "webhook", cfg.Gateway.WebhookPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	host.OnConnect()
	defer host.OnDisconnect()

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("gateway stopped")
	return nil
}
