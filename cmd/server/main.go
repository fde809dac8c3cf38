package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"google.golang.org/grpc"

	"ordmap/api/grpcserver"
	"ordmap/config"
	"ordmap/infra/kafka"
	"ordmap/infra/sequence"
	"ordmap/jobs/broadcaster"
	"ordmap/service"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./cmd/server
var version = "dev"

func main() {
	app := cli.NewApp()
	app.Name = "ordmap-server"
	app.Usage = "ordered key-value store over gRPC"
	app.Version = version

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "listen, l",
			Value:  config.DefaultListenAddr,
			Usage:  "gRPC listen `ADDR`",
			EnvVar: "ORDMAP_LISTEN",
		},
		cli.StringFlag{
			Name:   "metrics",
			Usage:  "serve prometheus metrics on `ADDR`",
			EnvVar: "ORDMAP_METRICS",
		},
		cli.StringSliceFlag{
			Name:   "kafka-broker",
			Usage:  "kafka `HOST:PORT`, may be repeated",
			EnvVar: "ORDMAP_KAFKA_BROKERS",
		},
		cli.StringFlag{
			Name:   "kafka-topic",
			Value:  config.DefaultKafkaTopic,
			Usage:  "change stream `TOPIC`",
			EnvVar: "ORDMAP_KAFKA_TOPIC",
		},
		cli.StringFlag{
			Name:   "kafka-client",
			Usage:  "publish changes with `CLIENT` [sarama|kafka-go], empty disables",
			EnvVar: "ORDMAP_KAFKA_CLIENT",
		},
		cli.DurationFlag{
			Name:   "flush-interval",
			Value:  config.DefaultFlushInterval,
			Usage:  "change stream flush `INTERVAL`",
			EnvVar: "ORDMAP_FLUSH_INTERVAL",
		},
		cli.IntFlag{
			Name:   "flush-batch",
			Value:  config.DefaultFlushBatch,
			Usage:  "max events per flush",
			EnvVar: "ORDMAP_FLUSH_BATCH",
		},
		cli.StringFlag{
			Name:   "log-level",
			Value:  "info",
			Usage:  "`LEVEL` [debug|info|warn|error]",
			EnvVar: "ORDMAP_LOG_LEVEL",
		},
		cli.StringFlag{
			Name:   "log-format",
			Value:  "text",
			Usage:  "`FORMAT` [text|json]",
			EnvVar: "ORDMAP_LOG_FORMAT",
		},
	}
	app.Action = func(c *cli.Context) error {
		cfg := config.Config{
			ListenAddr:    c.String("listen"),
			MetricsAddr:   c.String("metrics"),
			KafkaBrokers:  c.StringSlice("kafka-broker"),
			KafkaTopic:    c.String("kafka-topic"),
			KafkaClient:   c.String("kafka-client"),
			FlushInterval: c.Duration("flush-interval"),
			FlushBatch:    c.Int("flush-batch"),
			LogLevel:      c.String("log-level"),
			LogFormat:     c.String("log-format"),
		}
		if err := cfg.Normalize(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return run(ctx, cfg)
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	log := cfg.Logger()

	// ---------------- Metrics ----------------

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	metrics := service.NewMetrics(reg)

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		metricsSrv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("metrics server exited")
			}
		}()
		defer metricsSrv.Close()
	}

	// ---------------- Change stream ----------------

	sender, err := newSender(cfg)
	if err != nil {
		return err
	}
	var outbox service.Outbox
	if sender != nil {
		// Stopped after the gRPC server so writes accepted during graceful
		// stop reach the final flush. Run returns before the sender closes.
		defer sender.Close()

		bcCtx, stopBC := context.WithCancel(context.Background())
		bcDone := make(chan struct{})
		bc := broadcaster.New(sender, cfg.FlushInterval, cfg.FlushBatch, log)
		go func() {
			defer close(bcDone)
			bc.Run(bcCtx)
		}()
		defer func() {
			stopBC()
			<-bcDone
		}()
		outbox = bc
	}

	// ---------------- Service ----------------

	svc := service.NewStoreService(sequence.New(0), outbox, metrics, log)

	// ---------------- gRPC ----------------

	lis, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", cfg.ListenAddr)
	}

	grpcSrv := grpc.NewServer()
	grpcserver.RegisterOrderedMapServer(grpcSrv, grpcserver.NewServer(svc, log))

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		grpcSrv.GracefulStop()
	}()

	log.WithFields(logrus.Fields{
		"addr":   lis.Addr().String(),
		"kafka":  cfg.KafkaClient,
		"topic":  cfg.KafkaTopic,
		"metric": cfg.MetricsAddr,
	}).Info("ordmap running")

	if err := grpcSrv.Serve(lis); err != nil {
		return errors.Wrap(err, "gRPC server exited")
	}
	return nil
}

type closingSender interface {
	broadcaster.Sender
	io.Closer
}

func newSender(cfg config.Config) (closingSender, error) {
	switch cfg.KafkaClient {
	case config.KafkaClientSarama:
		s, err := broadcaster.NewSaramaSender(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.KafkaClientKafkaGo:
		return kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	default:
		return nil, nil
	}
}
