package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/tigotap/mesh-bridge/pkg/dedup"
	"github.com/tigotap/mesh-bridge/pkg/nodetable"
	"github.com/tigotap/mesh-bridge/pkg/publisher"
	"github.com/tigotap/mesh-bridge/pkg/supervisor"
	"github.com/tigotap/mesh-bridge/pkg/transport"
)

var (
	serialDevice = pflag.String("serial", "", "Serial device path (mutually exclusive with --tcp)")
	tcpHost      = pflag.String("tcp", "", "Serial-over-TCP host (mutually exclusive with --serial)")
	tcpPort      = pflag.Int("port", 0, "Serial-over-TCP port")
	baudRate     = pflag.Int("baud-rate", 38400, "Serial baud rate")

	mqttServer   = pflag.String("mqtt-server", "localhost", "MQTT broker host")
	mqttPort     = pflag.Int("mqtt-port", 1883, "MQTT broker port")
	mqttUsername = pflag.String("mqtt-username", "", "MQTT username")
	mqttPassword = pflag.String("mqtt-password", "", "MQTT password")
	mqttPrefix   = pflag.String("mqtt-prefix", "tigo", "MQTT topic prefix")

	nodeTablePath    = pflag.String("node-table", "nodetable.cbor", "Node table persistence path (file backend) or Redis hash key (redis backend)")
	nodeTableBackend = pflag.String("node-table-backend", "file", "Node table storage backend: file or redis")
	redisAddr        = pflag.String("redis-addr", "localhost:6379", "Redis server address (redis backend only)")
	redisPassword    = pflag.String("redis-password", "", "Redis password (redis backend only)")
	redisDB          = pflag.Int("redis-db", 0, "Redis database number (redis backend only)")

	dedupWindow = pflag.Float64("dedup-window", 5.0, "Deduplication window in seconds; <= 0 disables the gate")
	logLevel    = pflag.String("log-level", "info", "Log level: debug, info, warn, error")
)

func main() {
	pflag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if level, err := log.ParseLevel(*logLevel); err == nil {
		logger.SetLevel(level)
	}

	if err := run(logger); err != nil {
		logger.Fatal(err)
	}
}

func run(logger *log.Logger) error {
	if err := validateSourceFlags(); err != nil {
		return err
	}

	tr, err := openTransport()
	if err != nil {
		return fmt.Errorf("open transport: %w", err)
	}

	store, err := openNodeTableStore()
	if err != nil {
		return fmt.Errorf("open node table store: %w", err)
	}
	table := nodetable.Load(store, logger)

	gate := dedup.New(time.Duration(*dedupWindow * float64(time.Second)))

	pub, err := publisher.Connect(publisher.Config{
		Server:   *mqttServer,
		Port:     *mqttPort,
		Username: *mqttUsername,
		Password: *mqttPassword,
		Prefix:   *mqttPrefix,
	}, logger)
	if err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}

	sup := supervisor.New(tr, table, gate, pub, logger, nil)

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	logger.Info("bridge running")
	runErr := sup.Run(ctx)
	sup.Close()
	return runErr
}

func validateSourceFlags() error {
	hasSerial := *serialDevice != ""
	hasTCP := *tcpHost != ""
	if hasSerial == hasTCP {
		return fmt.Errorf("exactly one of --serial or --tcp must be specified")
	}
	if hasTCP && *tcpPort == 0 {
		return fmt.Errorf("--port is required with --tcp")
	}
	return nil
}

func openTransport() (transport.Transport, error) {
	if *serialDevice != "" {
		return transport.OpenSerial(*serialDevice, *baudRate)
	}
	return transport.DialTCP(*tcpHost, *tcpPort)
}

func openNodeTableStore() (nodetable.Store, error) {
	switch *nodeTableBackend {
	case "redis":
		return nodetable.NewRedisStore(*redisAddr, *redisPassword, *redisDB, *nodeTablePath), nil
	case "file", "":
		return nodetable.NewFileStore(*nodeTablePath), nil
	default:
		return nil, fmt.Errorf("unknown node-table-backend %q", *nodeTableBackend)
	}
}
