// Package config holds the process configuration for the ordmap server.
package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// Kafka client implementations the change stream can be published with.
const (
	KafkaClientNone    = ""
	KafkaClientSarama  = "sarama"
	KafkaClientKafkaGo = "kafka-go"
)

const (
	DefaultListenAddr    = ":50051"
	DefaultKafkaTopic    = "ordmap.changes"
	DefaultFlushInterval = 2 * time.Second
	DefaultFlushBatch    = 512
)

type Config struct {
	ListenAddr  string
	MetricsAddr string // empty disables the metrics endpoint

	KafkaBrokers []string
	KafkaTopic   string
	KafkaClient  string

	FlushInterval time.Duration
	FlushBatch    int

	LogLevel  string
	LogFormat string // "text" or "json"
}

// Normalize fills in defaults and rejects inconsistent settings.
func (c *Config) Normalize() error {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = DefaultFlushInterval
	}
	if c.FlushBatch <= 0 {
		c.FlushBatch = DefaultFlushBatch
	}
	if c.KafkaTopic == "" {
		c.KafkaTopic = DefaultKafkaTopic
	}
	if c.LogLevel == "" {
		c.LogLevel = logrus.InfoLevel.String()
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}

	brokers := c.KafkaBrokers[:0]
	for _, b := range c.KafkaBrokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	c.KafkaBrokers = brokers

	switch c.KafkaClient {
	case KafkaClientNone:
	case KafkaClientSarama, KafkaClientKafkaGo:
		if len(c.KafkaBrokers) == 0 {
			return errors.Newf("kafka client %q needs at least one broker", c.KafkaClient)
		}
	default:
		return errors.Newf("unknown kafka client %q", c.KafkaClient)
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "log level")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return errors.Newf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// Logger builds a logger from LogLevel and LogFormat. Call after Normalize.
func (c *Config) Logger() *logrus.Logger {
	log := logrus.New()
	if lvl, err := logrus.ParseLevel(c.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	if c.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}
