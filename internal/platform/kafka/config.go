// Package kafka builds the franz-go producer used by the Kafka audit sink.
package kafka

import (
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	pstrings "authguard/pkg/platform/strings"
)

var errNoBrokers = errors.New("kafka brokers not configured")

// ProducerConfig describes the audit producer. Acks is "0", "1" or "all".
type ProducerConfig struct {
	Brokers         string
	Acks            string
	Retries         int
	DeliveryTimeout time.Duration
}

func DefaultProducerConfig() ProducerConfig {
	return ProducerConfig{Acks: "all", Retries: 3, DeliveryTimeout: 30 * time.Second}
}

// BrokerList parses the comma-separated Brokers field.
func (c ProducerConfig) BrokerList() []string {
	return pstrings.SplitList(c.Brokers)
}

// weakAcks reports settings franz-go cannot combine with idempotent writes.
func (c ProducerConfig) weakAcks() bool {
	return c.Acks == "0" || c.Acks == "1"
}

func (c ProducerConfig) acks() kgo.Acks {
	switch c.Acks {
	case "0":
		return kgo.NoAck()
	case "1":
		return kgo.LeaderAck()
	}
	return kgo.AllISRAcks()
}

func (c ProducerConfig) options() ([]kgo.Opt, error) {
	brokers := c.BrokerList()
	if len(brokers) == 0 {
		return nil, errNoBrokers
	}
	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.RequiredAcks(c.acks()),
		kgo.RecordRetries(c.Retries),
		kgo.ProducerLinger(5 * time.Millisecond),
	}
	if c.weakAcks() {
		opts = append(opts, kgo.DisableIdempotentWrite())
	}
	if c.DeliveryTimeout > 0 {
		opts = append(opts, kgo.RecordDeliveryTimeout(c.DeliveryTimeout))
	}
	return opts, nil
}

// NewClient does not dial. Broker reachability is left to Ping.
func NewClient(cfg ProducerConfig) (*kgo.Client, error) {
	opts, err := cfg.options()
	if err != nil {
		return nil, err
	}
	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return client, nil
}
