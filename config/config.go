// Package config loads the routing daemon's YAML configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"prte/mca/routed"
)

var ErrInvalid = errors.New("config: invalid")

const (
	BrokerNone    = "none"
	BrokerSarama  = "sarama"
	BrokerKafkaGo = "kafka-go"
)

type Config struct {
	Routed   Routed `yaml:"routed"`
	Store    Store  `yaml:"store"`
	GRPC     GRPC   `yaml:"grpc"`
	Broker   Broker `yaml:"broker"`
	RingSize uint64 `yaml:"ring_size"`
}

// Routed selects the routing component and the plan applied when the store
// holds none.
type Routed struct {
	Component  string `yaml:"component"`
	JobID      uint32 `yaml:"job_id"`
	Self       uint32 `yaml:"self"`
	NumDaemons uint32 `yaml:"num_daemons"`
}

type Store struct {
	// Dir is the pebble directory. Empty disables persistence.
	Dir string `yaml:"dir"`
}

type GRPC struct {
	Addr string `yaml:"addr"`
}

type Broker struct {
	Client   string        `yaml:"client"`
	Brokers  []string      `yaml:"brokers"`
	Topic    string        `yaml:"topic"`
	Interval time.Duration `yaml:"interval"`
}

// Plan returns the configured routing plan.
func (c *Config) Plan() routed.Plan {
	return routed.Plan{
		JobID:      c.Routed.JobID,
		Self:       c.Routed.Self,
		NumDaemons: c.Routed.NumDaemons,
	}
}

// Load reads path, applies defaults and validates the result.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

func Decode(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}
	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Routed.NumDaemons == 0 {
		c.Routed.NumDaemons = 1
	}
	if c.GRPC.Addr == "" {
		c.GRPC.Addr = ":50051"
	}
	if c.Broker.Client == "" {
		c.Broker.Client = BrokerNone
	}
	if c.Broker.Topic == "" {
		c.Broker.Topic = "prte.routed.events"
	}
	if c.Broker.Interval == 0 {
		c.Broker.Interval = 250 * time.Millisecond
	}
	if c.RingSize == 0 {
		c.RingSize = 1 << 12
	}
}

func (c *Config) Validate() error {
	if err := c.Plan().Validate(); err != nil {
		return fmt.Errorf("%w: routed: %v", ErrInvalid, err)
	}
	if c.RingSize&(c.RingSize-1) != 0 {
		return fmt.Errorf("%w: ring_size %d is not a power of two", ErrInvalid, c.RingSize)
	}
	switch c.Broker.Client {
	case BrokerNone:
	case BrokerSarama, BrokerKafkaGo:
		if len(c.Broker.Brokers) == 0 {
			return fmt.Errorf("%w: broker %s needs at least one broker address", ErrInvalid, c.Broker.Client)
		}
	default:
		return fmt.Errorf("%w: unknown broker client %q", ErrInvalid, c.Broker.Client)
	}
	if c.Broker.Interval < 0 {
		return fmt.Errorf("%w: negative broker interval", ErrInvalid)
	}
	return nil
}
