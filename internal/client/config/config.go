package config

import "time"

// Config holds runtime settings for the perfumekeeper CLI.
type Config struct {
	ServerURL      string
	GRPCAddr       string
	StateFile      string
	RequestTimeout time.Duration
}

// LoadDefaults points the CLI at a server on localhost.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.GRPCAddr = "127.0.0.1:50051"
	c.StateFile = "perfumekeeper.db"
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig applies defaults, then the JSON file, then flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
