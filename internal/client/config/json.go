package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/perfumekeeper/internal/flagx"
	"github.com/dmitrijs2005/perfumekeeper/internal/timex"
)

type JsonConfig struct {
	ServerURL      string         `json:"server_url"`
	GRPCAddr       string         `json:"grpc_addr"`
	StateFile      string         `json:"state_file"`
	RequestTimeout timex.Duration `json:"request_timeout"`
}

func parseJson(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.ServerURL != "" {
		config.ServerURL = c.ServerURL
	}
	if c.GRPCAddr != "" {
		config.GRPCAddr = c.GRPCAddr
	}
	if c.StateFile != "" {
		config.StateFile = c.StateFile
	}
	if c.RequestTimeout.Duration != 0 {
		config.RequestTimeout = c.RequestTimeout.Duration
	}
}
