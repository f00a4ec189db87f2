package config

import (
	"fmt"
	"time"
)

const (
	TransportHTTP  = "http"
	TransportStdio = "stdio"

	defaultMCPAddr = "127.0.0.1:8001"
)

type MCP struct {
	Database          Database
	Addr              string
	Transport         string
	ShutdownTimeout   time.Duration
	ReadHeaderTimeout time.Duration
}

func LoadMCP() (MCP, error) {
	db, err := loadDatabase()
	if err != nil {
		return MCP{}, err
	}

	cfg := MCP{
		Database:          db,
		Addr:              getEnv("MCP_ADDR", defaultMCPAddr),
		Transport:         getEnv("MCP_TRANSPORT", TransportHTTP),
		ShutdownTimeout:   defaultShutdownTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
	}

	if cfg.Transport != TransportHTTP && cfg.Transport != TransportStdio {
		return MCP{}, fmt.Errorf("MCP_TRANSPORT %q is not supported", cfg.Transport)
	}

	return cfg, nil
}
