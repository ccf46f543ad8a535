// Package config loads runtime configuration for the perfumekeeper CLI.
//
// Sources, later ones winning:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file given with -c or -config.
//  3. Command-line flags.
//
// Supported flags
//
//	-a string   base URL of the HTTP API
//	-g string   address:port of the gRPC health endpoint
//	-f string   path of the local session database
//	-t int      request timeout (seconds)
//
// JSON file
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "grpc_addr": "127.0.0.1:50051",
//	  "state_file": "perfumekeeper.db",
//	  "request_timeout": "10s"
//	}
package config
