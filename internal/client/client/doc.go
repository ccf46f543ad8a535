// Package client talks to the perfumekeeper server: the JSON HTTP API for
// accounts and perfumes, the gRPC health service for reachability, and the
// local SQLite file that keeps the CLI session between runs.
package client
