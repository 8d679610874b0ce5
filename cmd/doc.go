// Package cmd implements the command-line interface of cqlbench.
//
// The package is organized into several subpackages:
//
//   - bench: runs the read workload with a given routing policy until interrupted
//   - seed: creates the keyspace and table and writes the benchmark dataset
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// Every flag can also be set as an environment variable with the prefix
// CQLBENCH_ (e.g. CQLBENCH_IP=10.0.0.1,10.0.0.2). See cqlbench -help for a
// list of all commands.
package cmd
