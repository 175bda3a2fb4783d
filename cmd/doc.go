// Package cmd implements the command-line interface of typedb. The CLI is a
// thin client of the library: every command opens the configured store file,
// runs one operation and closes it again.
//
// The package is organized into several subpackages:
//
//   - kv: Commands for key-value operations (set, get, del, has, keys, dump, incr)
//     and a performance testing tool (perf)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// Every flag can also be set through the environment with the TYPEDB_ prefix
// (e.g. TYPEDB_FILE, TYPEDB_LOG_LEVEL); .env and .env.local are read on startup.
//
// See typedb -help for a list of all commands.
package cmd
