// Package pkg holds the libraries behind rmdlink.
//
// # Overview
//
// rmdlink looks up faculty profiles in Penn State's Researcher Metadata
// Database (RMD) and caches them. The pkg directory is organized as:
//
//  1. [rmd] - Profile fetching, records and publication sections
//  2. [cache] - Tagged key-value stores (memory, file, Redis, MongoDB)
//  3. [config] - TOML, .env and environment configuration
//  4. [errors] - Coded errors and input validation
//  5. [observability] - Hooks for cache, HTTP and fetch events
//
// # Data Flow
//
//	username
//	    ↓
//	[rmd.Fetcher] → cache hit? → [rmd.Record]
//	    ↓ miss
//	RMD API (GET users/{username}/profile)
//	    ↓
//	[cache.Store] (tagged rmd_data, rmd_data:profile:{username})
//
// [rmd]: github.com/psulibraries/rmdlink/pkg/rmd
// [cache]: github.com/psulibraries/rmdlink/pkg/cache
// [config]: github.com/psulibraries/rmdlink/pkg/config
// [errors]: github.com/psulibraries/rmdlink/pkg/errors
// [observability]: github.com/psulibraries/rmdlink/pkg/observability
// [rmd.Fetcher]: github.com/psulibraries/rmdlink/pkg/rmd.Fetcher
// [rmd.Record]: github.com/psulibraries/rmdlink/pkg/rmd.Record
// [cache.Store]: github.com/psulibraries/rmdlink/pkg/cache.Store
package pkg
