// Package config handles loading and parsing the trackside configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/trackside/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//
// # Default Values
//
//   - Store server: 127.0.0.1:8069
//   - Poll interval (start, finish, dashboard): 2s
//   - Poll interval (pause): 5s
//   - Live timer tick: 1s
//   - Racer lookup debounce: 200ms
//   - Log directory: ~/.local/state/trackside
//   - Log file: <log_dir>/trackside.log
//   - Log level: info
//
// # TOML Format
//
// Durations use Go duration syntax:
//
//	server = "race.example.org:8069"
//	poll_interval = "2s"
//	pause_poll_interval = "5s"
//	tick_interval = "1s"
//	lookup_debounce = "200ms"
//	log_dir = "~/.local/state/trackside"
//	log_level = "debug"
package config
