// Package app wires trackside together: configuration, logging, the race
// store client, the live streams and the UI.
//
// # Startup
//
//  1. Load ~/.config/trackside/config.toml (defaults when missing)
//  2. Open the slog text log under the configured log directory
//  3. Load the operator preferences (theme, last view, checkpoint)
//  4. Create the race store client and the four live streams
//  5. Route each view to its stream in an Activator and activate the
//     remembered view
//  6. Run the TUI until the operator exits or the context is cancelled
//
// # Polling
//
// Only the visible view is polled. The Activator stops the previous view's
// drivers and starts the new view's poll loop (and the pause view's
// one-second timer tick) whenever the UI reports a view change. The loop
// waits the configured interval between cycles and doubles the wait for
// every consecutive failure, up to 30 seconds. A store that is down never
// stops the UI; failures surface in the header and in the notice history.
package app
