// Package api provides the HTTP bridge between a research panel front end
// and the notebook, page and brief of a verso session.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8765")
	ListenAddr string

	// DisableMCP leaves the /mcp endpoint unmounted.
	DisableMCP bool
}
