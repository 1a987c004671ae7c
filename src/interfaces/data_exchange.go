package interfaces

// -----------------------------------------------------------------------------
// IDataExchanger defines the contract for serving analytics to external clients.
// -----------------------------------------------------------------------------

type IDataExchanger interface {
	// -----------------------------------------------------------------------------
	// Broadcast pushes a payload to every connected websocket client.
	Broadcast(payload interface{})

	// -----------------------------------------------------------------------------
	// Reload re-reads the combined dataset and broadcasts the new overview.
	Reload() error

	// -----------------------------------------------------------------------------
	// Start the server
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop() error
}
