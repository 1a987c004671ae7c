package models

// Websocket message types.
const (
	UpdateTypeInitial = "INITIAL"
	UpdateTypeUpdate  = "UPDATE"
)

// MUpdate is pushed to websocket clients when the dataset is (re)loaded or
// when a client subscribes.
type MUpdate struct {
	Type      string           `json:"type"`
	Timestamp int64            `json:"timestamp"`
	Rows      int              `json:"rows"`
	Symbols   []string         `json:"symbols"`
	Overview  *MMarketOverview `json:"overview,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// MSubscribeCommand is sent by websocket clients to receive an overview
// restricted to some symbols and dates (YYYY-MM-DD).
type MSubscribeCommand struct {
	Command string   `json:"command"`
	Symbols []string `json:"symbols"`
	From    string   `json:"from"`
	To      string   `json:"to"`
}
