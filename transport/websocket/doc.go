// Package websocket provides live rover updates over WebSocket.
//
// Architecture:
//
// A central Hub owns the subscription map and is the only goroutine that
// touches it. Each connection has a read pump that detects disconnects and a
// write pump that delivers queued messages and pings.
//
// Message Protocol:
//
// Clients subscribe to a single rover with /ws?rover=<id>. After every change
// the server pushes:
//
//	{"rover_id": 1, "event": "moved", "rover": {"id": 1, "name": "...", "position": {"x": 0, "y": 1}, "heading": "N"}}
//
// Events are "created", "renamed" and "moved". Incoming client messages are
// ignored.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//
//	hub.BroadcastRover(websocket.EventMoved, rover)
//
// Backpressure:
//
// BroadcastRover never blocks the caller. Updates are dropped when the hub
// queue is full, and a client whose send buffer is full is disconnected.
package websocket
