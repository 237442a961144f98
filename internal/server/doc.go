// Package server exposes discovered shares and their connection
// statuses over HTTP.
//
// The server is meant for a local dashboard or scripting against a
// running sharewatch instance. It serves two JSON endpoints and one
// WebSocket feed:
//
//   - GET /api/shares    — every known share with its current status
//   - GET /api/statuses  — the raw status map keyed by share id
//   - GET /ws            — WebSocket: a snapshot message followed by
//     a stream of status change events
//
// # WebSocket Messages
//
// Every message carries a "type" field:
//
//	{"type":"snapshot","shares":[...]}
//	{"type":"status","shareId":"...","status":"offline","reason":"Host unreachable"}
//
// Clients never need to send anything; the server pings periodically
// and drops connections that stop answering.
//
// # Usage Example
//
//	srv := server.New(&server.Config{Host: "127.0.0.1", Port: 8910}, orch, tracker)
//
//	// Start blocks until Shutdown is called
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// Shutdown stops the listener, then waits for open WebSocket
// connections to drain up to the context deadline.
package server
