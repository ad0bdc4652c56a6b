// Package websocket provides WebSocket transport for the word grid game.
//
// The websocket package implements:
//   - One participant ID per connection
//   - Decoding of inbound actions for the router
//   - Session rooms for broadcast notifications
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub owns every
// connection and room. Router calls (SendTo, Broadcast, Subscribe,
// Unsubscribe) are queued on a single channel and applied by the hub loop,
// so a subscription always lands before the broadcast that follows it.
// Each client has a read goroutine and a write goroutine.
//
// Message Protocol:
//
// Every frame is a JSON object naming an event:
//   - Incoming: {"event": "wordSelect", "data": {"gameId": "a1b2c3", "word": "chat"}}
//   - Outgoing: {"event": "timer", "data": {"gameId": "a1b2c3", "remainingTime": 42}}
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	router := service.NewRouter(sessions, dict, hub, presets)
//	hub.SetDispatcher(router)
//	go hub.Run()
//
//	r.HandleFunc("/ws", hub.ServeWS)
//
// Connection Lifecycle:
//
// 1. Client connects and receives a fresh participant ID
// 2. Connection registered with hub
// 3. Client binds a display name with createUser
// 4. Client sends actions, receives notifications
// 5. Disconnection is reported to the router, then the client is dropped
package websocket
