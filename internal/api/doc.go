// Package api exposes the broker's operation set over HTTP, for unary
// operations, and WebSocket, for streaming ones. It translates
// transport-shaped requests into calls against internal/broker and
// internal/device, and maps their sentinel errors onto HTTP status
// codes.
//
// The server follows the same lifecycle pattern as other
// infrastructure components:
//
//	server := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api
