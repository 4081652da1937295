// Package stream provides transport-agnostic pumps between a
// provider.Console's byte stream and a caller-supplied frame
// send/receive function, plus a latest-wins upload progress
// broadcaster. internal/api wires both onto WebSocket frames; neither
// type here knows anything about WebSocket, HTTP, or JSON.
package stream
