// Package showdown holds the server transport: the websocket frame feed,
// the throttled outbound sender and the login endpoint client.
package showdown

import "context"

// FrameCallback receives one raw websocket text frame. A frame may carry
// several newline-separated protocol lines.
type FrameCallback func(frame string)

type StateCallback func(state WebSocketState)

type WebSocketState string

const (
	WSStateDisconnected WebSocketState = "disconnected"
	WSStateConnecting   WebSocketState = "connecting"
	WSStateConnected    WebSocketState = "connected"
	WSStateReconnecting WebSocketState = "reconnecting"
	WSStateFailed       WebSocketState = "failed"
)

type WSClient interface {
	Connect(ctx context.Context) error
	WriteText(ctx context.Context, line string) error
	OnFrame(cb FrameCallback) int
	RemoveFrameCallback(id int)
	OnStateChange(cb StateCallback) int
	RemoveStateCallback(id int)
	Close(ctx context.Context) error
}
