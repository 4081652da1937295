package stream

import (
	"context"

	"github.com/nerrad567/boardswarmd/internal/provider"
)

// Send delivers one outbound chunk to whatever transport the caller is
// bridging to (a WebSocket frame, in internal/api).
type Send func(ctx context.Context, chunk provider.Chunk) error

// Recv reads one inbound frame of bytes from the caller's transport.
type Recv func(ctx context.Context) ([]byte, error)

// PumpOutput reads from console's output channel until it closes, ctx
// is cancelled, or send returns an error, forwarding every chunk to
// send in order.
func PumpOutput(ctx context.Context, console provider.Console, send Send) error {
	out, err := console.Output(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chunk, ok := <-out:
			if !ok {
				return nil
			}
			if err := send(ctx, chunk); err != nil {
				return err
			}
			if chunk.Err != nil {
				return chunk.Err
			}
		}
	}
}

// PumpInput reads frames from recv until it returns an error (including
// ctx cancellation), forwarding each as a Send to the console's input
// sink.
func PumpInput(ctx context.Context, console provider.Console, recv Recv) error {
	sink, err := console.Input(ctx)
	if err != nil {
		return err
	}

	for {
		data, err := recv(ctx)
		if err != nil {
			return err
		}
		if err := sink.Send(ctx, data); err != nil {
			return err
		}
	}
}
