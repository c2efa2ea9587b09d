package transport

import (
	"context"
	"fmt"

	"chordring/internal/peer"
	"chordring/internal/ring"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// RemotePeer reaches a peer.Peer that lives in another process over
// gRPC, using the gob codec of codec.go in place of the teacher's
// protobuf-generated client stub.
type RemotePeer struct {
	conn *grpc.ClientConn
	desc peer.Descriptor
}

// Dial opens a connection to addr and performs the one-round-trip
// handshake of fetching the peer's key — mirroring the stub-exchange
// handshake of the Java original's remote.Proxy.connect, which likewise
// does a single round trip before treating the connection as usable.
func Dial(ctx context.Context, addr string, tracingEnabled bool) (*RemotePeer, error) {
	var opts []grpc.DialOption
	opts = append(opts,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	)
	if tracingEnabled {
		opts = append(opts, grpc.WithStatsHandler(otelgrpc.NewClientHandler(
			otelgrpc.WithTracerProvider(otel.GetTracerProvider()),
			otelgrpc.WithPropagators(otel.GetTextMapPropagator()),
		)))
	}

	conn, err := grpc.DialContext(ctx, addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("transport: dialing %s: %w", addr, err)
	}

	rp := &RemotePeer{conn: conn, desc: peer.Descriptor{Addr: addr}}
	id, err := rp.Key(ctx)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("transport: handshake with %s: %w", addr, err)
	}
	rp.desc.Key = id
	return rp, nil
}

// Close releases the underlying connection.
func (r *RemotePeer) Close() error { return r.conn.Close() }

func (r *RemotePeer) Descriptor() peer.Descriptor { return r.desc }

func (r *RemotePeer) invoke(ctx context.Context, method string, in, out interface{}) error {
	return r.conn.Invoke(ctx, "/"+serviceName+"/"+method, in, out)
}

func (r *RemotePeer) Key(ctx context.Context) (ring.ID, error) {
	out := new(keyReply)
	if err := r.invoke(ctx, "Key", new(keyRequest), out); err != nil {
		return nil, err
	}
	return ring.ID(out.Key), nil
}

func (r *RemotePeer) Successor(ctx context.Context) (peer.Descriptor, error) {
	out := new(successorReply)
	if err := r.invoke(ctx, "Successor", new(successorRequest), out); err != nil {
		return peer.Descriptor{}, err
	}
	return out.Descriptor, nil
}

func (r *RemotePeer) Successors(ctx context.Context) ([]peer.Descriptor, error) {
	out := new(successorsReply)
	if err := r.invoke(ctx, "Successors", new(successorsRequest), out); err != nil {
		return nil, err
	}
	return out.Descriptors, nil
}

func (r *RemotePeer) Predecessor(ctx context.Context) (peer.Descriptor, error) {
	out := new(predecessorReply)
	if err := r.invoke(ctx, "Predecessor", new(predecessorRequest), out); err != nil {
		return peer.Descriptor{}, err
	}
	if !out.HasValue {
		return peer.Descriptor{}, nil
	}
	return out.Descriptor, nil
}

func (r *RemotePeer) FindSuccessor(ctx context.Context, id ring.ID) (peer.Descriptor, error) {
	out := new(findSuccessorReply)
	if err := r.invoke(ctx, "FindSuccessor", &findSuccessorRequest{ID: id}, out); err != nil {
		return peer.Descriptor{}, err
	}
	return out.Descriptor, nil
}

func (r *RemotePeer) Notify(ctx context.Context, candidate peer.Descriptor) error {
	return r.invoke(ctx, "Notify", &notifyRequest{Candidate: candidate}, new(notifyReply))
}

func (r *RemotePeer) Get(ctx context.Context, key ring.ID) ([]byte, bool, error) {
	out := new(getReply)
	if err := r.invoke(ctx, "Get", &getRequest{Key: key}, out); err != nil {
		return nil, false, err
	}
	return out.Value, out.Found, nil
}

func (r *RemotePeer) Put(ctx context.Context, key ring.ID, value []byte) ([]byte, error) {
	out := new(putReply)
	if err := r.invoke(ctx, "Put", &putRequest{Key: key, Value: value}, out); err != nil {
		return nil, err
	}
	if !out.HadOld {
		return nil, nil
	}
	return out.Old, nil
}

func (r *RemotePeer) Offer(ctx context.Context, items []peer.KV) error {
	return r.invoke(ctx, "Offer", &offerRequest{Items: items}, new(offerReply))
}
