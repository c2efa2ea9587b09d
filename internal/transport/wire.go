// Package transport is the node's remote-invocation layer: a gRPC
// service exposing the nine wire operations of spec.md §6 (key,
// successor, successors, predecessor, findSuccessor, notify, get, put,
// offer), framed with a hand-written gob codec instead of protobuf.
//
// The teacher reaches for google.golang.org/grpc with protobuf-generated
// stubs (internal/node/server, internal/node/client in the retrieval
// pack's source tree). Protoc is not available in this environment, so
// rather than drop grpc entirely this package keeps it as the transport
// and registers a custom encoding.Codec backed by encoding/gob for the
// message bodies — the same shape of "object-stream transport" the Java
// original uses via ObjectOutputStream/ObjectInputStream in
// networking/Channel.java, just carried over gRPC's framing instead of
// raw sockets. See DESIGN.md for the full reasoning.
package transport

import "chordring/internal/peer"

// Each RPC has its own gob-encoded request/reply pair below. Descriptors
// travel as peer.Descriptor values directly, since both of its fields are
// exported and gob can encode them as they are.
type keyRequest struct{}
type keyReply struct{ Key []byte }

type successorRequest struct{}
type successorReply struct{ Descriptor peer.Descriptor }

type successorsRequest struct{}
type successorsReply struct{ Descriptors []peer.Descriptor }

type predecessorRequest struct{}
type predecessorReply struct {
	Descriptor peer.Descriptor
	HasValue   bool
}

type findSuccessorRequest struct{ ID []byte }
type findSuccessorReply struct{ Descriptor peer.Descriptor }

type notifyRequest struct{ Candidate peer.Descriptor }
type notifyReply struct{}

type getRequest struct{ Key []byte }
type getReply struct {
	Value []byte
	Found bool
}

type putRequest struct {
	Key   []byte
	Value []byte
}
type putReply struct {
	Old    []byte
	HadOld bool
}

type offerRequest struct{ Items []peer.KV }
type offerReply struct{}
