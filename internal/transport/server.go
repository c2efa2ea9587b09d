package transport

import (
	"chordring/internal/peer"

	"google.golang.org/grpc"
)

// RegisterServer registers backend as the handler for every RPC method
// declared in ServiceDesc — the hand-written equivalent of a generated
// RegisterPeerServer(s, backend) call.
func RegisterServer(s *grpc.Server, backend peer.Peer) {
	s.RegisterService(&ServiceDesc, backend)
}
