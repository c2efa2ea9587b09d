package transport

import (
	"context"

	"chordring/internal/peer"

	"google.golang.org/grpc"
)

// serviceName is the gRPC service path every method hangs off of,
// "/chord.Peer/<Method>" — standing in for the .proto-declared service
// name a protoc-generated stub would carry.
const serviceName = "chord.Peer"

// ServiceDesc is the hand-written equivalent of what protoc-gen-go-grpc
// would emit for a "Peer" service exposing spec.md §6's nine operations.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*peer.Peer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Key", Handler: keyHandler},
		{MethodName: "Successor", Handler: successorHandler},
		{MethodName: "Successors", Handler: successorsHandler},
		{MethodName: "Predecessor", Handler: predecessorHandler},
		{MethodName: "FindSuccessor", Handler: findSuccessorHandler},
		{MethodName: "Notify", Handler: notifyHandler},
		{MethodName: "Get", Handler: getHandler},
		{MethodName: "Put", Handler: putHandler},
		{MethodName: "Offer", Handler: offerHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "chordring/internal/transport/wire.go",
}

func keyHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(keyRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	backend := srv.(peer.Peer)
	run := func(ctx context.Context, _ interface{}) (interface{}, error) {
		id, err := backend.Key(ctx)
		if err != nil {
			return nil, err
		}
		return &keyReply{Key: []byte(id)}, nil
	}
	if interceptor == nil {
		return run(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Key"}
	return interceptor(ctx, in, info, run)
}

func successorHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(successorRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	backend := srv.(peer.Peer)
	run := func(ctx context.Context, _ interface{}) (interface{}, error) {
		d, err := backend.Successor(ctx)
		if err != nil {
			return nil, err
		}
		return &successorReply{Descriptor: d}, nil
	}
	if interceptor == nil {
		return run(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Successor"}
	return interceptor(ctx, in, info, run)
}

func successorsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(successorsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	backend := srv.(peer.Peer)
	run := func(ctx context.Context, _ interface{}) (interface{}, error) {
		ds, err := backend.Successors(ctx)
		if err != nil {
			return nil, err
		}
		return &successorsReply{Descriptors: ds}, nil
	}
	if interceptor == nil {
		return run(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Successors"}
	return interceptor(ctx, in, info, run)
}

func predecessorHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(predecessorRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	backend := srv.(peer.Peer)
	run := func(ctx context.Context, _ interface{}) (interface{}, error) {
		d, err := backend.Predecessor(ctx)
		if err != nil {
			return nil, err
		}
		return &predecessorReply{Descriptor: d, HasValue: d.Addr != ""}, nil
	}
	if interceptor == nil {
		return run(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Predecessor"}
	return interceptor(ctx, in, info, run)
}

func findSuccessorHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(findSuccessorRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	backend := srv.(peer.Peer)
	run := func(ctx context.Context, req interface{}) (interface{}, error) {
		r := req.(*findSuccessorRequest)
		d, err := backend.FindSuccessor(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		return &findSuccessorReply{Descriptor: d}, nil
	}
	if interceptor == nil {
		return run(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/FindSuccessor"}
	return interceptor(ctx, in, info, run)
}

func notifyHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(notifyRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	backend := srv.(peer.Peer)
	run := func(ctx context.Context, req interface{}) (interface{}, error) {
		r := req.(*notifyRequest)
		if err := backend.Notify(ctx, r.Candidate); err != nil {
			return nil, err
		}
		return &notifyReply{}, nil
	}
	if interceptor == nil {
		return run(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Notify"}
	return interceptor(ctx, in, info, run)
}

func getHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(getRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	backend := srv.(peer.Peer)
	run := func(ctx context.Context, req interface{}) (interface{}, error) {
		r := req.(*getRequest)
		v, found, err := backend.Get(ctx, r.Key)
		if err != nil {
			return nil, err
		}
		return &getReply{Value: v, Found: found}, nil
	}
	if interceptor == nil {
		return run(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Get"}
	return interceptor(ctx, in, info, run)
}

func putHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(putRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	backend := srv.(peer.Peer)
	run := func(ctx context.Context, req interface{}) (interface{}, error) {
		r := req.(*putRequest)
		old, err := backend.Put(ctx, r.Key, r.Value)
		if err != nil {
			return nil, err
		}
		return &putReply{Old: old, HadOld: old != nil}, nil
	}
	if interceptor == nil {
		return run(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Put"}
	return interceptor(ctx, in, info, run)
}

func offerHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(offerRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	backend := srv.(peer.Peer)
	run := func(ctx context.Context, req interface{}) (interface{}, error) {
		r := req.(*offerRequest)
		if err := backend.Offer(ctx, r.Items); err != nil {
			return nil, err
		}
		return &offerReply{}, nil
	}
	if interceptor == nil {
		return run(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Offer"}
	return interceptor(ctx, in, info, run)
}
