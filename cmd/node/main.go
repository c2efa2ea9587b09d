// Command node runs a single Chord participant: it loads its
// configuration, joins or creates a ring, serves the gRPC peer protocol,
// and offers an interactive REPL for the get/put/key/successor commands
// of spec.md §6 — following the teacher's cmd/node/main.go wiring order
// (config → logger → listener → identifier space → telemetry → storage
// → server → bootstrap → stabilizers → signal-driven shutdown).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"chordring/internal/bootstrap"
	"chordring/internal/chordnode"
	"chordring/internal/config"
	"chordring/internal/liveness"
	"chordring/internal/logger"
	zapfactory "chordring/internal/logger/zap"
	"chordring/internal/peer"
	"chordring/internal/ring"
	"chordring/internal/store"
	"chordring/internal/telemetry"
	"chordring/internal/transport"

	"github.com/peterh/liner"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel"
	"google.golang.org/grpc"
)

var defaultConfigPath = "config/node/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	noRepl := flag.Bool("no-repl", false, "run headless, without the interactive REPL")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %q: %v", *configPath, err)
	}
	if err := cfg.ValidateConfig(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	var lgr logger.Logger
	if cfg.Logger.Active {
		zapLog, err := zapfactory.New(cfg.Logger)
		if err != nil {
			log.Fatalf("failed to initialize logger: %v", err)
		}
		defer func() { _ = zapLog.Sync() }()
		lgr = zapfactory.NewZapAdapter(zapLog)
	} else {
		lgr = logger.NopLogger{}
	}
	cfg.LogConfig(lgr)

	host, err := ring.ParseHost(net.JoinHostPort(cfg.Node.Host, strconv.Itoa(cfg.Node.Port)))
	if err != nil {
		lgr.Error("invalid node host/port", logger.F("err", err))
		os.Exit(1)
	}
	if host.IsPrivileged() {
		lgr.Warn("binding to a privileged port", logger.F("port", host.Port))
	}

	bindAddr := net.JoinHostPort(cfg.Node.Bind, strconv.Itoa(cfg.Node.Port))
	lis, err := net.Listen("tcp", bindAddr)
	if err != nil {
		lgr.Error("failed to listen", logger.F("bind", bindAddr), logger.F("err", err))
		os.Exit(1)
	}
	defer func() { _ = lis.Close() }()

	space, err := ring.NewSpace(cfg.DHT.IDBits, cfg.DHT.FaultTolerance.SuccessorListSize)
	if err != nil {
		lgr.Error("failed to initialize identifier space", logger.F("err", err))
		os.Exit(1)
	}

	var id ring.ID
	if cfg.Node.Id != "" {
		id, err = space.FromHexString(cfg.Node.Id)
		if err != nil {
			lgr.Error("invalid node id in configuration", logger.F("err", err))
			os.Exit(1)
		}
	} else {
		id = space.Key(host)
	}
	self := peer.Descriptor{Key: id, Addr: host.String()}
	lgr = lgr.Named("node").With(logger.FNode("self", self.Key, self.Addr))
	lgr.Info("node initializing")

	ctx := context.Background()
	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.Telemetry, "chordring-node", self.Key.ToHexString(true))
	if err != nil {
		lgr.Error("failed to initialize tracing", logger.F("err", err))
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	st := store.NewMemoryStore()
	prober := liveness.New(cfg.DHT.FaultTolerance.FailureTimeout)

	dial := func(ctx context.Context, addr string) (peer.Peer, error) {
		return transport.Dial(ctx, addr, cfg.Telemetry.Enabled)
	}

	n := chordnode.New(self, space, st, dial,
		chordnode.WithLogger(lgr),
		chordnode.WithLiveness(prober),
	)

	var grpcOpts []grpc.ServerOption
	if cfg.Telemetry.Enabled {
		grpcOpts = append(grpcOpts, grpc.StatsHandler(otelgrpc.NewServerHandler(
			otelgrpc.WithTracerProvider(otel.GetTracerProvider()),
			otelgrpc.WithPropagators(otel.GetTextMapPropagator()),
		)))
	}
	grpcServer := grpc.NewServer(grpcOpts...)
	transport.RegisterServer(grpcServer, n)

	serveErr := make(chan error, 1)
	go func() { serveErr <- grpcServer.Serve(lis) }()
	lgr.Debug("gRPC server started", logger.F("addr", lis.Addr().String()))

	discoverer, err := bootstrap.New(cfg.DHT.Bootstrap)
	if err != nil {
		lgr.Error("failed to build bootstrap discoverer", logger.F("err", err))
		grpcServer.Stop()
		os.Exit(1)
	}

	joinCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	peers, err := discoverer.Discover(joinCtx)
	cancel()
	if err != nil {
		lgr.Error("failed to resolve bootstrap peers", logger.F("err", err))
		grpcServer.Stop()
		os.Exit(1)
	}

	if len(peers) == 0 {
		n.CreateNewDHT()
	} else {
		joinCtx, cancel = context.WithTimeout(ctx, 10*time.Second)
		err = n.Join(joinCtx, peers)
		cancel()
		if err != nil {
			lgr.Error("failed to join ring", logger.F("err", err))
			grpcServer.Stop()
			os.Exit(1)
		}
	}

	regCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := discoverer.Register(regCtx, self.Addr); err != nil {
		lgr.Warn("failed to register with bootstrap discovery", logger.F("err", err))
	}
	cancel()

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	go n.StartStabilizers(runCtx, chordnode.StabilizationConfig{
		StabilizeInterval:        cfg.DHT.FaultTolerance.StabilizationInterval,
		FixFingersInterval:       cfg.DHT.FaultTolerance.FixFingersInterval,
		CheckPredecessorInterval: cfg.DHT.FaultTolerance.CheckPredecessorInterval,
	})
	lgr.Debug("stabilization workers started")

	replDone := make(chan struct{})
	if !*noRepl {
		go func() {
			runREPL(n, lgr)
			close(replDone)
			stop()
		}()
	}

	select {
	case <-runCtx.Done():
		lgr.Info("shutdown signal received, stopping gracefully")
	case err := <-serveErr:
		lgr.Error("gRPC server terminated unexpectedly", logger.F("err", err))
	}

	deregCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := discoverer.Deregister(deregCtx, self.Addr); err != nil {
		lgr.Warn("failed to deregister", logger.F("err", err))
	}
	cancel()

	grpcServer.GracefulStop()
	n.Stop()
	lgr.Info("node stopped")
}

// runREPL implements the get/put/key/successor commands of spec.md §6
// over github.com/peterh/liner, the teacher's line-editing library of
// choice for its own interactive tools.
func runREPL(n *chordnode.Node, lgr logger.Logger) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Println("chordring node ready. Commands: get <key>, put <key> <value>, key, successor <key>, quit")
	for {
		input, err := line.Prompt("chord> ")
		if err != nil {
			return
		}
		line.AppendHistory(input)

		fields := strings.Fields(input)
		if len(fields) == 0 {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		switch fields[0] {
		case "get":
			handleGet(ctx, n, fields)
		case "put":
			handlePut(ctx, n, fields)
		case "key":
			d := n.Descriptor()
			fmt.Println(d.Key.String())
		case "successor":
			handleSuccessor(ctx, n, fields)
		case "quit", "exit":
			cancel()
			return
		default:
			fmt.Println("unknown command:", fields[0])
		}
		cancel()
	}
}

// parseKey parses the REPL's <int> key argument per spec.md §6 — a
// literal numeric key, matching the Java original's
// new Key(arguments.readInt()), not a hashed string.
func parseKey(sp ring.Space, s string) (ring.ID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("expected an integer key, got %q", s)
	}
	return sp.FromUint64(v), nil
}

func handleSuccessor(ctx context.Context, n *chordnode.Node, fields []string) {
	if len(fields) != 2 {
		fmt.Println("usage: successor <int>")
		return
	}
	sp := n.RoutingTable().Space()
	id, err := parseKey(sp, fields[1])
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	succ, err := n.FindSuccessor(ctx, id)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(succ.Key.String())
}

func handleGet(ctx context.Context, n *chordnode.Node, fields []string) {
	if len(fields) != 2 {
		fmt.Println("usage: get <int>")
		return
	}
	sp := n.RoutingTable().Space()
	id, err := parseKey(sp, fields[1])
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	v, found, err := n.Get(ctx, id)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	if !found {
		fmt.Printf("{%s: null}\n", id.String())
		return
	}
	fmt.Printf("{%s: %s}\n", id.String(), string(v))
}

func handlePut(ctx context.Context, n *chordnode.Node, fields []string) {
	if len(fields) < 3 {
		fmt.Println("usage: put <int> <token>")
		return
	}
	sp := n.RoutingTable().Space()
	id, err := parseKey(sp, fields[1])
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	value := strings.Join(fields[2:], " ")
	old, err := n.Put(ctx, id, []byte(value))
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	if old == nil {
		fmt.Printf("{%s: %s}\n", id.String(), value)
		return
	}
	fmt.Printf("{%s: %s -> %s}\n", id.String(), string(old), value)
}
