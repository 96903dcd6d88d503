package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	"prte/api/grpcserver"
	"prte/config"
	"prte/infra/kafka"
	"prte/infra/ring"
	"prte/infra/routestore"
	"prte/infra/sequence"
	"prte/jobs/broadcaster"
	"prte/mca/routed"
	"prte/mca/routed/debruijn"
	"prte/mca/routed/direct"
	"prte/service"
)

func main() {
	configPath := flag.String("config", "routed.yaml", "path to the daemon configuration")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---------------- Store ----------------

	var store *routestore.Store
	if cfg.Store.Dir != "" {
		store, err = routestore.Open(cfg.Store.Dir, nil)
		if err != nil {
			log.Fatalf("route store init failed: %v", err)
		}
		defer store.Close()
	}

	// ---------------- Routing module ----------------

	reg := routed.NewRegistry()
	for _, c := range []routed.Component{direct.NewComponent(), debruijn.NewComponent(nil)} {
		if err := reg.Register(c); err != nil {
			log.Fatalf("register %s: %v", c.Name(), err)
		}
	}
	module, err := reg.Select(cfg.Routed.Component)
	if err != nil {
		log.Fatalf("select routed component: %v", err)
	}
	defer module.Finalize()

	// ---------------- Service ----------------

	events := ring.New[routed.Event](cfg.RingSize)
	svc := service.NewRouteService(module, store, events, sequence.New(0))

	restored, err := svc.Restore(ctx)
	if err != nil {
		log.Fatalf("restore failed: %v", err)
	}
	if !restored {
		if _, err := svc.UpdatePlan(ctx, cfg.Plan()); err != nil {
			log.Fatalf("initial plan: %v", err)
		}
	}

	// ---------------- Background Jobs ----------------

	pub, err := newPublisher(cfg.Broker)
	if err != nil {
		log.Fatalf("publisher init failed: %v", err)
	}
	bc := broadcaster.New(events, pub, cfg.Broker.Interval)
	defer bc.Close()
	go bc.Run(ctx)

	// ---------------- gRPC ----------------

	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		log.Fatalf("listen failed: %v", err)
	}

	grpcSrv := grpc.NewServer()
	grpcserver.Register(grpcSrv, grpcserver.NewServer(svc))

	go func() {
		<-ctx.Done()
		log.Printf("[routed] shutting down")
		grpcSrv.GracefulStop()
	}()

	log.Printf("[routed] module %s serving %d routes on %s (gen %d)",
		svc.ModuleName(), svc.NumRoutes(), cfg.GRPC.Addr, svc.Generation())

	if err := grpcSrv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		log.Fatalf("gRPC server exited: %v", err)
	}
}

func newPublisher(cfg config.Broker) (broadcaster.Publisher, error) {
	switch cfg.Client {
	case config.BrokerSarama:
		return broadcaster.NewSaramaPublisher(cfg.Brokers, cfg.Topic)
	case config.BrokerKafkaGo:
		return kafka.NewProducer(kafka.ProducerConfig{Brokers: cfg.Brokers, Topic: cfg.Topic})
	default:
		return logPublisher{}, nil
	}
}

// logPublisher is used when no broker is configured.
type logPublisher struct{}

func (logPublisher) Publish(_ context.Context, key, value []byte) error {
	log.Printf("[broadcaster] %s %s", key, value)
	return nil
}

func (logPublisher) Close() error { return nil }
