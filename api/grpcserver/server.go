package grpcserver

import (
	"context"
	"errors"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"prte/mca/routed"
)

const tracerName = "prte/api/grpcserver"

// Router is the part of service.RouteService exposed over gRPC.
type Router interface {
	GetRoute(target routed.ProcName) routed.ProcName
	RouteLost(ctx context.Context, target routed.ProcName) error
	NumRoutes() int
	Generation() uint64
}

// Server adapts a Router to the prte.routed.Router service.
type Server struct {
	router Router
	tracer trace.Tracer
}

type Option func(*Server)

// WithTracerProvider sets where spans go. The global provider is used
// otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Server) { s.tracer = tp.Tracer(tracerName) }
}

func NewServer(r Router, opts ...Option) *Server {
	s := &Server{router: r, tracer: otel.Tracer(tracerName)}
	for _, o := range opts {
		o(s)
	}
	return s
}

// -------------------- Queries --------------------

func (s *Server) GetRoute(ctx context.Context, req *wrapperspb.UInt64Value) (*wrapperspb.UInt64Value, error) {
	target := Unpack(req.GetValue())
	_, span := s.tracer.Start(ctx, "Router.GetRoute",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("routed.target", target.String())),
	)
	defer span.End()

	hop := s.router.GetRoute(target)
	span.SetAttributes(attribute.String("routed.next_hop", hop.String()))
	return wrapperspb.UInt64(Pack(hop)), nil
}

func (s *Server) NumRoutes(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.UInt32Value, error) {
	return wrapperspb.UInt32(uint32(s.router.NumRoutes())), nil
}

func (s *Server) Generation(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.UInt64Value, error) {
	return wrapperspb.UInt64(s.router.Generation()), nil
}

// -------------------- Commands --------------------

func (s *Server) RouteLost(ctx context.Context, req *wrapperspb.UInt64Value) (*emptypb.Empty, error) {
	target := Unpack(req.GetValue())
	ctx, span := s.tracer.Start(ctx, "Router.RouteLost",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("routed.target", target.String())),
	)
	defer span.End()

	err := s.router.RouteLost(ctx, target)
	log.Printf("[gRPC] RouteLost target=%s err=%v", target, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, toStatus(err)
	}
	span.SetStatus(otelcodes.Ok, "")
	return &emptypb.Empty{}, nil
}

// -------------------- Converters --------------------

// Pack encodes a process name as job<<32 | vpid.
func Pack(p routed.ProcName) uint64 {
	return uint64(p.JobID)<<32 | uint64(p.Vpid)
}

func Unpack(v uint64) routed.ProcName {
	return routed.ProcName{JobID: uint32(v >> 32), Vpid: uint32(v)}
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, routed.ErrUnknownRoute):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, routed.ErrLifelineLost):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, routed.ErrNoPlan), errors.Is(err, routed.ErrNotInitialized):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
