package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"prte/mca/routed"
)

// Client calls prte.routed.Router on a remote daemon.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) GetRoute(ctx context.Context, target routed.ProcName) (routed.ProcName, error) {
	out := new(wrapperspb.UInt64Value)
	if err := c.cc.Invoke(ctx, fullMethod("GetRoute"), wrapperspb.UInt64(Pack(target)), out); err != nil {
		return routed.InvalidName, err
	}
	return Unpack(out.GetValue()), nil
}

func (c *Client) RouteLost(ctx context.Context, target routed.ProcName) error {
	return c.cc.Invoke(ctx, fullMethod("RouteLost"), wrapperspb.UInt64(Pack(target)), new(emptypb.Empty))
}

func (c *Client) NumRoutes(ctx context.Context) (int, error) {
	out := new(wrapperspb.UInt32Value)
	if err := c.cc.Invoke(ctx, fullMethod("NumRoutes"), &emptypb.Empty{}, out); err != nil {
		return 0, err
	}
	return int(out.GetValue()), nil
}

func (c *Client) Generation(ctx context.Context) (uint64, error) {
	out := new(wrapperspb.UInt64Value)
	if err := c.cc.Invoke(ctx, fullMethod("Generation"), &emptypb.Empty{}, out); err != nil {
		return 0, err
	}
	return out.GetValue(), nil
}
