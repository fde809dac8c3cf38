package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client is a thin typed wrapper over a connection to OrderedMap.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Put returns true if key did not exist before.
func (c *Client) Put(ctx context.Context, key, value string, opts ...grpc.CallOption) (bool, error) {
	req, err := structpb.NewStruct(map[string]any{"key": key, "value": value})
	if err != nil {
		return false, err
	}
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, methodPut, req, out, opts...); err != nil {
		return false, err
	}
	return out.GetValue(), nil
}

func (c *Client) Get(ctx context.Context, key string, opts ...grpc.CallOption) (string, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, methodGet, wrapperspb.String(key), out, opts...); err != nil {
		return "", err
	}
	return out.GetValue(), nil
}

func (c *Client) Delete(ctx context.Context, key string, opts ...grpc.CallOption) (bool, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, methodDelete, wrapperspb.String(key), out, opts...); err != nil {
		return false, err
	}
	return out.GetValue(), nil
}

// Range returns the entries in [from, to) as [key, value] pairs.
func (c *Client) Range(
	ctx context.Context,
	from, to string,
	limit int,
	reverse bool,
	opts ...grpc.CallOption,
) ([][2]string, error) {
	req, err := structpb.NewStruct(map[string]any{
		"from":    from,
		"to":      to,
		"limit":   limit,
		"reverse": reverse,
	})
	if err != nil {
		return nil, err
	}
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, methodRange, req, out, opts...); err != nil {
		return nil, err
	}

	pairs := make([][2]string, 0, len(out.GetValues()))
	for _, v := range out.GetValues() {
		f := v.GetStructValue().GetFields()
		pairs = append(pairs, [2]string{
			f["key"].GetStringValue(),
			f["value"].GetStringValue(),
		})
	}
	return pairs, nil
}

func (c *Client) Stats(ctx context.Context, opts ...grpc.CallOption) (map[string]any, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodStats, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}
