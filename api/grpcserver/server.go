package grpcserver

import (
	"context"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"ordmap/domain/treemap"
	"ordmap/service"
)

// Server adapts StoreService to gRPC.
type Server struct {
	svc *service.StoreService
	log logrus.FieldLogger
}

func NewServer(svc *service.StoreService, log logrus.FieldLogger) *Server {
	return &Server{svc: svc, log: log.WithField("component", "grpc")}
}

var _ OrderedMapServer = (*Server)(nil)

// -------------------- Commands --------------------

func (s *Server) Put(
	ctx context.Context,
	req *structpb.Struct,
) (*wrapperspb.BoolValue, error) {
	key, err := stringField(req, "key", true)
	if err != nil {
		return nil, err
	}
	value, err := stringField(req, "value", false)
	if err != nil {
		return nil, err
	}

	created, err := s.svc.Put(key, value)
	if err != nil {
		return nil, toStatus(err)
	}

	s.log.WithFields(logrus.Fields{
		"method":  "Put",
		"key":     key,
		"created": created,
	}).Debug("handled")

	return wrapperspb.Bool(created), nil
}

func (s *Server) Delete(
	ctx context.Context,
	req *wrapperspb.StringValue,
) (*wrapperspb.BoolValue, error) {
	removed := s.svc.Delete(req.GetValue())
	s.log.WithFields(logrus.Fields{
		"method":  "Delete",
		"key":     req.GetValue(),
		"removed": removed,
	}).Debug("handled")
	return wrapperspb.Bool(removed), nil
}

// -------------------- Queries --------------------

func (s *Server) Get(
	ctx context.Context,
	req *wrapperspb.StringValue,
) (*wrapperspb.StringValue, error) {
	v, err := s.svc.Get(req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.String(v), nil
}

func (s *Server) Range(
	ctx context.Context,
	req *structpb.Struct,
) (*structpb.ListValue, error) {
	q, err := toRangeQuery(req)
	if err != nil {
		return nil, err
	}

	entries := s.svc.Range(q)
	items := make([]any, 0, len(entries))
	for _, e := range entries {
		items = append(items, map[string]any{
			"key":   e.Key,
			"value": e.Value,
		})
	}
	list, err := structpb.NewList(items)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return list, nil
}

func (s *Server) Stats(
	ctx context.Context,
	_ *emptypb.Empty,
) (*structpb.Struct, error) {
	st := s.svc.Stats()
	out, err := structpb.NewStruct(map[string]any{
		"size":         st.Size,
		"height":       st.Height,
		"black_height": st.BlackHeight,
		"last_seq":     float64(st.LastSeq),
	})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// -------------------- Converters --------------------

func toStatus(err error) error {
	switch {
	case errors.Is(err, treemap.ErrOutOfRange):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrEmptyKey):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func stringField(req *structpb.Struct, name string, required bool) (string, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		if required {
			return "", status.Errorf(codes.InvalidArgument, "missing field %q", name)
		}
		return "", nil
	}
	sv, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "field %q must be a string", name)
	}
	return sv.StringValue, nil
}

func toRangeQuery(req *structpb.Struct) (service.RangeQuery, error) {
	var q service.RangeQuery
	var err error

	if q.From, err = stringField(req, "from", false); err != nil {
		return q, err
	}
	if q.To, err = stringField(req, "to", false); err != nil {
		return q, err
	}
	fields := req.GetFields()
	if v, ok := fields["limit"]; ok {
		n, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok || n.NumberValue < 0 || n.NumberValue > math.MaxInt32 || n.NumberValue != math.Trunc(n.NumberValue) {
			return q, status.Errorf(codes.InvalidArgument, `field "limit" must be a whole number in [0, %d]`, math.MaxInt32)
		}
		q.Limit = int(n.NumberValue)
	}
	if v, ok := fields["reverse"]; ok {
		b, ok := v.GetKind().(*structpb.Value_BoolValue)
		if !ok {
			return q, status.Error(codes.InvalidArgument, `field "reverse" must be a bool`)
		}
		q.Reverse = b.BoolValue
	}
	return q, nil
}
