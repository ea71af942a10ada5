// Package server реализует внутренний gRPC-сервер дашборда.
//
// DashboardServer проверяет токены сессий для соседних сервисов и принимает
// учёт использования от исполнителей автоматизаций. Ошибки сервисного слоя
// переводятся в коды gRPC, внутренние детали хранилища наружу не передаются.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/magabrotheeeer/luxera-dashboard/internal/grpc/dashboardv1"
	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/apperr"
	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/luxera-dashboard/internal/models"
)

// AdminKeyMetadata ключ метаданных с административным ключом.
const AdminKeyMetadata = "x-admin-key"

// SessionValidator проверяет токен сессии. nil без ошибки означает отсутствующую или истёкшую сессию.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*models.PublicUser, error)
}

// UsageRecorder увеличивает счётчик использования.
type UsageRecorder interface {
	Record(ctx context.Context, userID string, serviceID int, monthKey string, delta int) (*models.UsageLog, error)
}

// DashboardServer реализует dashboardv1.DashboardServer.
type DashboardServer struct {
	sessions SessionValidator
	usage    UsageRecorder
	log      *slog.Logger
}

var _ dashboardv1.DashboardServer = (*DashboardServer)(nil)

// NewDashboardServer создает сервер.
func NewDashboardServer(sessions SessionValidator, usage UsageRecorder, logger *slog.Logger) *DashboardServer {
	return &DashboardServer{sessions: sessions, usage: usage, log: logger}
}

// ValidateSession возвращает пользователя по токену.
func (s *DashboardServer) ValidateSession(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	token := req.GetValue()
	if token == "" {
		return nil, status.Error(codes.Unauthenticated, "session token is required")
	}

	user, err := s.sessions.Validate(ctx, token)
	if err != nil {
		s.log.Error("ValidateSession failed", sl.Err(err))
		return nil, toStatus(err)
	}
	if user == nil {
		return nil, status.Error(codes.Unauthenticated, "invalid or expired session")
	}
	return toStruct(user)
}

// RecordUsage учитывает использование сервиса.
func (s *DashboardServer) RecordUsage(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()

	userID := fields["userId"].GetStringValue()
	month := fields["month"].GetStringValue()
	serviceID, err := intField(fields, "serviceId")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	delta, err := intField(fields, "delta")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	entry, err := s.usage.Record(ctx, userID, serviceID, month, delta)
	if err != nil {
		s.log.Info("RecordUsage failed",
			slog.String("user_id", userID), slog.Int("service_id", serviceID), sl.Err(err))
		return nil, toStatus(err)
	}
	return toStruct(entry)
}

// AdminKeyInterceptor требует административный ключ в метаданных для перечисленных методов.
// Пустой key запрещает вызовы этих методов.
func AdminKeyInterceptor(key string, methods ...string) grpc.UnaryServerInterceptor {
	protected := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		protected[m] = struct{}{}
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if _, ok := protected[info.FullMethod]; !ok {
			return handler(ctx, req)
		}
		if key == "" {
			return nil, status.Error(codes.PermissionDenied, "admin access is disabled")
		}
		md, _ := metadata.FromIncomingContext(ctx)
		vals := md.Get(AdminKeyMetadata)
		if len(vals) == 0 || subtle.ConstantTimeCompare([]byte(vals[0]), []byte(key)) != 1 {
			return nil, status.Error(codes.PermissionDenied, "invalid admin key")
		}
		return handler(ctx, req)
	}
}

func intField(fields map[string]*structpb.Value, name string) (int, error) {
	v, ok := fields[name]
	if !ok {
		return 0, fmt.Errorf("%s is required", name)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok || n.NumberValue != math.Trunc(n.NumberValue) || math.Abs(n.NumberValue) > math.MaxInt32 {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return int(n.NumberValue), nil
}

// toStruct переводит доменную структуру в Struct через её JSON-представление.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return out, nil
}

func toStatus(err error) error {
	e := apperr.From(err)
	var code codes.Code
	switch e.Kind {
	case apperr.KindValidation:
		code = codes.InvalidArgument
	case apperr.KindAuth:
		code = codes.Unauthenticated
	case apperr.KindForbidden:
		code = codes.PermissionDenied
	case apperr.KindNotFound:
		code = codes.NotFound
	case apperr.KindConflict:
		code = codes.AlreadyExists
	case apperr.KindRateLimited:
		code = codes.ResourceExhausted
	case apperr.KindUpstream:
		code = codes.Unavailable
	default:
		return status.Error(codes.Internal, apperr.ErrInternal.Msg)
	}
	return status.Error(code, e.Code+": "+e.Msg)
}
