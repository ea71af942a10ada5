// Package client содержит клиента внутреннего gRPC-сервиса дашборда.
package client

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/magabrotheeeer/luxera-dashboard/internal/grpc/dashboardv1"
	"github.com/magabrotheeeer/luxera-dashboard/internal/grpc/server"
	"github.com/magabrotheeeer/luxera-dashboard/internal/models"
)

type DashboardClient struct {
	conn     *grpc.ClientConn
	client   dashboardv1.DashboardClient
	adminKey string
}

// NewDashboardClient создает клиента. adminKey нужен только для RecordUsage.
func NewDashboardClient(addr, adminKey string, opts ...grpc.DialOption) (*DashboardClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, err
	}
	return &DashboardClient{conn: conn, client: dashboardv1.NewDashboardClient(conn), adminKey: adminKey}, nil
}

func (c *DashboardClient) Close() error {
	return c.conn.Close()
}

// ValidateSession возвращает пользователя сессии или nil, если токен недействителен.
func (c *DashboardClient) ValidateSession(ctx context.Context, token string) (*models.PublicUser, error) {
	out, err := c.client.ValidateSession(ctx, wrapperspb.String(token))
	if status.Code(err) == codes.Unauthenticated {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var user models.PublicUser
	if err := fromStruct(out, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *DashboardClient) RecordUsage(ctx context.Context, userID string, serviceID int, month string, delta int) (*models.UsageLog, error) {
	in, err := structpb.NewStruct(map[string]any{
		"userId":    userID,
		"serviceId": serviceID,
		"month":     month,
		"delta":     delta,
	})
	if err != nil {
		return nil, err
	}
	if c.adminKey != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, server.AdminKeyMetadata, c.adminKey)
	}

	out, err := c.client.RecordUsage(ctx, in)
	if err != nil {
		return nil, err
	}
	var entry models.UsageLog
	if err := fromStruct(out, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func fromStruct(s *structpb.Struct, dst any) error {
	raw, err := s.MarshalJSON()
	if err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
