package profile_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/apperr"
	"github.com/magabrotheeeer/luxera-dashboard/internal/models"
	"github.com/magabrotheeeer/luxera-dashboard/internal/services/profile"
	"github.com/magabrotheeeer/luxera-dashboard/internal/storage/repository"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) GetUser(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) UpdateUserProfile(ctx context.Context, id string, upd models.ProfileUpdate, now time.Time) (*models.User, error) {
	args := m.Called(ctx, id, upd, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestGet(t *testing.T) {
	repo := new(RepoMock)
	repo.On("GetUser", mock.Anything, "u-1").Return(&models.User{ID: "u-1", PasswordHash: "h"}, nil).Once()
	repo.On("GetUser", mock.Anything, "u-2").Return(nil, repository.ErrNotFound).Once()
	repo.On("GetUser", mock.Anything, "u-3").Return(nil, errors.New("db down")).Once()
	svc := profile.New(repo, discard)

	u, err := svc.Get(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)

	_, err = svc.Get(context.Background(), "u-2")
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)
	_, err = svc.Get(context.Background(), "u-3")
	assert.ErrorIs(t, err, apperr.ErrInternal)
	_, err = svc.Get(context.Background(), " ")
	assert.ErrorIs(t, err, apperr.ErrInvalidID)
}

func TestUpdate(t *testing.T) {
	blank := "   "
	name := "  Ann Lee "

	svc := profile.New(new(RepoMock), discard)
	_, err := svc.Update(context.Background(), "u-1", models.ProfileUpdate{})
	assert.ErrorIs(t, err, apperr.ErrNoUpdateFields)
	_, err = svc.Update(context.Background(), "u-1", models.ProfileUpdate{Name: &blank})
	assert.ErrorIs(t, err, apperr.ErrInvalidName)

	repo := new(RepoMock)
	repo.On("UpdateUserProfile", mock.Anything, "u-1", mock.MatchedBy(func(u models.ProfileUpdate) bool {
		return *u.Name == "Ann Lee" && u.Image.Set && u.Image.Value == nil
	}), mock.Anything).Return(&models.User{ID: "u-1", Name: "Ann Lee"}, nil).Once()

	got, err := profile.New(repo, discard).Update(context.Background(), "u-1",
		models.ProfileUpdate{Name: &name, Image: models.Null[string]()})
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", got.Name)
	assert.Nil(t, got.Image)
	repo.AssertExpectations(t)
}
