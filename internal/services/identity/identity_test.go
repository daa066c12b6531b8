package identity_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/course-platform/internal/identityprovider"
	"github.com/magabrotheeeer/course-platform/internal/services/identity"
)

type mockProvider struct {
	ListUsersFunc  func(ctx context.Context, page, perPage int) ([]identityprovider.User, error)
	CreateUserFunc func(ctx context.Context, email, password string, emailConfirm bool) (*identityprovider.User, error)
}

func (m *mockProvider) ListUsers(ctx context.Context, page, perPage int) ([]identityprovider.User, error) {
	return m.ListUsersFunc(ctx, page, perPage)
}

func (m *mockProvider) CreateUser(ctx context.Context, email, password string, emailConfirm bool) (*identityprovider.User, error) {
	return m.CreateUserFunc(ctx, email, password, emailConfirm)
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }

func makeLogger() *slog.Logger {
	return slog.New(discardHandler{})
}

func pagedUsers(total int) func(ctx context.Context, page, perPage int) ([]identityprovider.User, error) {
	return func(_ context.Context, page, perPage int) ([]identityprovider.User, error) {
		start := (page - 1) * perPage
		if start >= total {
			return nil, nil
		}
		end := start + perPage
		if end > total {
			end = total
		}
		users := make([]identityprovider.User, 0, end-start)
		for i := start; i < end; i++ {
			users = append(users, identityprovider.User{
				ID:    fmt.Sprintf("uid-%d", i),
				Email: fmt.Sprintf("user%d@example.com", i),
			})
		}
		return users, nil
	}
}

func TestFindUserByEmail_CaseInsensitive(t *testing.T) {
	provider := &mockProvider{
		ListUsersFunc: func(_ context.Context, page, _ int) ([]identityprovider.User, error) {
			require.Equal(t, 1, page)
			return []identityprovider.User{
				{ID: "uid-1", Email: "a@b.com"},
			}, nil
		},
	}
	service := identity.New(provider, makeLogger())

	for _, email := range []string{"a@b.com", "A@B.COM", "a@B.com", " a@b.com "} {
		user, err := service.FindUserByEmail(context.Background(), email)
		require.NoError(t, err, email)
		assert.Equal(t, "uid-1", user.ID)
	}
}

func TestFindUserByEmail_WalksPages(t *testing.T) {
	// пользователь на второй странице: первая страница полная
	var pagesRequested []int
	base := pagedUsers(250)
	provider := &mockProvider{
		ListUsersFunc: func(ctx context.Context, page, perPage int) ([]identityprovider.User, error) {
			pagesRequested = append(pagesRequested, page)
			return base(ctx, page, perPage)
		},
	}
	service := identity.New(provider, makeLogger())

	user, err := service.FindUserByEmail(context.Background(), "user249@example.com")
	require.NoError(t, err)
	assert.Equal(t, "uid-249", user.ID)
	assert.Equal(t, []int{1, 2}, pagesRequested)
}

func TestFindUserByEmail_NotFoundAfterShortPage(t *testing.T) {
	provider := &mockProvider{
		ListUsersFunc: pagedUsers(3),
	}
	service := identity.New(provider, makeLogger())

	user, err := service.FindUserByEmail(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, identity.ErrUserNotFound)
	assert.Nil(t, user)
}

func TestEnsureUser_CreatesWhenMissing(t *testing.T) {
	var gotPassword string
	provider := &mockProvider{
		ListUsersFunc: func(_ context.Context, _, _ int) ([]identityprovider.User, error) {
			return nil, nil
		},
		CreateUserFunc: func(_ context.Context, email, password string, emailConfirm bool) (*identityprovider.User, error) {
			gotPassword = password
			require.True(t, emailConfirm)
			return &identityprovider.User{ID: "uid-new", Email: email, EmailConfirmed: true}, nil
		},
	}
	service := identity.New(provider, makeLogger())

	user, existed, err := service.EnsureUser(context.Background(), "new@example.com")
	require.NoError(t, err)
	assert.False(t, existed)
	assert.Equal(t, "uid-new", user.ID)
	assert.Regexp(t, `^ml_[0-9a-f-]{36}$`, gotPassword)
}

func TestEnsureUser_ExistingUser(t *testing.T) {
	provider := &mockProvider{
		ListUsersFunc: func(_ context.Context, _, _ int) ([]identityprovider.User, error) {
			return []identityprovider.User{{ID: "uid-1", Email: "a@b.com"}}, nil
		},
		CreateUserFunc: func(_ context.Context, _, _ string, _ bool) (*identityprovider.User, error) {
			t.Fatal("create should not be called for existing user")
			return nil, nil
		},
	}
	service := identity.New(provider, makeLogger())

	user, existed, err := service.EnsureUser(context.Background(), "A@b.com")
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Equal(t, "uid-1", user.ID)
}

func TestEnsureUser_EmailExistsRace(t *testing.T) {
	// между поиском и созданием пользователя успела создать другая реплика
	calls := 0
	provider := &mockProvider{
		ListUsersFunc: func(_ context.Context, _, _ int) ([]identityprovider.User, error) {
			calls++
			if calls == 1 {
				return nil, nil
			}
			return []identityprovider.User{{ID: "uid-1", Email: "a@b.com"}}, nil
		},
		CreateUserFunc: func(_ context.Context, _, _ string, _ bool) (*identityprovider.User, error) {
			return nil, identityprovider.ErrEmailExists
		},
	}
	service := identity.New(provider, makeLogger())

	user, existed, err := service.EnsureUser(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Equal(t, "uid-1", user.ID)
}

func TestEnsureUser_ProviderError(t *testing.T) {
	wantErr := errors.New("provider down")
	provider := &mockProvider{
		ListUsersFunc: func(_ context.Context, _, _ int) ([]identityprovider.User, error) {
			return nil, wantErr
		},
	}
	service := identity.New(provider, makeLogger())

	user, _, err := service.EnsureUser(context.Background(), "a@b.com")
	require.ErrorIs(t, err, wantErr)
	assert.Nil(t, user)
}
