package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

func setupAuthServer(t *testing.T) *apiconnect.AuthServiceClient {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	svc := NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager, store, testLogger())

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(svc, connect.WithInterceptors(middleware.OptionalAuth(jwtManager))))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return apiconnect.NewAuthServiceClient(http.DefaultClient, server.URL)
}

func withToken[T any](token string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+token)
	return req
}

func TestAuthService_RegisterLoginCurrentUser(t *testing.T) {
	client := setupAuthServer(t)
	ctx := context.Background()

	reg, err := client.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email:       " Alice@Example.com ",
		DisplayName: "Alice",
		Password:    "correct horse",
	}))
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", reg.Msg.User.Email)
	assert.NotEmpty(t, reg.Msg.User.ID)
	assert.NotEmpty(t, reg.Msg.Token)

	login, err := client.Login(ctx, connect.NewRequest(&api.LoginRequest{
		Email:    "ALICE@example.com",
		Password: "correct horse",
	}))
	require.NoError(t, err)
	assert.Equal(t, reg.Msg.User.ID, login.Msg.User.ID)

	me, err := client.GetCurrentUser(ctx, withToken(login.Msg.Token, &api.GetCurrentUserRequest{}))
	require.NoError(t, err)
	assert.Equal(t, "Alice", me.Msg.User.DisplayName)
	assert.Equal(t, reg.Msg.User.CreatedAt, me.Msg.User.CreatedAt)

	_, err = client.Logout(ctx, withToken(login.Msg.Token, &api.LogoutRequest{}))
	require.NoError(t, err)
}

func TestAuthService_RegisterErrors(t *testing.T) {
	client := setupAuthServer(t)
	ctx := context.Background()

	_, err := client.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email: "bob@example.com", DisplayName: "Bob", Password: "password1",
	}))
	require.NoError(t, err)

	tests := []struct {
		name string
		req  *api.RegisterRequest
		code connect.Code
	}{
		{"missing email", &api.RegisterRequest{DisplayName: "X", Password: "password1"}, connect.CodeInvalidArgument},
		{"missing name", &api.RegisterRequest{Email: "x@example.com", Password: "password1"}, connect.CodeInvalidArgument},
		{"weak password", &api.RegisterRequest{Email: "x@example.com", DisplayName: "X", Password: "short"}, connect.CodeInvalidArgument},
		{"duplicate email", &api.RegisterRequest{Email: "BOB@example.com", DisplayName: "Bob 2", Password: "password2"}, connect.CodeAlreadyExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Register(ctx, connect.NewRequest(tt.req))
			assertCode(t, tt.code, err)
		})
	}
}

func TestAuthService_LoginErrors(t *testing.T) {
	client := setupAuthServer(t)
	ctx := context.Background()

	_, err := client.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email: "carol@example.com", DisplayName: "Carol", Password: "password1",
	}))
	require.NoError(t, err)

	_, err = client.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "carol@example.com", Password: "wrong-pass"}))
	assertCode(t, connect.CodeUnauthenticated, err)

	_, err = client.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "nobody@example.com", Password: "password1"}))
	assertCode(t, connect.CodeUnauthenticated, err)

	_, err = client.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "carol@example.com"}))
	assertCode(t, connect.CodeInvalidArgument, err)
}

func TestAuthService_GetCurrentUserRequiresToken(t *testing.T) {
	client := setupAuthServer(t)

	_, err := client.GetCurrentUser(context.Background(), connect.NewRequest(&api.GetCurrentUserRequest{}))
	assertCode(t, connect.CodeUnauthenticated, err)
}
