package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/helpdesk-kit/ticketing/internal/auth"
	"github.com/helpdesk-kit/ticketing/internal/domain"
)

func newTestAuthService() *AuthService {
	return NewAuthService(AuthDependencies{
		UserRepo:     newFakeUserRepo(),
		TokenManager: auth.NewTokenManager("test-secret", 60),
		BcryptCost:   bcrypt.MinCost,
	})
}

func TestSignUpAndSignIn(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	user, err := svc.SignUp(ctx, SignUpInput{
		Username:  "alice",
		Email:     "Alice@Example.com",
		Password:  "s3cret",
		FirstName: "Alice",
		LastName:  "Anders",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Equal(t, "alice@example.com", user.Email)

	signedIn, token, expiresAt, err := svc.SignIn(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, signedIn.ID)
	assert.NotEmpty(t, token)
	assert.False(t, expiresAt.IsZero())
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	_, err := svc.SignUp(ctx, SignUpInput{Username: "alice", Email: "a@example.com", Password: "s3cret"})
	require.NoError(t, err)

	_, _, _, err = svc.SignIn(ctx, "alice", "wrong")
	assert.Equal(t, "UNAUTHORIZED", errCode(t, err))

	_, _, _, err = svc.SignIn(ctx, "nobody", "s3cret")
	assert.Equal(t, "UNAUTHORIZED", errCode(t, err))
}

func TestSignUpHonorsRequestedRole(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	agent, err := svc.SignUp(ctx, SignUpInput{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "x",
		Role:     domain.RoleSupportAgent,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSupportAgent, agent.Role)

	_, err = svc.SignUp(ctx, SignUpInput{
		Username: "mallory",
		Email:    "mallory@example.com",
		Password: "x",
		Role:     "SUPERVISOR",
	})
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
}

func TestSignUpRejectsDuplicates(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	_, err := svc.SignUp(ctx, SignUpInput{Username: "alice", Email: "a@example.com", Password: "x"})
	require.NoError(t, err)

	_, err = svc.SignUp(ctx, SignUpInput{Username: "alice", Email: "b@example.com", Password: "x"})
	assert.Equal(t, "CONFLICT", errCode(t, err))

	_, err = svc.SignUp(ctx, SignUpInput{Username: "alice2", Email: "a@example.com", Password: "x"})
	assert.Equal(t, "CONFLICT", errCode(t, err))
}
