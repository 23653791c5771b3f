package admin

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/antonminaichev/storefront-orders/internal/types/operator"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockRepo struct {
	createOperatorFn      func(ctx context.Context, op *operator.Operator) error
	findOperatorByLoginFn func(ctx context.Context, login string) (*operator.Operator, error)
}

func (m *mockRepo) CreateOperator(ctx context.Context, op *operator.Operator) error {
	return m.createOperatorFn(ctx, op)
}
func (m *mockRepo) FindOperatorByLogin(ctx context.Context, login string) (*operator.Operator, error) {
	return m.findOperatorByLoginFn(ctx, login)
}

func TestEnsureOperatorCreatesAccount(t *testing.T) {
	var created *operator.Operator
	repo := &mockRepo{
		findOperatorByLoginFn: func(ctx context.Context, login string) (*operator.Operator, error) {
			return nil, sql.ErrNoRows
		},
		createOperatorFn: func(ctx context.Context, op *operator.Operator) error {
			created = op
			return nil
		},
	}
	svc := NewService(repo, []byte("secret"), time.Hour)

	err := svc.EnsureOperator(context.Background(), "admin", "correcthorse")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "admin", created.Login)
	assert.NotEqual(t, "correcthorse", created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("correcthorse")))
}

func TestEnsureOperatorExistingUntouched(t *testing.T) {
	createCalled := false
	repo := &mockRepo{
		findOperatorByLoginFn: func(ctx context.Context, login string) (*operator.Operator, error) {
			return &operator.Operator{ID: 1, Login: login}, nil
		},
		createOperatorFn: func(ctx context.Context, op *operator.Operator) error {
			createCalled = true
			return nil
		},
	}
	svc := NewService(repo, []byte("secret"), time.Hour)

	err := svc.EnsureOperator(context.Background(), "admin", "correcthorse")
	require.NoError(t, err)
	assert.False(t, createCalled)
}

func TestEnsureOperatorShortPassword(t *testing.T) {
	svc := NewService(&mockRepo{}, []byte("secret"), time.Hour)
	err := svc.EnsureOperator(context.Background(), "admin", "short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestAuthenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correcthorse"), bcrypt.DefaultCost)
	require.NoError(t, err)
	repo := &mockRepo{
		findOperatorByLoginFn: func(ctx context.Context, login string) (*operator.Operator, error) {
			return &operator.Operator{ID: 1, Login: login, PasswordHash: string(hash)}, nil
		},
	}
	svc := NewService(repo, []byte("secret"), time.Hour)

	token, err := svc.Authenticate(context.Background(), "admin", "correcthorse")
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, "admin", claims.Subject)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correcthorse"), bcrypt.DefaultCost)
	require.NoError(t, err)
	repo := &mockRepo{
		findOperatorByLoginFn: func(ctx context.Context, login string) (*operator.Operator, error) {
			return &operator.Operator{ID: 1, Login: login, PasswordHash: string(hash)}, nil
		},
	}
	svc := NewService(repo, []byte("secret"), time.Hour)

	_, err = svc.Authenticate(context.Background(), "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCreds)
}

func TestAuthenticateUnknownLogin(t *testing.T) {
	repo := &mockRepo{
		findOperatorByLoginFn: func(ctx context.Context, login string) (*operator.Operator, error) {
			return nil, sql.ErrNoRows
		},
	}
	svc := NewService(repo, []byte("secret"), time.Hour)

	_, err := svc.Authenticate(context.Background(), "ghost", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCreds)
}
