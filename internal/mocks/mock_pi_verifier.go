package mocks

import (
	"context"

	"github.com/promopress/promopress/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockPiVerifier struct {
	mock.Mock
	domain.PiVerifier
}

func (m *MockPiVerifier) VerifyAccessToken(ctx context.Context, accessToken string) (*domain.PiIdentity, error) {
	args := m.Called(ctx, accessToken)

	identity, _ := args.Get(0).(*domain.PiIdentity)
	return identity, args.Error(1)
}
