package jwttoken

import (
	"flightsurety/pkg/domain"
	dErrors "flightsurety/pkg/domain-errors"
	authmw "flightsurety/pkg/platform/middleware/auth"
)

// JWTServiceAdapter exposes the service through the middleware validator port.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*authmw.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	caller, err := domain.ParseCallerID(claims.Subject)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token subject")
	}
	return &authmw.JWTClaims{Caller: caller, JTI: claims.ID}, nil
}
