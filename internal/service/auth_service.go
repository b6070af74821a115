package service

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/directory"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	StaffID  int    `json:"staff_id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// AuthService authenticates staff against the directory's stored credentials.
type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
}

type authService struct {
	dir    *directory.Client
	secret []byte
}

func NewAuthService(dir *directory.Client, secret string) AuthService {
	return &authService{dir: dir, secret: []byte(secret)}
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	hash, err := s.dir.Credential(ctx, req.StaffID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid staff id or password", ErrValidation)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid staff id or password", ErrValidation)
	}

	employee, err := s.dir.GetEmployee(ctx, req.StaffID)
	if err != nil {
		return nil, errors.New("failed to load employee record")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  employee.StaffID,
		"dept": employee.Dept,
		"role": employee.Position,
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &TokenResponse{Token: tokenString}, nil
}
