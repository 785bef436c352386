package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ipelms/ipelms/internal/app/models/dto"
	"github.com/ipelms/ipelms/internal/pkg/apperrors"
)

func TestValidateRegistration(t *testing.T) {
	s := &authServiceImpl{}

	tests := []struct {
		name    string
		req     dto.RegisterRequest
		wantErr bool
	}{
		{"valid", dto.RegisterRequest{Name: "Ana Souza", Email: "ana@example.com", Password: "secret1"}, false},
		{"minimal name", dto.RegisterRequest{Name: "Al", Email: "al@example.com", Password: "secret1"}, false},
		{"name too short", dto.RegisterRequest{Name: "A", Email: "a@example.com", Password: "secret1"}, true},
		{"whitespace name", dto.RegisterRequest{Name: "  X ", Email: "x@example.com", Password: "secret1"}, true},
		{"email without at", dto.RegisterRequest{Name: "Ana", Email: "ana.example.com", Password: "secret1"}, true},
		{"email without domain dot", dto.RegisterRequest{Name: "Ana", Email: "ana@example", Password: "secret1"}, true},
		{"email with spaces", dto.RegisterRequest{Name: "Ana", Email: "ana @example.com", Password: "secret1"}, true},
		{"password too short", dto.RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "12345"}, true},
		{"minimal password", dto.RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "123456"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.validateRegistration(&tt.req)
			if tt.wantErr {
				if !errors.Is(err, apperrors.ErrValidationFailed) {
					t.Errorf("validateRegistration(%+v) = %v, want validation failure", tt.req, err)
				}
			} else if err != nil {
				t.Errorf("validateRegistration(%+v) = %v, want nil", tt.req, err)
			}
		})
	}
}

func TestDeleteUserRejectsSelfDelete(t *testing.T) {
	// The self-delete guard fires before any storage access.
	s := &authServiceImpl{}

	err := s.DeleteUser(context.Background(), 1, 1)
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("DeleteUser(self) = %v, want validation failure", err)
	}
}
