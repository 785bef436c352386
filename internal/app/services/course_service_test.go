package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ipelms/ipelms/internal/app/models/dto"
	"github.com/ipelms/ipelms/internal/pkg/apperrors"
)

func TestValidateCourse(t *testing.T) {
	s := &courseServiceImpl{}

	tests := []struct {
		name    string
		title   string
		code    string
		wantErr bool
	}{
		{"valid", "Algorithms I", "ALG1", false},
		{"valid with dash", "Data Structures", "CS-201", false},
		{"title too short", "Al", "ALG1", true},
		{"code too short", "Algorithms I", "AL", true},
		{"code too long", "Algorithms I", "ABCDEFGHIJK", true},
		{"code lowercase", "Algorithms I", "alg1", true},
		{"code with space", "Algorithms I", "ALG 1", true},
		{"code with underscore", "Algorithms I", "ALG_1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.validateCourse(tt.title, tt.code)
			if tt.wantErr {
				if !errors.Is(err, apperrors.ErrValidationFailed) {
					t.Errorf("validateCourse(%q, %q) = %v, want validation failure", tt.title, tt.code, err)
				}
			} else if err != nil {
				t.Errorf("validateCourse(%q, %q) = %v, want nil", tt.title, tt.code, err)
			}
		})
	}
}

func TestCreateCourseRejectsInvalidInputBeforeStorage(t *testing.T) {
	// Repositories are nil on purpose: validation must fail before any
	// storage call is reached.
	s := &courseServiceImpl{logger: zerolog.Nop()}

	_, err := s.CreateCourse(context.Background(), 1, &dto.CreateCourseRequest{
		Title: "OK",
		Code:  "ALG1",
	})
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("expected validation failure for short title, got %v", err)
	}

	_, err = s.CreateCourse(context.Background(), 1, &dto.CreateCourseRequest{
		Title: "Algorithms I",
		Code:  "toolongcoursecode",
	})
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("expected validation failure for bad code, got %v", err)
	}
}

func TestCourseCodeIsUppercasedBeforeValidation(t *testing.T) {
	// "alg1" must be accepted because codes are uppercased first; the
	// validation itself only admits uppercase.
	s := &courseServiceImpl{}

	code := strings.ToUpper(strings.TrimSpace("alg1"))
	if err := s.validateCourse("Algorithms I", code); err != nil {
		t.Fatalf("uppercased code should validate, got %v", err)
	}
}
