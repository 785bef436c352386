package auth

import (
	"testing"

	"github.com/ipelms/ipelms/internal/app/models"
)

func TestDecidePrecedence(t *testing.T) {
	lesson := Resource{Kind: KindLesson, CourseID: 7}
	submission := Resource{Kind: KindSubmission, CourseID: 7, OwnerID: 9}

	tests := []struct {
		name       string
		actor      Actor
		action     Action
		res        Resource
		wantAllow  bool
		wantReason DenyReason
	}{
		{
			name:      "admin allows everything",
			actor:     Actor{ID: 1, Role: models.RoleAdmin},
			action:    ActionDelete,
			res:       lesson,
			wantAllow: true,
		},
		{
			name:      "course instructor can delete lesson",
			actor:     Actor{ID: 2, Role: models.RoleInstructor, CourseInstructor: true},
			action:    ActionDelete,
			res:       lesson,
			wantAllow: true,
		},
		{
			name:      "course instructor can grade submission",
			actor:     Actor{ID: 2, Role: models.RoleInstructor, CourseInstructor: true},
			action:    ActionGrade,
			res:       submission,
			wantAllow: true,
		},
		{
			name:      "course instructor can read content",
			actor:     Actor{ID: 2, Role: models.RoleInstructor, CourseInstructor: true},
			action:    ActionRead,
			res:       lesson,
			wantAllow: true,
		},
		{
			name:       "member cannot delete lesson",
			actor:      Actor{ID: 3, Role: models.RoleStudent, CourseMember: true},
			action:     ActionDelete,
			res:        lesson,
			wantAllow:  false,
			wantReason: DenyNotInstructor,
		},
		{
			name:      "member can read the same lesson",
			actor:     Actor{ID: 3, Role: models.RoleStudent, CourseMember: true},
			action:    ActionRead,
			res:       lesson,
			wantAllow: true,
		},
		{
			name:      "student can submit their own submission",
			actor:     Actor{ID: 9, Role: models.RoleStudent, CourseMember: true},
			action:    ActionSubmit,
			res:       submission,
			wantAllow: true,
		},
		{
			name:      "owner can read their own submission even without membership",
			actor:     Actor{ID: 9, Role: models.RoleStudent},
			action:    ActionRead,
			res:       submission,
			wantAllow: true,
		},
		{
			name:       "non-owner student cannot grade",
			actor:      Actor{ID: 4, Role: models.RoleStudent, CourseMember: true},
			action:     ActionGrade,
			res:        submission,
			wantAllow:  false,
			wantReason: DenyNotInstructor,
		},
		{
			name:       "outsider cannot read",
			actor:      Actor{ID: 5, Role: models.RoleStudent},
			action:     ActionRead,
			res:        lesson,
			wantAllow:  false,
			wantReason: DenyNotEnrolled,
		},
		{
			name:       "global instructor role alone grants nothing course-scoped",
			actor:      Actor{ID: 6, Role: models.RoleInstructor},
			action:     ActionCreate,
			res:        lesson,
			wantAllow:  false,
			wantReason: DenyNotInstructor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.actor, tt.action, tt.res)
			if got.Allowed != tt.wantAllow {
				t.Fatalf("Decide() allowed = %v, want %v", got.Allowed, tt.wantAllow)
			}
			if !got.Allowed && got.Reason != tt.wantReason {
				t.Errorf("Decide() reason = %q, want %q", got.Reason, tt.wantReason)
			}
		})
	}
}

func TestActionString(t *testing.T) {
	actions := map[Action]string{
		ActionRead:   "read",
		ActionCreate: "create",
		ActionUpdate: "update",
		ActionDelete: "delete",
		ActionGrade:  "grade",
		ActionSubmit: "submit",
	}
	for action, want := range actions {
		if got := action.String(); got != want {
			t.Errorf("Action(%d).String() = %q, want %q", action, got, want)
		}
	}
}
