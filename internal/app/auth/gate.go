package auth

import (
	"context"
	"fmt"

	"github.com/ipelms/ipelms/internal/app/models"
	"github.com/ipelms/ipelms/internal/app/repositories"
	"github.com/ipelms/ipelms/internal/pkg/apperrors"
)

// Action is the closed set of operations the gate decides on.
type Action int

const (
	ActionRead Action = iota
	ActionCreate
	ActionUpdate
	ActionDelete
	ActionGrade
	ActionSubmit
)

// String returns the action name for logging and deny messages.
func (a Action) String() string {
	switch a {
	case ActionRead:
		return "read"
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	case ActionGrade:
		return "grade"
	case ActionSubmit:
		return "submit"
	}
	return "unknown"
}

// mutating reports whether the action changes state.
func (a Action) mutating() bool {
	return a != ActionRead
}

// ResourceKind is the closed set of resource types the gate decides on.
type ResourceKind int

const (
	KindCourse ResourceKind = iota
	KindLesson
	KindNotice
	KindAssignment
	KindSubmission
)

// Resource identifies what an action targets. CourseID is always the owning
// course. OwnerID is set only for submissions: the submitting student.
type Resource struct {
	Kind     ResourceKind
	CourseID int64
	OwnerID  int64
}

// Actor is a user together with their course-scoped relations for the
// resource's course. Loading the relations is the Gate's job; Decide itself
// is pure.
type Actor struct {
	ID               int64
	Role             models.RoleType
	CourseInstructor bool
	CourseMember     bool
}

// DenyReason tells the caller why a decision denied.
type DenyReason string

const (
	DenyNotInstructor DenyReason = "not_instructor"
	DenyNotEnrolled   DenyReason = "not_enrolled"
)

// Decision is the outcome of a gate evaluation.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// Decide applies the access rules in precedence order, first match wins:
//
//  1. global admin: everything
//  2. course instructor: any action on content within their course
//  3. submission owner: submit and read their own submission
//  4. course member: read
//  5. deny, with not_instructor for mutations and not_enrolled for reads
func Decide(actor Actor, action Action, res Resource) Decision {
	if actor.Role == models.RoleAdmin {
		return Decision{Allowed: true}
	}

	if actor.CourseInstructor {
		return Decision{Allowed: true}
	}

	if res.Kind == KindSubmission && actor.ID == res.OwnerID {
		if action == ActionSubmit || action == ActionRead {
			return Decision{Allowed: true}
		}
	}

	if actor.CourseMember && action == ActionRead {
		return Decision{Allowed: true}
	}

	if action.mutating() {
		return Decision{Allowed: false, Reason: DenyNotInstructor}
	}
	return Decision{Allowed: false, Reason: DenyNotEnrolled}
}

// Gate loads an actor's course relations and evaluates Decide. Every CRUD
// handler consults it before touching course content.
type Gate struct {
	memberships *repositories.MembershipRepository
}

// NewGate creates a new authorization gate.
func NewGate(memberships *repositories.MembershipRepository) *Gate {
	return &Gate{memberships: memberships}
}

// ActorFor builds the Actor for a user against a course, loading both
// relations.
func (g *Gate) ActorFor(ctx context.Context, userID int64, role models.RoleType, courseID int64) (Actor, error) {
	isInstructor, err := g.memberships.IsInstructor(ctx, courseID, userID)
	if err != nil {
		return Actor{}, fmt.Errorf("failed to load instructor relation: %w", err)
	}
	isMember, err := g.memberships.IsMember(ctx, courseID, userID)
	if err != nil {
		return Actor{}, fmt.Errorf("failed to load member relation: %w", err)
	}
	return Actor{
		ID:               userID,
		Role:             role,
		CourseInstructor: isInstructor,
		CourseMember:     isMember,
	}, nil
}

// Authorize evaluates the rules and converts a denial into a sentinel error.
func (g *Gate) Authorize(ctx context.Context, userID int64, role models.RoleType, action Action, res Resource) error {
	actor, err := g.ActorFor(ctx, userID, role, res.CourseID)
	if err != nil {
		return err
	}

	decision := Decide(actor, action, res)
	if decision.Allowed {
		return nil
	}

	switch decision.Reason {
	case DenyNotInstructor:
		return apperrors.ErrNotInstructor
	default:
		return apperrors.ErrNotEnrolled
	}
}
