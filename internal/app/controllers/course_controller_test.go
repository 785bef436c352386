package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ipelms/ipelms/internal/app/models"
	"github.com/ipelms/ipelms/internal/app/models/dto"
	"github.com/ipelms/ipelms/internal/pkg/apperrors"
)

// mockCourseService implements services.CourseService with canned responses.
type mockCourseService struct {
	createFn func(ctx context.Context, userID int64, req *dto.CreateCourseRequest) (*models.Course, error)
	detailFn func(ctx context.Context, userID int64, role models.RoleType, courseID int64) (*dto.CourseDetailResponse, error)
	joinFn   func(ctx context.Context, userID, courseID int64) (bool, error)
}

func (m *mockCourseService) CreateCourse(ctx context.Context, userID int64, req *dto.CreateCourseRequest) (*models.Course, error) {
	return m.createFn(ctx, userID, req)
}

func (m *mockCourseService) GetAllCourses(ctx context.Context, page, pageSize int) ([]models.Course, int64, error) {
	return []models.Course{}, 0, nil
}

func (m *mockCourseService) GetCourseDetail(ctx context.Context, userID int64, role models.RoleType, courseID int64) (*dto.CourseDetailResponse, error) {
	return m.detailFn(ctx, userID, role, courseID)
}

func (m *mockCourseService) UpdateCourse(ctx context.Context, userID int64, role models.RoleType, courseID int64, req *dto.CreateCourseRequest) (*models.Course, error) {
	return nil, apperrors.ErrCourseNotFound
}

func (m *mockCourseService) DeleteCourse(ctx context.Context, userID int64, role models.RoleType, courseID int64) error {
	return apperrors.ErrCourseNotFound
}

func (m *mockCourseService) JoinCourse(ctx context.Context, userID, courseID int64) (bool, error) {
	return m.joinFn(ctx, userID, courseID)
}

func (m *mockCourseService) LeaveCourse(ctx context.Context, userID, courseID int64) (bool, error) {
	return false, nil
}

func (m *mockCourseService) AddInstructor(ctx context.Context, userID int64, role models.RoleType, courseID, targetUserID int64) error {
	return apperrors.ErrCourseNotFound
}

func (m *mockCourseService) RemoveInstructor(ctx context.Context, userID int64, role models.RoleType, courseID, targetUserID int64) error {
	return apperrors.ErrCourseNotFound
}

func (m *mockCourseService) GetMyCourses(ctx context.Context, userID int64) ([]models.Course, []models.Course, error) {
	return nil, nil, nil
}

func newCourseRouter(svc *mockCourseService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// Stand-in for the auth middleware: inject a fixed principal.
	r.Use(func(c *gin.Context) {
		c.Set("userID", int64(7))
		c.Set("role", "student")
	})

	ctrl := NewCourseController(svc)
	r.POST("/courses", ctrl.CreateCourse)
	r.GET("/courses/:id", ctrl.GetCourseDetail)
	r.POST("/courses/:id/join", ctrl.JoinCourse)
	return r
}

func TestCreateCourseReturnsCreated(t *testing.T) {
	svc := &mockCourseService{
		createFn: func(ctx context.Context, userID int64, req *dto.CreateCourseRequest) (*models.Course, error) {
			if userID != 7 {
				t.Errorf("userID = %d, want 7", userID)
			}
			return &models.Course{ID: 1, Title: req.Title, Code: "ALG1", CreatedBy: userID}, nil
		},
	}
	r := newCourseRouter(svc)

	body, _ := json.Marshal(dto.CreateCourseRequest{Title: "Algorithms I", Code: "alg1"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/courses", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	var resp struct {
		Data models.Course `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Data.ID != 1 || resp.Data.Code != "ALG1" {
		t.Errorf("unexpected course in response: %+v", resp.Data)
	}
}

func TestCreateCourseRejectsMissingFields(t *testing.T) {
	svc := &mockCourseService{
		createFn: func(ctx context.Context, userID int64, req *dto.CreateCourseRequest) (*models.Course, error) {
			t.Fatal("service must not be called when binding fails")
			return nil, nil
		},
	}
	r := newCourseRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/courses", bytes.NewReader([]byte(`{"description":"no title"}`)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestGetCourseDetailMapsNotFound(t *testing.T) {
	svc := &mockCourseService{
		detailFn: func(ctx context.Context, userID int64, role models.RoleType, courseID int64) (*dto.CourseDetailResponse, error) {
			return nil, apperrors.ErrCourseNotFound
		},
	}
	r := newCourseRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/courses/99", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestGetCourseDetailRejectsBadID(t *testing.T) {
	svc := &mockCourseService{
		detailFn: func(ctx context.Context, userID int64, role models.RoleType, courseID int64) (*dto.CourseDetailResponse, error) {
			t.Fatal("service must not be called for a bad ID")
			return nil, nil
		},
	}
	r := newCourseRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/courses/abc", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestJoinCourseReportsAlreadyEnrolled(t *testing.T) {
	svc := &mockCourseService{
		joinFn: func(ctx context.Context, userID, courseID int64) (bool, error) {
			return true, nil
		},
	}
	r := newCourseRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/courses/3/join", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp struct {
		Data dto.SuccessResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Data.Message != "Already enrolled" {
		t.Errorf("message = %q, want %q", resp.Data.Message, "Already enrolled")
	}
}
