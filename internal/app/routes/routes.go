package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/ipelms/ipelms/internal/app/controllers"
	"github.com/ipelms/ipelms/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	courseController *controllers.CourseController,
	lessonController *controllers.LessonController,
	noticeController *controllers.NoticeController,
	assignmentController *controllers.AssignmentController,
	authMiddleware *middleware.AuthMiddleware,
	authLimiter *middleware.RateLimiter,
) {
	// Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API version group
	v1 := router.Group("/api/v1")

	// --- Public auth routes, rate limited ---
	auth := v1.Group("/auth")
	auth.Use(authLimiter.Limit())
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
	}

	// --- Public course routes ---
	courses := v1.Group("/courses")
	{
		courses.GET("", courseController.GetAllCourses)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.POST("/auth/logout", authController.Logout)
		authenticated.GET("/auth/me", authController.GetProfile)

		coursesAuth := authenticated.Group("/courses")
		{
			coursesAuth.POST("", courseController.CreateCourse)
			coursesAuth.GET("/mine", courseController.GetMyCourses)
			coursesAuth.GET("/:id", courseController.GetCourseDetail)
			coursesAuth.PUT("/:id", courseController.UpdateCourse)
			coursesAuth.DELETE("/:id", courseController.DeleteCourse)
			coursesAuth.POST("/:id/join", courseController.JoinCourse)
			coursesAuth.POST("/:id/leave", courseController.LeaveCourse)
			coursesAuth.POST("/:id/instructors/:userId", courseController.AddInstructor)
			coursesAuth.DELETE("/:id/instructors/:userId", courseController.RemoveInstructor)

			// Course-scoped content creation and reports. The authorization
			// gate inside the services decides per course relation, so no
			// role middleware here.
			coursesAuth.POST("/:id/lessons", lessonController.CreateLesson)
			coursesAuth.POST("/:id/notices", noticeController.CreateNotice)
			coursesAuth.POST("/:id/assignments", assignmentController.CreateAssignment)
			coursesAuth.GET("/:id/grades", assignmentController.GetGradeReport)
		}

		lessons := authenticated.Group("/lessons")
		{
			lessons.GET("/:id", lessonController.GetLesson)
			lessons.PUT("/:id", lessonController.UpdateLesson)
			lessons.DELETE("/:id", lessonController.DeleteLesson)
			lessons.GET("/:id/attachment", lessonController.DownloadAttachment)
		}

		notices := authenticated.Group("/notices")
		{
			notices.GET("/:id", noticeController.GetNotice)
			notices.PUT("/:id", noticeController.UpdateNotice)
			notices.DELETE("/:id", noticeController.DeleteNotice)
		}

		assignments := authenticated.Group("/assignments")
		{
			assignments.GET("/:id", assignmentController.GetAssignmentDetail)
			assignments.PUT("/:id", assignmentController.UpdateAssignment)
			assignments.DELETE("/:id", assignmentController.DeleteAssignment)
			assignments.POST("/:id/submit", assignmentController.Submit)
			assignments.POST("/:id/grade/:studentId", assignmentController.Grade)
			assignments.GET("/:id/submissions/:studentId/attachment", assignmentController.DownloadSubmissionAttachment)
		}

		admin := authenticated.Group("/admin")
		admin.Use(authMiddleware.AdminOnly())
		{
			admin.DELETE("/users/:id", authController.DeleteUser)
		}
	}
}
