package services

// Services defined in this package:
// - AuthService: registration, login and token issuing
// - CourseService: course CRUD, enrollment and the course detail aggregate
// - LessonService: lesson CRUD with optional attachments
// - NoticeService: notice CRUD
// - AssignmentService: assignment CRUD, submissions, grading and grade reports
