package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/danielotaviano/miniprova-api/internal/app/controllers"
	"github.com/danielotaviano/miniprova-api/internal/app/models"
	"github.com/danielotaviano/miniprova-api/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	classController *controllers.ClassController,
	questionController *controllers.QuestionController,
	examController *controllers.ExamController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	authenticated.GET("/users/me", authController.GetProfile)

	// Class routes
	classes := authenticated.Group("/classes")
	{
		classes.GET("", classController.ListClasses)
		classes.GET("/:id", classController.GetClassByID)
		classes.GET("/:id/exams", examController.ListExamsByClass)

		classesTeacherProtected := classes.Group("")
		classesTeacherProtected.Use(authMiddleware.RoleRequired(models.RoleTeacher))
		{
			classesTeacherProtected.POST("", classController.CreateClass)
			classesTeacherProtected.POST("/:id/students", classController.EnrollStudent)
		}
	}

	// Question bank routes, restricted to teachers
	questions := authenticated.Group("/questions")
	questions.Use(authMiddleware.RoleRequired(models.RoleTeacher))
	{
		questions.GET("", questionController.ListQuestions)
		questions.GET("/:id", questionController.GetQuestionByID)
		questions.POST("", questionController.CreateQuestion)
		questions.DELETE("/:id", questionController.DeleteQuestion)
	}

	// Exam routes
	exams := authenticated.Group("/exams")
	{
		// Teacher-only routes
		examsTeacherProtected := exams.Group("")
		examsTeacherProtected.Use(authMiddleware.RoleRequired(models.RoleTeacher))
		{
			examsTeacherProtected.POST("", examController.CreateExam)
			examsTeacherProtected.GET("/:id", examController.GetExamByID)
			examsTeacherProtected.PATCH("/:id", examController.UpdateExam)
			examsTeacherProtected.DELETE("/:id", examController.DeleteExam)
			examsTeacherProtected.POST("/:id/questions", examController.UpdateQuestionsInExam)
			examsTeacherProtected.GET("/:id/questions/teachers", examController.GetQuestionsAsTeacher)
			examsTeacherProtected.GET("/:id/results", examController.GetResultsAsTeacher)
		}

		// Student-only routes
		examsStudentProtected := exams.Group("")
		examsStudentProtected.Use(authMiddleware.RoleRequired(models.RoleStudent))
		{
			examsStudentProtected.GET("/:id/questions/students", examController.GetQuestionsAsStudent)
			examsStudentProtected.POST("/:id/question/:questionId/submit", examController.SubmitAnswer)
			examsStudentProtected.GET("/:id/results/students", examController.GetResultsAsStudent)
		}
	}
}
