package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/danielotaviano/miniprova-api/internal/app/models/dto"
	"github.com/danielotaviano/miniprova-api/internal/app/services"
	"github.com/danielotaviano/miniprova-api/internal/middleware"
)

// ExamController handles exam-related operations
type ExamController struct {
	examService services.ExamService
}

// NewExamController creates a new ExamController
func NewExamController(examService services.ExamService) *ExamController {
	return &ExamController{
		examService: examService,
	}
}

// CreateExam handles exam creation
// @Summary Create a new exam
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateExamRequest true "Exam information"
// @Success 201 {object} dto.APIResponse{data=models.Exam}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /exams [post]
func (c *ExamController) CreateExam(ctx *gin.Context) {
	var req dto.CreateExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid exam data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	exam, err := c.examService.CreateExam(ctx, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      exam,
		Timestamp: time.Now(),
	})
}

// GetExamByID retrieves an exam by ID
// @Summary Get exam by ID
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Success 200 {object} dto.APIResponse{data=models.Exam}
// @Failure 404 {object} dto.ErrorResponse
// @Router /exams/{id} [get]
func (c *ExamController) GetExamByID(ctx *gin.Context) {
	examID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	exam, err := c.examService.GetExamByID(ctx, examID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if exam == nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Exam not found")
		ctx.JSON(http.StatusNotFound, dto.NewErrorResponse(errorDetail))
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      exam,
		Timestamp: time.Now(),
	})
}

// ListExamsByClass retrieves all exams of a class
// @Summary List exams by class
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Exam}
// @Failure 400 {object} dto.ErrorResponse
// @Router /classes/{id}/exams [get]
func (c *ExamController) ListExamsByClass(ctx *gin.Context) {
	classID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	exams, err := c.examService.ListExamsByClassID(ctx, classID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      exams,
		Timestamp: time.Now(),
	})
}

// UpdateExam applies a partial update to an exam
// @Summary Update an exam
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Param request body dto.UpdateExamRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Exam}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /exams/{id} [patch]
func (c *ExamController) UpdateExam(ctx *gin.Context) {
	examID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid exam data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	exam, err := c.examService.UpdateExam(ctx, userID, examID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      exam,
		Timestamp: time.Now(),
	})
}

// DeleteExam deletes an exam
// @Summary Delete an exam
// @Tags exams
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Success 204 "No Content"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /exams/{id} [delete]
func (c *ExamController) DeleteExam(ctx *gin.Context) {
	examID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	if err := c.examService.DeleteExam(ctx, userID, examID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// UpdateQuestionsInExam replaces the exam's question set
// @Summary Replace the questions of an exam
// @Tags exams
// @Accept json
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Param request body dto.UpdateExamQuestionsRequest true "Question ids"
// @Success 204 "No Content"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /exams/{id}/questions [post]
func (c *ExamController) UpdateQuestionsInExam(ctx *gin.Context) {
	examID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateExamQuestionsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid question list")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	if err := c.examService.UpdateQuestionsInExam(ctx, userID, examID, req.QuestionIDs); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// GetQuestionsAsStudent returns the exam's questions for an enrolled student
// @Summary Get exam questions as a student
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.QuestionWithAnswers}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /exams/{id}/questions/students [get]
func (c *ExamController) GetQuestionsAsStudent(ctx *gin.Context) {
	examID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	questions, err := c.examService.GetQuestionsInExamAsStudent(ctx, userID, examID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      questions,
		Timestamp: time.Now(),
	})
}

// GetQuestionsAsTeacher returns the exam's questions with correctness flags
// @Summary Get exam questions as a teacher
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.QuestionWithAnswers}
// @Failure 400 {object} dto.ErrorResponse
// @Router /exams/{id}/questions/teachers [get]
func (c *ExamController) GetQuestionsAsTeacher(ctx *gin.Context) {
	examID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	questions, err := c.examService.GetQuestionsInExamAsTeacher(ctx, examID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      questions,
		Timestamp: time.Now(),
	})
}

// SubmitAnswer records a student's answer to one question within the exam window
// @Summary Submit an answer to an exam question
// @Tags exams
// @Accept json
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Param questionId path int true "Question ID"
// @Param request body dto.SubmitAnswerRequest true "Chosen answer"
// @Success 204 "No Content"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /exams/{id}/question/{questionId}/submit [post]
func (c *ExamController) SubmitAnswer(ctx *gin.Context) {
	examID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	questionID, ok := parseIDParam(ctx, "questionId")
	if !ok {
		return
	}

	var req dto.SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid answer data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	if err := c.examService.SubmitAnswerToQuestionInExam(ctx, userID, examID, questionID, req.AnswerID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// GetResultsAsTeacher returns one result per student who submitted answers
// @Summary Get exam results as the owning teacher
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.StudentExamResult}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /exams/{id}/results [get]
func (c *ExamController) GetResultsAsTeacher(ctx *gin.Context) {
	examID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	results, err := c.examService.GetExamResultsAsTeacher(ctx, userID, examID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      results,
		Timestamp: time.Now(),
	})
}

// GetResultsAsStudent returns the caller's result once the exam has closed
// @Summary Get own exam result
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Success 200 {object} dto.APIResponse{data=dto.StudentExamResult}
// @Failure 400 {object} dto.ErrorResponse
// @Router /exams/{id}/results/students [get]
func (c *ExamController) GetResultsAsStudent(ctx *gin.Context) {
	examID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	result, err := c.examService.GetExamResultsAsStudent(ctx, userID, examID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      result,
		Timestamp: time.Now(),
	})
}

// parseIDParam parses a positive integer path parameter, answering 400 itself
// when the value is malformed.
func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	idStr := ctx.Param(name)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name)
		errorDetail = errorDetail.WithDetails("Path parameter must be a positive number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}
