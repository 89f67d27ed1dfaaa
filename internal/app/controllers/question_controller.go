package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/danielotaviano/miniprova-api/internal/app/models"
	"github.com/danielotaviano/miniprova-api/internal/app/models/dto"
	"github.com/danielotaviano/miniprova-api/internal/app/services"
	"github.com/danielotaviano/miniprova-api/internal/middleware"
)

// QuestionController handles question bank operations
type QuestionController struct {
	questionService *services.QuestionService
}

// NewQuestionController creates a new QuestionController
func NewQuestionController(questionService *services.QuestionService) *QuestionController {
	return &QuestionController{
		questionService: questionService,
	}
}

type questionResponse struct {
	ID        int64           `json:"id"`
	Question  string          `json:"question"`
	Answers   []models.Answer `json:"answers"`
	CreatedAt time.Time       `json:"createdAt"`
}

// CreateQuestion handles question creation
// @Summary Create a question with its answer options
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateQuestionRequest true "Question information"
// @Success 201 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /questions [post]
func (c *QuestionController) CreateQuestion(ctx *gin.Context) {
	var req dto.CreateQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid question data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	question, answers, err := c.questionService.CreateQuestion(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data: questionResponse{
			ID:        question.ID,
			Question:  question.Question,
			Answers:   answers,
			CreatedAt: question.CreatedAt,
		},
		Timestamp: time.Now(),
	})
}

// GetQuestionByID retrieves a question with its answers
// @Summary Get question by ID
// @Tags questions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /questions/{id} [get]
func (c *QuestionController) GetQuestionByID(ctx *gin.Context) {
	questionID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	question, err := c.questionService.GetQuestionByID(ctx, questionID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if question == nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Question not found")
		ctx.JSON(http.StatusNotFound, dto.NewErrorResponse(errorDetail))
		return
	}

	answers, err := c.questionService.ListAnswersByQuestionID(ctx, questionID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: questionResponse{
			ID:        question.ID,
			Question:  question.Question,
			Answers:   answers,
			CreatedAt: question.CreatedAt,
		},
		Timestamp: time.Now(),
	})
}

// ListQuestions retrieves all questions
// @Summary List questions
// @Tags questions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Question}
// @Router /questions [get]
func (c *QuestionController) ListQuestions(ctx *gin.Context) {
	questions, err := c.questionService.ListQuestions(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      questions,
		Timestamp: time.Now(),
	})
}

// DeleteQuestion deletes a question and its answers
// @Summary Delete a question
// @Tags questions
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Success 204 "No Content"
// @Failure 404 {object} dto.ErrorResponse
// @Router /questions/{id} [delete]
func (c *QuestionController) DeleteQuestion(ctx *gin.Context) {
	questionID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.questionService.DeleteQuestion(ctx, questionID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
