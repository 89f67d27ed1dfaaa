package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/danielotaviano/miniprova-api/internal/app/models/dto"
	"github.com/danielotaviano/miniprova-api/internal/app/services"
	"github.com/danielotaviano/miniprova-api/internal/middleware"
)

// ClassController handles class and enrollment operations
type ClassController struct {
	classService *services.ClassService
}

// NewClassController creates a new ClassController
func NewClassController(classService *services.ClassService) *ClassController {
	return &ClassController{
		classService: classService,
	}
}

// CreateClass handles class creation
// @Summary Create a new class
// @Tags classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateClassRequest true "Class information"
// @Success 201 {object} dto.APIResponse{data=models.Class}
// @Failure 400 {object} dto.ErrorResponse
// @Router /classes [post]
func (c *ClassController) CreateClass(ctx *gin.Context) {
	var req dto.CreateClassRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid class data")
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

	class, err := c.classService.CreateClass(ctx, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      class,
		Timestamp: time.Now(),
	})
}

// GetClassByID retrieves a class by ID
// @Summary Get class by ID
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID"
// @Success 200 {object} dto.APIResponse{data=models.Class}
// @Failure 404 {object} dto.ErrorResponse
// @Router /classes/{id} [get]
func (c *ClassController) GetClassByID(ctx *gin.Context) {
	classID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	class, err := c.classService.GetClassByID(ctx, classID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if class == nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Class not found")
		ctx.JSON(http.StatusNotFound, dto.NewErrorResponse(errorDetail))
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      class,
		Timestamp: time.Now(),
	})
}

// ListClasses retrieves all classes
// @Summary List classes
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Class}
// @Router /classes [get]
func (c *ClassController) ListClasses(ctx *gin.Context) {
	classes, err := c.classService.ListClasses(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      classes,
		Timestamp: time.Now(),
	})
}

// EnrollStudent adds a student to a class
// @Summary Enroll a student in a class
// @Tags classes
// @Accept json
// @Security BearerAuth
// @Param id path int true "Class ID"
// @Param request body dto.EnrollStudentRequest true "Student to enroll"
// @Success 204 "No Content"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /classes/{id}/students [post]
func (c *ClassController) EnrollStudent(ctx *gin.Context) {
	classID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.EnrollStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid enrollment data")
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

	if err := c.classService.EnrollStudent(ctx, userID, classID, req.StudentID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
