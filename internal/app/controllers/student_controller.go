package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/app/services"
	"github.com/yigit/gradebook/internal/middleware"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
)

// StudentController handles the add, edit and delete forms
type StudentController struct {
	studentService services.StudentService
	logger         zerolog.Logger
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService services.StudentService, logger zerolog.Logger) *StudentController {
	return &StudentController{
		studentService: studentService,
		logger:         logger,
	}
}

func parseStudentID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ShowAdd renders an empty student form
func (c *StudentController) ShowAdd(ctx *gin.Context) {
	render(ctx, http.StatusOK, "add.tmpl", "Add student", gin.H{"Form": dto.StudentRequest{}}, nil)
}

// Add creates a student record
func (c *StudentController) Add(ctx *gin.Context) {
	var req dto.StudentRequest
	_ = ctx.ShouldBind(&req)

	student, err := c.studentService.Create(ctx.Request.Context(), req)
	if err != nil {
		c.logFailure(err, "Add student failed")
		render(ctx, middleware.StatusFor(err), "add.tmpl", "Add student", gin.H{"Form": req}, flashFor(err, msgGenericFailure))
		return
	}

	c.logger.Info().Int64("studentID", student.ID).Str("rollNumber", student.RollNumber).Msg("Student added")
	redirectWithFlash(ctx, "/dashboard", middleware.FlashSuccess, "Student added successfully")
}

// ShowEdit renders the form prefilled from the stored record
func (c *StudentController) ShowEdit(ctx *gin.Context) {
	id, ok := parseStudentID(ctx)
	if !ok {
		redirectWithFlash(ctx, "/dashboard", middleware.FlashDanger, services.MsgRecordNotFound)
		return
	}

	student, err := c.studentService.Get(ctx.Request.Context(), id)
	if err != nil {
		c.logFailure(err, "Load student failed")
		redirectWithFlash(ctx, "/dashboard", middleware.FlashDanger, apperrors.Message(err, msgGenericFailure))
		return
	}

	render(ctx, http.StatusOK, "edit.tmpl", "Edit student", gin.H{
		"StudentID": student.ID,
		"Form":      dto.NewStudentRequest(student),
	}, nil)
}

// Edit replaces every field of a student record
func (c *StudentController) Edit(ctx *gin.Context) {
	id, ok := parseStudentID(ctx)
	if !ok {
		redirectWithFlash(ctx, "/dashboard", middleware.FlashDanger, services.MsgRecordNotFound)
		return
	}

	var req dto.StudentRequest
	_ = ctx.ShouldBind(&req)

	if _, err := c.studentService.Update(ctx.Request.Context(), id, req); err != nil {
		c.logFailure(err, "Edit student failed")
		if errors.Is(err, apperrors.ErrNotFound) {
			redirectWithFlash(ctx, "/dashboard", middleware.FlashDanger, apperrors.Message(err, services.MsgRecordNotFound))
			return
		}
		render(ctx, middleware.StatusFor(err), "edit.tmpl", "Edit student", gin.H{
			"StudentID": id,
			"Form":      req,
		}, flashFor(err, msgGenericFailure))
		return
	}

	redirectWithFlash(ctx, "/dashboard", middleware.FlashSuccess, "Student updated successfully")
}

// Delete removes a student record; unknown ids are a no-op
func (c *StudentController) Delete(ctx *gin.Context) {
	id, ok := parseStudentID(ctx)
	if ok {
		if err := c.studentService.Delete(ctx.Request.Context(), id); err != nil {
			c.logger.Error().Err(err).Int64("studentID", id).Msg("Delete student failed")
			redirectWithFlash(ctx, "/dashboard", middleware.FlashDanger, msgGenericFailure)
			return
		}
	}
	redirectWithFlash(ctx, "/dashboard", middleware.FlashInfo, "Student record deleted")
}

func (c *StudentController) logFailure(err error, msg string) {
	if apperrors.IsKnown(err) {
		c.logger.Debug().Err(err).Msg(msg)
		return
	}
	c.logger.Error().Err(err).Msg(msg)
}
