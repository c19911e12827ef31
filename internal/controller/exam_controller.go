package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/Kestrel/internal/service"
)

type ExamController struct {
	examService service.ExamService
}

func NewExamController(examService service.ExamService) *ExamController {
	return &ExamController{examService: examService}
}

// GetAllExams godoc
// @Summary List available exams
// @Tags Exams
// @Produce json
// @Success 200 {array} dto.ExamSummaryResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /exams [get]
// @Security BearerAuth
func (ctrl *ExamController) GetAllExams(c *gin.Context) {
	resp, err := ctrl.examService.GetAllExams()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetExamDetails godoc
// @Summary Get exam details with ordered questions
// @Description Correct options are never included in the response.
// @Tags Exams
// @Produce json
// @Param id path int true "Exam ID"
// @Success 200 {object} dto.ExamResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /exams/{id} [get]
// @Security BearerAuth
func (ctrl *ExamController) GetExamDetails(c *gin.Context) {
	examID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := ctrl.examService.GetExamDetails(examID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
