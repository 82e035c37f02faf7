package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/celerix-dev/imperivm/internal/recruit"
	"github.com/celerix-dev/imperivm/pkg/schema"
)

// GetRecruitment describes the questionnaire and whether it is open.
func (h *Handler) GetRecruitment(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"closed":   h.Controller.RecruitmentClosed(),
		"steps":    recruit.Steps,
		"defaults": recruit.DefaultAnswers(),
	})
}

// ValidateStep checks one step of the answers so the form can advance.
func (h *Handler) ValidateStep(c *gin.Context) {
	step, err := strconv.Atoi(c.Param("step"))
	if err != nil {
		h.fail(c, recruit.ErrUnknownStep)
		return
	}
	var answers schema.Answers
	if err := c.ShouldBindJSON(&answers); err != nil {
		badRequest(c, err)
		return
	}
	if err := recruit.ValidateStep(step, answers); err != nil {
		h.fail(c, err)
		return
	}
	resp := gin.H{"step": step, "final": step == len(recruit.Steps)}
	if step < len(recruit.Steps) {
		resp["next"] = step + 1
	}
	c.JSON(http.StatusOK, resp)
}

// SubmitCandidate validates the full questionnaire and files the dossier.
func (h *Handler) SubmitCandidate(c *gin.Context) {
	var answers schema.Answers
	if err := c.ShouldBindJSON(&answers); err != nil {
		badRequest(c, err)
		return
	}
	cand, err := recruit.Complete(answers)
	if err != nil {
		h.fail(c, err)
		return
	}
	stored, err := h.Controller.SubmitCandidate(c.Request.Context(), cand)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, stored)
}

// SetRecruitment opens or closes public submissions.
func (h *Handler) SetRecruitment(c *gin.Context) {
	var input struct {
		Closed *bool `json:"closed" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	h.Controller.SetRecruitmentClosed(*input.Closed)
	c.JSON(http.StatusOK, gin.H{"closed": *input.Closed})
}
