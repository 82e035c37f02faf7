package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/celerix-dev/imperivm/internal/oracle"
	"github.com/celerix-dev/imperivm/internal/syndicate"
	"github.com/celerix-dev/imperivm/pkg/schema"
)

func (h *Handler) GetOverview(c *gin.Context) {
	stats := h.Controller.Stats()
	c.JSON(http.StatusOK, gin.H{
		"stats":          stats,
		"balance":        stats.Balance,
		"balanceDisplay": oracle.FormatMoney(stats.Balance),
		"logs":           orEmpty(h.Controller.Logs()),
	})
}

func (h *Handler) GetLogs(c *gin.Context) {
	c.JSON(http.StatusOK, orEmpty(h.Controller.Logs()))
}

func (h *Handler) GetCandidates(c *gin.Context) {
	status := schema.CandidateStatus(c.Query("status"))
	c.JSON(http.StatusOK, orEmpty(h.Controller.Candidates(status)))
}

func (h *Handler) ApproveCandidate(c *gin.Context) {
	member, err := h.Controller.ApproveCandidate(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "member": member})
}

func (h *Handler) RejectCandidate(c *gin.Context) {
	if err := h.Controller.RejectCandidate(c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) GetMembers(c *gin.Context) {
	c.JSON(http.StatusOK, orEmpty(h.Controller.Members(c.Query("q"))))
}

func (h *Handler) UpdateMember(c *gin.Context) {
	var patch syndicate.MemberPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	m, err := h.Controller.UpdateMember(c.Param("id"), patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) UpdateMemberPoints(c *gin.Context) {
	var input struct {
		Delta *int `json:"delta" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	m, err := h.Controller.UpdateMemberPoints(c.Param("id"), *input.Delta)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// AskOracle relays a question. Nothing is written if the client has gone.
func (h *Handler) AskOracle(c *gin.Context) {
	var input struct {
		Prompt string `json:"prompt"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	answer, err := h.Controller.AskOracle(c.Request.Context(), input.Prompt)
	if err != nil {
		if c.Request.Context().Err() != nil {
			c.Abort()
			return
		}
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
