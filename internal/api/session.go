package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/celerix-dev/imperivm/internal/auth"
	"github.com/celerix-dev/imperivm/pkg/schema"
)

const identityKey = "identity"

// Login checks credentials after LoginDelay, whatever the outcome.
func (h *Handler) Login(c *gin.Context) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	if h.LoginDelay > 0 {
		timer := time.NewTimer(h.LoginDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-c.Request.Context().Done():
			c.Abort()
			return
		}
	}

	id, err := h.Auth.Verify(input.Username, input.Password)
	if err != nil {
		h.logger().Info("login rejected", "username", input.Username)
		h.fail(c, auth.ErrAccessDenied)
		return
	}
	token, expires, err := h.Sessions.Issue(id)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.logger().Info("login accepted", "username", id.Name, "role", id.Role)
	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"expiresAt": expires.UTC().Format(time.RFC3339),
		"identity":  id,
	})
}

// GetSession returns the identity behind the bearer token.
func (h *Handler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, identity(c))
}

func (h *Handler) requireSession(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidSession.Error()})
		return
	}
	id, err := h.Sessions.Parse(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidSession.Error()})
		return
	}
	c.Set(identityKey, id)
	c.Next()
}

func requireSupremo(c *gin.Context) {
	if !identity(c).IsSupremo() {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": errForbidden.Error()})
		return
	}
	c.Next()
}

func identity(c *gin.Context) schema.Identity {
	v, _ := c.Get(identityKey)
	id, _ := v.(schema.Identity)
	return id
}
