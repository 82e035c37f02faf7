// Package api exposes the syndicate controller over HTTP with gin.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/celerix-dev/imperivm/internal/auth"
	"github.com/celerix-dev/imperivm/internal/recruit"
	"github.com/celerix-dev/imperivm/internal/syndicate"
)

// errForbidden is returned when the session's rank is too low.
var errForbidden = errors.New("ACESSO RESTRITO AO DON SUPREMO")

// errConfirmationRequired is returned by destructive endpoints called
// without confirm=true.
var errConfirmationRequired = errors.New("confirmation required: repeat the request with ?confirm=true")

type Handler struct {
	Controller *syndicate.Controller
	Auth       auth.Provider
	Sessions   *auth.Sessions
	// LoginDelay is waited before every login answer.
	LoginDelay time.Duration
	CORSOrigin string
	Logger     *slog.Logger
}

// NewRouter builds a gin engine with CORS and every route registered.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(h.cors())
	h.Register(r)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "API route not found"})
	})
	return r
}

// Register mounts the routes under /api.
func (h *Handler) Register(r gin.IRouter) {
	public := r.Group("/api")
	{
		public.POST("/auth/login", h.Login)
		public.GET("/recruitment", h.GetRecruitment)
		public.POST("/recruitment/steps/:step", h.ValidateStep)
		public.POST("/candidates", h.SubmitCandidate)
	}

	admin := r.Group("/api", h.requireSession)
	{
		admin.GET("/session", h.GetSession)
		admin.GET("/overview", h.GetOverview)
		admin.GET("/logs", h.GetLogs)

		admin.GET("/candidates", h.GetCandidates)
		admin.POST("/candidates/:id/approve", requireSupremo, h.ApproveCandidate)
		admin.POST("/candidates/:id/reject", requireSupremo, h.RejectCandidate)
		admin.DELETE("/candidates/:id", requireSupremo, h.deleteKind(syndicate.KindCandidate))

		admin.GET("/members", h.GetMembers)
		admin.PATCH("/members/:id", requireSupremo, h.UpdateMember)
		admin.POST("/members/:id/points", requireSupremo, h.UpdateMemberPoints)
		admin.DELETE("/members/:id", requireSupremo, h.deleteKind(syndicate.KindMember))

		ctl := h.Controller
		admin.GET("/actions", list(ctl.Actions))
		admin.POST("/actions", add(h, ctl.AddAction))
		admin.PUT("/actions/:id", update(h, ctl.UpdateAction))
		admin.DELETE("/actions/:id", h.deleteKind(syndicate.KindAction))

		admin.GET("/finances", list(ctl.Transactions))
		admin.POST("/finances", add(h, ctl.AddTransaction))
		admin.PUT("/finances/:id", update(h, ctl.UpdateTransaction))
		admin.DELETE("/finances/:id", h.deleteKind(syndicate.KindFinance))

		admin.GET("/warnings", list(ctl.Warnings))
		admin.POST("/warnings", add(h, ctl.AddWarning))
		admin.PUT("/warnings/:id", update(h, ctl.UpdateWarning))
		admin.DELETE("/warnings/:id", h.deleteKind(syndicate.KindWarning))

		admin.GET("/inventory", list(ctl.Inventory))
		admin.POST("/inventory", add(h, ctl.AddInventoryItem))
		admin.PUT("/inventory/:id", update(h, ctl.UpdateInventoryItem))
		admin.DELETE("/inventory/:id", h.deleteKind(syndicate.KindInventory))

		admin.PUT("/recruitment", h.SetRecruitment)
		admin.POST("/oracle", h.AskOracle)
		admin.GET("/export", h.Export)
		admin.POST("/import", requireSupremo, h.Import)
		admin.POST("/reset", requireSupremo, h.Reset)
	}
}

func (h *Handler) cors() gin.HandlerFunc {
	origin := h.CORSOrigin
	if origin == "" {
		origin = "*"
	}
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-Backup-Passphrase")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func statusFor(err error) int {
	var fe *recruit.FieldError
	switch {
	case errors.As(err, &fe):
		return http.StatusUnprocessableEntity
	case errors.Is(err, syndicate.ErrNotFound), errors.Is(err, syndicate.ErrUnknownKind), errors.Is(err, recruit.ErrUnknownStep):
		return http.StatusNotFound
	case errors.Is(err, syndicate.ErrInvalid), errors.Is(err, syndicate.ErrEmptyPrompt):
		return http.StatusUnprocessableEntity
	case errors.Is(err, auth.ErrAccessDenied), errors.Is(err, auth.ErrInvalidSession):
		return http.StatusUnauthorized
	case errors.Is(err, errForbidden), errors.Is(err, syndicate.ErrProtectedMember):
		return http.StatusForbidden
	case errors.Is(err, syndicate.ErrRecruitmentClosed), errors.Is(err, syndicate.ErrAlreadyDecided):
		return http.StatusConflict
	case errors.Is(err, errConfirmationRequired):
		return http.StatusPreconditionRequired
	}
	return http.StatusInternalServerError
}

// fail writes err with the mapped status. Field errors carry the step and
// field so the form can focus the first missing input.
func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger().Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	}
	var fe *recruit.FieldError
	if errors.As(err, &fe) {
		c.JSON(status, gin.H{"error": err.Error(), "step": fe.Step, "field": fe.Field})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func confirmed(c *gin.Context) bool {
	return strings.EqualFold(c.Query("confirm"), "true")
}

func list[T any](get func() []T) gin.HandlerFunc {
	return func(c *gin.Context) {
		items := get()
		if items == nil {
			items = []T{}
		}
		c.JSON(http.StatusOK, items)
	}
}

func add[T any](h *Handler, create func(T) (T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var rec T
		if err := c.ShouldBindJSON(&rec); err != nil {
			badRequest(c, err)
			return
		}
		out, err := create(rec)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, out)
	}
}

func update[T any](h *Handler, replace func(string, T) (T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var rec T
		if err := c.ShouldBindJSON(&rec); err != nil {
			badRequest(c, err)
			return
		}
		out, err := replace(c.Param("id"), rec)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func (h *Handler) deleteKind(kind syndicate.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.Controller.Delete(kind, c.Param("id")); err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	}
}
