package api

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/celerix-dev/imperivm/internal/backup"
)

const passphraseHeader = "X-Backup-Passphrase"

// maxImportSize bounds the request body of an import.
const maxImportSize = backup.MaxDecodedSize

// Export downloads every collection as a backup file. compress=true adds
// zstd; a passphrase header seals the file with age.
func (h *Handler) Export(c *gin.Context) {
	opts := backup.Options{
		Compress:   strings.EqualFold(c.Query("compress"), "true"),
		Passphrase: c.GetHeader(passphraseHeader),
	}
	bundle := h.Controller.Export()
	data, err := backup.Encode(bundle, opts)
	if err != nil {
		h.fail(c, err)
		return
	}

	name, contentType := "imperivm-backup.json", "application/json"
	switch {
	case opts.Passphrase != "":
		name, contentType = "imperivm-backup.age", "application/octet-stream"
	case opts.Compress:
		name, contentType = "imperivm-backup.json.zst", "application/zstd"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, contentType, data)
}

// Import replaces the collections present in the uploaded backup.
func (h *Handler) Import(c *gin.Context) {
	if !confirmed(c) {
		h.fail(c, errConfirmationRequired)
		return
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportSize))
	if err != nil {
		badRequest(c, err)
		return
	}
	doc, err := backup.Decode(body, c.GetHeader(passphraseHeader))
	if err != nil {
		badRequest(c, err)
		return
	}
	replaced, err := h.Controller.Import(doc)
	if err != nil {
		badRequest(c, err)
		return
	}
	h.logger().Info("backup imported", "keys", replaced, "by", identity(c).Name)
	c.JSON(http.StatusOK, gin.H{"status": "success", "replaced": orEmpty(replaced)})
}

// Reset wipes every collection back to defaults.
func (h *Handler) Reset(c *gin.Context) {
	if !confirmed(c) {
		h.fail(c, errConfirmationRequired)
		return
	}
	h.Controller.Reset()
	h.logger().Warn("system reset", "by", identity(c).Name)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
