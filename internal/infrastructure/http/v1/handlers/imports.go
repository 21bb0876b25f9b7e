package handlers

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"pustakalaya/internal/core/apperror"
	"pustakalaya/internal/domain/importer"
)

// MaxImportBytes caps upload size. Imports stream row by row after decode,
// but the raw file is held in memory.
const MaxImportBytes = 64 << 20

// ImportHandler serves spreadsheet imports into the Title catalog.
type ImportHandler struct {
	*BaseHandler
	pipeline *importer.Pipeline
}

// NewImportHandler creates a new import handler.
func NewImportHandler(base *BaseHandler, pipeline *importer.Pipeline) *ImportHandler {
	return &ImportHandler{BaseHandler: base, pipeline: pipeline}
}

// RegisterRoutes wires the import endpoints.
func (h *ImportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/titles", h.ImportTitles)
}

// ImportTitles ingests an uploaded CSV (optionally gzipped, any supported
// encoding) or xlsx workbook. The response reports per-row outcomes; rows
// committed before a failure or disconnect stay imported.
func (h *ImportHandler) ImportTitles(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.Error(c, apperror.NewValidation("file upload required").WithDetail("error", err.Error()))
		return
	}
	defer file.Close()

	if header.Size > MaxImportBytes {
		h.Error(c, apperror.NewValidation("file too large").
			WithDetail("max_bytes", MaxImportBytes))
		return
	}

	raw, err := io.ReadAll(io.LimitReader(file, MaxImportBytes+1))
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}
	if len(raw) > MaxImportBytes {
		h.Error(c, apperror.NewValidation("file too large").
			WithDetail("max_bytes", MaxImportBytes))
		return
	}

	report, err := h.pipeline.Run(c.Request.Context(), raw, contentTypeFor(header.Filename))
	if err != nil {
		// Partial progress is kept; surface both the report and the error.
		h.OK(c, gin.H{"report": report, "error": err.Error()})
		return
	}
	h.OK(c, report)
}

// contentTypeFor maps the uploaded filename to a parser.
func contentTypeFor(filename string) importer.ContentType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return importer.ContentWorkbook
	default:
		return importer.ContentDelimited
	}
}
