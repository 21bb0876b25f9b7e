package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "pustakalaya/internal/core/context"
)

// HeaderViewerID identifies the activity-feed viewer. There is no
// authentication layer; the header (or failing that the client IP) only
// scopes the per-viewer hidden-before cutoff.
const HeaderViewerID = "X-Viewer-ID"

// Viewer middleware records the requesting viewer in the context.
func Viewer() gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer := c.GetHeader(HeaderViewerID)
		if viewer == "" {
			viewer = c.ClientIP()
		}

		ctx := appctx.WithViewer(c.Request.Context(), viewer)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
