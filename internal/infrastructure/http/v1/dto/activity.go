package dto

import (
	"time"
)

// HideActivityRequest moves the viewer's feed cutoff. Events at or before
// HiddenBefore disappear from that viewer's feed; nothing is deleted.
type HideActivityRequest struct {
	HiddenBefore time.Time `json:"hiddenBefore" binding:"required"`
}
