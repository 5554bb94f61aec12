package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"mail-beacon-go/internal/service"
)

// 1x1 transparent GIF
var pixelGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00,
	0x80, 0x00, 0x00, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x2c,
	0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x02,
	0x02, 0x44, 0x01, 0x00, 0x3b,
}

// Pixel serves the tracking image and feeds the open-event
// deduplicator. The response is the same fixed image whatever the
// engine decides; tracking is invisible to the recipient and a
// storage failure never surfaces here.
func (h *Handlers) Pixel(c *gin.Context) {
	start := time.Now()

	id := strings.TrimSuffix(c.Param("id"), ".gif")
	id = strings.TrimSuffix(id, ".png")

	token, _ := c.Cookie(senderCookie)

	outcome, err := h.recorder.Record(service.OpenRequest{
		MessageID:   id,
		IP:          clientIP(c.Request),
		UserAgent:   c.Request.UserAgent(),
		SenderToken: token,
	})
	if err != nil {
		logrus.Errorf("Open event dropped for message %s: %v", id, err)
	} else {
		logrus.Debugf("Pixel fetch for message %s: %s", id, outcome)
	}

	h.metrics.PixelDuration.Observe(time.Since(start).Seconds())
	servePixel(c.Writer)
}

func servePixel(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.WriteHeader(http.StatusOK)
	w.Write(pixelGIF)
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx > 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return xff
	}
	if xri := r.Header.Get("X-Real-Ip"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
