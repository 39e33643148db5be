package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/posgate/internal/service/cart"
	"github.com/mamadbah2/posgate/internal/service/scanner"
)

// ScannerHandler manages barcode scanner sessions and ingests decoded frames
// pushed by the devices.
type ScannerHandler struct {
	mgr    *scanner.Manager
	carts  *cart.Service
	logger *zap.Logger
}

// NewScannerHandler constructs the HTTP handler adapter.
func NewScannerHandler(mgr *scanner.Manager, carts *cart.Service, logger *zap.Logger) *ScannerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScannerHandler{mgr: mgr, carts: carts, logger: logger}
}

type startScanRequest struct {
	Continuous bool   `json:"continuous"`
	Terminal   string `json:"terminal"`
}

// Start opens a scan session on the device. Single-shot requests long-poll
// until a code is detected or the session times out. Continuous sessions feed
// every detected code into the terminal's lookup flow until stopped.
func (h *ScannerHandler) Start(c *gin.Context) {
	var req startScanRequest
	_ = c.ShouldBindJSON(&req)

	device := c.Param("device")
	if req.Continuous && req.Terminal == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "terminal is required for continuous scanning"})
		return
	}

	session, err := h.mgr.Start(device, req.Continuous)
	if err != nil {
		if errors.Is(err, scanner.ErrDeviceUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scanner device unavailable"})
			return
		}
		h.logger.Error("scan session start failed", zap.String("device", device), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to start scan session"})
		return
	}

	if req.Continuous {
		go h.feedTerminal(session, req.Terminal)
		c.JSON(http.StatusAccepted, gin.H{"session": session.ID})
		return
	}

	select {
	case result, ok := <-session.Results():
		switch {
		case !ok:
			// Session stopped from elsewhere before anything was detected.
			c.Status(http.StatusNoContent)
		case errors.Is(result.Err, scanner.ErrScanTimeout):
			c.JSON(http.StatusRequestTimeout, gin.H{"error": "scan timed out"})
		case result.Err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "scan failed"})
		default:
			c.JSON(http.StatusOK, gin.H{"code": result.Code})
		}
	case <-c.Request.Context().Done():
		session.Stop()
		c.Status(http.StatusNoContent)
	}
}

// feedTerminal pipes continuous-scan detections into the terminal's product
// lookup, so a scanned code behaves exactly like a typed one.
func (h *ScannerHandler) feedTerminal(session *scanner.Session, terminal string) {
	for result := range session.Results() {
		if result.Err != nil {
			continue
		}
		h.carts.Lookup(terminal, result.Code)
	}
}

// Stop ends the device's active session, if any.
func (h *ScannerHandler) Stop(c *gin.Context) {
	h.mgr.Stop(c.Param("device"))
	c.Status(http.StatusNoContent)
}

type frameRequest struct {
	Code string `json:"code" binding:"required"`
}

// Frame ingests one decoded barcode pushed by the device.
func (h *ScannerHandler) Frame(c *gin.Context) {
	var req frameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code is required"})
		return
	}

	device := c.Param("device")
	if err := h.mgr.Submit(device, req.Code); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "no active scan session"})
		return
	}

	c.Status(http.StatusAccepted)
}
