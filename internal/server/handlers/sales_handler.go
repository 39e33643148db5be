package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/posgate/internal/domain/models"
	"github.com/mamadbah2/posgate/internal/export"
	"github.com/mamadbah2/posgate/internal/service/history"
	"github.com/mamadbah2/posgate/internal/service/labels"
)

const dateQueryLayout = "2006-01-02"

// SalesHandler serves the sales-history report and its exports.
type SalesHandler struct {
	historySvc *history.Service
	labelsSvc  *labels.Service
	logger     *zap.Logger
}

// NewSalesHandler constructs the HTTP handler adapter.
func NewSalesHandler(historySvc *history.Service, labelsSvc *labels.Service, logger *zap.Logger) *SalesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SalesHandler{historySvc: historySvc, labelsSvc: labelsSvc, logger: logger}
}

// List returns one page of the grouped sales report.
func (h *SalesHandler) List(c *gin.Context) {
	rows, ok := h.reportRows(c)
	if !ok {
		return
	}

	page := 1
	if raw := c.Query("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "page must be a positive integer"})
			return
		}
		page = parsed
	}

	c.JSON(http.StatusOK, gin.H{
		"rows":     history.Paginate(rows, page),
		"page":     page,
		"pageSize": history.PageSize,
		"total":    len(rows),
	})
}

// Export streams the full (unpaginated) report as a spreadsheet download.
func (h *SalesHandler) Export(c *gin.Context) {
	rows, ok := h.reportRows(c)
	if !ok {
		return
	}

	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var data []byte
	if format == export.FormatCSV {
		data, err = export.SalesCSV(rows)
	} else {
		data, err = export.SalesSpreadsheet(rows)
	}
	if err != nil {
		h.logger.Error("sales export failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to build export"})
		return
	}

	serveDownload(c, "sales_report."+string(format), format, data)
}

// ExportLabels streams the product label sheet as a download.
func (h *SalesHandler) ExportLabels(c *gin.Context) {
	built, err := h.labelsSvc.Build(c.Request.Context())
	if err != nil {
		h.logger.Error("label build failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to load products"})
		return
	}

	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var data []byte
	if format == export.FormatCSV {
		data, err = export.LabelsCSV(built)
	} else {
		data, err = export.LabelsSpreadsheet(built)
	}
	if err != nil {
		h.logger.Error("label export failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to build export"})
		return
	}

	serveDownload(c, "product_labels."+string(format), format, data)
}

// reportRows fetches, filters and groups sales per the query parameters.
func (h *SalesHandler) reportRows(c *gin.Context) ([]models.ReportRow, bool) {
	start, ok := h.dateParam(c, "startDate")
	if !ok {
		return nil, false
	}
	end, ok := h.dateParam(c, "endDate")
	if !ok {
		return nil, false
	}

	key, err := history.ParseGroupKey(c.Query("groupBy"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	sales, err := h.historySvc.Fetch(c.Request.Context(), start, end)
	if err != nil {
		h.logger.Error("sales fetch failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to fetch sales"})
		return nil, false
	}

	return history.Group(history.Rows(sales), key), true
}

func (h *SalesHandler) dateParam(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}

	parsed, err := time.Parse(dateQueryLayout, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be formatted as YYYY-MM-DD"})
		return nil, false
	}
	return &parsed, true
}

func serveDownload(c *gin.Context, filename string, format export.Format, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, format.ContentType(), data)
}
