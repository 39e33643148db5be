// Package export serializes report rows into downloadable spreadsheet files.
// The xlsx and csv layouts share the same fixed column set.
package export

import (
	"fmt"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/posgate/internal/domain/models"
)

// Format selects the serialization of an export.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat validates a user-supplied format, defaulting to xlsx.
func ParseFormat(raw string) (Format, error) {
	switch Format(raw) {
	case "":
		return FormatXLSX, nil
	case FormatXLSX, FormatCSV:
		return Format(raw), nil
	default:
		return "", fmt.Errorf("unknown export format %q", raw)
	}
}

// ContentType returns the MIME type to serve the export with.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

var salesHeader = []interface{}{"Date", "EAN", "Description", "Quantity", "Price", "Total", "Seller", "Payment Method"}

// SalesSpreadsheet serializes report rows into an xlsx workbook, one row per
// record under a fixed header.
func SalesSpreadsheet(rows []models.ReportRow) ([]byte, error) {
	cells := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		cells = append(cells, []interface{}{
			row.Date,
			row.EAN,
			row.Description,
			row.Quantity,
			row.Price.StringFixed(2),
			row.Total.StringFixed(2),
			row.Seller,
			row.PaymentMethod,
		})
	}
	return writeWorkbook(salesHeader, cells)
}

// SalesCSV serializes report rows into csv with the same column set.
func SalesCSV(rows []models.ReportRow) ([]byte, error) {
	return gocsv.MarshalBytes(&rows)
}

var labelsHeader = []interface{}{"EAN", "Description", "Price", "Image URL"}

// LabelsSpreadsheet serializes product labels into an xlsx workbook.
func LabelsSpreadsheet(labels []models.Label) ([]byte, error) {
	cells := make([][]interface{}, 0, len(labels))
	for _, l := range labels {
		cells = append(cells, []interface{}{l.EAN, l.Description, l.Price, l.ImageURL})
	}
	return writeWorkbook(labelsHeader, cells)
}

// LabelsCSV serializes product labels into csv.
func LabelsCSV(labels []models.Label) ([]byte, error) {
	return gocsv.MarshalBytes(&labels)
}

func writeWorkbook(header []interface{}, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
