// Package export writes the ad board to CSV and Excel.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jordanlanch/adcreativelab/pkg/ads"
	"github.com/jordanlanch/adcreativelab/pkg/domain"
	"github.com/xuri/excelize/v2"
)

// Format is an export file format.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "xlsx"
)

const sheetName = "Ads"

// ParseFormat accepts csv, xlsx and excel; empty means csv.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatExcel, nil
	}
	return "", domain.NewValidationError(fmt.Sprintf("invalid export format %q: must be csv or xlsx", raw))
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	if f == FormatExcel {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// Filename builds the download name for an export taken at now.
func (f Format) Filename(now time.Time) string {
	return fmt.Sprintf("ads-%s.%s", now.Format("20060102-150405"), f)
}

// Write encodes rows in format f.
func Write(w io.Writer, f Format, rows []ads.AdResponse) error {
	if f == FormatExcel {
		return WriteExcel(w, rows)
	}
	return WriteCSV(w, rows)
}

var headers = []string{
	"ID", "Concept", "Status", "Angle", "Format", "Funnel Stage", "Hypothesis", "Result",
	"Days Remaining", "Review Date", "Due Date", "Spend", "Revenue", "ROAS", "Impressions",
	"Clicks", "Purchases", "Hook Rate", "Hold Rate", "Fail Reasons", "Success Factors", "Created At",
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func formatRate(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v*100, 'f', 1, 64) + "%"
}

func formatInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func record(ad ads.AdResponse) []string {
	result := ""
	if ad.Result != nil {
		result = string(*ad.Result)
	}
	createdAt := ad.CreatedAt
	return []string{
		ad.ID,
		ad.Concept,
		string(ad.Status),
		string(ad.Angle),
		string(ad.Format),
		string(ad.FunnelStage),
		ad.Hypothesis,
		result,
		strconv.Itoa(ad.DaysRemaining),
		formatTime(ad.ReviewDate),
		formatTime(ad.DueDate),
		formatFloat(ad.Spend),
		formatFloat(ad.Revenue),
		formatFloat(ad.ROAS),
		formatInt(ad.Impressions),
		formatInt(ad.Clicks),
		formatInt(ad.Purchases),
		formatRate(ad.Engagement.HookRate),
		formatRate(ad.Engagement.HoldRate),
		strings.Join(ad.FailReasons, ", "),
		strings.Join(ad.SuccessFactors, ", "),
		formatTime(&createdAt),
	}
}

// WriteCSV writes rows as CSV with a header line.
func WriteCSV(w io.Writer, rows []ads.AdResponse) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, ad := range rows {
		if err := writer.Write(record(ad)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteExcel writes rows as a single-sheet xlsx workbook.
func WriteExcel(w io.Writer, rows []ads.AdResponse) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, ad := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := record(ad)
		row := make([]any, len(values))
		for j, v := range values {
			row[j] = v
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetColWidth(sheetName, "A", lastCol, 18); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
