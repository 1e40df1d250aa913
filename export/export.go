// Package export renders analysis reports as downloadable CSV or XLSX
// documents.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/seo-insights/backend/analyzer"
)

// Supported export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ContentType returns the MIME type for a supported format, or the
// empty string for anything else.
func ContentType(format string) string {
	switch format {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return ""
}

// Write renders the report in the requested format.
func Write(w io.Writer, format string, report *analyzer.Report) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, report)
	case FormatXLSX:
		return writeXLSX(w, report)
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

func writeCSV(w io.Writer, report *analyzer.Report) error {
	// UTF-8 BOM for Excel compatibility
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}

	writer := csv.NewWriter(w)

	summary := [][]string{
		{"URL", report.URL},
		{"Analyzed", report.FetchedAt.Format(time.RFC3339)},
		{"Overall Score", strconv.Itoa(report.OverallScore)},
		{""},
	}
	for _, row := range summary {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}

	if err := writer.Write([]string{"Factor", "Score", "Issues"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, name := range analyzer.FactorOrder {
		factor, ok := report.Factors[name]
		if !ok {
			continue
		}
		row := []string{name, strconv.Itoa(factor.Score), strings.Join(factor.Issues, "; ")}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write factor row: %w", err)
		}
	}

	if len(report.Recommendations) > 0 {
		writer.Write([]string{""})
		if err := writer.Write([]string{"Priority", "Category", "Issue", "Recommendation", "Impact"}); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		for _, rec := range report.Recommendations {
			row := []string{rec.Priority, rec.Category, rec.Issue, rec.Recommendation, rec.Impact}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("failed to write recommendation row: %w", err)
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeXLSX(w io.Writer, report *analyzer.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"00C853"}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})

	writeSummarySheet(f, report)
	writeFactorsSheet(f, report, headerStyle)
	writeRecommendationsSheet(f, report, headerStyle)

	f.DeleteSheet("Sheet1")
	return f.Write(w)
}

func writeSummarySheet(f *excelize.File, report *analyzer.Report) {
	const sheet = "Summary"
	index, _ := f.NewSheet(sheet)
	f.SetActiveSheet(index)

	rows := [][]string{
		{"URL", report.URL},
		{"Analyzed", report.FetchedAt.Format(time.RFC3339)},
		{"Overall Score", strconv.Itoa(report.OverallScore)},
		{"Word Count", strconv.Itoa(report.Page.WordCount)},
		{"Page Size (bytes)", strconv.Itoa(report.Page.PageSizeBytes)},
	}
	for i, row := range rows {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", i+1), row[0])
		f.SetCellValue(sheet, fmt.Sprintf("B%d", i+1), row[1])
	}

	f.SetColWidth(sheet, "A", "A", 20)
	f.SetColWidth(sheet, "B", "B", 60)
}

func writeFactorsSheet(f *excelize.File, report *analyzer.Report, headerStyle int) {
	const sheet = "Factors"
	f.NewSheet(sheet)

	headers := []string{"Factor", "Score", "Issues"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	row := 2
	for _, name := range analyzer.FactorOrder {
		factor, ok := report.Factors[name]
		if !ok {
			continue
		}
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), name)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), factor.Score)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), strings.Join(factor.Issues, "; "))
		row++
	}
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "overall")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", row), report.OverallScore)

	f.SetColWidth(sheet, "A", "A", 20)
	f.SetColWidth(sheet, "B", "B", 10)
	f.SetColWidth(sheet, "C", "C", 60)
}

func writeRecommendationsSheet(f *excelize.File, report *analyzer.Report, headerStyle int) {
	const sheet = "Recommendations"
	f.NewSheet(sheet)

	headers := []string{"Priority", "Category", "Issue", "Recommendation", "Impact"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for i, rec := range report.Recommendations {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), rec.Priority)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), rec.Category)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), rec.Issue)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), rec.Recommendation)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), rec.Impact)
	}

	f.SetColWidth(sheet, "A", "A", 10)
	f.SetColWidth(sheet, "B", "B", 18)
	f.SetColWidth(sheet, "C", "C", 40)
	f.SetColWidth(sheet, "D", "D", 60)
	f.SetColWidth(sheet, "E", "E", 12)
}
