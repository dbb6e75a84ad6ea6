package export

import (
	"fmt"
	"time"

	"shareit/internal/models"

	"github.com/xuri/excelize/v2"
)

const SheetName = "Bookings"

// ContentType is the media type of the produced workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var headers = []string{"ID", "Item", "Booker", "Email", "Start", "End", "Status"}

var statusColors = map[models.BookingStatus]string{
	models.StatusWaiting:  "#FFEB9C",
	models.StatusApproved: "#C6EFCE",
	models.StatusRejected: "#FFC7CE",
}

// OwnerBookings renders bookings as a single-sheet XLSX workbook.
// Row 1 holds the title, row 2 the column headers, data starts at row 3.
func OwnerBookings(bookings []*models.Booking, generatedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}

	_ = f.SetCellValue(SheetName, "A1", fmt.Sprintf("Bookings as of %s", generatedAt.UTC().Format(time.RFC3339)))
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	_ = f.MergeCell(SheetName, "A1", lastCol+"1")
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(SheetName, "A1", "A1", titleStyle)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("error creating header style: %w", err)
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(SheetName, cell, h)
		_ = f.SetCellStyle(SheetName, cell, cell, headerStyle)
	}

	statusStyles := make(map[models.BookingStatus]int, len(statusColors))
	for status, color := range statusColors {
		style, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		})
		if err != nil {
			return nil, fmt.Errorf("error creating status style: %w", err)
		}
		statusStyles[status] = style
	}

	for i, b := range bookings {
		row := i + 3
		values := []interface{}{
			b.ID,
			b.Item.Name,
			b.Booker.Name,
			b.Booker.Email,
			b.Start.UTC().Format(time.RFC3339),
			b.End.UTC().Format(time.RFC3339),
			string(b.Status),
		}
		start, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(SheetName, start, &values); err != nil {
			return nil, fmt.Errorf("error writing row %d: %w", row, err)
		}
		if style, ok := statusStyles[b.Status]; ok {
			cell, _ := excelize.CoordinatesToCellName(len(headers), row)
			_ = f.SetCellStyle(SheetName, cell, cell, style)
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 8)
	_ = f.SetColWidth(SheetName, "B", lastCol, 22)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("error writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}
