// Package report renders an organization's complaints as an XLSX workbook.
package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"actionflow/backend/internal/models"
	"actionflow/backend/internal/storage"

	"github.com/xuri/excelize/v2"
)

const SheetName = "Complaints"

const timeLayout = "2006-01-02 15:04:05"

var ComplaintHeader = []string{
	"Complaint ID",
	"Category",
	"Priority",
	"Status",
	"Description",
	"Resolver",
	"Resolution Note",
	"Rating",
	"Feedback",
	"Filed At",
	"Updated At",
}

var columnWidths = []float64{20, 18, 10, 12, 50, 20, 40, 8, 40, 20, 20}

// Storage is the part of the store an export reads.
type Storage interface {
	ListComplaints(ctx context.Context, f storage.ComplaintFilter) ([]models.Complaint, error)
	ListResolvers(ctx context.Context, orgID uint) ([]models.Resolver, error)
}

// ExportComplaints writes every complaint of orgID, newest first, to w and
// returns the number of rows written.
func ExportComplaints(ctx context.Context, s Storage, orgID uint, w io.Writer) (int, error) {
	complaints, err := s.ListComplaints(ctx, storage.ComplaintFilter{OrgID: orgID})
	if err != nil {
		return 0, err
	}
	resolvers, err := s.ListResolvers(ctx, orgID)
	if err != nil {
		return 0, err
	}
	names := make(map[uint]string, len(resolvers))
	for _, r := range resolvers {
		names[r.ID] = r.Name
	}

	f, err := BuildComplaints(complaints, names)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return 0, fmt.Errorf("failed to write workbook: %w", err)
	}
	return len(complaints), nil
}

// BuildComplaints lays out one row per complaint under a frozen header row.
// The caller closes the returned file.
func BuildComplaints(complaints []models.Complaint, resolverNames map[uint]string) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range ComplaintHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetCellValue(SheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(SheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetColWidth(SheetName, name, name, columnWidths[col]); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, c := range complaints {
		row := i + 2
		for col, value := range rowValues(c, resolverNames) {
			if value == nil || value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				f.Close()
				return nil, err
			}
			if err := f.SetCellValue(SheetName, cell, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}
	return f, nil
}

func rowValues(c models.Complaint, resolverNames map[uint]string) []interface{} {
	var resolver, rating, feedback interface{}
	if c.ResolverID != nil {
		resolver = resolverNames[*c.ResolverID]
	}
	if c.Rating != nil {
		rating = *c.Rating
	}
	if c.Feedback != nil {
		feedback = *c.Feedback
	}
	return []interface{}{
		c.ComplaintID,
		c.Category,
		string(c.Priority),
		string(c.Status),
		c.Description,
		resolver,
		c.ResolutionNote,
		rating,
		feedback,
		formatTime(&c.CreatedAt),
		formatTime(c.UpdatedAt),
	}
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}
