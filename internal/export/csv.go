package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/iseprep/backend/internal/domain"
)

// OrderCSV writes the order rows as a flat csv, for callers that feed
// the sheet into another tool rather than a spreadsheet.
func (e *Exporter) OrderCSV(r *domain.OrderReport) (string, error) {
	path, err := e.filePath("order", "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"Code", "Description", "Type", "Standard Qty", "Current Stock",
		"Qty Expiring", "Qty Needed", "Qty To Order", "Rounded", "Pack",
		"Packs", "Price/Pack", "Amount", "Weight (kg)", "Volume (m3)", "Remarks",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	for _, row := range r.Rows {
		record := []string{
			row.Code,
			row.Description,
			string(row.Type),
			fmt.Sprintf("%d", row.StandardQty),
			fmt.Sprintf("%d", row.CurrentStock),
			fmt.Sprintf("%d", row.QtyExpiring),
			fmt.Sprintf("%d", row.QtyNeeded),
			fmt.Sprintf("%d", row.QtyToOrder),
			fmt.Sprintf("%d", row.QtyToOrderRound),
			fmt.Sprintf("%d", row.PackSize),
			fmt.Sprintf("%d", row.Packs),
			row.PricePerPack.StringFixed(2),
			row.Amount.StringFixed(2),
			row.WeightKg.StringFixed(3),
			row.VolumeM3.StringFixed(3),
			row.Remarks,
		}
		if err := writer.Write(record); err != nil {
			return "", err
		}
	}

	return path, nil
}

func joinStrings(values []string) string {
	return strings.Join(values, ", ")
}
