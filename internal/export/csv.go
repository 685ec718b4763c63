package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"shopterm/internal/shop"
)

// BarcodeListCSV writes the barcode list with proper CSV quoting, so commas
// or quotes inside product names survive a spreadsheet round trip.
func BarcodeListCSV(w io.Writer, products []shop.BarcodeProduct) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"Name", "Barcode", "Stock Quantity"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, p := range products {
		if err := writer.Write([]string{p.Name, p.Barcode, strconv.Itoa(p.StockQty)}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// BarcodeListFilename matches the dashboard's export naming.
func BarcodeListFilename(now time.Time) string {
	return fmt.Sprintf("barcode-list-%s.csv", now.Format("2006-01-02"))
}

// WriteBarcodeListFile exports to path, or to a dated file in the working
// directory when path is empty. Returns the file actually written.
func WriteBarcodeListFile(path string, products []shop.BarcodeProduct) (string, error) {
	if path == "" {
		path = BarcodeListFilename(time.Now())
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer file.Close()

	if err := BarcodeListCSV(file, products); err != nil {
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close export file: %w", err)
	}
	return path, nil
}
