package engine

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/1517005260/AShareAgent-sub001/types"
)

// WriteTradesCSVFile writes the trade ledger to a CSV file at the given path.
func WriteTradesCSVFile(path string, trades []types.Trade) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trades file: %w", err)
	}
	defer f.Close()

	return writeTradesCSV(f, trades)
}

// writeTradesCSV writes the ledger to any io.Writer as CSV. Pass os.Stdout
// for debugging, or a file.
func writeTradesCSV(w io.Writer, trades []types.Trade) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"date", // RFC 3339 date
		"side",
		"requested_qty",
		"executed_qty",
		"fill_price",
		"commission",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, t := range trades {
		record := []string{
			t.Date.Format(dateLayout),
			string(t.Side),
			strconv.FormatInt(t.RequestedQty, 10),
			strconv.FormatInt(t.ExecutedQty, 10),
			t.FillPrice.String(),
			t.Commission.String(),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
