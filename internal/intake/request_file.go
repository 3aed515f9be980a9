// Package intake reads and validates transfer requests before they reach
// the core. Malformed input is rejected here; the core only re-validates
// amount positivity defensively.
package intake

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/danisetya/transfer-service/internal/domain"
	"github.com/danisetya/transfer-service/pkg/fileutil"
)

var requestHeaderFields = []string{"accountId", "amount"}

// CSVRequestReader reads an ordered batch of transfer requests from a CSV
// file with accountId and amount columns
type CSVRequestReader struct {
	FilePath string
}

// NewCSVRequestReader creates a new CSVRequestReader
func NewCSVRequestReader(fp string) *CSVRequestReader {
	return &CSVRequestReader{FilePath: fp}
}

// ReadAll reads and validates every request in file order. Any malformed
// row fails the whole read; a rejected batch never reaches the core.
func (r *CSVRequestReader) ReadAll() ([]domain.TransferRequest, error) {
	reader := fileutil.NewCSVReader(r.FilePath)

	header, err := reader.ReadHeader()
	if err != nil {
		return nil, fmt.Errorf("reading request header: %w", err)
	}

	columnMap, err := createHeaderMap(header, requestHeaderFields)
	if err != nil {
		return nil, fmt.Errorf("mapping CSV columns: %w", err)
	}

	var requests []domain.TransferRequest
	rowProcessorFn := func(rowNum int, row []string) error {
		maxIndex := -1
		for _, idx := range columnMap {
			if idx > maxIndex {
				maxIndex = idx
			}
		}
		if len(row) <= maxIndex {
			return fmt.Errorf("row %d: expected at least %d columns, got %d", rowNum, maxIndex+1, len(row))
		}

		accountID, err := strconv.Atoi(row[columnMap["accountId"]])
		if err != nil || accountID <= 0 {
			return fmt.Errorf("row %d: invalid account id %q", rowNum, row[columnMap["accountId"]])
		}

		amount, err := decimal.NewFromString(row[columnMap["amount"]])
		if err != nil || !amount.IsPositive() {
			return fmt.Errorf("row %d: invalid amount %q", rowNum, row[columnMap["amount"]])
		}

		requests = append(requests, domain.TransferRequest{
			AccountID: accountID,
			Amount:    amount,
		})
		return nil
	}

	if err := reader.ReadAndProcessByRow(rowProcessorFn); err != nil {
		return nil, fmt.Errorf("reading transfer requests: %w", err)
	}

	return requests, nil
}
