package intake_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danisetya/transfer-service/internal/intake"
)

func writeRequestFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "requests.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCSVRequestReader_ReadAll(t *testing.T) {
	path := writeRequestFile(t, "accountId,amount\n1,30.00\n2,5.50\n1,0.01\n")

	requests, err := intake.NewCSVRequestReader(path).ReadAll()
	require.NoError(t, err)
	require.Len(t, requests, 3)

	assert.Equal(t, 1, requests[0].AccountID)
	assert.True(t, requests[0].Amount.Equal(decimal.NewFromFloat(30.00)))
	assert.Equal(t, 2, requests[1].AccountID)
	assert.True(t, requests[2].Amount.Equal(decimal.NewFromFloat(0.01)))
}

func TestCSVRequestReader_HeaderOrderDoesNotMatter(t *testing.T) {
	path := writeRequestFile(t, "amount,accountId\n12.34,7\n")

	requests, err := intake.NewCSVRequestReader(path).ReadAll()
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, 7, requests[0].AccountID)
	assert.True(t, requests[0].Amount.Equal(decimal.NewFromFloat(12.34)))
}

func TestCSVRequestReader_RejectsMalformedRows(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"non-numeric account id", "accountId,amount\nabc,10.00\n"},
		{"zero account id", "accountId,amount\n0,10.00\n"},
		{"negative amount", "accountId,amount\n1,-5.00\n"},
		{"zero amount", "accountId,amount\n1,0\n"},
		{"garbage amount", "accountId,amount\n1,ten\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeRequestFile(t, tt.content)
			_, err := intake.NewCSVRequestReader(path).ReadAll()
			assert.Error(t, err)
		})
	}
}

func TestCSVRequestReader_RejectsMissingColumns(t *testing.T) {
	path := writeRequestFile(t, "accountId,total\n1,10.00\n")

	_, err := intake.NewCSVRequestReader(path).ReadAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount")
}
