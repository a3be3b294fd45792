package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/payrecon-dev/payrecon/internal/model"
	"github.com/payrecon-dev/payrecon/internal/payout"
	"github.com/payrecon-dev/payrecon/internal/settle"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func sampleResult(c model.Category) model.Result {
	return model.Result{
		Category: c,
		Matched: []model.MatchRecord{{
			Method: model.MethodEmail, Key: "ann@x.com", Email: "ann@x.com", Logins: "1, 2",
			LedgerAmount: dec("100"), ReportedAmount: dec("100"), Difference: decimal.Zero,
			DisbursedAt: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC), LedgerRecords: 2, ReportedRecords: 2,
		}},
		Discrepant: []model.MatchRecord{{
			Method: model.MethodID, Key: "7", Logins: "7",
			LedgerAmount: dec("100"), ReportedAmount: dec("100.02"), Difference: dec("-0.02"),
			LedgerRecords: 1, ReportedRecords: 1,
		}},
		AuthoritativeOnly: []model.AuthoritativeRecord{{Row: 4, ID: "4", DisbursedAmount: dec("5")}},
		ReportedOnly:      []model.ParsedRecord{{Identity: "9", Amount: dec("9.5"), Method: model.MethodID}},
		Summary:           model.Counts{Category: c, Matched: 1, Discrepant: 1, AuthoritativeOnly: 1, ReportedOnly: 1},
	}
}

func TestMarshalMatch(t *testing.T) {
	row := MarshalMatch(sampleResult(model.CategoryForex).Discrepant[0])
	require.Len(t, row, len(MatchHeader))
	assert.Equal(t, "ALT", row[0])
	assert.Equal(t, "-0.02", row[6])
	assert.Equal(t, "", row[11])

	row = MarshalMatch(sampleResult(model.CategoryForex).Matched[0])
	assert.Equal(t, "Riseworks", row[0])
	assert.Equal(t, "0.00", row[6])
	assert.Equal(t, "2024-05-01 09:30:00", row[11])
}

func TestPayoutSheets(t *testing.T) {
	forex := sampleResult(model.CategoryForex)
	results := map[model.Category]model.Result{model.CategoryForex: forex}

	sheets := PayoutSheets([]model.Result{forex}, payout.Master(results))
	require.Len(t, sheets, 5)
	assert.Equal(t, "Forex Summary", sheets[0].Name)
	assert.Equal(t, "Forex Amount Differences", sheets[2].Name)
	assert.Len(t, sheets[3].Rows, 1)
	assert.Equal(t, []string{"ALT", "9", "", "9.50"}, sheets[4].Rows[0])

	futures := sampleResult(model.CategoryFutures)
	results[model.CategoryFutures] = futures
	sheets = PayoutSheets([]model.Result{forex, futures}, payout.Master(results))
	require.Len(t, sheets, 11)
	master := sheets[10]
	assert.Equal(t, "Master Summary", master.Name)
	assert.Equal(t, []string{"Matched", "2"}, master.Rows[0])
	assert.Equal(t, []string{"Futures Completed", "yes"}, master.Rows[len(master.Rows)-1])
}

func settledOutcome() settle.Outcome {
	day := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	return settle.Outcome{
		Header: []string{"id", "amount"},
		CFD: []model.SettledRow{{
			PSP:      model.PSPRow{ID: "T1", Amount: dec("50"), Cells: []string{"T1", "50"}},
			PlanType: "CFD (Unmatched PSP)", GrandTotal: dec("50"), Category: "CFD", Date: day, CatchAll: true,
		}},
		Futures: []model.SettledRow{{
			PSP:      model.PSPRow{ID: "T2", Amount: dec("80"), Duplicate: true, Cells: []string{"T2"}},
			PlanType: "Futures 10K", GrandTotal: dec("81"), Category: "Futures", Date: day, Mismatch: true,
		}},
		Revenue: []model.RevenueLine{
			{Date: day, Category: "CFD", Revenue: dec("50"), Rows: 1},
			{Date: day, Category: "Futures", Revenue: dec("80"), Rows: 1},
		},
		Report: settle.Report{PSPRows: 2, FinalTotal: 2, CatchAll: 1},
	}
}

func TestSettlementSheets(t *testing.T) {
	sheets := SettlementSheets(settledOutcome())
	require.Len(t, sheets, 3)
	assert.Equal(t, []string{"id", "amount", "Plan Type", "Grand Total", "Date", "Duplicate", "Mismatch"}, sheets[0].Header)
	assert.Equal(t, []string{"T1", "50", "CFD (Unmatched PSP)", "50.00", "2024-05-02", "", ""}, sheets[0].Rows[0])
	assert.Equal(t, []string{"T2", "", "Futures 10K", "81.00", "2024-05-02", "yes", "yes"}, sheets[1].Rows[0])
	assert.Equal(t, []string{"2024-05-02", "Futures", "80.00", "1"}, sheets[2].Rows[1])
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteCSV_ReportsFlushError(t *testing.T) {
	s := Sheet{Name: "Forex Matched", Header: MatchHeader, Rows: [][]string{{"a"}}}
	err := WriteCSV(failingWriter{}, s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestWriteCSVDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	paths, err := WriteCSVDir(dir, SettlementSheets(settledOutcome()))
	require.NoError(t, err)
	require.Len(t, paths, 3)
	assert.Equal(t, filepath.Join(dir, "revenue_summary.csv"), paths[2])

	data, err := os.ReadFile(paths[2])
	require.NoError(t, err)
	assert.Equal(t, "Date,Category,Revenue,Rows\n2024-05-02,CFD,50.00,1\n2024-05-02,Futures,80.00,1\n", string(data))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "forex_ledger_only.csv", FileName("Forex Ledger Only"))
	assert.Equal(t, "master_summary.csv", FileName(" Master  Summary "))
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, SettlementSheets(settledOutcome())))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"CFD", "Futures", "Revenue Summary"}, f.GetSheetList())
	rows, err := f.GetRows("CFD")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "CFD (Unmatched PSP)", rows[1][2])

	width, err := f.GetColWidth("CFD", "C")
	require.NoError(t, err)
	assert.InDelta(t, float64(len("CFD (Unmatched PSP)")+2), width, 0.01)
}

func TestPrintSummaries(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer

	res := sampleResult(model.CategoryForex)
	PrintResult(&buf, res)
	PrintMaster(&buf, payout.Master(map[model.Category]model.Result{model.CategoryForex: res}))
	PrintSettlement(&buf, "zen", settledOutcome())

	out := buf.String()
	assert.Contains(t, out, "Forex\n")
	assert.Contains(t, out, "diff -0.02")
	assert.Contains(t, out, "pending")
	assert.Contains(t, out, "zen: 2 provider rows")
	assert.True(t, strings.Contains(out, "(CFD 1, Futures 1)"))
}
