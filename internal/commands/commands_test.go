package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "payrecon-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = filepath.Join(tmpDir, "payrecon")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/payrecon")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	os.Exit(m.Run())
}

// runPayrecon runs the binary in dir with an empty environment config.
func runPayrecon(t *testing.T, dir, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "PAYRECON_CONFIG=")
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const ledgerCSV = `Login,Customer Email,Plan,Amount,Disbursement Amount,Payment Method,Proof,Status,Requested Time,Approved Time,Disbursed Time
1001,ann@x.com,Forex 10K,100,100,Riseworks,p1,Disbursed,2024-05-01 08:00:00,2024-05-01 09:00:00,2024-05-01 10:00:00
1002,bob@x.com,Forex 10K,50,50,USDT,p2,Disbursed,2024-05-01 08:00:00,2024-05-01 09:00:00,2024-05-01 10:00:00
1003,cid@x.com,Forex 25K,70,70,USDC,p3,Disbursed,2024-05-01 08:00:00,2024-05-01 09:00:00,2024-05-01 10:00:00
2001,dee@x.com,Futures 50K,200,200,Riseworks,p4,Disbursed,2024-05-01 08:00:00,2024-05-01 09:00:00,2024-05-01 10:00:00
2002,eve@x.com,Futures 50K,10,10,Riseworks,p5,Pending,,,
`

func TestVersion(t *testing.T) {
	out, err := runPayrecon(t, t.TempDir(), "", "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "payrecon version dev")
}

func TestInit_WritesConfig(t *testing.T) {
	dir := t.TempDir()
	out, err := runPayrecon(t, dir, "", "init", "project")
	require.NoError(t, err, out)

	data, err := os.ReadFile(filepath.Join(dir, "project", "payrecon.yaml"))
	require.NoError(t, err)
	contents := string(data)
	assert.Contains(t, contents, "status_token: disbursed")
	assert.Contains(t, contents, "name: coinsbuy")
	assert.Contains(t, contents, "dir: reports")

	info, err := os.Stat(filepath.Join(dir, "project", "reports"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestInit_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	_, err := runPayrecon(t, dir, "", "init")
	require.NoError(t, err)

	out, err := runPayrecon(t, dir, "", "init")
	require.Error(t, err)
	assert.Contains(t, out, "already exists")

	_, err = runPayrecon(t, dir, "", "init", "--force")
	assert.NoError(t, err)
}

func TestPayout_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ledger.csv", ledgerCSV)
	writeFile(t, dir, "forex_rise.txt", "1001 $100.00 ann@x.com\n")
	writeFile(t, dir, "futures.txt", "2001 $199.00 dee@x.com\n9999 5\n")

	out, err := runPayrecon(t, dir, "1002 50.00\n1003 70.005\n",
		"payout", "--ledger", "ledger.csv",
		"--forex-a", "forex_rise.txt", "--forex-b", "-",
		"--futures-a", "futures.txt",
		"--out", "out/payout.xlsx", "--csv-dir", "csv",
	)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Master summary")
	assert.Contains(t, out, "Wrote out/payout.xlsx")

	f, err := excelize.OpenFile(filepath.Join(dir, "out", "payout.xlsx"))
	require.NoError(t, err)
	defer f.Close()
	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "Forex Matched")
	assert.Contains(t, sheets, "Futures Amount Differences")
	assert.Contains(t, sheets, "Master Summary")

	rows, err := f.GetRows("Forex Matched")
	require.NoError(t, err)
	assert.Len(t, rows, 4)

	data, err := os.ReadFile(filepath.Join(dir, "csv", "futures_amount_differences.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "dee@x.com")
	assert.Contains(t, string(data), ",1.00,")

	data, err = os.ReadFile(filepath.Join(dir, "csv", "futures_pasted_only.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "ALT,9999,,5.00")

	data, err = os.ReadFile(filepath.Join(dir, "logs", "run-log.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), ",payout,Forex,ledger.csv,")
	assert.Contains(t, string(data), ",payout,Futures,ledger.csv,")
}

func TestPayout_NoValidData(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ledger.csv", ledgerCSV)
	writeFile(t, dir, "junk.txt", "hello\n")

	out, err := runPayrecon(t, dir, "", "payout", "--ledger", "ledger.csv", "--forex-a", "junk.txt")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Forex: no valid data found")
	assert.Contains(t, out, "No section reconciled.")
}

func TestPayout_MissingColumns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ledger.csv", "Login,Plan\n1,Forex\n")

	out, err := runPayrecon(t, dir, "", "payout", "--ledger", "ledger.csv")
	require.Error(t, err)
	assert.Contains(t, out, "missing required columns")
	assert.Contains(t, out, "Customer Email")
}

func TestSettle_Coinsbuy(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "coins.csv", `Tracking ID,Amount,Rate,Created
T1,50,1,2024-05-01 10:00:00
T2,40,2,2024-05-01 11:00:00
T3,3000,1,2024-05-01 12:00:00
,5,1,2024-05-01 13:00:00
`)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "orders"), 0o755))
	writeFile(t, dir, "orders/a.csv", "Updated At,Tracking ID,Plan Type,Grand Total\n2024-05-01 10:00:00,T2,Futures 10K,80\n")
	writeFile(t, dir, "orders/b.csv", "Updated At,Tracking ID,Plan Type,Grand Total\n2024-05-01 10:00:00,None,Forex,1\n")

	out, err := runPayrecon(t, dir, "", "settle", "coinsbuy",
		"--psp", "coins.csv", "--orders", "orders",
		"--start", "2024-05-01", "--end", "2024-05-01", "--out", "settle.xlsx",
	)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Final total")
	assert.Contains(t, out, "(CFD 2, Futures 1)")

	f, err := excelize.OpenFile(filepath.Join(dir, "settle.xlsx"))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"CFD", "Futures", "Revenue Summary"}, f.GetSheetList())

	rows, err := f.GetRows("CFD")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "CFD (Unmatched PSP)", rows[1][4])
	assert.Equal(t, "50.00", rows[1][5])

	data, err := os.ReadFile(filepath.Join(dir, "logs", "run-log.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), ",settle,coinsbuy,coins.csv,")
}

func TestSettle_UnknownFeed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "p.csv", "a\n")
	writeFile(t, dir, "o.csv", "a\n")

	out, err := runPayrecon(t, dir, "", "settle", "paypal", "--psp", "p.csv", "--orders", "o.csv")
	require.Error(t, err)
	assert.Contains(t, out, `unknown feed "paypal"`)
}

func TestSettle_BadDate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "o.csv", "a\n")
	out, err := runPayrecon(t, dir, "", "settle", "zen", "--psp", "p.csv", "--orders", "o.csv", "--start", "01/05/2024")
	require.Error(t, err)
	assert.Contains(t, out, "parsing --start")
}

func TestSettle_VerboseReportsParseCache(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "coins.csv", "Tracking ID,Amount,Rate,Created\nT1,50,1,2024-05-01 10:00:00\n")
	orders := "Updated At,Tracking ID,Plan Type,Grand Total\n2024-05-01 10:00:00,T9,Forex,5\n"
	writeFile(t, dir, "a.csv", orders)
	writeFile(t, dir, "copy.csv", orders)

	out, err := runPayrecon(t, dir, "", "--verbose", "settle", "coinsbuy",
		"--psp", "coins.csv", "--orders", "a.csv,copy.csv", "--out", "settle.xlsx",
	)
	require.NoError(t, err, out)
	assert.Contains(t, out, "parse cache")
	assert.Contains(t, out, `"hits": 1`)
}
