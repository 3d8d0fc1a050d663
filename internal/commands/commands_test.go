package commands_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinoosan/bookkeeper/internal/commands"
	"github.com/tinoosan/bookkeeper/internal/errs"
)

// useBook points the CLI at a CSV book in a temp dir and clears every other backend.
func useBook(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.csv")
	t.Setenv("LEDGER_FILE", path)
	for _, k := range []string{"DATABASE_URL", "REDIS_URL", "CHART_FILE", "ADDR"} {
		t.Setenv(k, "")
	}
	t.Setenv("LOG_LEVEL", "error")
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := commands.NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

type balanceRow struct {
	AccountID string `json:"account_id"`
	Balance   string `json:"balance"`
}

func balancesByID(t *testing.T) map[string]string {
	t.Helper()
	out, err := runCLI(t, "balances", "--json")
	require.NoError(t, err)
	var rows []balanceRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	m := make(map[string]string, len(rows))
	for _, r := range rows {
		m[r.AccountID] = r.Balance
	}
	return m
}

func TestRecordBalancesAndDelete(t *testing.T) {
	useBook(t)

	out, err := runCLI(t, "record", "--date", "2024-01-05", "--value", "1000", "--history", "Salário", "--debit", "a2", "--credit", "r1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "recorded "))

	out, err = runCLI(t, "record", "--json", "--date", "2024-01-10", "--value", "200.00", "--history", "Aluguel", "--debit", "d2", "--credit", "a2")
	require.NoError(t, err)
	var rent struct {
		ID    string `json:"id"`
		Value string `json:"value"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rent))
	assert.Equal(t, "200.00", rent.Value)

	b := balancesByID(t)
	assert.Equal(t, "800.00", b["a2"])
	assert.Equal(t, "1000.00", b["r1"])
	assert.Equal(t, "200.00", b["d2"])

	out, err = runCLI(t, "ledger", "a2")
	require.NoError(t, err)
	assert.Contains(t, out, "1000.00")
	assert.Contains(t, out, "800.00")

	_, err = runCLI(t, "delete", rent.ID)
	require.NoError(t, err)
	b = balancesByID(t)
	assert.Equal(t, "1000.00", b["a2"])
	assert.Equal(t, "0.00", b["d2"])

	_, err = runCLI(t, "delete", rent.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRecord_Rejected(t *testing.T) {
	useBook(t)

	_, err := runCLI(t, "record", "--value", "10", "--history", "x", "--debit", "a2", "--credit", "nowhere")
	assert.ErrorIs(t, err, errs.ErrUnknownAccount)

	_, err = runCLI(t, "record", "--value", "10.001", "--history", "x", "--debit", "a2", "--credit", "r1")
	assert.ErrorIs(t, err, errs.ErrUnprocessable)

	_, err = runCLI(t, "record", "--value", "ten", "--history", "x", "--debit", "a2", "--credit", "r1")
	assert.ErrorContains(t, err, "--value")

	_, err = runCLI(t, "record", "--value", "10", "--debit", "a2", "--credit", "r1")
	assert.Error(t, err, "history is a required flag")

	out, err := runCLI(t, "transactions")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "\n"), "header only")
}

func TestReports(t *testing.T) {
	useBook(t)
	for _, args := range [][]string{
		{"--date", "2024-01-01", "--value", "5000", "--history", "Capital", "--debit", "a2", "--credit", "pl1"},
		{"--date", "2024-01-05", "--value", "3000", "--history", "Salário", "--debit", "a2", "--credit", "r1"},
		{"--date", "2024-01-06", "--value", "1200", "--history", "Aluguel", "--debit", "d2", "--credit", "a2"},
		{"--date", "2024-01-07", "--value", "450", "--history", "Mercado", "--debit", "d1", "--credit", "p1"},
	} {
		_, err := runCLI(t, append([]string{"record"}, args...)...)
		require.NoError(t, err)
	}

	out, err := runCLI(t, "balance-sheet", "--json")
	require.NoError(t, err)
	var bs struct {
		NetResult            string `json:"net_result"`
		LiabilitiesAndEquity string `json:"liabilities_and_equity"`
		NetWorth             string `json:"net_worth"`
		Balanced             bool   `json:"balanced"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &bs))
	assert.Equal(t, "1350.00", bs.NetResult)
	assert.Equal(t, "6800.00", bs.LiabilitiesAndEquity)
	assert.Equal(t, "6350.00", bs.NetWorth)
	assert.True(t, bs.Balanced)

	out, err = runCLI(t, "balance-sheet")
	require.NoError(t, err)
	assert.NotContains(t, out, "OUT OF BALANCE")

	out, err = runCLI(t, "income-statement", "--json")
	require.NoError(t, err)
	var is struct {
		Outcome string `json:"outcome"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &is))
	assert.Equal(t, "surplus", is.Outcome)

	out, err = runCLI(t, "dashboard", "--top", "1", "--json")
	require.NoError(t, err)
	var dash struct {
		TopExpenses []balanceRow `json:"top_expenses"`
		Recent      []struct {
			History string `json:"history"`
		} `json:"recent"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &dash))
	require.Len(t, dash.TopExpenses, 1)
	assert.Equal(t, "d2", dash.TopExpenses[0].AccountID)
	require.Len(t, dash.Recent, 4)
	assert.Equal(t, "Mercado", dash.Recent[0].History)

	out, err = runCLI(t, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "balanced")
}

func TestCheck_DanglingReference(t *testing.T) {
	path := useBook(t)
	csv := "id,date,value,history,debit_account_id,credit_account_id\n" +
		"x1,2024-01-01,75.00,legacy,a1,retired\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	out, err := runCLI(t, "check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of balance")
	assert.Contains(t, out, `"retired"`)
	assert.Contains(t, out, "out of balance by 75.00")

	out, err = runCLI(t, "balance-sheet")
	require.NoError(t, err)
	assert.Contains(t, out, "OUT OF BALANCE")
	assert.Equal(t, "75.00", balancesByID(t)["a1"])
}

func TestAccounts(t *testing.T) {
	useBook(t)

	out, err := runCLI(t, "accounts", "--type", "expense", "--json")
	require.NoError(t, err)
	var accounts []struct {
		ID         string `json:"id"`
		NormalSide string `json:"normal_side"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &accounts))
	assert.Len(t, accounts, 10)
	assert.Equal(t, "d1", accounts[0].ID)
	assert.Equal(t, "debit", accounts[0].NormalSide)

	_, err = runCLI(t, "accounts", "--type", "bogus")
	assert.Error(t, err)

	out, err = runCLI(t, "accounts")
	require.NoError(t, err)
	assert.Contains(t, out, "pl1")
}

func TestCustomChart(t *testing.T) {
	useBook(t)
	chartPath := filepath.Join(t.TempDir(), "chart.yaml")
	require.NoError(t, os.WriteFile(chartPath, []byte(`accounts:
  - {id: bank, name: Bank, type: asset}
  - {name: Salary, type: income}
`), 0o644))
	cfgPath := filepath.Join(t.TempDir(), "bookkeeper.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("chart_file: "+chartPath+"\n"), 0o644))

	_, err := runCLI(t, "--config", cfgPath, "record", "--value", "10", "--history", "x", "--debit", "bank", "--credit", "salary")
	require.NoError(t, err)

	out, err := runCLI(t, "--config", cfgPath, "balances")
	require.NoError(t, err)
	assert.Contains(t, out, "bank")
	assert.Contains(t, out, "10.00")
}

func TestMigrate_NeedsPostgres(t *testing.T) {
	useBook(t)
	_, err := runCLI(t, "migrate")
	assert.ErrorContains(t, err, "DATABASE_URL")
}
