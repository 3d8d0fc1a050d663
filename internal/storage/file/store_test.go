package file

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/govalues/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinoosan/bookkeeper/internal/ledger"
)

func tx(id, value, history string) ledger.Transaction {
	return ledger.Transaction{
		ID:              id,
		Date:            time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
		Value:           money.MustParseAmount(ledger.Currency, value),
		History:         history,
		DebitAccountID:  "a2",
		CreditAccountID: "r1",
	}
}

func TestCSV_RoundTrip(t *testing.T) {
	in := []ledger.Transaction{
		tx("0190a", "1000.00", "Salário, março"),
		tx("0190b", "0.10", `quoted "history"`),
		tx("0190c", "12345678.90", "multi\nline"),
	}
	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, in))
	assert.True(t, strings.HasPrefix(buf.String(), Header+"\n"))

	out, err := ReadTransactions(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestReadTransactions_CollectsRowErrors(t *testing.T) {
	src := Header + "\n" +
		"1,2024-01-01,10.00,ok,a1,r1\n" +
		"2,2024-13-01,10.00,bad date,a1,r1\n" +
		"3,2024-01-01,abc,bad value,a1,r1\n" +
		"4,2024-01-01,1.005,too precise,a1,r1\n" +
		"5,2024-01-01,-5.00,negative,a1,r1\n" +
		"6,2024-01-01,1000000000000.00,above maximum,a1,r1\n" +
		"1,2024-01-01,10.00,dup,a1,r1\n"

	_, err := ReadTransactions(strings.NewReader(src))
	require.Error(t, err)
	for _, want := range []string{"row 3", "row 4", "row 5", "row 6", "row 7", "row 8"} {
		assert.Contains(t, err.Error(), want)
	}
	assert.NotContains(t, err.Error(), "row 2:")
}

func TestReadTransactions_ToleratesUnknownAccounts(t *testing.T) {
	src := Header + "\n1,2024-01-01,10,legacy,a1,nonexistent\n"
	txs, err := ReadTransactions(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "nonexistent", txs[0].CreditAccountID)
	assert.Equal(t, "10.00", txs[0].Value.Decimal().String())
}

func TestReadTransactions_BadHeader(t *testing.T) {
	_, err := ReadTransactions(strings.NewReader("a,b,c,d,e,f\n"))
	assert.Error(t, err)
}

func TestStore_PersistsEveryMutation(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.csv")

	s, err := Open(path)
	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Header+"\n", string(raw))

	require.NoError(t, s.AppendTransactions(ctx, tx("1", "10.00", "first")))
	require.NoError(t, s.AppendTransactions(ctx, tx("2", "20.00", "second")))
	require.NoError(t, s.DeleteTransaction(ctx, "1"))

	reopened, err := Open(path)
	require.NoError(t, err)
	snap, err := reopened.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Transactions, 1)
	assert.Equal(t, tx("2", "20.00", "second"), snap.Transactions[0])

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestStore_KeepsMostRecentFirstOnDisk(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.csv")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.AppendTransactions(ctx, tx("1", "1.00", "a"), tx("2", "2.00", "b")))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "2,"))
	assert.True(t, strings.HasPrefix(lines[2], "1,"))
	assert.Equal(t, path, s.Path())
}

func TestOpen_RejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	require.NoError(t, os.WriteFile(path, []byte(Header+"\n1,nope,1.00,x,a1,r1\n"), 0o600))
	_, err := Open(path)
	assert.Error(t, err)
}

func TestStore_ReloadsChangesFromAnotherProcess(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.csv")
	server, err := Open(path)
	require.NoError(t, err)
	cli, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, cli.AppendTransactions(ctx, tx("1", "10.00", "from cli")))

	snap, err := server.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Transactions, 1)
	got, err := server.GetTransaction(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "from cli", got.History)

	require.NoError(t, server.AppendTransactions(ctx, tx("2", "20.00", "from server")))
	require.NoError(t, cli.DeleteTransaction(ctx, "1"))

	reopened, err := Open(path)
	require.NoError(t, err)
	snap, err = reopened.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Transactions, 1, "no write dropped the other's change")
	assert.Equal(t, "2", snap.Transactions[0].ID)
	assert.NoError(t, reopened.Ready(ctx))
}

func TestStore_SnapshotVersionMovesOnReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.csv")
	a, err := Open(path)
	require.NoError(t, err)
	before, err := a.Snapshot(ctx)
	require.NoError(t, err)

	b, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, b.AppendTransactions(ctx, tx("1", "1.00", "x")))

	after, err := a.Snapshot(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, before.Version, after.Version)
	unchanged, err := a.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, after.Version, unchanged.Version)
}
