package chart

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinoosan/bookkeeper/internal/errs"
	"github.com/tinoosan/bookkeeper/internal/ledger"
	"github.com/tinoosan/bookkeeper/internal/slug"
)

func TestSeed(t *testing.T) {
	accounts := Seed()
	require.Len(t, accounts, 26)

	counts := map[ledger.AccountType]int{}
	ids := map[string]bool{}
	for _, a := range accounts {
		counts[a.Type]++
		assert.True(t, slug.IsSlug(a.ID), a.ID)
		assert.False(t, ids[a.ID], "duplicate %s", a.ID)
		ids[a.ID] = true
	}
	assert.Equal(t, 5, counts[ledger.AccountTypeAsset])
	assert.Equal(t, 5, counts[ledger.AccountTypeLiability])
	assert.Equal(t, 5, counts[ledger.AccountTypeIncome])
	assert.Equal(t, 10, counts[ledger.AccountTypeExpense])
	assert.Equal(t, 1, counts[ledger.AccountTypeEquity])

	accounts[0].Name = "changed"
	assert.Equal(t, "Dinheiro em Espécie", Seed()[0].Name)
}

func TestTypes(t *testing.T) {
	types := Types()
	require.Len(t, types, 5)
	assert.Equal(t, TypeDef{Code: ledger.AccountTypeAsset, Label: "Ativo", NormalSide: ledger.SideDebit}, types[0])
	assert.Equal(t, ledger.SideCredit, types[1].NormalSide)
}

func TestLoad(t *testing.T) {
	src := `
accounts:
  - id: bank
    name: Bank Account
    type: asset
  - name: Salário
    type: Income
    description: monthly pay
`
	accounts, err := Load(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, ledger.Account{ID: "bank", Name: "Bank Account", Type: ledger.AccountTypeAsset}, accounts[0])
	assert.Equal(t, "salario", accounts[1].ID)
	assert.Equal(t, ledger.AccountTypeIncome, accounts[1].Type)
	assert.Equal(t, "monthly pay", accounts[1].Description)
}

func TestLoad_ReportsEveryProblem(t *testing.T) {
	src := `
accounts:
  - id: bank
    name: Bank
    type: asset
  - id: bank
    name: Other bank
    type: asset
  - id: x
    name: Too short
    type: asset
  - id: gift
    name: Gift
    type: windfall
  - id: blank
    type: asset
`
	_, err := Load(strings.NewReader(src))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrInvalid))
	for _, want := range []string{"already used", `invalid id "x"`, `unknown type "windfall"`, "name is required"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestLoad_Empty(t *testing.T) {
	_, err := Load(strings.NewReader("accounts: []\n"))
	assert.ErrorIs(t, err, errs.ErrInvalid)
}

func TestLoadFile(t *testing.T) {
	accounts, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, Seed(), accounts)

	path := filepath.Join(t.TempDir(), "chart.yaml")
	require.NoError(t, os.WriteFile(path, []byte("accounts:\n  - {id: cash, name: Cash, type: asset}\n"), 0o600))
	accounts, err = LoadFile(path)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "cash", accounts[0].ID)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
