package chart

import "github.com/tinoosan/bookkeeper/internal/ledger"

var seed = []ledger.Account{
	{ID: "a1", Name: "Dinheiro em Espécie", Type: ledger.AccountTypeAsset},
	{ID: "a2", Name: "Banco Conta Corrente", Type: ledger.AccountTypeAsset},
	{ID: "a3", Name: "Investimentos / Poupança", Type: ledger.AccountTypeAsset},
	{ID: "a4", Name: "Veículos", Type: ledger.AccountTypeAsset},
	{ID: "a5", Name: "Imóveis", Type: ledger.AccountTypeAsset},

	{ID: "p1", Name: "Cartão de Crédito", Type: ledger.AccountTypeLiability},
	{ID: "p2", Name: "Empréstimos Bancários", Type: ledger.AccountTypeLiability},
	{ID: "p3", Name: "Financiamento Imobiliário", Type: ledger.AccountTypeLiability},
	{ID: "p4", Name: "Financiamento de Veículo", Type: ledger.AccountTypeLiability},
	{ID: "p5", Name: "Dívidas com Terceiros", Type: ledger.AccountTypeLiability},

	{ID: "r1", Name: "Salário / Proventos", Type: ledger.AccountTypeIncome},
	{ID: "r2", Name: "Dividendos / Juros", Type: ledger.AccountTypeIncome},
	{ID: "r3", Name: "Aluguéis Recebidos", Type: ledger.AccountTypeIncome},
	{ID: "r4", Name: "Vendas de Ativos", Type: ledger.AccountTypeIncome},
	{ID: "r5", Name: "Outras Receitas", Type: ledger.AccountTypeIncome},

	{ID: "d1", Name: "Alimentação / Supermercado", Type: ledger.AccountTypeExpense},
	{ID: "d2", Name: "Moradia (Aluguel/Condomínio)", Type: ledger.AccountTypeExpense},
	{ID: "d3", Name: "Contas Fixas (Luz/Água/Internet)", Type: ledger.AccountTypeExpense},
	{ID: "d4", Name: "Transporte (Combustível/Uber)", Type: ledger.AccountTypeExpense},
	{ID: "d5", Name: "Saúde (Farmácia/Plano)", Type: ledger.AccountTypeExpense},
	{ID: "d6", Name: "Educação (Cursos/Mensalidade)", Type: ledger.AccountTypeExpense},
	{ID: "d7", Name: "Lazer e Viagens", Type: ledger.AccountTypeExpense},
	{ID: "d8", Name: "Impostos e Taxas", Type: ledger.AccountTypeExpense},
	{ID: "d9", Name: "Manutenção Geral", Type: ledger.AccountTypeExpense},
	{ID: "d10", Name: "Outras Despesas", Type: ledger.AccountTypeExpense},

	{ID: "pl1", Name: "Patrimônio Inicial / Capital", Type: ledger.AccountTypeEquity, Description: "Opening capital used to reconcile the balance sheet"},
}

// Seed returns a fresh copy of the default chart of accounts.
func Seed() []ledger.Account {
	out := make([]ledger.Account, len(seed))
	copy(out, seed)
	return out
}

// TypeDef describes an account type for clients building entry forms.
type TypeDef struct {
	Code       ledger.AccountType `json:"code"`
	Label      string             `json:"label"`
	NormalSide ledger.Side        `json:"normal_side"`
}

// Types lists every account type in statement order.
func Types() []TypeDef {
	out := make([]TypeDef, 0, len(ledger.AccountTypes))
	for _, t := range ledger.AccountTypes {
		out = append(out, TypeDef{Code: t, Label: t.Label(), NormalSide: t.NormalSide()})
	}
	return out
}
