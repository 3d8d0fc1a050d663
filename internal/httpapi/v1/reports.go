package v1

import (
	"net/http"
)

// getBalances handles GET /v1/balances: every account of the chart, in chart order.
func (s *Server) getBalances(w http.ResponseWriter, r *http.Request) {
	b, err := s.reports.Balances(r.Context())
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	accounts := s.accounts.List()
	out := make([]accountBalanceResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, accountBalanceResponse{AccountID: a.ID, Name: a.Name, Type: string(a.Type), Balance: toAmount(b.Of(a.ID))})
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getBalanceSheet(w http.ResponseWriter, r *http.Request) {
	bs, err := s.reports.BalanceSheet(r.Context())
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	setOutOfBalance(!bs.Balanced)
	if !bs.Balanced {
		s.log.WarnContext(r.Context(), "balance sheet out of balance", "difference", bs.Difference.String())
	}
	toJSON(w, http.StatusOK, toBalanceSheetResponse(bs))
}

func (s *Server) getIncomeStatement(w http.ResponseWriter, r *http.Request) {
	is, err := s.reports.IncomeStatement(r.Context())
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toIncomeStatementResponse(is))
}

// getDashboard handles GET /v1/dashboard?top=
func (s *Server) getDashboard(w http.ResponseWriter, r *http.Request) {
	top, ok := r.Context().Value(ctxKeyTop).(int)
	if !ok {
		internalError(w, "validated query missing")
		return
	}
	sum, err := s.reports.Summary(r.Context(), top)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toDashboardResponse(sum))
}

// getIntegrity handles GET /v1/integrity.
func (s *Server) getIntegrity(w http.ResponseWriter, r *http.Request) {
	in, err := s.reports.Integrity(r.Context())
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	recordIntegrity(in)
	toJSON(w, http.StatusOK, toIntegrityResponse(in))
}

// observeIntegrity refreshes the integrity gauges after a write.
func (s *Server) observeIntegrity(r *http.Request) {
	in, err := s.reports.Integrity(r.Context())
	if err != nil {
		s.log.WarnContext(r.Context(), "integrity check failed", "err", err)
		return
	}
	recordIntegrity(in)
	if !in.OK() {
		s.log.WarnContext(r.Context(), "book out of balance",
			"difference", in.Difference.String(),
			"dangling", len(in.Dangling),
			"overflows", len(in.Overflows),
		)
	}
}
