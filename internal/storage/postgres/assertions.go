package postgres

import (
	"github.com/tinoosan/bookkeeper/internal/service/journal"
	"github.com/tinoosan/bookkeeper/internal/service/report"
)

var (
	_ journal.Repo   = (*Store)(nil)
	_ journal.Writer = (*Store)(nil)
	_ report.Repo    = (*Store)(nil)
)
