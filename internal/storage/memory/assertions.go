package memory

import (
	"github.com/tinoosan/bookkeeper/internal/service/journal"
	"github.com/tinoosan/bookkeeper/internal/service/report"
)

// Compile-time interface assertions documenting which interfaces Store satisfies.
var (
	_ journal.Repo   = (*Store)(nil)
	_ journal.Writer = (*Store)(nil)
	_ report.Repo    = (*Store)(nil)
)
