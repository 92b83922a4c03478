package report

// Op names a ledger operation. The host dispatches calls by op name and the
// journal records mutations under it.
type Op string

const (
	// OpOpen records ledger construction; its caller is the captured owner.
	OpOpen Op = "open"

	OpGetGreeting  Op = "get_greeting"
	OpSetGreeting  Op = "set_greeting"
	OpAddReport    Op = "add_report"
	OpGetReport    Op = "get_report"
	OpUpdateReport Op = "update_report"
	OpDeleteReport Op = "delete_report"
	OpListReports  Op = "list_reports"
)
