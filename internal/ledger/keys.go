package ledger

import "fmt"

// Durable key layout. Scalars live under meta:, records under report:.
// Report keys zero-pad the id so ascending byte order equals id order.
var (
	keyOwner     = []byte("meta:owner")
	keyGreeting  = []byte("meta:greeting")
	keyReportSeq = []byte("meta:report_seq")

	reportPrefix = []byte("report:")
)

func reportKey(id int64) []byte {
	return []byte(fmt.Sprintf("report:%020d", id))
}
