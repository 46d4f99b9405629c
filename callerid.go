package rostcp

import (
	"strings"

	"github.com/google/uuid"
)

// AnonymousCallerID builds a unique graph name for a short-lived node,
// e.g. "/rostopic_7f8a0b1c2d3e4f50". Peers use the callerid header
// field purely as an identity label, so uniqueness is all that
// matters.
func AnonymousCallerID(prefix string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "/" + strings.Trim(prefix, "/") + "_" + id[:16]
}
