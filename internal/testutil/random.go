package testutil

import (
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

var codeSeq atomic.Int64

func init() {
	codeSeq.Store(1000)
}

// RandomEmail returns an address no other test uses.
func RandomEmail() string {
	return "test-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12] + "@example.com"
}

// NextCode returns a record code unique within the test binary.
func NextCode() int {
	return int(codeSeq.Add(1))
}
