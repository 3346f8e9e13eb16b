package benchmark

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/yndnr/meshnode/internal/core/message"
)

// StateSizes are the value counts benchmarks run at.
var StateSizes = []int{100, 1000, 10000}

func roster(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("n%d", i+1)
	}
	return ids
}

func initFor(id string, ids []string) message.Init {
	return message.Init{NodeID: id, NodeIDs: ids}
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
}

// runWithStateSizes runs a benchmark function at each state size.
func runWithStateSizes(b *testing.B, benchFn func(b *testing.B, size int)) {
	for _, size := range StateSizes {
		b.Run(fmt.Sprintf("values_%d", size), func(b *testing.B) {
			benchFn(b, size)
		})
	}
}
