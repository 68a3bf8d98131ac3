package analytics

import (
	"context"
	"testing"
)

func TestDeadStock_RejectsOutOfRangeWindow(t *testing.T) {
	s := NewStore(nil) // validation fails before any query runs

	for _, days := range []int{0, -1, 3651} {
		if _, err := s.DeadStock(context.Background(), days, 1); err == nil {
			t.Errorf("DeadStock(days=%d) expected error", days)
		}
	}
}
