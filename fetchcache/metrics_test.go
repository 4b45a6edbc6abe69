package fetchcache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_SafeWhenNilOrUnregistered(t *testing.T) {
	ctx := context.Background()

	var nilMetrics *Metrics
	assert.NotPanics(t, func() {
		nilMetrics.RecordHit(ctx, "u-1")
		nilMetrics.RecordMiss(ctx, "u-1")
		nilMetrics.RecordFetch(ctx, "u-1")
		nilMetrics.RecordInvalidation(ctx, "u-1")
	})

	m := NewMetrics()
	assert.False(t, m.IsRegistered())
	assert.NotPanics(t, func() {
		m.RecordHit(ctx, "u-1")
	})
}
