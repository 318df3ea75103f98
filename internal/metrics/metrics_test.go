package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestGetReturnsSingleton(t *testing.T) {
	assert.Same(t, Get(), Get())
}

func TestDomainCountersIncrement(t *testing.T) {
	m := Get()
	before := testutil.ToFloat64(m.StatusChangesTotal.WithLabelValues("planned"))
	m.StatusChangesTotal.WithLabelValues("planned").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(m.StatusChangesTotal.WithLabelValues("planned")))
}
