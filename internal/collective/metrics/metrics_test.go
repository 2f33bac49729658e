package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestIncrementCreatedApprovalLabels(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.IncrementCreated("none", false)
	m.IncrementCreated("explicit", false)
	m.IncrementCreated("automated", true)
	m.IncrementCreated("automated", true)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CollectivesCreated.WithLabelValues("none", "none")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CollectivesCreated.WithLabelValues("explicit", "pending")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CollectivesCreated.WithLabelValues("automated", "approved")))
}

func TestVerificationFailureDefaultsCategory(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())
	m.IncrementVerificationFailure("")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.VerificationFailures.WithLabelValues("unknown")))
}
