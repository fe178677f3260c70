package telemetry

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracing_DisabledWithoutEndpoint(t *testing.T) {
	tr, err := InitTracing("", "tokoshop-test")
	require.NoError(t, err)
	assert.NoError(t, tr.Shutdown(context.Background()))
}

func TestOrderPlacementFailures_CountsByReason(t *testing.T) {
	before := testutil.ToFloat64(OrderPlacementFailures.WithLabelValues("insufficient_stock"))
	OrderPlacementFailures.WithLabelValues("insufficient_stock").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(OrderPlacementFailures.WithLabelValues("insufficient_stock")))
}
