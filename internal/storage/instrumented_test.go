package storage

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoangchien/portfolio/internal/metrics"
)

func TestInstrumented_CountsSuccessfulSaves(t *testing.T) {
	l := newTestLocal(t)
	s := Instrumented(l)

	before := testutil.ToFloat64(metrics.UploadBytes.WithLabelValues("local"))

	loc, err := s.Save(context.Background(), []byte("12345"), "a.png")
	require.NoError(t, err)
	assert.Equal(t, "local", s.Name())

	assert.Equal(t, before+5, testutil.ToFloat64(metrics.UploadBytes.WithLabelValues("local")))
	assert.NoError(t, s.Delete(context.Background(), loc))
}
