package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strogmv/moderr/compiler"
	"github.com/strogmv/moderr/compiler/normalizer"
)

func TestObserve_Success(t *testing.T) {
	m := NewBuildMetrics()
	m.Observe(2, 2, []normalizer.Warning{
		{Code: normalizer.WarnUndocumentedType},
		{Code: normalizer.WarnUndocumentedType},
		{},
	}, 1500*time.Millisecond, nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.modules))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.files))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.warnings.WithLabelValues(normalizer.WarnUndocumentedType)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.warnings.WithLabelValues("unknown")))
	assert.Equal(t, 1.5, testutil.ToFloat64(m.duration))
	assert.Equal(t, 0, testutil.CollectAndCount(m.failures))
}

func TestObserve_FailureLabels(t *testing.T) {
	m := NewBuildMetrics()
	err := compiler.WrapContractError(compiler.StageParse, compiler.ErrCodeCUESchema, "validate x.cue", errors.New("bad"))
	m.Observe(0, 0, nil, time.Second, err)
	m.Observe(0, 0, nil, time.Second, errors.New("plain"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("PARSE", compiler.ErrCodeCUESchema)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("unknown", "unknown")))
}

func TestWriteTextfile(t *testing.T) {
	m := NewBuildMetrics()
	m.Observe(1, 1, nil, time.Millisecond, nil)

	path := filepath.Join(t.TempDir(), "moderr.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "moderr_files_generated_total 1")
	assert.Contains(t, string(data), "# HELP moderr_modules_total")
}
