package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/DrSkyle/texgraph/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunBench(t *testing.T) {
	a := newTestApp(t, false)
	cfg := config.BenchConfig{Documents: 3, Transactions: 60, OpsPerTransaction: 5, UndoRatio: 0.2}

	res, err := runBench(context.Background(), a, cfg)
	require.NoError(t, err)
	require.Len(t, res.docs, 3)
	for _, d := range res.docs {
		assert.Zero(t, d.failed)
		assert.LessOrEqual(t, d.applied+d.undone, cfg.Transactions)
		assert.Positive(t, d.applied)
	}

	var out bytes.Buffer
	res.print(&out)
	assert.Contains(t, out.String(), "transactions in")
}

func TestRunBenchCancelled(t *testing.T) {
	a := newTestApp(t, true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runBench(ctx, a, config.BenchConfig{Documents: 2, Transactions: 10, OpsPerTransaction: 1})
	assert.ErrorIs(t, err, context.Canceled)
}
