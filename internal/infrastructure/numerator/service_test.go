package numerator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenumerator "khaata/internal/core/numerator"
)

type fakeRow struct {
	val int64
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*int64) = r.val
	return nil
}

// fakeSequences simulates sys_sequences for the three statements the service issues.
type fakeSequences struct {
	mu    sync.Mutex
	vals  map[string]int64
	calls int
	err   error
}

func newFakeSequences() *fakeSequences {
	return &fakeSequences{vals: map[string]int64{}}
}

func (f *fakeSequences) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return fakeRow{err: f.err}
	}

	key := args[0].(string)
	switch sql {
	case nextSQL:
		f.vals[key]++
	case reserveSQL:
		f.vals[key] += args[1].(int64)
	case setSQL:
		f.vals[key] = args[1].(int64)
	}
	return fakeRow{val: f.vals[key]}
}

var period = time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)

func TestStrictNumbers(t *testing.T) {
	q := newFakeSequences()
	svc := New(q)
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig("PU")

	num, err := svc.GetNextNumber(ctx, cfg, nil, period)
	require.NoError(t, err)
	assert.Equal(t, "PU-2026-00001", num)

	num, err = svc.GetNextNumber(ctx, cfg, nil, period)
	require.NoError(t, err)
	assert.Equal(t, "PU-2026-00002", num)

	// Sequences are independent per prefix and per year.
	num, err = svc.GetNextNumber(ctx, corenumerator.DefaultConfig("SA"), nil, period)
	require.NoError(t, err)
	assert.Equal(t, "SA-2026-00001", num)

	num, err = svc.GetNextNumber(ctx, cfg, nil, period.AddDate(1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, "PU-2027-00001", num)
}

func TestCachedNumbersReserveRanges(t *testing.T) {
	q := newFakeSequences()
	svc := New(q)
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig("SA")
	opts := &corenumerator.Options{Strategy: corenumerator.StrategyCached, RangeSize: 10}

	num, err := svc.GetNextNumber(ctx, cfg, opts, period)
	require.NoError(t, err)
	assert.Equal(t, "SA-2026-00001", num)
	assert.Equal(t, int64(10), q.vals["SA_2026"])

	for i := 0; i < 9; i++ {
		_, err = svc.GetNextNumber(ctx, cfg, opts, period)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, q.calls)

	num, err = svc.GetNextNumber(ctx, cfg, opts, period)
	require.NoError(t, err)
	assert.Equal(t, "SA-2026-00011", num)
	assert.Equal(t, int64(20), q.vals["SA_2026"])
	assert.Equal(t, 2, q.calls)
}

func TestCachedNumbersAreUniqueUnderConcurrency(t *testing.T) {
	svc := New(newFakeSequences())
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig("SA")
	opts := &corenumerator.Options{Strategy: corenumerator.StrategyCached, RangeSize: 7}

	var (
		mu   sync.Mutex
		seen = map[string]bool{}
		wg   sync.WaitGroup
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num, err := svc.GetNextNumber(ctx, cfg, opts, period)
			assert.NoError(t, err)
			mu.Lock()
			seen[num] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 50)
}

func TestSetNextNumberDropsCachedRange(t *testing.T) {
	q := newFakeSequences()
	svc := New(q)
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig("PU")
	opts := &corenumerator.Options{Strategy: corenumerator.StrategyCached, RangeSize: 10}

	_, err := svc.GetNextNumber(ctx, cfg, opts, period)
	require.NoError(t, err)

	require.NoError(t, svc.SetNextNumber(ctx, cfg, period, 100))

	num, err := svc.GetNextNumber(ctx, cfg, opts, period)
	require.NoError(t, err)
	assert.Equal(t, "PU-2026-00101", num)
}

func TestStorageErrorIsReturned(t *testing.T) {
	q := newFakeSequences()
	q.err = errors.New("connection refused")
	svc := New(q)

	_, err := svc.GetNextNumber(context.Background(), corenumerator.DefaultConfig("PU"), nil, period)
	assert.ErrorIs(t, err, q.err)
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, int64(42), ParseNumber("SA-2026-00042"))
	assert.Equal(t, int64(7), ParseNumber("PU-00007"))
	assert.Equal(t, int64(-1), ParseNumber("garbage"))
}
