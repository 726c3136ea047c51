package bloom_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/fwojciec/doccache/bloom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_AddAndTest(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	// Term not yet added should return false
	assert.False(t, f.Test("bucket"))

	// Add term
	f.Add("bucket")

	// Now it should return true
	assert.True(t, f.Test("bucket"))

	// Different term should still return false
	assert.False(t, f.Test("eviction"))
}

func TestFilter_FromTerms(t *testing.T) {
	t.Parallel()

	f := bloom.FromTerms([]string{"alpha", "beta", "gamma"})

	assert.True(t, f.Test("alpha"))
	assert.True(t, f.Test("beta"))
	assert.True(t, f.Test("gamma"))
	assert.False(t, f.Test("delta"))
}

func TestFilter_TestAny(t *testing.T) {
	t.Parallel()

	f := bloom.FromTerms([]string{"cache", "index"})

	assert.True(t, f.TestAny([]string{"missing", "index"}))
	assert.False(t, f.TestAny([]string{"missing", "absent"}))
	assert.False(t, f.TestAny(nil))
}

func TestFilter_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	f := bloom.FromTerms([]string{"persisted", "terms"})

	data, err := json.Marshal(f)
	require.NoError(t, err)

	var restored bloom.Filter
	require.NoError(t, json.Unmarshal(data, &restored))

	assert.True(t, restored.Test("persisted"))
	assert.True(t, restored.Test("terms"))
	assert.False(t, restored.Test("other"))
}

func TestFilter_FalsePositiveRate(t *testing.T) {
	t.Parallel()

	const (
		numItems   = 10000
		fpRate     = 0.01
		testProbes = 10000
	)

	f := bloom.NewFilter(numItems, fpRate)

	for i := range numItems {
		f.Add(fmt.Sprintf("term-added-%d", i))
	}

	falsePositives := 0
	for i := range testProbes {
		if f.Test(fmt.Sprintf("term-not-added-%d", i)) {
			falsePositives++
		}
	}

	// Allow up to 2% to account for statistical variance
	actualRate := float64(falsePositives) / float64(testProbes)
	assert.Less(t, actualRate, 0.02, "false positive rate %f exceeds 2%%", actualRate)
}
