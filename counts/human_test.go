package counts_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gitjfs/gitjfs/counts"
)

type humanTest struct {
	n            uint64
	number, unit string
}

func TestMetric(t *testing.T) {
	assert := assert.New(t)

	for _, ht := range []humanTest{
		{0, "0", "cd"},
		{1, "1", "cd"},
		{999, "999", "cd"},
		{1000, "1.00", "kcd"},
		{1094, "1.09", "kcd"},
		{9990, "9.99", "kcd"},
		{10000, "10.0", "kcd"},
		{100000, "100", "kcd"},
		{1000000, "1.00", "Mcd"},
		{1000000000, "1.00", "Gcd"},
		{1000000000000, "1.00", "Tcd"},
		{1000000000000000, "1.00", "Pcd"},
	} {
		number, unit := counts.Metric.Format(ht.n, "cd")
		assert.Equalf(ht.number, number, "Number for %d in metric", ht.n)
		assert.Equalf(ht.unit, unit, "Unit for %d in metric", ht.n)

		c := counts.NewCount64(ht.n)
		number, unit = c.Human(counts.Metric, "cd")
		assert.Equalf(ht.number, number, "Number for Count64(%d) in metric", ht.n)
		assert.Equalf(ht.unit, unit, "Unit for Count64(%d) in metric", ht.n)
	}
}

func TestBinary(t *testing.T) {
	assert := assert.New(t)

	for _, ht := range []humanTest{
		{0, "0", "B"},
		{1, "1", "B"},
		{1023, "1023", "B"},
		{1024, "1.00", "KiB"},
		{1234, "1.21", "KiB"},
		{1048576, "1.00", "MiB"},
		{1073741824, "1.00", "GiB"},
		{1099511627776, "1.00", "TiB"},
	} {
		number, unit := counts.Binary.Format(ht.n, "B")
		assert.Equalf(ht.number, number, "Number for %d in binary", ht.n)
		assert.Equalf(ht.unit, unit, "Unit for %d in binary", ht.n)

		c := counts.NewCount64(ht.n)
		number, unit = c.Human(counts.Binary, "B")
		assert.Equalf(ht.number, number, "Number for Count64(%d) in binary", ht.n)
		assert.Equalf(ht.unit, unit, "Unit for Count64(%d) in binary", ht.n)
	}
}

func TestLimits32(t *testing.T) {
	assert := assert.New(t)

	c := counts.NewCount32(math.MaxUint32)
	number, unit := c.Human(counts.Metric, "cd")
	assert.Equal("∞", number)
	assert.Equal("cd", unit)
}

func TestLimits64(t *testing.T) {
	assert := assert.New(t)

	c := counts.NewCount64(math.MaxUint64)
	number, unit := c.Human(counts.Metric, "B")
	assert.Equal("∞", number)
	assert.Equal("B", unit)
}
