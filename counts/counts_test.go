package counts_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gitjfs/gitjfs/counts"
)

func TestCount32(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(uint64(0), counts.NewCount32(0).ToUint64())
	assert.Equal(uint64(1000), counts.NewCount32(1000).ToUint64())
	assert.Equal(uint64(math.MaxUint32), counts.NewCount32(math.MaxUint32+1).ToUint64(),
		"NewCount32 caps at MaxUint32")
}

func TestCount64(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(uint64(0), counts.NewCount64(0).ToUint64())
	assert.Equal(uint64(math.MaxUint64), counts.NewCount64(math.MaxUint64).ToUint64())
}
