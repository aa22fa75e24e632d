package remote

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValue_ZeroIsLoading(t *testing.T) {
	var v Value[int]
	assert.False(t, v.Loaded(), "zero value should be Loading")

	_, ok := v.Get()
	assert.False(t, ok)
}

func TestValue_Got(t *testing.T) {
	v := Got(42)
	assert.True(t, v.Loaded())

	got, ok := v.Get()
	assert.True(t, ok)
	assert.Equal(t, 42, got)
}

func TestValue_OrZero(t *testing.T) {
	assert.Equal(t, 0, Loading[int]().OrZero())
	assert.Equal(t, 7, Got(7).OrZero())
	assert.Nil(t, Loading[[]string]().OrZero())
}

func TestMap_PreservesLoading(t *testing.T) {
	doubled := Map(Loading[int](), func(n int) int { return n * 2 })
	assert.False(t, doubled.Loaded(), "mapping Loading should stay Loading")
}

func TestMap_AppliesToGot(t *testing.T) {
	v := Map(Got(21), func(n int) int { return n * 2 })

	got, ok := v.Get()
	assert.True(t, ok)
	assert.Equal(t, 42, got)
}

func TestValue_ReplacedWholesale(t *testing.T) {
	v := Got([]string{"a"})
	v = Got([]string{"b", "c"})

	got, ok := v.Get()
	assert.True(t, ok)
	assert.Equal(t, []string{"b", "c"}, got, "later arrivals replace, never merge")
}
