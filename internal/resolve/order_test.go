package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextPriority_NoDesired(t *testing.T) {
	assert.Equal(t, 1, NextPriority(nil, nil, 0))
	assert.Equal(t, 3, NextPriority([]int{1, 2}, nil, 0))
	assert.Equal(t, 6, NextPriority([]int{1, 2}, []int{5}, 0))
	assert.Equal(t, 1, NextPriority(nil, nil, -4), "non-positive desired means unset")
}

func TestNextPriority_DesiredFree(t *testing.T) {
	assert.Equal(t, 5, NextPriority([]int{1, 2}, nil, 5))
}

func TestNextPriority_CollisionIncrementsNeverDecrements(t *testing.T) {
	assert.Equal(t, 3, NextPriority([]int{1, 2}, nil, 1))
	assert.Equal(t, 4, NextPriority([]int{1, 2}, []int{3}, 2), "in-pass assignments count as taken")
	assert.Equal(t, 2, NextPriority([]int{1, 3}, nil, 2), "gaps between existing priorities are usable")
}

func TestNextPriority_Deterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		assert.Equal(t, 4, NextPriority([]int{2, 3}, []int{1}, 1))
	}
}

func TestNextPosition(t *testing.T) {
	assert.Equal(t, 1, NextPosition(nil, nil))
	assert.Equal(t, 4, NextPosition([]int{1, 3}, nil), "gaps are not filled")
	assert.Equal(t, 6, NextPosition([]int{1, 3}, []int{5}))
}
