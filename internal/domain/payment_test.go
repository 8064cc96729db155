package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskCard(t *testing.T) {
	assert.Equal(t, "xxxx-xxxx-xxxx-4242", MaskCard("4242"))
}
