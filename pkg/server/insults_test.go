package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandomInsultDrawsFromList(t *testing.T) {
	seen := make(map[string]bool)
	for range 200 {
		insult := RandomInsult()
		assert.Contains(t, insults, insult)
		seen[insult] = true
	}

	// 200 uniform draws over 10 entries hit more than one
	assert.Greater(t, len(seen), 1)
}
