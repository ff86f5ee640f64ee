package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatternSetNoPatternsIncludesEverything(t *testing.T) {
	p := patternSet{}
	assert.True(t, p.include("anything"))
}

func TestPatternSetCopyMatchingIncludesOnlyMatches(t *testing.T) {
	p := patternSet{patterns: []string{"*.txt"}, copyMatchingFiles: true}
	assert.True(t, p.include("a.txt"))
	assert.False(t, p.include("a.bin"))
}

func TestPatternSetExcludeMatchingInvertsPolarity(t *testing.T) {
	p := patternSet{patterns: []string{"*.txt"}, copyMatchingFiles: false}
	assert.False(t, p.include("a.txt"))
	assert.True(t, p.include("a.bin"))
}

func TestPatternSetAnyMatchAcrossMultiplePatterns(t *testing.T) {
	p := patternSet{patterns: []string{"*.a", "*.b"}, copyMatchingFiles: true}
	assert.True(t, p.include("x.b"))
	assert.False(t, p.include("x.c"))
}
