package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchExactName(t *testing.T) {
	matched, ok := Match("Milk", []string{"Milk", "Bread"}, 0.5)
	assert.True(t, ok)
	assert.Equal(t, "Milk", matched)
}

func TestMatchSubstringCandidate(t *testing.T) {
	// "milk" 包含於 "milk 2%"，比例 4/7 超過門檻
	matched, ok := Match("milk", []string{"milk 2%"}, 0.5)
	assert.True(t, ok)
	assert.Equal(t, "milk 2%", matched)
}

func TestMatchRejectsLowConfidence(t *testing.T) {
	// "milk" 包含於 "whole milk"，但比例 4/10 不超過門檻
	_, ok := Match("milk", []string{"whole milk", "bread"}, 0.5)
	assert.False(t, ok)
}

func TestMatchNoContainment(t *testing.T) {
	_, ok := Match("milk", []string{"bread", "eggs"}, 0.5)
	assert.False(t, ok)
}

func TestMatchCaseInsensitive(t *testing.T) {
	matched, ok := Match("MILK", []string{"milk 2%"}, 0.5)
	assert.True(t, ok)
	assert.Equal(t, "milk 2%", matched)
}

func TestMatchThresholdIsExclusive(t *testing.T) {
	// 比例正好等於門檻時不算有信心的匹配
	_, ok := Match("ab", []string{"abcd"}, 0.5)
	assert.False(t, ok)

	matched, ok := Match("abc", []string{"abcd"}, 0.5)
	assert.True(t, ok)
	assert.Equal(t, "abcd", matched)
}

func TestMatchFirstCandidateWinsTies(t *testing.T) {
	// 兩個候選分數相同時保留先出現者
	matched, ok := Match("milk", []string{"milk x", "milk y"}, 0.5)
	assert.True(t, ok)
	assert.Equal(t, "milk x", matched)
}

func TestMatchPrefersHigherScore(t *testing.T) {
	matched, ok := Match("milk", []string{"milk 2% fat", "milk 2%"}, 0.5)
	assert.True(t, ok)
	assert.Equal(t, "milk 2%", matched)
}

func TestMatchInvalidThresholdUsesDefault(t *testing.T) {
	// 門檻不合法時用預設 0.5
	_, ok := Match("milk", []string{"whole milk"}, -1)
	assert.False(t, ok)

	matched, ok := Match("milk", []string{"milk 2%"}, 2.0)
	assert.True(t, ok)
	assert.Equal(t, "milk 2%", matched)
}

func TestMatchEmptyInputs(t *testing.T) {
	_, ok := Match("", []string{"milk"}, 0.5)
	assert.False(t, ok)

	_, ok = Match("milk", nil, 0.5)
	assert.False(t, ok)

	_, ok = Match("milk", []string{"", "  "}, 0.5)
	assert.False(t, ok)
}
