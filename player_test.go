package solo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateName(t *testing.T) {
	testCases := []struct {
		name  string
		want  string
		valid bool
	}{
		{name: "Ada", want: "Ada", valid: true},
		{name: "  Ada Lovelace ", want: "Ada Lovelace", valid: true},
		{name: strings.Repeat("é", 20), want: strings.Repeat("é", 20), valid: true},
		{name: strings.Repeat("a", 21)},
		{name: ""},
		{name: " \t "},
	}

	for _, testCase := range testCases {
		got, err := ValidateName(testCase.name)
		if !testCase.valid {
			assert.Error(t, err, testCase.name)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, testCase.want, got)
	}
}

func TestNewPlayer(t *testing.T) {
	a, b := NewPlayer(), NewPlayer()

	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, a.Stats, len(AllGameTypes()))
	assert.True(t, a.valid())
}

func TestPlayerHasAchievement(t *testing.T) {
	p := NewPlayer()
	p.Achievements = []string{"first_win"}

	assert.True(t, p.HasAchievement("first_win"))
	assert.False(t, p.HasAchievement("streak_5"))
}
