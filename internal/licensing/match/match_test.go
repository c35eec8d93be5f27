package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNames(t *testing.T) {
	tests := []struct {
		name     string
		claimed  string
		official string
		want     bool
	}{
		{"exact", "Carly Smith", "Carly Smith", true},
		{"case and punctuation", "carly  SMITH.", "Carly Smith", true},
		{"middle name in official", "Carly Smith", "Carly Miller Smith", true},
		{"substring of official", "Miller Smith", "Carly Miller Smith", true},
		{"initial ignored", "C. Smith", "Carly Smith", true},
		{"different first name", "John Doe", "Jane Doe", false},
		{"extra claimed token", "Carly Ann Smith", "Carly Smith", false},
		{"empty claim", "", "Carly Smith", false},
		{"punctuation-only claim", "..", "Carly Smith", false},
		{"initials only", "C S", "Carly Smith", false},
		{"dotted initials only", "J. K.", "John King", false},
		{"empty official", "Carly", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Names(tt.claimed, tt.official))
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "obrien jr", Normalize("  O'Brien Jr. "))
	assert.Equal(t, "jos garca", Normalize("José García"))
	assert.Equal(t, "", Normalize("!!!"))
}

func TestAny(t *testing.T) {
	assert.True(t, Any("Carly Smith", "Carla Jones", "Carly Smith"))
	assert.False(t, Any("Carly Smith", "", "Carla Jones"))
	assert.False(t, Any("Carly Smith"))
}
