/* normalize_test.go
 * Contains unit tests for normalize.go
 */

package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "tft rising legends finals", NormalizeName("  TFT   Rising Legends\tFinals "))
	assert.Equal(t, "", NormalizeName("   "))
}

func TestNamesOverlap(t *testing.T) {
	assert.True(t, NamesOverlap("KOI", "Movistar KOI"))
	assert.True(t, NamesOverlap("movistar koi", "KOI"))
	assert.False(t, NamesOverlap("Fnatic", "KOI"))
	assert.False(t, NamesOverlap("", "KOI"))
}

func TestOrdinal(t *testing.T) {
	cases := map[int]string{1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 11: "11th", 12: "12th", 13: "13th", 21: "21st", 102: "102nd"}
	for n, want := range cases {
		assert.Equal(t, want, Ordinal(n))
	}
}

func TestFormatStanding(t *testing.T) {
	assert.Equal(t, "3rd / 10", FormatStanding(3, 10))
	assert.Equal(t, "1st / 10", FormatStanding(1, 10))
}
