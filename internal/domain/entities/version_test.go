//go:build unit

package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/pbot/internal/domain/entities"
)

func TestParseVersion(t *testing.T) {
	t.Parallel()

	t.Run("should keep the original text when parsing", func(t *testing.T) {
		t.Parallel()
		// given
		raw := "1.2"

		// when
		v, err := entities.ParseVersion(raw)

		// then
		require.NoError(t, err)
		assert.Equal(t, "1.2", v.String())
		assert.True(t, v.Equal(entities.MustParseVersion("1.2.0")))
	})

	t.Run("should return error for a non-version string", func(t *testing.T) {
		t.Parallel()
		// given
		raw := "$(PackageVersion)"

		// when
		_, err := entities.ParseVersion(raw)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "$(PackageVersion)")
	})

	t.Run("should accept a fourth revision component", func(t *testing.T) {
		t.Parallel()
		// given
		raw := "3.7.400.1"

		// when
		v, err := entities.ParseVersion(raw)

		// then
		require.NoError(t, err)
		assert.Equal(t, uint64(3), v.Major())
		assert.Equal(t, uint64(7), v.Minor())
		assert.Equal(t, uint64(1), v.Revision())
	})

	t.Run("should reject five components", func(t *testing.T) {
		t.Parallel()
		// given
		raw := "1.2.3.4.5"

		// when
		_, err := entities.ParseVersion(raw)

		// then
		require.Error(t, err)
	})

	t.Run("should report prerelease versions", func(t *testing.T) {
		t.Parallel()
		// given
		stable := entities.MustParseVersion("8.0.0")
		pre := entities.MustParseVersion("8.0.0-rc.1")

		// when / then
		assert.False(t, stable.IsPrerelease())
		assert.True(t, pre.IsPrerelease())
		assert.True(t, pre.LessThan(stable))
	})

	t.Run("should report zero for an unparsed version", func(t *testing.T) {
		t.Parallel()
		// given
		var v entities.Version

		// when / then
		assert.True(t, v.IsZero())
		assert.False(t, v.IsPrerelease())
	})
}

func TestVersionCompare(t *testing.T) {
	t.Parallel()

	t.Run("should order by semantic precedence", func(t *testing.T) {
		t.Parallel()
		// given
		tests := []struct {
			a, b string
			want int
		}{
			{"1.0.0", "1.0.1", -1},
			{"1.10.0", "1.9.0", 1},
			{"2.0.0", "2.0.0", 0},
			{"2.0.0-beta", "2.0.0-alpha", 1},
			{"2.0.0+build.5", "2.0.0", 0},
		}

		for _, tt := range tests {
			// when
			got := entities.MustParseVersion(tt.a).Compare(entities.MustParseVersion(tt.b))

			// then
			assert.Equal(t, tt.want, got, "%s vs %s", tt.a, tt.b)
		}
	})

	t.Run("should order four-part versions by revision after the patch", func(t *testing.T) {
		t.Parallel()
		// given
		a := entities.MustParseVersion("3.7.300.1")
		b := entities.MustParseVersion("3.7.300.2")
		c := entities.MustParseVersion("3.7.301.0")

		// when / then
		assert.True(t, a.LessThan(b))
		assert.True(t, b.LessThan(c))
		assert.True(t, entities.MustParseVersion("3.7.300").LessThan(a))
		assert.True(t, entities.MustParseVersion("3.7.300.0").Equal(entities.MustParseVersion("3.7.300")))
		assert.Equal(t, uint64(2), b.Revision())
		assert.Equal(t, "3.7.300.2", b.String())
	})

	t.Run("should rank a revision prerelease above the stable patch", func(t *testing.T) {
		t.Parallel()
		// given
		pre := entities.MustParseVersion("1.0.0.1-beta")
		stable := entities.MustParseVersion("1.0.0")

		// when / then
		assert.True(t, pre.IsPrerelease())
		assert.True(t, stable.LessThan(pre))
		assert.True(t, pre.LessThan(entities.MustParseVersion("1.0.0.1")))
	})

	t.Run("should compare prerelease labels ignoring case", func(t *testing.T) {
		t.Parallel()
		// given
		upper := entities.MustParseVersion("1.0.0-Beta")
		lower := entities.MustParseVersion("1.0.0-beta")

		// when
		got := upper.Compare(lower)

		// then
		assert.Equal(t, 0, got)
		assert.True(t, upper.LessThan(entities.MustParseVersion("1.0.0-RC")))
	})

	t.Run("should return the highest version from MaxVersion", func(t *testing.T) {
		t.Parallel()
		// given
		a := entities.MustParseVersion("1.0.0")
		b := entities.MustParseVersion("3.0.0")
		c := entities.MustParseVersion("2.5.0")

		// when
		got := entities.MaxVersion(a, b, c)

		// then
		assert.Equal(t, "3.0.0", got.String())
	})

	t.Run("should expose major and minor components", func(t *testing.T) {
		t.Parallel()
		// given
		v := entities.MustParseVersion("7.3.12")

		// when / then
		assert.Equal(t, uint64(7), v.Major())
		assert.Equal(t, uint64(3), v.Minor())
	})
}
