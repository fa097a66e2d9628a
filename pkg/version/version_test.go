package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Version
		wantErr  error
	}{
		{
			name:     "full version",
			input:    "1.2.3",
			expected: Version{Major: 1, Minor: 2, Patch: 3},
		},
		{
			name:     "v prefix",
			input:    "v2.0.1",
			expected: Version{Major: 2, Minor: 0, Patch: 1},
		},
		{
			name:     "major only",
			input:    "3",
			expected: Version{Major: 3},
		},
		{
			name:     "major minor",
			input:    "1.4",
			expected: Version{Major: 1, Minor: 4},
		},
		{
			name:     "release candidate suffix",
			input:    "1.2.3-rc1",
			expected: Version{Major: 1, Minor: 2, Patch: 3, Extras: "-rc1"},
		},
		{
			name:     "build metadata with dots",
			input:    "1.2.3+nightly.3",
			expected: Version{Major: 1, Minor: 2, Patch: 3, Extras: "+nightly.3"},
		},
		{
			name:    "empty",
			input:   "",
			wantErr: ErrEmptyVersion,
		},
		{
			name:    "too many components",
			input:   "1.2.3.4",
			wantErr: ErrTooManyComponents,
		},
		{
			name:    "non numeric",
			input:   "1.x.3",
			wantErr: ErrNonNumeric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected int
	}{
		{name: "equal", a: "1.2.3", b: "1.2.3", expected: 0},
		{name: "major newer", a: "2.0.0", b: "1.9.9", expected: 1},
		{name: "minor older", a: "1.1.9", b: "1.2.0", expected: -1},
		{name: "patch newer", a: "1.2.4", b: "1.2.3", expected: 1},
		{name: "extras ignored", a: "1.2.3-rc1", b: "1.2.3", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MustParse(tt.a).Compare(MustParse(tt.b)))
		})
	}
}

func TestAtLeast(t *testing.T) {
	assert.True(t, MustParse("1.2.3").AtLeast(MustParse("1.2.3")))
	assert.True(t, MustParse("1.3.0").AtLeast(MustParse("1.2.9")))
	assert.False(t, MustParse("0.9.0").AtLeast(MustParse("1.0.0")))
}

func TestMustParsePanics(t *testing.T) {
	assert.Panics(t, func() { MustParse("not-a-version") })
}

func TestIsZero(t *testing.T) {
	assert.True(t, Version{}.IsZero())
	assert.False(t, MustParse("0.0.1").IsZero())
}

func FuzzParse(f *testing.F) {
	for _, seed := range []string{"1.2.3", "v1.0", "2", "1.2.3-rc1", "1.2.3+meta.1", "", "..", "-1"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, s string) {
		v, err := Parse(s)
		if err != nil {
			return
		}
		// A successfully parsed version must survive a reparse of its
		// canonical string form.
		back, err := Parse(v.String())
		if err != nil {
			t.Fatalf("reparse of %q failed: %v", v.String(), err)
		}
		if back.Compare(v) != 0 {
			t.Fatalf("reparse of %q changed ordering", v.String())
		}
	})
}
