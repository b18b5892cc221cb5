package record

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAddress_SpellingsConverge(t *testing.T) {
	spellings := []string{
		"0xabc",
		"0xABC",
		"abc",
		"0x0000abc",
		"  0XAbC  ",
		"0x" + strings.Repeat("0", 61) + "abc",
	}

	want, err := NormalizeAddress(spellings[0])
	require.NoError(t, err)

	for _, s := range spellings[1:] {
		t.Run(s, func(t *testing.T) {
			got, err := NormalizeAddress(s)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestNormalizeAddress_Shape(t *testing.T) {
	a, err := NormalizeAddress("0x1234abcdef")
	require.NoError(t, err)

	s := string(a)
	assert.Len(t, s, 66)
	assert.True(t, strings.HasPrefix(s, "0x"))
	assert.Equal(t, "0x"+strings.Repeat("0", 54)+"1234abcdef", strings.ToLower(s),
		"checksum only changes letter case")
}

func TestNormalizeAddress_Idempotent(t *testing.T) {
	inputs := []string{"0x1", "0xdeadbeef", "0x049d36570d4e46f48e99674bd3fcc84644ddd6b96f7c741b1562b82f9e004dc7"}
	for _, in := range inputs {
		once := MustAddress(in)
		twice := MustAddress(string(once))
		assert.Equal(t, once, twice, in)
	}
}

func TestNormalizeAddress_DistinctValuesStayDistinct(t *testing.T) {
	a := MustAddress("0xabc")
	b := MustAddress("0xabd")
	assert.NotEqual(t, strings.ToLower(string(a)), strings.ToLower(string(b)))
}

func TestNormalizeAddress_Invalid(t *testing.T) {
	cases := map[string]string{
		"empty":       "",
		"prefix only": "0x",
		"non hex":     "0xabcg",
		"too long":    "0x1" + strings.Repeat("0", 64),
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NormalizeAddress(in)
			assert.Error(t, err)
		})
	}
}

func TestNormalizeAddress_OverPaddedAccepted(t *testing.T) {
	a, err := NormalizeAddress("0x" + strings.Repeat("0", 70) + "ff")
	require.NoError(t, err)
	assert.Equal(t, MustAddress("0xff"), a)
}

func TestAddress_Short(t *testing.T) {
	a := MustAddress("0xabc")
	short := a.Short()
	assert.True(t, strings.HasPrefix(short, "0x0000"))
	assert.True(t, strings.HasSuffix(strings.ToLower(short), "0abc"))
	assert.Equal(t, "0x1", Address("0x1").Short())
}

func TestMustAddress_Panics(t *testing.T) {
	assert.Panics(t, func() { MustAddress("zz") })
}
