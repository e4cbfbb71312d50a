package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/auditcase/internal/encoding"
)

func TestDecode(t *testing.T) {
	type testCase struct {
		name    string
		input   []byte
		want    string
		charset encoding.Charset
	}

	tests := []testCase{
		{
			name:    "utf8 passthrough",
			input:   []byte("vendor,description\nCafé Supply,Espresso beans\n"),
			want:    "vendor,description\nCafé Supply,Espresso beans\n",
			charset: encoding.CharsetUTF8,
		},
		{
			name:    "utf8 bom stripped",
			input:   append([]byte{0xEF, 0xBB, 0xBF}, []byte("vendor\nAcme\n")...),
			want:    "vendor\nAcme\n",
			charset: encoding.CharsetUTF8,
		},
		{
			name:    "utf16 little endian",
			input:   []byte{0xFF, 0xFE, 'o', 0x00, 'k', 0x00, '\n', 0x00},
			want:    "ok\n",
			charset: encoding.CharsetUTF16LE,
		},
		{
			name:    "utf16 big endian",
			input:   []byte{0xFE, 0xFF, 0x00, 'o', 0x00, 'k', 0x00, '\n'},
			want:    "ok\n",
			charset: encoding.CharsetUTF16BE,
		},
		{
			name:    "windows-1252 fallback",
			input:   []byte{'C', 'a', 'f', 0xE9, ';', '1', '\n'},
			want:    "Café;1\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dec, err := encoding.Decode(bytes.NewReader(tc.input))
			require.NoError(t, err)

			got, err := io.ReadAll(dec)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(got))
			if tc.charset != "" {
				assert.Equal(t, tc.charset, dec.Charset)
			}
		})
	}
}

func TestDecode_Empty(t *testing.T) {
	dec, err := encoding.Decode(bytes.NewReader(nil))
	require.NoError(t, err)

	got, err := io.ReadAll(dec)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSniffDelimiter(t *testing.T) {
	type testCase struct {
		name   string
		sample string
		want   rune
	}

	tests := []testCase{
		{name: "comma", sample: "vendor,category,description\n", want: ','},
		{name: "semicolon", sample: "vendor;category;description\nA,B;c;d\n", want: ';'},
		{name: "tab", sample: "vendor\tcategory\tdescription", want: '\t'},
		{name: "quoted commas ignored", sample: "\"a,b,c\"|x|y\n", want: '|'},
		{name: "no delimiter defaults to comma", sample: "vendor\n", want: ','},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, encoding.SniffDelimiter([]byte(tc.sample)))
		})
	}
}
