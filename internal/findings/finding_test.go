package findings

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseFinding(t *testing.T, line string) Finding {
	t.Helper()
	var f Finding
	require.NoError(t, json.Unmarshal([]byte(line), &f))
	return f
}

func TestUnmarshalRejectsNonObjects(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"array", `[1,2,3]`},
		{"string", `"just a string"`},
		{"number", `42`},
		{"null", `null`},
		{"garbage", `{not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f Finding
			assert.Error(t, json.Unmarshal([]byte(tt.line), &f))
		})
	}
}

func TestUnmarshalToleratesOddFieldShapes(t *testing.T) {
	f := parseFinding(t, `{"DetectorName":12,"Verified":"yes","SourceMetadata":"oops"}`)

	assert.Empty(t, f.DetectorName)
	assert.False(t, f.Verified)

	_, ok := f.GithubLocation()
	assert.False(t, ok)
}

func TestGithubLocation(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		wantOK     bool
		wantFile   string
		wantLink   string
	}{
		{
			name:     "full location",
			line:     `{"Verified":true,"SourceMetadata":{"Data":{"Github":{"file":"config.env","link":"https://github.com/acme/x/blob/abc/config.env"}}}}`,
			wantOK:   true,
			wantFile: "config.env",
			wantLink: "https://github.com/acme/x/blob/abc/config.env",
		},
		{
			name:   "empty object location",
			line:   `{"Verified":true,"SourceMetadata":{"Data":{"Github":{}}}}`,
			wantOK: true,
		},
		{
			name:   "scalar github data",
			line:   `{"Verified":true,"SourceMetadata":{"Data":{"Github":"not-a-mapping"}}}`,
			wantOK: false,
		},
		{
			name:   "missing github data",
			line:   `{"Verified":true,"SourceMetadata":{"Data":{}}}`,
			wantOK: false,
		},
		{
			name:   "missing metadata",
			line:   `{"Verified":true}`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := parseFinding(t, tt.line)
			loc, ok := f.GithubLocation()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantFile, loc.File)
			assert.Equal(t, tt.wantLink, loc.Link)
		})
	}
}

func TestAlertable(t *testing.T) {
	tests := []struct {
		name string
		line string
		want bool
	}{
		{
			name: "verified with permalink",
			line: `{"DetectorName":"AWS","Verified":true,"SourceMetadata":{"Data":{"Github":{"file":"a","link":"https://example.com"}}}}`,
			want: true,
		},
		{
			name: "unverified",
			line: `{"DetectorName":"AWS","Verified":false,"SourceMetadata":{"Data":{"Github":{"file":"a","link":"https://example.com"}}}}`,
			want: false,
		},
		{
			name: "verified without permalink",
			line: `{"DetectorName":"AWS","Verified":true,"SourceMetadata":{"Data":{"Github":{"file":"a"}}}}`,
			want: false,
		},
		{
			name: "verified with scalar location",
			line: `{"DetectorName":"AWS","Verified":true,"SourceMetadata":{"Data":{"Github":"oops"}}}`,
			want: false,
		},
		{
			name: "no verified flag at all",
			line: `{"DetectorName":"AWS","SourceMetadata":{"Data":{"Github":{"link":"https://example.com"}}}}`,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := parseFinding(t, tt.line)
			assert.Equal(t, tt.want, f.Alertable())
		})
	}
}

func TestMarshalRoundTripsOriginalRecord(t *testing.T) {
	line := `{"DetectorName":"AWS","Verified":true,"ExtraField":{"kept":true},"SourceMetadata":{"Data":{"Github":{"link":"https://example.com"}}}}`
	f := parseFinding(t, line)

	out, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, line, string(out))
}
