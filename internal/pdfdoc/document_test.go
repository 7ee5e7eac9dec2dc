// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfdoc

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdfa-convert/internal/pdftest"
)

func openFixture(t *testing.T, s pdftest.Fixture) *Document {
	t.Helper()
	doc, err := Open(pdftest.Build(s))
	require.NoError(t, err)
	t.Cleanup(func() { doc.Close() })
	return doc
}

// roundTrip serializes doc and parses the result again.
func roundTrip(t *testing.T, doc *Document) *Document {
	t.Helper()
	out, err := doc.Bytes()
	require.NoError(t, err)
	require.NotEmpty(t, out)
	again, err := Open(out)
	require.NoError(t, err)
	t.Cleanup(func() { again.Close() })
	return again
}

func TestOpenRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "nil", data: nil},
		{name: "empty", data: []byte{}},
		{name: "not a PDF", data: []byte("this is plain text, not a PDF file")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Open(tt.data)
			assert.Error(t, err)
			assert.Nil(t, doc)
		})
	}
}

func TestOpenDoesNotModifyInput(t *testing.T) {
	data := pdftest.Minimal()
	orig := append([]byte(nil), data...)

	doc, err := Open(data)
	require.NoError(t, err)
	defer doc.Close()
	require.NoError(t, doc.SetVersion("1.7"))
	_, err = doc.Bytes()
	require.NoError(t, err)

	assert.Equal(t, orig, data)
}

func TestInfo(t *testing.T) {
	doc := openFixture(t, pdftest.Fixture{Info: map[string]string{
		"Author":   "Alice",
		"Title":    "Doc",
		"Subject":  "Testing",
		"Keywords": "a, b",
		"Producer": "pdftest",
		"Creator":  "Some Editor",
	}})

	want := Info{
		Producer: "pdftest",
		Author:   "Alice",
		Title:    "Doc",
		Subject:  "Testing",
		Keywords: "a, b",
	}
	if diff := cmp.Diff(want, doc.Info()); diff != "" {
		t.Errorf("Info mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, doc.HasExtraInfo())
}

func TestInfoMissingDictionary(t *testing.T) {
	doc := openFixture(t, pdftest.Fixture{})
	assert.True(t, doc.Info().IsZero())
	assert.False(t, doc.HasExtraInfo())

	kept, err := doc.NormalizeInfo()
	require.NoError(t, err)
	assert.True(t, kept.IsZero())
}

func TestNormalizeInfoDropsOtherFields(t *testing.T) {
	doc := openFixture(t, pdftest.Fixture{Info: map[string]string{
		"Author":  "Alice",
		"Title":   "Doc",
		"Creator": "Some Editor",
		"Company": "ACME",
	}})

	kept, err := doc.NormalizeInfo()
	require.NoError(t, err)
	assert.Equal(t, Info{Author: "Alice", Title: "Doc"}, kept)

	again := roundTrip(t, doc)
	assert.Equal(t, Info{Author: "Alice", Title: "Doc"}, again.Info())
	assert.False(t, again.HasExtraInfo())
}

func TestSetMetadataReplacesPacket(t *testing.T) {
	doc := openFixture(t, pdftest.Fixture{XMP: "<old-packet/>"})

	old, err := doc.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "<old-packet/>", string(old))

	require.NoError(t, doc.SetMetadata([]byte("<new-packet/>")))

	again := roundTrip(t, doc)
	got, err := again.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "<new-packet/>", string(got))
}

func TestMetadataAbsent(t *testing.T) {
	doc := openFixture(t, pdftest.Fixture{})
	got, err := doc.Metadata()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestOutputIntents(t *testing.T) {
	doc := openFixture(t, pdftest.Fixture{OutputIntents: 1})
	intents, err := doc.OutputIntents()
	require.NoError(t, err)
	require.Len(t, intents, 1)
	assert.Equal(t, "GTS_PDFA1", intents[0].S)
	assert.Equal(t, "Existing 1", intents[0].OutputConditionIdentifier)
	assert.Equal(t, 3, intents[0].Components)
}

func TestAddOutputIntent(t *testing.T) {
	doc := openFixture(t, pdftest.Fixture{})
	intents, err := doc.OutputIntents()
	require.NoError(t, err)
	require.Empty(t, intents)

	oi := OutputIntent{
		S:                         "GTS_PDFA1",
		OutputCondition:           "sRGB IEC61966-2.1",
		OutputConditionIdentifier: "sRGB IEC61966-2.1",
		RegistryName:              "http://www.color.org",
		Info:                      "sRGB IEC61966-2.1",
	}
	require.NoError(t, doc.AddOutputIntent(oi, []byte("profile bytes"), 3))

	again := roundTrip(t, doc)
	intents, err = again.OutputIntents()
	require.NoError(t, err)
	require.Len(t, intents, 1)
	want := oi
	want.Components = 3
	if diff := cmp.Diff(want, intents[0]); diff != "" {
		t.Errorf("output intent mismatch (-want +got):\n%s", diff)
	}
}

func TestAddOutputIntentRequiresProfile(t *testing.T) {
	doc := openFixture(t, pdftest.Fixture{})
	err := doc.AddOutputIntent(OutputIntent{S: "GTS_PDFA1"}, nil, 3)
	assert.Error(t, err)
}

func TestSetVersion(t *testing.T) {
	tests := []struct {
		version string
		wantErr bool
	}{
		{version: "1.4"},
		{version: "1.7"},
		{version: "2.0"},
		{version: "3.1", wantErr: true},
		{version: "abc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			doc := openFixture(t, pdftest.Fixture{Version: "1.3"})
			err := doc.SetVersion(tt.version)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			again := roundTrip(t, doc)
			assert.Equal(t, tt.version, again.Version())
		})
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	doc, err := Open(pdftest.Minimal())
	require.NoError(t, err)

	require.NoError(t, doc.Close())
	require.NoError(t, doc.Close())

	_, err = doc.Bytes()
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, doc.SetVersion("1.7"), ErrClosed)
	assert.ErrorIs(t, doc.SetMetadata(nil), ErrClosed)
}

func TestHasExtraInfoTrapped(t *testing.T) {
	doc := openFixture(t, pdftest.Fixture{Info: map[string]string{"Trapped": "True"}})
	assert.True(t, doc.Info().IsZero())
	assert.True(t, doc.HasExtraInfo())

	_, err := doc.NormalizeInfo()
	require.NoError(t, err)
	assert.False(t, doc.HasExtraInfo())
}

func TestOutputIntentCountIncludesUnresolvedEntries(t *testing.T) {
	doc := openFixture(t, pdftest.Fixture{DanglingOutputIntents: 1})

	intents, err := doc.OutputIntents()
	require.NoError(t, err)
	assert.Empty(t, intents)

	n, err := doc.OutputIntentCount()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, doc.AddOutputIntent(OutputIntent{S: "GTS_PDFA1"}, []byte("profile"), 3))
	n, err = doc.OutputIntentCount()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestBytesPDF20(t *testing.T) {
	// PDF 2.0 requires a file identifier; the fixture has none.
	doc := openFixture(t, pdftest.Fixture{Info: map[string]string{"Title": "Doc"}})
	require.NoError(t, doc.SetVersion("2.0"))

	again := roundTrip(t, doc)
	assert.Equal(t, "2.0", again.Version())
	assert.Equal(t, "Doc", again.Info().Title)
}

func TestBytesKeepsPages(t *testing.T) {
	doc := openFixture(t, pdftest.Fixture{XMP: "<old-packet/>"})
	require.NoError(t, doc.SetMetadata([]byte("<new-packet/>")))

	// Open fails on a catalog without a page tree, so a successful round
	// trip shows the pages were copied.
	again := roundTrip(t, doc)
	got, err := again.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "<new-packet/>", string(got))
}
