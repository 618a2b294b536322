package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/water-atlas/internal/boundaries"
	"github.com/sells-group/water-atlas/internal/catalog"
	"github.com/sells-group/water-atlas/internal/config"
	"github.com/sells-group/water-atlas/internal/model"
	"github.com/sells-group/water-atlas/internal/state"
	"github.com/sells-group/water-atlas/internal/urlstate"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"serve", "catalog", "summary", "export", "fragment"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "water-atlas", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestExportCommand_Flags(t *testing.T) {
	flag := exportCmd.Flags().Lookup("format")
	require.NotNil(t, flag)
	assert.Equal(t, "csv", flag.DefValue)
	assert.NotNil(t, exportCmd.Flags().Lookup("fragment"))
	assert.NotNil(t, exportCmd.Flags().ShorthandLookup("o"))
}

func TestSummaryCommand_Flags(t *testing.T) {
	for name, def := range map[string]string{
		"climate":    "watch",
		"impact":     "watergap",
		"timescale":  "decadal",
		"experiment": "hist",
		"index":      "-1",
	} {
		flag := summaryCmd.Flags().Lookup(name)
		require.NotNil(t, flag, "summary should have --%s flag", name)
		assert.Equal(t, def, flag.DefValue, name)
	}
}

func TestExportWriter(t *testing.T) {
	_, err := exportWriter("csv")
	assert.NoError(t, err)
	_, err = exportWriter("xlsx")
	assert.NoError(t, err)
	_, err = exportWriter("pdf")
	assert.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	series := &model.Series[model.RegionDatum]{}

	path := filepath.Join(dir, "out.csv")
	write, err := exportWriter("csv")
	require.NoError(t, err)
	require.NoError(t, writeFile(path, series, write))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "featureId")

	failing := func(io.Writer, *model.Series[model.RegionDatum]) error { return errors.New("disk full") }
	assert.EqualError(t, writeFile(filepath.Join(dir, "fail.csv"), series, failing), "disk full")

	// The file is closed behind writeFile's back, so its own close fails.
	closing := func(w io.Writer, _ *model.Series[model.RegionDatum]) error {
		return w.(*os.File).Close()
	}
	err = writeFile(filepath.Join(dir, "closed.csv"), series, closing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "close output")
}

func TestFormatCatalog(t *testing.T) {
	entries := historicalEntries(catalog.Default().Entries)
	require.NotEmpty(t, entries)
	for _, e := range entries {
		assert.Equal(t, catalog.ExperimentHistorical, e.ClimateExperiment)
	}

	var buf bytes.Buffer
	formatCatalog(&buf, entries[:1])
	out := buf.String()
	assert.Contains(t, out, "CLIMATE")
	assert.Contains(t, out, "FILE")
	assert.Contains(t, out, entries[0].Filename)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 3)
}

func TestFormatFragment(t *testing.T) {
	r := state.NewReducer(catalog.Default())
	s, errs := urlstate.Restore(r, state.Default(), "#dt=shortage&t=abc")
	require.Len(t, errs, 1)

	var buf bytes.Buffer
	formatFragment(&buf, s, errs)
	out := buf.String()
	assert.Contains(t, out, "canonical: #dt=shortage&t=0&")
	assert.Contains(t, out, "showing:   shortage, time index 0")
	assert.Contains(t, out, `dropped:   t="abc"`)
}

func TestFormatSummary(t *testing.T) {
	b := boundaries.New(
		[]boundaries.WaterRegion{{ID: 1, WorldRegionID: 5}},
		[]boundaries.WorldRegion{{ID: 5, Name: "Europe"}},
	)
	series := &model.Series[model.AggregateDatum]{Buckets: []model.TimeAggregate[model.AggregateDatum]{
		{StartYear: 1981, EndYear: 1990, Data: map[int]model.AggregateDatum{
			model.GlobalRegionID: {Population: 1234567, Stress: model.TierPopulations{High: 1000}},
			5:                    {WorldRegionID: 5, Population: 1234567, Stress: model.TierPopulations{High: 1000}},
		}},
		{StartYear: 1991, EndYear: 2000, Data: map[int]model.AggregateDatum{
			model.GlobalRegionID: {Population: 10},
		}},
	}}

	var buf bytes.Buffer
	formatSummary(&buf, series, b, -1)
	out := buf.String()
	assert.Contains(t, out, "1,234,567")
	assert.Contains(t, out, "Europe")
	assert.Contains(t, out, "Global")
	assert.Contains(t, out, "1991-2000")

	buf.Reset()
	formatSummary(&buf, series, b, 1)
	assert.NotContains(t, buf.String(), "1981-1990")
	assert.Contains(t, buf.String(), "1991-2000")
}

func TestOpenBookmarks(t *testing.T) {
	s, err := openBookmarks(t.Context(), config.StoreConfig{})
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = openBookmarks(t.Context(), config.StoreConfig{DSN: filepath.Join(t.TempDir(), "atlas.db")})
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.NoError(t, s.Close())
}
