package parser

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFiles_KeepsOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for week := 1; week <= 12; week++ {
		s := sampleSections()
		s.Header = fmt.Sprintf("Week ending March %d, 2009", week)
		paths = append(paths, writeBulletin(t, dir, fmt.Sprintf("2009_wk%02d_table2H.tab", week), s.Lines()))
	}

	result, err := ParseFiles(context.Background(), New(), paths, BatchOptions{Workers: 4})
	require.NoError(t, err)
	require.Len(t, result.Files, 12)
	assert.Empty(t, result.Failures)

	for i, file := range result.Files {
		assert.Equal(t, fmt.Sprintf("%02d", i+1), file.Metadata.Week)
		assert.Equal(t, fmt.Sprintf("%d", i+1), file.Metadata.Date.Day)
	}
}

func TestParseFiles_CollectsFailures(t *testing.T) {
	dir := t.TempDir()
	good := writeBulletin(t, dir, "2009_wk01_table2H.tab", sampleLines())
	truncated := writeBulletin(t, dir, "2009_wk02_table2H.tab", sampleLines()[:6])
	badName := writeBulletin(t, dir, "week3.tab", sampleLines())
	alsoGood := writeBulletin(t, dir, "2009_wk04_table2H.tab", sampleLines())

	result, err := ParseFiles(context.Background(), New(), []string{good, truncated, badName, alsoGood}, BatchOptions{Workers: 2})
	require.NoError(t, err)

	require.Len(t, result.Files, 2)
	assert.Equal(t, "2009_wk01_table2H.tab", result.Files[0].Metadata.Filename)
	assert.Equal(t, "2009_wk04_table2H.tab", result.Files[1].Metadata.Filename)

	require.Len(t, result.Failures, 2)
	assert.Equal(t, "2009_wk02_table2H.tab", result.Failures[0].Filename)
	assert.ErrorIs(t, result.Failures[0], ErrMalformedFile)
	assert.Equal(t, "week3.tab", result.Failures[1].Filename)
	assert.ErrorIs(t, result.Failures[1], ErrMalformedFilename)
}

func TestParseFiles_FailFast(t *testing.T) {
	dir := t.TempDir()
	truncated := writeBulletin(t, dir, "2009_wk02_table2H.tab", sampleLines()[:6])

	result, err := ParseFiles(context.Background(), New(), []string{truncated}, BatchOptions{Workers: 1, FailFast: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedFile)
	require.Len(t, result.Failures, 1)
	assert.Empty(t, result.Files)
}

func TestParseFiles_Cancelled(t *testing.T) {
	dir := t.TempDir()
	path := writeBulletin(t, dir, "2009_wk01_table2H.tab", sampleLines())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := ParseFiles(ctx, New(), []string{path}, BatchOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, result.Files)
	assert.Empty(t, result.Failures)
}

func TestParseFiles_Empty(t *testing.T) {
	result, err := ParseFiles(context.Background(), New(), nil, BatchOptions{})
	require.NoError(t, err)
	assert.Empty(t, result.Files)
	assert.Empty(t, result.Failures)
}
