package cli

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/sheetdb"
	"github.com/nao1215/sheetdb/domain/model"
)

func TestParseIndices(t *testing.T) {
	t.Parallel()

	tests := []struct {
		answer  string
		want    []int
		wantErr bool
	}{
		{answer: "", want: []int{0, 1, 2}},
		{answer: "ALL", want: []int{0, 1, 2}},
		{answer: "2", want: []int{1}},
		{answer: "3, 1", want: []int{0, 2}},
		{answer: "1,1,", want: []int{0}},
		{answer: "0", wantErr: true},
		{answer: "4", wantErr: true},
		{answer: "two", wantErr: true},
		{answer: ",", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			t.Parallel()

			got, err := parseIndices(tt.answer, 3)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlaceBeside(t *testing.T) {
	t.Parallel()

	dir := filepath.Join("data", "in")
	assert.Equal(t, filepath.Join(dir, "sales.db"), placeBeside("sales", dir, model.ExtDB))
	assert.Equal(t, filepath.Join(dir, "sales.sqlite"), placeBeside("sales.sqlite", dir, model.ExtDB))
	assert.Equal(t, filepath.Join("out", "sales.db"), placeBeside(filepath.Join("out", "sales"), dir, model.ExtDB))

	abs := filepath.Join(t.TempDir(), "report")
	assert.Equal(t, abs+".xlsx", placeBeside(abs, dir, model.ExtXLSX))
}

func TestPrompter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("ask with default", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		p := newPrompter(strings.NewReader("\nvalue\n"), &out)
		got, err := p.Ask(ctx, "Name", "def")
		require.NoError(t, err)
		assert.Equal(t, "def", got)
		got, err = p.Ask(ctx, "Name", "def")
		require.NoError(t, err)
		assert.Equal(t, "value", got)
		assert.Equal(t, "Name [def]: Name [def]: ", out.String())
	})

	t.Run("last line without newline", func(t *testing.T) {
		t.Parallel()

		p := newPrompter(strings.NewReader("tail"), &bytes.Buffer{})
		got, err := p.AskRequired(ctx, "Path")
		require.NoError(t, err)
		assert.Equal(t, "tail", got)
	})

	t.Run("end of input cancels", func(t *testing.T) {
		t.Parallel()

		p := newPrompter(strings.NewReader(""), &bytes.Buffer{})
		_, err := p.Ask(ctx, "Path", "")
		assert.ErrorIs(t, err, sheetdb.ErrCanceled)
	})

	t.Run("choose repeats on unknown input", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		p := newPrompter(strings.NewReader("x\nOverwrite\n"), &out)
		action, err := p.Choose(ctx, "Exists.", workbookOptions)
		require.NoError(t, err)
		assert.Equal(t, model.ActionOverwrite, action)
		assert.Contains(t, out.String(), `Unknown choice "x"`)
	})

	t.Run("choose gives up", func(t *testing.T) {
		t.Parallel()

		p := newPrompter(strings.NewReader("x\ny\nz\n"), &bytes.Buffer{})
		_, err := p.Choose(ctx, "Exists.", workbookOptions)
		assert.ErrorIs(t, err, sheetdb.ErrValidation)
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()

		canceled, cancel := context.WithCancel(ctx)
		cancel()
		p := newPrompter(strings.NewReader("a\n"), &bytes.Buffer{})
		_, err := p.Ask(canceled, "Path", "")
		assert.True(t, sheetdb.IsCanceled(err))
	})

	t.Run("interrupt while waiting for input", func(t *testing.T) {
		t.Parallel()

		in, w := io.Pipe()
		t.Cleanup(func() { _ = w.Close() })

		waiting, cancel := context.WithCancel(ctx)
		p := newPrompter(in, &bytes.Buffer{})
		time.AfterFunc(20*time.Millisecond, cancel)

		started := time.Now()
		_, err := p.Ask(waiting, "Path", "")
		require.ErrorIs(t, err, context.Canceled)
		assert.Less(t, time.Since(started), 5*time.Second)
		assert.True(t, sheetdb.IsCanceled(err))
	})

	t.Run("line typed after an interrupt reaches the next prompt", func(t *testing.T) {
		t.Parallel()

		in, w := io.Pipe()
		t.Cleanup(func() { _ = w.Close() })
		p := newPrompter(in, &bytes.Buffer{})

		for range 2 {
			short, stop := context.WithTimeout(ctx, 20*time.Millisecond)
			_, err := p.readLine(short)
			stop()
			require.ErrorIs(t, err, context.DeadlineExceeded)
		}

		go func() { _, _ = io.WriteString(w, "late\n") }()
		got, err := p.Ask(ctx, "Path", "")
		require.NoError(t, err)
		assert.Equal(t, "late", got)
	})
}

func TestPromptResolver(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	resolve := func(t *testing.T, input string, c sheetdb.Conflict) model.Decision {
		t.Helper()
		r := promptResolver{p: newPrompter(strings.NewReader(input), &bytes.Buffer{})}
		d, err := r.Resolve(ctx, c)
		require.NoError(t, err)
		return d
	}

	dbPath := filepath.Join("data", "app.db")

	assert.Equal(t, model.Decision{Action: model.ActionUseExisting},
		resolve(t, "a\n", sheetdb.Conflict{Scope: model.ScopeTable, Name: "t"}))
	assert.Equal(t, model.Decision{Action: model.ActionSkip},
		resolve(t, "skip\n", sheetdb.Conflict{Scope: model.ScopeTable, Name: "t"}))
	assert.Equal(t, model.Decision{Action: model.ActionUseExisting},
		resolve(t, "u\n", sheetdb.Conflict{Scope: model.ScopeDatabase, Name: dbPath}))
	assert.Equal(t, model.Decision{Action: model.ActionRename, NewName: filepath.Join("data", "other.db")},
		resolve(t, "r\nother\n", sheetdb.Conflict{Scope: model.ScopeDatabase, Name: dbPath}))
	assert.Equal(t, model.Decision{Action: model.ActionRename, NewName: "New Table"},
		resolve(t, "r\nNew Table\n", sheetdb.Conflict{Scope: model.ScopeTable, Name: "t"}))

	t.Run("workbook scope has no use option", func(t *testing.T) {
		r := promptResolver{p: newPrompter(strings.NewReader("u\nu\nu\n"), &bytes.Buffer{})}
		_, err := r.Resolve(ctx, sheetdb.Conflict{Scope: model.ScopeWorkbook, Name: "out.xlsx"})
		assert.ErrorIs(t, err, sheetdb.ErrValidation)
	})
}

func TestConflictFlagsResolver(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	noInput := newPrompter(strings.NewReader(""), &bytes.Buffer{})

	r, err := conflictFlags{yes: true, table: "skip"}.resolver(noInput)
	require.NoError(t, err)

	d, err := r.Resolve(ctx, sheetdb.Conflict{Scope: model.ScopeTable})
	require.NoError(t, err)
	assert.Equal(t, model.ActionSkip, d.Action)

	d, err = r.Resolve(ctx, sheetdb.Conflict{Scope: model.ScopeWorkbook})
	require.NoError(t, err)
	assert.Equal(t, model.ActionOverwrite, d.Action)

	interactive, err := conflictFlags{}.resolver(noInput)
	require.NoError(t, err)
	_, err = interactive.Resolve(ctx, sheetdb.Conflict{Scope: model.ScopeDatabase})
	assert.ErrorIs(t, err, sheetdb.ErrCanceled)

	_, err = conflictFlags{database: "rename"}.resolver(noInput)
	assert.ErrorIs(t, err, sheetdb.ErrValidation)
}
