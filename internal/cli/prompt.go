package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nao1215/sheetdb"
	"github.com/nao1215/sheetdb/domain/model"
)

// maxAttempts is how often a prompt repeats after invalid input.
const maxAttempts = 3

// prompter asks questions on a line-oriented terminal. End of input cancels
// the run, and so does canceling the context while a read is blocked.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
	// pending carries the line of a read that outlived a canceled prompt.
	pending chan lineResult
}

type lineResult struct {
	line string
	err  error
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

func (p *prompter) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.pending == nil {
		ch := make(chan lineResult, 1)
		p.pending = ch
		go func() {
			line, err := p.in.ReadString('\n')
			ch <- lineResult{line: line, err: err}
		}()
	}

	var res lineResult
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res = <-p.pending:
		p.pending = nil
	}

	if res.err != nil {
		if errors.Is(res.err, io.EOF) && res.line != "" {
			return strings.TrimSpace(res.line), nil
		}
		if errors.Is(res.err, io.EOF) {
			return "", sheetdb.ErrCanceled
		}
		return "", res.err
	}
	return strings.TrimSpace(res.line), nil
}

// Ask prints label and returns the answer, or def for an empty answer.
func (p *prompter) Ask(ctx context.Context, label, def string) (string, error) {
	if def != "" {
		_, _ = fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		_, _ = fmt.Fprintf(p.out, "%s: ", label)
	}
	answer, err := p.readLine(ctx)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// AskRequired repeats the question until a non-empty answer is given.
func (p *prompter) AskRequired(ctx context.Context, label string) (string, error) {
	for range maxAttempts {
		answer, err := p.Ask(ctx, label, "")
		if err != nil {
			return "", err
		}
		if answer != "" {
			return answer, nil
		}
	}
	return "", fmt.Errorf("%w: no answer given", sheetdb.ErrValidation)
}

// option is one answer of a multiple-choice prompt.
type option struct {
	key    string
	label  string
	action model.Action
}

// Choose prints the options and returns the action of the chosen key.
func (p *prompter) Choose(ctx context.Context, question string, options []option) (model.Action, error) {
	keys := make([]string, len(options))
	for i, o := range options {
		keys[i] = fmt.Sprintf("[%s] %s", o.key, o.label)
	}

	for range maxAttempts {
		_, _ = fmt.Fprintf(p.out, "%s\n  %s\n> ", question, strings.Join(keys, "  "))
		answer, err := p.readLine(ctx)
		if err != nil {
			return model.ActionCancel, err
		}
		for _, o := range options {
			if strings.EqualFold(answer, o.key) || strings.EqualFold(answer, o.label) {
				return o.action, nil
			}
		}
		_, _ = fmt.Fprintf(p.out, "Unknown choice %q\n", answer)
	}
	return model.ActionCancel, fmt.Errorf("%w: no valid choice given", sheetdb.ErrValidation)
}

// SelectIndices asks for a comma-separated list of 1-based indices out of
// n items. An empty answer or "all" selects everything. The result is in
// ascending order without duplicates.
func (p *prompter) SelectIndices(ctx context.Context, label string, n int) ([]int, error) {
	for range maxAttempts {
		answer, err := p.Ask(ctx, label+" (comma-separated numbers, empty for all)", "")
		if err != nil {
			return nil, err
		}
		indices, err := parseIndices(answer, n)
		if err == nil {
			return indices, nil
		}
		_, _ = fmt.Fprintln(p.out, err)
	}
	return nil, fmt.Errorf("%w: no valid selection given", sheetdb.ErrValidation)
}

func parseIndices(answer string, n int) ([]int, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" || strings.EqualFold(answer, "all") {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all, nil
	}

	chosen := make([]bool, n)
	for _, part := range strings.Split(answer, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		i, err := strconv.Atoi(part)
		if err != nil || i < 1 || i > n {
			return nil, fmt.Errorf("%q is not a number between 1 and %d", part, n)
		}
		chosen[i-1] = true
	}

	var indices []int
	for i, ok := range chosen {
		if ok {
			indices = append(indices, i)
		}
	}
	if len(indices) == 0 {
		return nil, errors.New("nothing selected")
	}
	return indices, nil
}

// promptResolver asks the user about every existing destination.
type promptResolver struct {
	p *prompter
}

var (
	databaseOptions = []option{
		{key: "u", label: "use", action: model.ActionUseExisting},
		{key: "o", label: "overwrite", action: model.ActionOverwrite},
		{key: "r", label: "rename", action: model.ActionRename},
		{key: "c", label: "cancel", action: model.ActionCancel},
	}
	workbookOptions = []option{
		{key: "o", label: "overwrite", action: model.ActionOverwrite},
		{key: "r", label: "rename", action: model.ActionRename},
		{key: "c", label: "cancel", action: model.ActionCancel},
	}
	tableOptions = []option{
		{key: "a", label: "append", action: model.ActionUseExisting},
		{key: "o", label: "overwrite", action: model.ActionOverwrite},
		{key: "r", label: "rename", action: model.ActionRename},
		{key: "s", label: "skip", action: model.ActionSkip},
		{key: "c", label: "cancel", action: model.ActionCancel},
	}
)

func (r promptResolver) Resolve(ctx context.Context, c sheetdb.Conflict) (model.Decision, error) {
	var (
		question string
		options  []option
	)
	switch c.Scope {
	case model.ScopeTable:
		question = fmt.Sprintf("Table %q already exists with %d rows.", c.Name, c.ExistingRows)
		options = tableOptions
	case model.ScopeWorkbook:
		question = fmt.Sprintf("Workbook %s already exists.", c.Name)
		options = workbookOptions
	default:
		question = fmt.Sprintf("Database %s already exists.", c.Name)
		options = databaseOptions
	}

	action, err := r.p.Choose(ctx, question, options)
	if err != nil {
		return model.Decision{Action: model.ActionCancel}, err
	}
	if action != model.ActionRename {
		return model.Decision{Action: action}, nil
	}

	name, err := r.p.AskRequired(ctx, "New name")
	if err != nil {
		return model.Decision{Action: model.ActionCancel}, err
	}
	switch c.Scope {
	case model.ScopeDatabase:
		name = placeBeside(name, filepath.Dir(c.Name), model.ExtDB)
	case model.ScopeWorkbook:
		name = placeBeside(name, filepath.Dir(c.Name), model.ExtXLSX)
	}
	return model.Decision{Action: model.ActionRename, NewName: name}, nil
}

// placeBeside adds ext when name has no extension and puts a bare file name
// in dir. A name with a directory part is used as given.
func placeBeside(name, dir, ext string) string {
	name = model.WithDefaultExtension(name, ext)
	if filepath.IsAbs(name) || filepath.Base(name) != name {
		return name
	}
	return filepath.Join(dir, name)
}
