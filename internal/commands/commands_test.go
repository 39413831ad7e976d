package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	shellerrors "pgshell/cli/internal/errors"
	"pgshell/cli/internal/format"
	"pgshell/cli/internal/shell"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTarget struct {
	calls    []string
	executed []string
	params   map[string]any
	evals    map[string]any
	evalErr  error
	execErr  map[string]error
	out      *format.Buffer

	// dispatch, when set, handles executed lines instead of execErr.
	dispatch func(ctx context.Context, line string) error
}

func newFakeTarget() *fakeTarget {
	return &fakeTarget{
		params:  make(map[string]any),
		evals:   make(map[string]any),
		execErr: make(map[string]error),
		out:     &format.Buffer{},
	}
}

func (f *fakeTarget) Execute(ctx context.Context, line string) error {
	f.executed = append(f.executed, line)
	if f.dispatch != nil {
		return f.dispatch(ctx, line)
	}
	return f.execErr[line]
}

func (f *fakeTarget) Begin(ctx context.Context) error {
	f.calls = append(f.calls, "begin")
	return nil
}

func (f *fakeTarget) Commit(ctx context.Context) error {
	f.calls = append(f.calls, "commit")
	return nil
}

func (f *fakeTarget) Rollback(ctx context.Context) error {
	f.calls = append(f.calls, "rollback")
	return nil
}

func (f *fakeTarget) UseDatabase(ctx context.Context, name string) error {
	f.calls = append(f.calls, "use:"+name)
	return nil
}

func (f *fakeTarget) SetParam(ctx context.Context, name, expr string) (any, error) {
	f.calls = append(f.calls, "set:"+name+"="+expr)
	if f.evalErr != nil {
		return nil, f.evalErr
	}
	v := f.evals[expr]
	f.params[name] = v
	return v, nil
}

func (f *fakeTarget) Param(name string) (any, bool) {
	v, ok := f.params[name]
	return v, ok
}

func (f *fakeTarget) ParamNames() []string {
	names := make([]string, 0, len(f.params))
	for n := range f.params {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func (f *fakeTarget) RemoveParam(name string) (any, bool) {
	v, ok := f.params[name]
	delete(f.params, name)
	return v, ok
}

func (f *fakeTarget) Printer() shell.Printer { return f.out }

type fakeHistory []string

func (h fakeHistory) Entries() []string { return h }

func setup(t *testing.T, history History) (*Registry, *fakeTarget) {
	t.Helper()
	reg := NewRegistry()
	target := newFakeTarget()
	require.NoError(t, Register(reg, target, history))
	return reg, target
}

func run(t *testing.T, reg *Registry, name, args string) error {
	t.Helper()
	cmd, ok := reg.Lookup(name)
	require.True(t, ok, "command %s not registered", name)
	return cmd.Execute(context.Background(), args)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	noop := func(ctx context.Context, args string) error { return nil }

	require.NoError(t, reg.Register(&Spec{Name: ":a", Aliases: []string{":b"}, Handler: noop}))
	assert.Error(t, reg.Register(&Spec{Name: ":b", Handler: noop}))
	assert.Error(t, reg.Register(&Spec{Name: "c", Handler: noop}))
	assert.Equal(t, []string{":a", ":b"}, reg.Names())

	_, ok := reg.Lookup(":c")
	assert.False(t, ok)
	spec, ok := reg.Get("b")
	require.True(t, ok)
	assert.Equal(t, ":a", spec.Name)
}

func TestTransactionCommands(t *testing.T) {
	reg, target := setup(t, nil)

	require.NoError(t, run(t, reg, ":begin", ""))
	require.NoError(t, run(t, reg, ":commit", ""))
	require.NoError(t, run(t, reg, ":rollback", ""))
	assert.Equal(t, []string{"begin", "commit", "rollback"}, target.calls)

	err := run(t, reg, ":begin", "now")
	assert.True(t, shellerrors.Is(err, shellerrors.Command))
}

func TestExitAndQuit(t *testing.T) {
	reg, _ := setup(t, nil)

	for _, name := range []string{":exit", ":quit"} {
		code, ok := shellerrors.IsExit(run(t, reg, name, ""))
		assert.True(t, ok, name)
		assert.Equal(t, 0, code)
	}
}

func TestUse(t *testing.T) {
	reg, target := setup(t, nil)

	require.NoError(t, run(t, reg, ":use", "system"))
	require.NoError(t, run(t, reg, ":use", ""))
	assert.Equal(t, []string{"use:system", "use:"}, target.calls)

	err := run(t, reg, ":use", "a b")
	assert.True(t, shellerrors.Is(err, shellerrors.Command))
}

func TestParseParamArgs(t *testing.T) {
	tests := []struct {
		args     string
		wantName string
		wantExpr string
		wantErr  bool
	}{
		{args: "x => 1 + 1", wantName: "x", wantExpr: "1 + 1"},
		{args: "x=>1", wantName: "x", wantExpr: "1"},
		{args: "bob: 'toadstool'", wantName: "bob", wantExpr: "'toadstool'"},
		{args: "n 'a'::text", wantName: "n", wantExpr: "'a'::text"},
		{args: "_v2 => now()", wantName: "_v2", wantExpr: "now()"},
		{args: "x", wantErr: true},
		{args: "x =>", wantErr: true},
		{args: "1x => 2", wantErr: true},
		{args: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.args, func(t *testing.T) {
			name, expr, err := parseParamArgs(tt.args)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, shellerrors.Is(err, shellerrors.Command))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantExpr, expr)
		})
	}
}

func TestParamPrintsValue(t *testing.T) {
	reg, target := setup(t, nil)
	target.evals["1 + 1"] = int32(2)

	require.NoError(t, run(t, reg, ":param", "x => 1 + 1"))
	assert.Equal(t, []string{"set:x=1 + 1"}, target.calls)
	assert.Equal(t, []string{"x => 2"}, target.out.Out())
}

func TestParamEvaluationErrorPassesThrough(t *testing.T) {
	reg, target := setup(t, nil)
	boom := errors.New("syntax error")
	target.evalErr = boom

	err := run(t, reg, ":param", "x => (")
	assert.Same(t, boom, err)
	assert.Empty(t, target.out.Out())
}

func TestParamsAndUnparam(t *testing.T) {
	reg, target := setup(t, nil)
	target.params["b"] = "two"
	target.params["a"] = int64(1)

	require.NoError(t, run(t, reg, ":params", ""))
	require.NoError(t, run(t, reg, ":params", "b"))
	assert.Equal(t, []string{"a => 1\nb => two", "b => two"}, target.out.Out())

	err := run(t, reg, ":params", "zzz")
	require.Error(t, err)
	assert.Equal(t, "unknown parameter: zzz", err.Error())

	target.out.Reset()
	require.NoError(t, run(t, reg, ":unparam", "a"))
	assert.Equal(t, []string{"removed a => 1"}, target.out.Out())
	_, ok := target.params["a"]
	assert.False(t, ok)

	err = run(t, reg, ":unparam", "a")
	require.Error(t, err)
	assert.Equal(t, "unknown parameter: a", err.Error())
}

func TestHistory(t *testing.T) {
	reg, target := setup(t, fakeHistory{"SELECT 1;", ":use system"})

	require.NoError(t, run(t, reg, ":history", ""))
	assert.Equal(t, []string{"   1  SELECT 1;\n   2  :use system"}, target.out.Out())

	reg, _ = setup(t, nil)
	err := run(t, reg, ":history", "")
	assert.True(t, shellerrors.Is(err, shellerrors.Command))
}

func TestHelp(t *testing.T) {
	reg, target := setup(t, nil)

	require.NoError(t, run(t, reg, ":help", ""))
	require.Len(t, target.out.Out(), 1)
	listing := target.out.Out()[0]
	for _, name := range []string{":begin", ":param name => expression", ":source file", ":use [database]"} {
		assert.Contains(t, listing, name)
	}

	target.out.Reset()
	require.NoError(t, run(t, reg, ":help", "quit"))
	assert.Contains(t, target.out.String(), "usage: :exit")

	err := run(t, reg, ":help", ":nope")
	require.Error(t, err)
	assert.Equal(t, "unknown command: :nope", err.Error())
}

func TestSource(t *testing.T) {
	reg, target := setup(t, nil)
	path := filepath.Join(t.TempDir(), "script.sql")
	script := "-- setup\n:param x => 1\nSELECT @x\n  AS one;\n\n:use system\nSELECT 2"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o600))

	require.NoError(t, run(t, reg, ":source", path))
	assert.Equal(t, []string{
		":param x => 1",
		"SELECT @x\n  AS one;",
		":use system",
		"SELECT 2",
	}, target.executed)
}

func TestSourceStopsAtFirstError(t *testing.T) {
	reg, target := setup(t, nil)
	path := filepath.Join(t.TempDir(), "script.sql")
	require.NoError(t, os.WriteFile(path, []byte("SELECT 1;\nSELECT bad;\nSELECT 3;\n"), 0o600))
	boom := errors.New("column bad does not exist")
	target.execErr["SELECT bad;"] = boom

	err := run(t, reg, ":source", path)
	assert.Same(t, boom, err)
	assert.Equal(t, []string{"SELECT 1;", "SELECT bad;"}, target.executed)
}

func TestSourceMissingFile(t *testing.T) {
	reg, _ := setup(t, nil)

	err := run(t, reg, ":source", filepath.Join(t.TempDir(), "missing.sql"))
	assert.True(t, shellerrors.Is(err, shellerrors.Command))
	assert.ErrorIs(t, err, os.ErrNotExist)

	err = run(t, reg, ":source", "")
	assert.True(t, shellerrors.Is(err, shellerrors.Command))
}

// routeCommands makes target run ':' lines through reg, like the shell does.
func routeCommands(reg *Registry, target *fakeTarget) {
	target.dispatch = func(ctx context.Context, line string) error {
		name, args, ok := shell.Classify(line)
		if !ok {
			return nil
		}
		cmd, ok := reg.Lookup(name)
		if !ok {
			return nil
		}
		return cmd.Execute(ctx, args)
	}
}

func TestSourceRejectsCycles(t *testing.T) {
	reg, target := setup(t, nil)
	routeCommands(reg, target)
	dir := t.TempDir()
	self := filepath.Join(dir, "self.sql")
	a := filepath.Join(dir, "a.sql")
	b := filepath.Join(dir, "b.sql")
	require.NoError(t, os.WriteFile(self, []byte("SELECT 1;\n:source "+self+"\n"), 0o600))
	require.NoError(t, os.WriteFile(a, []byte(":source "+b+"\n"), 0o600))
	require.NoError(t, os.WriteFile(b, []byte(":source "+a+"\n"), 0o600))

	err := run(t, reg, ":source", self)
	require.Error(t, err)
	assert.True(t, shellerrors.Is(err, shellerrors.Command))
	assert.Contains(t, err.Error(), "already being sourced")
	assert.Equal(t, []string{"SELECT 1;", ":source " + self}, target.executed)

	err = run(t, reg, ":source", a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot source "+a)
}

func TestSourceSameFileTwiceInSequence(t *testing.T) {
	reg, target := setup(t, nil)
	routeCommands(reg, target)
	dir := t.TempDir()
	child := filepath.Join(dir, "child.sql")
	parent := filepath.Join(dir, "parent.sql")
	require.NoError(t, os.WriteFile(child, []byte("SELECT 1;\n"), 0o600))
	require.NoError(t, os.WriteFile(parent, []byte(":source "+child+"\n:source "+child+"\n"), 0o600))

	require.NoError(t, run(t, reg, ":source", parent))
	assert.Equal(t, []string{":source " + child, "SELECT 1;", ":source " + child, "SELECT 1;"}, target.executed)
}
