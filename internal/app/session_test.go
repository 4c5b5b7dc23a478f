package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/linkedit/internal/config"
	"github.com/dshills/linkedit/internal/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func newTestSession(t *testing.T, opts ...Option) (*Session, *bytes.Buffer, *vfs.MemFS) {
	t.Helper()
	var out bytes.Buffer
	mem := vfs.NewMemFS()
	opts = append([]Option{WithOutput(&out), WithFileSystem(mem)}, opts...)
	s := NewSession(opts...)
	t.Cleanup(func() { _ = s.Close() })
	return s, &out, mem
}

// exec runs each line and returns what was printed.
func exec(t *testing.T, s *Session, out *bytes.Buffer, lines ...string) string {
	t.Helper()
	out.Reset()
	for _, line := range lines {
		require.NoError(t, s.Execute(context.Background(), line))
	}
	return out.String()
}

func TestExecuteEditing(t *testing.T) {
	s, out, _ := newTestSession(t)

	assert.Equal(t, "", exec(t, s, out, "insert abc"))
	assert.Equal(t, "abc|\n", exec(t, s, out, "printdoc"))
	assert.Equal(t, "3\n1\n", exec(t, s, out, "countcharacters", "countlines"))

	exec(t, s, out, "HOME", "forward", "insert  x   y ")
	assert.Equal(t, []string{"abx yc"}, s.Engine().Lines())
	assert.Equal(t, "abx y|c\n", exec(t, s, out, "printdoc"))

	exec(t, s, out, "end", "back", "delete 1")
	assert.Equal(t, []string{"abx c"}, s.Engine().Lines())
}

func TestExecuteGotoScenario(t *testing.T) {
	s, out, _ := newTestSession(t)

	exec(t, s, out, "goto 2 3")
	p := s.Engine().Point()
	assert.Equal(t, 2, p.Row)
	assert.Equal(t, 3, p.Col)
	assert.Equal(t, "4\n", exec(t, s, out, "countcharacters"))
}

func TestExecuteDeleteCollapses(t *testing.T) {
	s, out, _ := newTestSession(t)

	exec(t, s, out, "insert hi", "goto 0 0", "delete 5")
	p := s.Engine().Point()
	assert.Equal(t, -1, p.Row)
	assert.Equal(t, -1, p.Col)
	assert.True(t, s.Engine().IsEmpty())
}

func TestExecuteMessages(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"goto 1", "Usage: goto row col\n"},
		{"goto a b", "Row and col must be integers\n"},
		{"goto 1 x", "Row and col must be integers\n"},
		{"insert", "Usage: insert string\n"},
		{"delete", "Usage: delete num\n"},
		{"delete 1 2", "Usage: delete num\n"},
		{"delete x", "num must be an integer\n"},
		{"save", "Usage: save filename\n"},
		{"load a b", "Usage: load filename\n"},
		{"undo", "Nothing to undo\n"},
		{"redo", "Nothing to redo\n"},
		{"frobnicate", "Unknown command\n"},
		{"", ""},
		{"   ", ""},
		{"lua", "Usage: lua code\n"},
		{"source", "Usage: source filename\n"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			s, out, _ := newTestSession(t)
			assert.Equal(t, tt.want, exec(t, s, out, tt.line))
			assert.True(t, s.Engine().IsEmpty(), "usage errors must not mutate")
		})
	}
}

func TestExecuteUndoRedo(t *testing.T) {
	s, out, _ := newTestSession(t)

	exec(t, s, out, "insert ab", "insert c", "undo")
	assert.Equal(t, []string{"ab"}, s.Engine().Lines())

	exec(t, s, out, "redo")
	assert.Equal(t, []string{"abc"}, s.Engine().Lines())

	exec(t, s, out, "undo", "undo")
	assert.True(t, s.Engine().IsEmpty())
	assert.Equal(t, "Nothing to undo\n", exec(t, s, out, "undo"))
}

func TestExecuteQuit(t *testing.T) {
	s, _, _ := newTestSession(t)
	assert.ErrorIs(t, s.Execute(context.Background(), "QUIT"), ErrQuit)
}

func TestExecuteSaveLoad(t *testing.T) {
	s, out, mem := newTestSession(t)

	exec(t, s, out, "insert hello", "goto 1 0", "insert world")
	assert.Equal(t, "Document saved successfully to /doc.txt\n", exec(t, s, out, "save /doc.txt"))

	data, err := mem.ReadFile("/doc.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld\n", string(data))

	other, out2, _ := newTestSession(t, WithFileSystem(mem))
	assert.Equal(t, "Document loaded successfully from /doc.txt\n", exec(t, other, out2, "load /doc.txt"))
	assert.Equal(t, []string{"hello", "world"}, other.Engine().Lines())
	p := other.Engine().Point()
	assert.Equal(t, 0, p.Row)
	assert.Equal(t, 0, p.Col)
}

func TestSessionLoadPathWithSpaces(t *testing.T) {
	s, out, mem := newTestSession(t)
	require.NoError(t, mem.AddFile("/my notes.txt", "first\nsecond\n"))

	out.Reset()
	require.NoError(t, s.Load("/my notes.txt"))
	assert.Equal(t, "Document loaded successfully from /my notes.txt\n", out.String())
	assert.Equal(t, []string{"first", "second"}, s.Engine().Lines())

	err := s.Load("/no such file.txt")
	require.Error(t, err)
	assert.Equal(t, "Error: File '/no such file.txt' not found", Message(err))

	assert.Equal(t, "Usage: load filename\n", exec(t, s, out, "load /my notes.txt"))
}

func TestExecuteFileErrors(t *testing.T) {
	s, out, mem := newTestSession(t)
	require.NoError(t, mem.AddFile("/locked.txt", "x\n"))
	require.NoError(t, mem.Chmod("/locked.txt", 0o200))
	require.NoError(t, mem.AddFile("/bad.txt", "\xc3\x28\n"))
	require.NoError(t, mem.AddFile("/ro.txt", "x\n"))
	require.NoError(t, mem.Chmod("/ro.txt", 0o444))

	assert.Equal(t, "Error: File '/missing.txt' not found\n", exec(t, s, out, "load /missing.txt"))
	assert.Equal(t, "Error: No permission to read '/locked.txt'\n", exec(t, s, out, "load /locked.txt"))
	assert.Equal(t, "Error: Could not decode file '/bad.txt' (try different encoding)\n", exec(t, s, out, "load /bad.txt"))

	exec(t, s, out, "insert a")
	got := exec(t, s, out, "save /ro.txt")
	assert.True(t, strings.HasPrefix(got, "Error saving file: "), got)
	assert.Contains(t, got, "permission denied")
}

func TestExecuteLua(t *testing.T) {
	s, out, mem := newTestSession(t)

	exec(t, s, out, `lua buffer.insert("ab"); buffer.insert("cd")`)
	assert.Equal(t, []string{"abcd"}, s.Engine().Lines())
	assert.Equal(t, 1, s.Engine().UndoCount(), "a chunk is one undo entry")

	assert.Equal(t, "4\t1\n", exec(t, s, out, "lua return buffer.count_chars(), buffer.count_lines()"))
	assert.Equal(t, "[\"abcd\"]\n", exec(t, s, out, "lua return buffer.lines()"))
	assert.Equal(t, "printed\n", exec(t, s, out, `lua print("printed")`))

	got := exec(t, s, out, "lua error('boom')")
	assert.True(t, strings.HasPrefix(got, "Lua error: "), got)
	assert.Contains(t, got, "boom")

	require.NoError(t, mem.AddFile("/edit.lua", "buffer.home()\nbuffer.delete(2)\n"))
	assert.Equal(t, "", exec(t, s, out, "source /edit.lua"))
	assert.Equal(t, []string{"cd"}, s.Engine().Lines())

	got = exec(t, s, out, "source /missing.lua")
	assert.True(t, strings.HasPrefix(got, "Lua error: "), got)
}

func TestExecuteDump(t *testing.T) {
	s, out, _ := newTestSession(t)
	exec(t, s, out, "insert ab", "goto 1 0")

	doc, err := s.Dump()
	require.NoError(t, err)
	require.True(t, gjson.Valid(doc))

	assert.Equal(t, s.ID().String(), gjson.Get(doc, "session").String())
	assert.Equal(t, int64(1), gjson.Get(doc, "cursor.row").Int())
	assert.Equal(t, int64(0), gjson.Get(doc, "cursor.col").Int())
	assert.Equal(t, "ab", gjson.Get(doc, "lines.0").String())
	assert.Equal(t, int64(2), gjson.Get(doc, "lines.#").Int())
	assert.Equal(t, int64(3), gjson.Get(doc, "counts.characters").Int())
	assert.Equal(t, int64(2), gjson.Get(doc, "history.undo").Int())
	assert.Equal(t, int64(100), gjson.Get(doc, "history.max").Int())
	assert.Equal(t, "goto", gjson.Get(doc, "history.entries.1").String())

	printed := exec(t, s, out, "dump")
	require.True(t, gjson.Valid(printed))
	assert.Equal(t, s.ID().String(), gjson.Get(printed, "session").String())
}

func TestExecuteDumpEmpty(t *testing.T) {
	s, _, _ := newTestSession(t)
	doc, err := s.Dump()
	require.NoError(t, err)

	assert.True(t, gjson.Get(doc, "lines").IsArray())
	assert.Equal(t, int64(0), gjson.Get(doc, "lines.#").Int())
	assert.Equal(t, int64(-1), gjson.Get(doc, "cursor.row").Int())
}

func TestExecuteHelp(t *testing.T) {
	s, out, _ := newTestSession(t)
	got := exec(t, s, out, "help")

	for name, c := range commands {
		assert.Contains(t, got, c.usage, name)
	}
	assert.Equal(t, len(commands), strings.Count(got, "\n"))
}

func TestSessionIDs(t *testing.T) {
	a, _, _ := newTestSession(t)
	b, _, _ := newTestSession(t)
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestRun(t *testing.T) {
	s, out, _ := newTestSession(t)

	in := strings.NewReader("insert hi\nprintdoc\nquit\ninsert ignored\n")
	require.NoError(t, s.Run(context.Background(), in))

	assert.Equal(t, "hi|\n", out.String())
	assert.Equal(t, []string{"hi"}, s.Engine().Lines())
}

func TestRunEOF(t *testing.T) {
	s, out, _ := newTestSession(t)
	require.NoError(t, s.Run(context.Background(), strings.NewReader("insert a\ncountlines")))
	assert.Equal(t, "1\n", out.String())
}

func TestRunInteractive(t *testing.T) {
	s, out, _ := newTestSession(t, WithInteractive(true))
	require.NoError(t, s.Run(context.Background(), strings.NewReader("countlines\n")))

	assert.Equal(t, Banner+"\n>> 0\n>> \n", out.String())
}

func TestRunContextCanceled(t *testing.T) {
	s, _, _ := newTestSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	assert.ErrorIs(t, s.Run(ctx, r), context.Canceled)
}

func TestApplyConfig(t *testing.T) {
	var logs bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: LogLevelInfo, Output: &logs})
	s, out, _ := newTestSession(t, WithLogger(logger), WithInteractive(true))

	for i := 0; i < 10; i++ {
		exec(t, s, out, "insert x")
	}

	cfg := config.Default()
	cfg.Editor.MaxUndo = 3
	cfg.Editor.Prompt = "$ "
	cfg.Logging.Level = "debug"
	cfg.Script.Timeout = time.Second
	s.ApplyConfig(cfg)

	assert.Equal(t, 3, s.Engine().UndoCount())
	assert.Equal(t, 3, s.Engine().MaxUndoEntries())
	assert.Equal(t, LogLevelDebug, logger.Level())
	assert.Equal(t, cfg, s.Config())
	assert.Contains(t, logs.String(), "configuration applied")
	assert.Contains(t, logs.String(), "session="+s.ID().String())

	out.Reset()
	s.prompt()
	assert.Equal(t, "$ ", out.String())
}

func TestOfferReloadKeepsNewest(t *testing.T) {
	s, _, _ := newTestSession(t)
	first := config.Default()
	second := config.Default()
	second.Editor.MaxUndo = 3

	done := make(chan struct{})
	go func() {
		s.offerReload(first)
		s.offerReload(second)
		s.offerReload(second)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("offerReload blocked without a reader")
	}

	select {
	case cfg := <-s.Reloads():
		assert.Same(t, second, cfg)
	default:
		t.Fatal("no reload queued")
	}
}

func TestWatchConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[editor]\nmaxUndo = 10\n"), 0o644))

	s, _, _ := newTestSession(t)
	load := func() (*config.Config, error) {
		return config.Load(path, config.WithEnvPrefix(""))
	}
	require.NoError(t, s.WatchConfig(path, load))

	require.NoError(t, os.WriteFile(path, []byte("[editor]\nmaxUndo = 7\n"), 0o644))

	select {
	case cfg := <-s.Reloads():
		assert.Equal(t, 7, cfg.Editor.MaxUndo)
		assert.Equal(t, path, cfg.Source)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload delivered")
	}
}
