package app

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// command is one entry of the command table.
type command struct {
	usage string
	help  string
	run   func(ctx context.Context, s *Session, args []string, rest string) error
}

// commands maps lower-case command names to their handlers.
var commands map[string]command

func init() {
	commands = map[string]command{
		"goto":            {"goto row col", "move the cursor, extending the document", cmdGoto},
		"forward":         {"forward", "move one character right", movement((*Session).forward)},
		"back":            {"back", "move one character left", movement((*Session).back)},
		"home":            {"home", "move to the start of the line", movement((*Session).home)},
		"end":             {"end", "move to the end of the line", movement((*Session).end)},
		"insert":          {"insert string", "insert text after the cursor", cmdInsert},
		"delete":          {"delete num", "delete characters from the cursor", cmdDelete},
		"countcharacters": {"countcharacters", "print the number of characters", cmdCountCharacters},
		"countlines":      {"countlines", "print the number of lines", cmdCountLines},
		"printdoc":        {"printdoc", "print the document with the cursor", cmdPrintDoc},
		"save":            {"save filename", "write the document to a file", cmdSave},
		"load":            {"load filename", "replace the document with a file", cmdLoad},
		"undo":            {"undo", "undo the last change", cmdUndo},
		"redo":            {"redo", "redo the last undone change", cmdRedo},
		"lua":             {"lua code", "run Lua code against the buffer", cmdLua},
		"source":          {"source filename", "run a Lua file against the buffer", cmdSource},
		"dump":            {"dump", "print the session state as JSON", cmdDump},
		"help":            {"help", "list commands", cmdHelp},
		"quit":            {"quit", "end the session", cmdQuit},
	}
}

func movement(move func(*Session)) func(context.Context, *Session, []string, string) error {
	return func(_ context.Context, s *Session, _ []string, _ string) error {
		move(s)
		return nil
	}
}

func (s *Session) forward() { s.engine.Forward() }
func (s *Session) back()    { s.engine.Back() }
func (s *Session) home()    { s.engine.Home() }
func (s *Session) end()     { s.engine.End() }

func cmdGoto(_ context.Context, s *Session, args []string, _ string) error {
	if len(args) != 2 {
		return usage("Usage: goto row col")
	}
	row, err1 := strconv.Atoi(args[0])
	col, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		return usage("Row and col must be integers")
	}
	s.engine.Goto(row, col)
	return nil
}

func cmdInsert(_ context.Context, s *Session, args []string, _ string) error {
	if len(args) == 0 {
		return usage("Usage: insert string")
	}
	s.engine.Insert(strings.Join(args, " "))
	return nil
}

func cmdDelete(_ context.Context, s *Session, args []string, _ string) error {
	if len(args) != 1 {
		return usage("Usage: delete num")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return usage("num must be an integer")
	}
	return s.engine.Delete(n)
}

func cmdCountCharacters(_ context.Context, s *Session, _ []string, _ string) error {
	s.println(s.engine.CountCharacters())
	return nil
}

func cmdCountLines(_ context.Context, s *Session, _ []string, _ string) error {
	s.println(s.engine.CountLines())
	return nil
}

func cmdPrintDoc(_ context.Context, s *Session, _ []string, _ string) error {
	return s.engine.Render(s.out)
}

func cmdSave(_ context.Context, s *Session, args []string, _ string) error {
	if len(args) != 1 {
		return usage("Usage: save filename")
	}
	name := args[0]
	if err := s.store.Save(name, s.engine.Lines()); err != nil {
		return NewOperationError("save", name, err)
	}
	s.logger.Info("saved %s", name)
	s.println("Document saved successfully to " + name)
	return nil
}

func cmdLoad(_ context.Context, s *Session, args []string, _ string) error {
	if len(args) != 1 {
		return usage("Usage: load filename")
	}
	return s.Load(args[0])
}

func cmdUndo(_ context.Context, s *Session, _ []string, _ string) error {
	return s.engine.Undo()
}

func cmdRedo(_ context.Context, s *Session, _ []string, _ string) error {
	return s.engine.Redo()
}

// cmdLua evaluates the rest of the line and prints any returned values.
// Every edit the chunk makes is one undo entry.
func cmdLua(ctx context.Context, s *Session, _ []string, rest string) error {
	if rest == "" {
		return usage("Usage: lua code")
	}
	var results []any
	err := s.engine.Transaction("lua", func() error {
		var err error
		results, err = s.lua.Eval(ctx, rest)
		return err
	})
	if err != nil {
		return NewOperationError("lua", "", err)
	}
	if len(results) > 0 {
		parts := make([]string, len(results))
		for i, r := range results {
			parts[i] = formatValue(r)
		}
		s.println(strings.Join(parts, "\t"))
	}
	return nil
}

func cmdSource(ctx context.Context, s *Session, args []string, _ string) error {
	if len(args) != 1 {
		return usage("Usage: source filename")
	}
	name := args[0]
	err := s.engine.Transaction("source "+name, func() error {
		return s.lua.DoFile(ctx, name)
	})
	if err != nil {
		return NewOperationError("source", name, err)
	}
	return nil
}

func cmdDump(_ context.Context, s *Session, _ []string, _ string) error {
	doc, err := s.Dump()
	if err != nil {
		return err
	}
	s.println(gjson.Get(doc, "@pretty").String())
	return nil
}

func cmdHelp(_ context.Context, s *Session, _ []string, _ string) error {
	names := make([]string, 0, len(commands))
	width := 0
	for name, c := range commands {
		names = append(names, name)
		width = max(width, len(c.usage))
	}
	sort.Strings(names)

	for _, name := range names {
		c := commands[name]
		s.println(fmt.Sprintf("  %-*s  %s", width, c.usage, c.help))
	}
	return nil
}

func cmdQuit(_ context.Context, _ *Session, _ []string, _ string) error {
	return ErrQuit
}

// Dump encodes the session state as compact JSON.
func (s *Session) Dump() (string, error) {
	lines := s.engine.Lines()
	if lines == nil {
		lines = []string{}
	}
	undo := s.engine.UndoInfo()
	entries := make([]string, len(undo))
	for i, info := range undo {
		entries[i] = info.Description
	}
	p := s.engine.Point()
	cfg := s.Config()

	fields := []struct {
		path  string
		value any
	}{
		{"session", s.id.String()},
		{"cursor.row", p.Row},
		{"cursor.col", p.Col},
		{"lines", lines},
		{"counts.characters", s.engine.CountCharacters()},
		{"counts.lines", s.engine.CountLines()},
		{"history.undo", len(undo)},
		{"history.redo", s.engine.RedoCount()},
		{"history.max", s.engine.MaxUndoEntries()},
		{"history.entries", entries},
		{"config.source", cfg.Source},
		{"config.scriptTimeout", cfg.Script.Timeout.String()},
	}

	doc := "{}"
	for _, f := range fields {
		var err error
		if doc, err = sjson.Set(doc, f.path, f.value); err != nil {
			return "", fmt.Errorf("encoding %s: %w", f.path, err)
		}
	}
	return doc, nil
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case string:
		return val
	case []any, map[string]any:
		doc, err := sjson.Set(`{"v":null}`, "v", val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return gjson.Get(doc, "v").Raw
	default:
		return fmt.Sprint(val)
	}
}
