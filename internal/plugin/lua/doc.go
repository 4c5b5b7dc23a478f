// Package lua runs user scripts against a linkedit buffer.
//
// This package wraps the gopher-lua library to provide:
//   - Sandboxed Lua state management with an execution timeout
//   - Go-Lua type conversion
//   - The "buffer" module exposing the editing operations
//
// # State
//
//	state := lua.NewState(
//	    lua.WithExecutionTimeout(2 * time.Second),
//	    lua.WithOutput(os.Stdout),
//	)
//	defer state.Close()
//
//	lua.OpenBuffer(state, eng)
//	if err := state.DoString(ctx, `buffer.insert("hello")`); err != nil {
//	    log.Fatal(err)
//	}
//
// # Sandbox
//
// Only the base, table, string and math libraries are opened. dofile,
// loadfile, load and loadstring are removed, print writes to the state's
// output, and require only returns modules that are already loaded.
//
// # Buffer module
//
//	buffer.go_to(row, col)     buffer.insert(text)
//	buffer.forward()           buffer.delete(n)     -> ok, err
//	buffer.back()              buffer.undo()        -> ok, err
//	buffer.home()              buffer.redo()        -> ok, err
//	buffer["end"]()            buffer.cursor()      -> row, col
//	buffer.lines()             buffer.text()
//	buffer.count_chars()       buffer.count_lines()
//	buffer.render()
package lua
