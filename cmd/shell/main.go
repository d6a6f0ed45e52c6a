// Command shell is a readline-backed REPL over a local NovaSQL data
// directory, supporting \dt/\di/\help catalog introspection the way the
// teacher's cmd/client supports meta commands over its TCP connection.
// There is no SQL parser in this repository (spec.md §1 treats one as an
// external collaborator), so this shell does not execute arbitrary SQL —
// it opens the database directly and lets an operator inspect the
// catalog while `internal/plan.Node` trees are built by tests or a future
// front end.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/novasql/core/internal/catalog"
	"github.com/novasql/core/internal/config"
	"github.com/novasql/core/internal/engine"
)

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".novasql_history"
	}
	return filepath.Join(home, ".novasql_history")
}

const helpText = `meta commands:
  \dt                   list tables
  \di [table]           list indexes, optionally filtered to one table
  \help                 show this help
  \q | quit | exit      quit

this build has no SQL parser: statements not starting with \ are
rejected. Build internal/plan.Node trees programmatically (see
internal/engine's tests) to run a query against this database.`

func printTables(cat *catalog.Catalog) {
	tables := cat.ListTables()
	if len(tables) == 0 {
		fmt.Println("(no tables)")
		return
	}
	for _, ti := range tables {
		fmt.Printf("%-20s %d column(s)\n", ti.Name, len(ti.Schema.Columns))
	}
}

func printIndexes(cat *catalog.Catalog, filter string) {
	tables := cat.ListTables()
	printed := 0
	for _, ti := range tables {
		if filter != "" && ti.Name != filter {
			continue
		}
		for _, ii := range cat.IndexesOn(ti.Name) {
			fmt.Printf("%-20s on %-20s (%s)\n", ii.Name, ti.Name, strings.Join(ii.KeyColumns, ", "))
			printed++
		}
	}
	if printed == 0 {
		fmt.Println("(no indexes)")
	}
}

func main() {
	var (
		dataDir  = flag.String("data", "./novasql-data", "database data directory")
		histPath = flag.String("history", defaultHistoryPath(), "history file path")
	)
	flag.Parse()

	cfg := config.Default()
	cfg.DataDir = *dataDir
	db, err := engine.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open %s: %v\n", *dataDir, err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "novasql> ",
		HistoryFile:     *histPath,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = rl.Close() }()

	fmt.Printf("novasql shell — data dir %s\n", *dataDir)
	fmt.Println(`type \help for help`)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			fmt.Println("^C")
			continue
		}
		if err != nil {
			fmt.Println()
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case line == "\\q" || line == "quit" || line == "exit":
			return
		case line == "\\help":
			fmt.Println(helpText)
		case line == "\\dt":
			printTables(db.Catalog())
		case line == "\\di":
			printIndexes(db.Catalog(), "")
		case strings.HasPrefix(line, "\\di "):
			printIndexes(db.Catalog(), strings.TrimSpace(strings.TrimPrefix(line, "\\di ")))
		case strings.HasPrefix(line, "\\"):
			fmt.Printf("unknown command: %s\n", line)
		default:
			fmt.Println("no SQL parser in this build; see \\help")
		}
	}
}
