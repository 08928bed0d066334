package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for REPL output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. *App satisfies it.
type execIface interface {
	loggedIn() bool
	Login(ctx context.Context, email string) error
	Collections() error
	Open(ctx context.Context, name string) error
	Load(ctx context.Context) error
	Search(term string) error
	Sort(field string) error
	Show() error
	Edit(ctx context.Context, id string, assignments []string) error
	Add(ctx context.Context, assignments []string) error
	Remove(ctx context.Context, id string) error
	Close()
	report(err error)
}

// runREPL reads one command per line until EOF, exit, or ctx ends.
// Command errors are reported and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		if ctx.Err() != nil {
			return
		}

		printlnFn(fmt.Sprintf("bizctl %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		cmd, rest, _ := strings.Cut(line, " ")
		if cmd == "" {
			continue
		}

		args, err := splitArgs(rest)
		if err != nil {
			a.report(err)
			continue
		}
		first := ""
		if len(args) > 0 {
			first = args[0]
		}

		switch cmd {
		case "help":
			if a.loggedIn() {
				printlnFn("Available commands: collections, open, load, search, sort, show, edit, add, rm, close, login, exit")
			} else {
				printlnFn("Available commands: login <email>, collections, exit")
			}

		case "login":
			a.report(a.Login(ctx, first))

		case "collections":
			a.report(a.Collections())

		case "open":
			a.report(a.Open(ctx, first))

		case "load":
			a.report(a.Load(ctx))

		case "search":
			a.report(a.Search(strings.TrimSpace(rest)))

		case "sort":
			a.report(a.Sort(first))

		case "show", "ls":
			a.report(a.Show())

		case "edit":
			if len(args) == 0 {
				a.report(a.Edit(ctx, "", nil))
				continue
			}
			a.report(a.Edit(ctx, first, args[1:]))

		case "add":
			a.report(a.Add(ctx, args))

		case "rm", "delete":
			a.report(a.Remove(ctx, first))

		case "close":
			a.Close()

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

// Run starts the interactive loop on scanner and closes the open table when
// the loop ends.
func (a *App) Run(ctx context.Context, scanner *bufio.Scanner) {
	defer a.Close()

	printlnFn("bizctl: type 'help' for commands")
	runREPL(ctx, a, a.status, scanner)
}
