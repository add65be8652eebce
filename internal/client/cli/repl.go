package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/dmitrijs2005/catalogctl/internal/client/services"
)

// printlnFn and printFn are test seams for user-facing output. In tests,
// replace them with stubs.
var (
	printlnFn = fmt.Println
	printFn   = fmt.Print
)

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	View() services.View
	// Mount reacts to view changes before each prompt (e.g. loading the
	// product list when the dashboard is entered).
	Mount(ctx context.Context)

	Login(ctx context.Context) error
	Forgot(ctx context.Context) error
	SetPassword(ctx context.Context) error
	Logout(ctx context.Context) error

	List(ctx context.Context) error
	Sort(ctx context.Context, token string) error
	Sorts(ctx context.Context) error
	Category(ctx context.Context, name string) error
	Categories(ctx context.Context) error
	Search(ctx context.Context, term string) error
	Retry(ctx context.Context) error
	Status(ctx context.Context) error

	New(ctx context.Context) error
	Edit(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Import(ctx context.Context, path string) error
	Template(ctx context.Context, path string) error
}

// viewCommands lists what can be typed in each view besides help and exit.
var viewCommands = map[services.View][]string{
	services.ViewLogin:       {"login", "forgot"},
	services.ViewSetPassword: {"setpassword", "logout"},
	services.ViewDashboard: {
		"list", "l", "sort", "sorts", "category", "categories", "search",
		"new", "edit", "delete", "import", "template", "retry", "status", "logout",
	},
}

func helpText(v services.View) string {
	switch v {
	case services.ViewSetPassword:
		return "Comandos disponíveis: setpassword, logout, exit"
	case services.ViewDashboard:
		return "Comandos disponíveis: (l)ist, sort <campo-direção>, sorts, category [nome], categories, " +
			"search [termo], new, edit <id>, delete <id>, import <arquivo>, template [caminho], " +
			"retry, status, logout, exit"
	default:
		return "Comandos disponíveis: login, forgot, exit"
	}
}

// runREPL starts a simple read–eval–print loop for the catalog console.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Commands that do not belong to the current
// view are reported as unknown. The loop exits on EOF or when the user
// types "exit" or "quit".
//
// The prompt shows the current status (from statusFn).
//
// Any errors returned by command handlers are ignored here; handlers and the
// services behind them report their own errors. This keeps the REPL loop
// resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		a.Mount(ctx)

		printFn(fmt.Sprintf("catalog %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
			printlnFn()
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]
		arg := strings.Join(args, " ")

		view := a.View()
		switch cmd {
		case "help":
			printlnFn(helpText(view))
			continue
		case "exit", "quit":
			printlnFn("Até logo!")
			return
		}

		if !slices.Contains(viewCommands[view], cmd) {
			printlnFn("Comando desconhecido:", cmd)
			continue
		}

		switch cmd {
		case "login":
			_ = a.Login(ctx)
		case "forgot":
			_ = a.Forgot(ctx)
		case "setpassword":
			_ = a.SetPassword(ctx)
		case "logout":
			_ = a.Logout(ctx)

		case "l", "list":
			_ = a.List(ctx)
		case "sort":
			_ = a.Sort(ctx, arg)
		case "sorts":
			_ = a.Sorts(ctx)
		case "category":
			_ = a.Category(ctx, arg)
		case "categories":
			_ = a.Categories(ctx)
		case "search":
			_ = a.Search(ctx, arg)
		case "retry":
			_ = a.Retry(ctx)
		case "status":
			_ = a.Status(ctx)

		case "new":
			_ = a.New(ctx)
		case "edit":
			_ = a.Edit(ctx, arg)
		case "delete":
			_ = a.Delete(ctx, arg)
		case "import":
			_ = a.Import(ctx, arg)
		case "template":
			_ = a.Template(ctx, arg)
		}
	}
}
