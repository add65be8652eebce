package cli

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/dmitrijs2005/catalogctl/internal/client/services"
	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	view   services.View
	calls  []string
	mounts int
}

func (f *fakeExec) record(name string, arg ...string) error {
	if len(arg) > 0 && arg[0] != "" {
		name += ":" + arg[0]
	}
	f.calls = append(f.calls, name)
	return nil
}

func (f *fakeExec) View() services.View       { return f.view }
func (f *fakeExec) Mount(ctx context.Context) { f.mounts++ }

func (f *fakeExec) Login(ctx context.Context) error {
	f.view = services.ViewDashboard
	return f.record("login")
}
func (f *fakeExec) Forgot(ctx context.Context) error { return f.record("forgot") }
func (f *fakeExec) SetPassword(ctx context.Context) error {
	f.view = services.ViewDashboard
	return f.record("setpassword")
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.view = services.ViewLogin
	return f.record("logout")
}
func (f *fakeExec) List(ctx context.Context) error               { return f.record("list") }
func (f *fakeExec) Sort(ctx context.Context, s string) error     { return f.record("sort", s) }
func (f *fakeExec) Sorts(ctx context.Context) error              { return f.record("sorts") }
func (f *fakeExec) Category(ctx context.Context, s string) error { return f.record("category", s) }
func (f *fakeExec) Categories(ctx context.Context) error         { return f.record("categories") }
func (f *fakeExec) Search(ctx context.Context, s string) error   { return f.record("search", s) }
func (f *fakeExec) Retry(ctx context.Context) error              { return f.record("retry") }
func (f *fakeExec) Status(ctx context.Context) error             { return f.record("status") }
func (f *fakeExec) New(ctx context.Context) error                { return f.record("new") }
func (f *fakeExec) Edit(ctx context.Context, s string) error     { return f.record("edit", s) }
func (f *fakeExec) Delete(ctx context.Context, s string) error   { return f.record("delete", s) }
func (f *fakeExec) Import(ctx context.Context, s string) error   { return f.record("import", s) }
func (f *fakeExec) Template(ctx context.Context, s string) error { return f.record("template", s) }

// captureOutput swaps the print seams and returns the collected lines.
func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	origPrintln, origPrint := printlnFn, printFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	printFn = func(a ...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn, printFn = origPrintln, origPrint })
	return &lines
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	out := captureOutput(t)

	input := strings.Join([]string{
		"help",
		"list",
		"login",
		"help",
		"l",
		"sort price-desc",
		"category Bebidas Quentes",
		"search",
		"edit 42",
		"delete 7",
		"import  /tmp/p.csv",
		"template",
		"foobar",
		"logout",
		"exit",
		"list",
	}, "\n")

	exec := &fakeExec{view: services.ViewLogin}
	runREPL(context.Background(), exec, func() string { return "status" }, rdr(input))

	assert.Equal(t, []string{
		"login", "list", "sort:price-desc", "category:Bebidas Quentes", "search",
		"edit:42", "delete:7", "import:/tmp/p.csv", "template", "logout",
	}, exec.calls)

	assert.Contains(t, *out, helpText(services.ViewLogin))
	assert.Contains(t, *out, helpText(services.ViewDashboard))
	assert.Contains(t, *out, "Comando desconhecido: list", "list is not offered on the login view")
	assert.Contains(t, *out, "Comando desconhecido: foobar")
	assert.Equal(t, "Até logo!", (*out)[len(*out)-1])
	assert.Equal(t, 15, exec.mounts, "mount runs before every prompt")
}

func TestRunREPL_SetPasswordView(t *testing.T) {
	out := captureOutput(t)

	exec := &fakeExec{view: services.ViewSetPassword}
	runREPL(context.Background(), exec, func() string { return "" }, rdr("login\nnew\nsetpassword\nnew\n"))

	assert.Equal(t, []string{"setpassword", "new"}, exec.calls)
	assert.Contains(t, *out, "Comando desconhecido: login")
	assert.Contains(t, *out, "Comando desconhecido: new")
}

func TestRunREPL_EOFWithoutNewline(t *testing.T) {
	captureOutput(t)

	exec := &fakeExec{view: services.ViewDashboard}
	runREPL(context.Background(), exec, func() string { return "" }, rdr("\n\nstatus"))

	assert.Equal(t, []string{"status"}, exec.calls)
}
