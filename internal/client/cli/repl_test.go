package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool

	calls []string
}

func (f *fakeExec) record(name string) error {
	f.calls = append(f.calls, name)
	return nil
}

func (f *fakeExec) isLoggedIn() bool                     { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error { return f.record("register") }
func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Save(ctx context.Context) error   { return f.record("save") }
func (f *fakeExec) Update(ctx context.Context) error { return f.record("update") }
func (f *fakeExec) Verify(ctx context.Context) error { return f.record("verify") }
func (f *fakeExec) List(ctx context.Context) error   { return f.record("list") }
func (f *fakeExec) Delete(ctx context.Context) error { return f.record("delete") }
func (f *fakeExec) Audit(ctx context.Context) error  { return f.record("audit") }
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}

func silence(t *testing.T) *[]string {
	t.Helper()
	var printed []string
	origPrint := printlnFn
	printlnFn = func(a ...any) (int, error) {
		parts := make([]string, 0, len(a))
		for _, v := range a {
			if s, ok := v.(string); ok {
				parts = append(parts, s)
			}
		}
		printed = append(printed, strings.Join(parts, " "))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = origPrint })
	return &printed
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	silence(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"help",
		"save",
		"update",
		"verify",
		"l",
		"delete",
		"audit",
		"foobar",
		"logout",
		"exit",
		"register",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewScanner(input))

	want := []string{"login", "save", "update", "verify", "list", "delete", "audit", "logout"}
	if strings.Join(exec.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", exec.calls, want)
	}
}

func TestRunREPL_RequiresLogin(t *testing.T) {
	printed := silence(t)

	input := strings.NewReader("list\nsave\nregister\nquit\n")
	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(input))

	if strings.Join(exec.calls, ",") != "register" {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
	found := 0
	for _, line := range *printed {
		if line == "Please login first" {
			found++
		}
	}
	if found != 2 {
		t.Fatalf("expected two login reminders, got %d in %v", found, *printed)
	}
}

func TestRunREPL_EOF(t *testing.T) {
	silence(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(strings.NewReader("")))

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
}
