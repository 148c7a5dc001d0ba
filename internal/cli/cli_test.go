package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/idilsaglam/issuetracker/internal/model"
	"github.com/idilsaglam/issuetracker/internal/store/jsonstore"
	"github.com/idilsaglam/issuetracker/internal/ui"
)

const product = "gid://shopify/Product/1"

// env points the CLI at a file store in a fresh directory and captures output.
func env(t *testing.T) (dir string, out, errOut *bytes.Buffer) {
	t.Helper()
	dir = t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("ISSUES_STORE", "file")
	t.Setenv("ISSUES_DATA_DIR", dir)
	t.Setenv("ISSUES_RESOURCE", product)
	t.Setenv("ISSUES_TOKEN", "")
	t.Setenv("ISSUES_THEME", "mono")

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	out, errOut = &bytes.Buffer{}, &bytes.Buffer{}
	prevOut, prevErr := ui.Stdout, ui.Stderr
	ui.Stdout, ui.Stderr = out, errOut
	ui.SetColorForcing(false, true)
	t.Cleanup(func() {
		ui.Stdout, ui.Stderr = prevOut, prevErr
		ui.SetTheme("classic")
		ui.SetColorForcing(false, false)
	})
	return dir, out, errOut
}

func run(t *testing.T, args ...string) int {
	t.Helper()
	return Run(context.Background(), args)
}

func stored(t *testing.T, dir string) []model.Issue {
	t.Helper()
	issues, err := jsonstore.New(dir).Load(context.Background(), product)
	if err != nil {
		t.Fatal(err)
	}
	return issues
}

func TestIssueLifecycle(t *testing.T) {
	dir, out, errOut := env(t)

	if code := run(t, "add", "--title", "Broken zipper", "--description", "Jams halfway"); code != 0 {
		t.Fatalf("add exit %d: %s", code, errOut)
	}
	if !strings.Contains(out.String(), "added #0") {
		t.Errorf("add output = %q", out)
	}
	if code := run(t, "add", "-t", "Faded color", "-d", "After one wash"); code != 0 {
		t.Fatalf("second add exit %d: %s", code, errOut)
	}

	if code := run(t, "status", "0", "completed"); code != 0 {
		t.Fatalf("status exit %d: %s", code, errOut)
	}
	if code := run(t, "edit", "1", "--title", "Faded colour"); code != 0 {
		t.Fatalf("edit exit %d: %s", code, errOut)
	}

	want := []model.Issue{
		{ID: 0, Title: "Broken zipper", Description: "Jams halfway", Completed: true},
		{ID: 1, Title: "Faded colour", Description: "After one wash"},
	}
	if got := stored(t, dir); !model.Equal(got, want) {
		t.Fatalf("stored = %+v", got)
	}

	out.Reset()
	if code := run(t, "ls"); code != 0 {
		t.Fatalf("ls exit %d: %s", code, errOut)
	}
	for _, s := range []string{"Broken zipper", "Faded colour", "Completed", "Todo", "[x]", "[ ]"} {
		if !strings.Contains(out.String(), s) {
			t.Errorf("ls output missing %q:\n%s", s, out)
		}
	}

	if code := run(t, "rm", "0"); code != 0 {
		t.Fatalf("rm exit %d: %s", code, errOut)
	}
	if got := stored(t, dir); len(got) != 1 || got[0].ID != 1 {
		t.Errorf("after rm = %+v", got)
	}
}

func TestListPages(t *testing.T) {
	dir, out, errOut := env(t)
	issues := make([]model.Issue, 5)
	for i := range issues {
		issues[i] = model.Issue{ID: i, Title: "Issue " + string(rune('A'+i)), Description: "d"}
	}
	if err := jsonstore.New(dir).Save(context.Background(), product, issues); err != nil {
		t.Fatal(err)
	}

	if code := run(t, "ls", "--page", "2"); code != 0 {
		t.Fatalf("ls exit %d: %s", code, errOut)
	}
	s := out.String()
	if !strings.Contains(s, "Issue D") || strings.Contains(s, "Issue A") || !strings.Contains(s, "page 2/2") {
		t.Errorf("page 2 output:\n%s", s)
	}

	out.Reset()
	if code := run(t, "ls", "--page", "9"); code != 0 {
		t.Fatalf("ls exit %d", code)
	}
	if !strings.Contains(out.String(), "page 2/2") {
		t.Errorf("out of range page not clamped:\n%s", out)
	}
}

func TestUsageErrors(t *testing.T) {
	dir, _, errOut := env(t)

	cases := []struct {
		name string
		args []string
		want string
	}{
		{"no args", nil, ""},
		{"unknown command", []string{"frobnicate"}, "unknown command"},
		{"missing fields", []string{"add", "--title", "only"}, "Please enter a description"},
		{"bad id", []string{"rm", "x"}, "not an issue id"},
		{"bad status", []string{"status", "0", "done"}, "unknown status"},
		{"unknown issue", []string{"status", "7", "todo"}, "not found"},
		{"edit unknown", []string{"edit", "7", "--title", "x"}, "not found"},
		{"extra args", []string{"ls", "extra"}, "accepts 0 arg"},
		{"bad flag", []string{"ls", "--nope"}, "unknown flag"},
		{"no documents", []string{"print", "1", "--invoice=false"}, "Select at least one document"},
		{"no backend", []string{"recommend"}, "no backend configured"},
		{"should-render on file store", []string{"should-render"}, "needs the shopify store"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			errOut.Reset()
			if code := run(t, c.args...); code != 2 {
				t.Errorf("exit = %d, want 2 (%s)", code, errOut)
			}
			if !strings.Contains(errOut.String(), c.want) {
				t.Errorf("stderr = %q, want %q", errOut, c.want)
			}
		})
	}
	if got := stored(t, dir); len(got) != 0 {
		t.Errorf("usage errors wrote %+v", got)
	}
}

func TestNoResource(t *testing.T) {
	_, _, errOut := env(t)
	t.Setenv("ISSUES_RESOURCE", "")
	if code := run(t, "ls"); code != 2 {
		t.Errorf("exit = %d", code)
	}
	if !strings.Contains(errOut.String(), "no resource selected") {
		t.Errorf("stderr = %q", errOut)
	}
	if code := run(t, "-r", product, "ls"); code != 0 {
		t.Errorf("--resource exit = %d: %s", code, errOut)
	}
}

func TestPrint(t *testing.T) {
	_, out, _ := env(t)
	t.Setenv("ISSUES_BACKEND_URL", "https://backend.example")

	if code := run(t, "print", "gid://shopify/Order/9", "--invoice", "--packing-slip"); code != 0 {
		t.Fatalf("exit = %d", code)
	}
	if got := strings.TrimSpace(out.String()); !strings.HasPrefix(got, "https://backend.example/print?") ||
		!strings.Contains(got, "printType=Invoice%2CPacking+Slip") {
		t.Errorf("print url = %q", got)
	}

	out.Reset()
	if code := run(t, "print", "7"); code != 0 {
		t.Fatalf("default print exit = %d", code)
	}
	if got := strings.TrimSpace(out.String()); !strings.HasSuffix(got, "printType=Invoice") {
		t.Errorf("default print url = %q, want the invoice only", got)
	}

	out.Reset()
	if code := run(t, "print", "8", "--invoice=false", "--packing-slip"); code != 0 {
		t.Fatalf("packing slip exit = %d", code)
	}
	if got := strings.TrimSpace(out.String()); !strings.HasSuffix(got, "printType=Packing+Slip") {
		t.Errorf("packing slip url = %q", got)
	}

	out.Reset()
	if code := run(t, "print", "42", "--invoice", "--html"); code != 0 {
		t.Fatalf("exit = %d", code)
	}
	if !strings.Contains(out.String(), "<html") || !strings.Contains(out.String(), "Invoice") {
		t.Errorf("html = %s", out)
	}
}

func TestRecommendApply(t *testing.T) {
	dir, out, errOut := env(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"productIssue": map[string]string{"title": "Sizing", "description": "Runs small"},
		})
	}))
	defer srv.Close()
	t.Setenv("ISSUES_BACKEND_URL", srv.URL)

	if code := run(t, "recommend"); code != 0 {
		t.Fatalf("recommend exit %d: %s", code, errOut)
	}
	if !strings.Contains(out.String(), "Sizing") {
		t.Errorf("output = %s", out)
	}
	if code := run(t, "recommend", "--apply"); code != 0 {
		t.Fatalf("apply exit %d: %s", code, errOut)
	}
	if got := stored(t, dir); len(got) != 1 || got[0].Title != "Sizing" || got[0].Description != "Runs small" {
		t.Errorf("stored = %+v", got)
	}
}

func TestShouldRenderAgainstAdmin(t *testing.T) {
	_, out, errOut := env(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Shopify-Access-Token") != "shpat_test" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"product":{"variantsCount":{"count":3}}}}`))
	}))
	defer srv.Close()
	t.Setenv("ISSUES_STORE", "shopify")
	t.Setenv("ISSUES_ENDPOINT", srv.URL)
	t.Setenv("ISSUES_TOKEN", "shpat_test")

	if code := run(t, "should-render"); code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if !strings.Contains(out.String(), "render: true") {
		t.Errorf("output = %s", out)
	}
}

func TestAuth(t *testing.T) {
	_, out, errOut := env(t)

	if code := run(t, "auth", "status"); code != 0 || !strings.Contains(out.String(), "not logged in") {
		t.Fatalf("status exit %d: %s", code, out)
	}
	if code := run(t, "auth", "login", "--token", "Bearer shpat_abcd1234"); code != 0 {
		t.Fatalf("login exit %d: %s", code, errOut)
	}
	out.Reset()
	if code := run(t, "auth", "status"); code != 0 {
		t.Fatalf("status exit %d", code)
	}
	if s := out.String(); !strings.Contains(s, "source: file") || !strings.Contains(s, "1234") || strings.Contains(s, "shpat_abcd") {
		t.Errorf("status = %s", s)
	}
	if code := run(t, "auth", "logout"); code != 0 {
		t.Fatalf("logout exit %d", code)
	}
	if code := run(t, "auth"); code != 2 {
		t.Errorf("bare auth exit = %d", code)
	}
}
