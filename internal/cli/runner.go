package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/todoc/internal/api"
	"github.com/idilsaglam/todoc/internal/auth"
	"github.com/idilsaglam/todoc/internal/model"
	"github.com/idilsaglam/todoc/internal/store/snapshot"
	"github.com/idilsaglam/todoc/internal/tui"
	"github.com/idilsaglam/todoc/internal/ui"
)

// Options tune behavior from root flags and resolved config.
type Options struct {
	Backend      string // resolved base URL; empty means unconfigured
	Token        string
	Plain        bool // render once instead of the interactive view
	Cached       bool // with Plain: use the snapshot cache, no network
	Group        bool // plain list grouped by pending/done
	SnapshotPath string
	Logger       *log.Logger
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(args []string, opt Options) int {
	if opt.Logger == nil {
		opt.Logger = log.Default()
	}
	if len(args) == 0 {
		PrintHelp()
		return 2
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp()
		return 0

	case "ls":
		return doList(opt)

	case "add":
		if len(a) == 0 {
			ui.Fail("usage: todoc add <title...>")
			return 2
		}
		return doAdd(opt, strings.Join(a, " "))

	case "done":
		if len(a) == 0 {
			ui.Fail("usage: todoc done <title...>")
			return 2
		}
		return doToggle(opt, strings.Join(a, " "))

	case "rm":
		if len(a) == 0 {
			ui.Fail("usage: todoc rm <title...>")
			return 2
		}
		return doRemove(opt, strings.Join(a, " "))

	case "auth":
		if len(a) == 0 {
			ui.Fail("usage: todoc auth <login|logout|status|whoami>")
			return 2
		}
		switch a[0] {
		case "login":
			return doAuthLogin()
		case "logout":
			return doAuthLogout()
		case "status":
			return doAuthStatus()
		case "whoami":
			return doAuthWhoAmI()
		default:
			ui.Fail("usage: todoc auth <login|logout|status|whoami>")
			return 2
		}
	}

	ui.Fail("unknown subcommand: " + cmd)
	fmt.Fprintln(os.Stderr)
	PrintHelp()
	return 2
}

func PrintHelp() {
	fmt.Printf(`todoc - terminal client for a remote todo backend

Usage:
  todoc [flags] <subcommand> [args]

Subcommands:
  ls                 Browse items (interactive; -plain for a one-shot list)
  add <title...>     Create a new item
  done <title...>    Toggle the done flag of the item with that title
  rm <title...>      Delete the item with that title
  auth <login|logout|status|whoami>   Token authentication

The backend base URL comes from -backend, then the TODOC_BACKEND env var
(a .env file is honored), then ~/.todoc/config.toml.

Examples:
  todoc -backend http://localhost:8000 ls
  todoc add "Buy milk"
  todoc done "Buy milk"
  todoc rm "Buy milk"
`)
}

// newClient builds the API client, or explains how to configure one.
func newClient(opt Options) (*api.Client, int) {
	if strings.TrimSpace(opt.Backend) == "" {
		ui.Fail("no backend configured")
		ui.Hint("Set -backend, TODOC_BACKEND, or backend in ~/.todoc/config.toml")
		return nil, 2
	}
	c, err := api.New(opt.Backend,
		api.WithToken(opt.Token),
		api.WithLogger(opt.Logger),
	)
	if err != nil {
		ui.Fail("backend: " + err.Error())
		return nil, 2
	}
	return c, 0
}

// -------------- subcommand impls ----------------

func doList(opt Options) int {
	if !opt.Plain {
		// The interactive view handles the missing-backend gate itself
		// with a configuration form.
		err := tui.Run(tui.Config{
			Backend:      opt.Backend,
			Token:        opt.Token,
			Logger:       opt.Logger,
			SnapshotPath: opt.SnapshotPath,
		})
		if err != nil {
			ui.Fail("tui: " + err.Error())
			return 1
		}
		return 0
	}

	items, code := plainItems(opt)
	if code != 0 {
		return code
	}
	renderPanel(items, opt)
	return 0
}

// plainItems fetches the list, or reads the cache with -cached.
func plainItems(opt Options) ([]model.Item, int) {
	if opt.Cached {
		p := opt.SnapshotPath
		if p == "" {
			var err error
			if p, err = snapshot.DefaultPath(); err != nil {
				ui.Fail("snapshot: " + err.Error())
				return nil, 1
			}
		}
		f, err := snapshot.Load(p)
		if err != nil {
			ui.Fail("snapshot: " + err.Error())
			return nil, 1
		}
		if f == nil {
			ui.Fail("no cached snapshot yet")
			ui.Hint("Run `todoc ls -plain` once with the backend reachable")
			return nil, 1
		}
		return f.Items, 0
	}

	c, code := newClient(opt)
	if code != 0 {
		return nil, code
	}
	items, err := c.List(context.Background(), model.FilterAll)
	if err != nil {
		ui.Fail("list: " + err.Error())
		return nil, 1
	}
	if opt.SnapshotPath != "" {
		if err := snapshot.Save(opt.SnapshotPath, c.BaseURL(), items); err != nil {
			opt.Logger.Warn("snapshot save failed", "err", err)
		}
	}
	return items, 0
}

func doAdd(opt Options, title string) int {
	title = strings.TrimSpace(title)
	if title == "" {
		ui.Fail("add: empty title")
		return 2
	}
	c, code := newClient(opt)
	if code != 0 {
		return code
	}
	if err := c.Create(context.Background(), model.Item{Title: title}); err != nil {
		ui.Fail("add: " + err.Error())
		return 1
	}
	ui.OK("added")
	return 0
}

func doToggle(opt Options, title string) int {
	title = strings.TrimSpace(title)
	c, code := newClient(opt)
	if code != 0 {
		return code
	}
	ctx := context.Background()

	// Toggling needs the current flag, which only the backend knows.
	items, err := c.List(ctx, model.FilterAll)
	if err != nil {
		ui.Fail("list: " + err.Error())
		return 1
	}
	for _, it := range items {
		if it.Title == title {
			if err := c.SetDone(ctx, title, !it.Done); err != nil {
				ui.Fail("done: " + err.Error())
				return 1
			}
			ui.OK("toggled")
			return 0
		}
	}
	ui.Fail("no item titled " + fmt.Sprintf("%q", title))
	ui.Hint("Hint: run `todoc ls -plain` to see current titles")
	return 1
}

func doRemove(opt Options, title string) int {
	title = strings.TrimSpace(title)
	c, code := newClient(opt)
	if code != 0 {
		return code
	}
	if err := c.Delete(context.Background(), title); err != nil {
		ui.Fail("rm: " + err.Error())
		return 1
	}
	ui.OK("removed")
	return 0
}

// -------------- auth subcommands ----------------

func doAuthLogin() int {
	fmt.Print("Paste your token: ")
	var token string
	if _, err := fmt.Scanln(&token); err != nil {
		ui.Fail("read token: " + err.Error())
		return 1
	}
	if err := auth.SetToken(token, nil); err != nil {
		ui.Fail("save token: " + err.Error())
		return 1
	}
	ui.OK("logged in")
	return 0
}

func doAuthLogout() int {
	ti, _ := auth.GetToken()
	if ti != nil && ti.Source == "env" {
		ui.OK("token is provided by " + auth.EnvToken + " env var (nothing to delete)")
		return 0
	}
	if err := auth.DeleteToken(); err != nil {
		ui.Fail("logout: " + err.Error())
		return 1
	}
	ui.OK("logged out")
	return 0
}

func doAuthStatus() int {
	ti, _ := auth.GetToken()
	if ti == nil {
		fmt.Println(ui.C(ui.Current().Muted, "not logged in"))
		fmt.Println("Run: todoc auth login")
		return 0
	}
	fmt.Printf("source: %s\n", ti.Source)
	if ti.ExpiresAt != nil {
		fmt.Printf("expires: %s\n", ti.ExpiresAt.UTC().Format(time.RFC3339))
	} else {
		fmt.Println("expires: (unknown)")
	}
	fmt.Println("env override: " + auth.EnvToken)
	return 0
}

func doAuthWhoAmI() int {
	ti, _ := auth.GetToken()
	if ti == nil {
		ui.Fail("not logged in. Run: todoc auth login")
		return 2
	}
	if p, ok := auth.DecodeJWTPayload(ti.Token); ok {
		fmt.Println("JWT payload:")
		fmt.Println(p)
		return 0
	}
	fmt.Println("Opaque token (cannot introspect locally).")
	fmt.Println("source:", ti.Source)
	return 0
}

// -------------- rendering helpers --------------

func renderPanel(items []model.Item, opt Options) {
	d, p := stats(items)
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		ui.C(ui.Current().Title, "Todos"),
		ui.C(ui.Current().Success, "✔"), d,
		ui.C(ui.Current().Pending, "•"), p,
		ui.C(ui.Current().Accent, "Total"), len(items),
	)

	var lines []string
	lines = append(lines, header)
	lines = append(lines, ui.C(ui.Current().Muted, ui.ProgressBar(d, d+p, 28)))
	lines = append(lines, "")

	if opt.Group {
		lines = append(lines, groupLines(items)...)
	} else {
		lines = append(lines, flatLines(items)...)
	}
	lines = append(lines, "")
	lines = append(lines, ui.C(ui.Current().Muted, "Tip: add with `todoc add \"Buy milk\"`"))
	ui.Panel(lines)
}

func stats(items []model.Item) (done, pending int) {
	for _, it := range items {
		if it.Done {
			done++
		} else {
			pending++
		}
	}
	return
}

func flatLines(items []model.Item) []string {
	if len(items) == 0 {
		return []string{ui.C(ui.Current().Muted, "no items")}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		box := ui.Current().BoxUnchecked
		color := ui.Current().Muted
		if it.Done {
			box, color = ui.Current().BoxChecked, ui.Current().Success
		}
		title := it.Title
		if len(title) > 80 {
			title = title[:77] + "..."
		}
		out = append(out, fmt.Sprintf("%s %s", ui.C(color, box), title))
	}
	return out
}

func groupLines(items []model.Item) []string {
	var pend, done []model.Item
	for _, it := range items {
		if it.Done {
			done = append(done, it)
		} else {
			pend = append(pend, it)
		}
	}
	var lines []string
	lines = append(lines, ui.C(ui.Current().Accent, "Pending"))
	if len(pend) == 0 {
		lines = append(lines, ui.C(ui.Current().Muted, "(none)"))
	} else {
		lines = append(lines, flatLines(pend)...)
	}
	lines = append(lines, "")
	lines = append(lines, ui.C(ui.Current().Accent, "Done"))
	if len(done) == 0 {
		lines = append(lines, ui.C(ui.Current().Muted, "(none)"))
	} else {
		lines = append(lines, flatLines(done)...)
	}
	return lines
}
