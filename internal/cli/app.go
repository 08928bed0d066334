package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"text/tabwriter"

	"bizdesk/internal/collection"
	"bizdesk/internal/model"
	"bizdesk/internal/restclient"
	"bizdesk/internal/service"
	"bizdesk/internal/session"
	"bizdesk/internal/table"
)

var errNotLoggedIn = errors.New("not logged in, use: login <email>")
var errNoView = errors.New("no table open, use: open <collection>")

type App struct {
	catalog   *collection.Catalog
	upstreams map[string]*restclient.Client
	auth      *service.AuthService
	out       io.Writer
	logger    *slog.Logger

	sess *session.Session
	view collection.View
}

func NewApp(catalog *collection.Catalog, upstreams map[string]*restclient.Client, auth *service.AuthService, out io.Writer) *App {
	return &App{
		catalog:   catalog,
		upstreams: upstreams,
		auth:      auth,
		out:       out,
		logger:    slog.Default().With("component", "bizctl"),
	}
}

func (a *App) loggedIn() bool {
	return a.sess != nil
}

func (a *App) status() string {
	parts := make([]string, 0, 2)
	if a.sess != nil {
		parts = append(parts, a.sess.Subject())
	}
	if a.view != nil {
		parts = append(parts, a.view.Collection())
	}
	if len(parts) == 0 {
		return ""
	}

	return "(" + strings.Join(parts, " ") + ")"
}

func (a *App) Login(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return errors.New("usage: login <email>")
	}

	password, err := promptPassword(a.out)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	resp, err := a.auth.Login(ctx, model.LoginRequest{Email: email, Password: password})
	if err != nil {
		return err
	}

	sess, err := session.Parse(resp.Token)
	if err != nil {
		return err
	}

	a.closeView()
	a.sess = &sess
	fmt.Fprintf(a.out, "Logged in as %s", resp.Session.Subject)
	if resp.Session.Role != "" {
		fmt.Fprintf(a.out, " (%s)", resp.Session.Role)
	}
	fmt.Fprintln(a.out)

	return nil
}

// Collections lists every collection with its fields. Collections the
// current role is not shown in the console are marked with their roles.
func (a *App) Collections() error {
	var sess session.Session
	if a.sess != nil {
		sess = *a.sess
	}

	for _, entry := range a.catalog.ListFor(sess) {
		names := make([]string, 0, len(entry.Fields))
		for _, f := range entry.Fields {
			names = append(names, f.Name)
		}
		fmt.Fprintf(a.out, "%-13s %s", entry.Name, strings.Join(names, ", "))
		if !entry.Allowed {
			fmt.Fprintf(a.out, "  [%s only]", strings.Join(entry.Roles, ", "))
		}
		fmt.Fprintln(a.out)
	}

	return nil
}

// Open mounts a table for the collection, replacing the current one, and
// runs its first load. The table lives until ctx ends or another is opened.
func (a *App) Open(ctx context.Context, name string) error {
	if !a.loggedIn() {
		return errNotLoggedIn
	}

	def, err := a.catalog.Lookup(name)
	if err != nil {
		return err
	}

	client, ok := a.upstreams[def.Service]
	if !ok {
		return fmt.Errorf("no upstream configured for %s", def.Name)
	}

	if !def.Allows(*a.sess) {
		fmt.Fprintf(a.out, "warning: %s is meant for %s; the service may refuse it\n",
			def.Name, strings.Join(def.Roles, ", "))
	}

	view, err := def.Open(ctx, collection.OpenParams{
		Client:   client.WithTokens(*a.sess),
		Session:  *a.sess,
		Notifier: table.NotifierFunc(a.toast),
		Logger:   a.logger,
	})
	if err != nil {
		return err
	}

	a.closeView()
	a.view = view

	if err := view.Load(ctx); err != nil {
		return err
	}

	return a.Show()
}

func (a *App) Load(ctx context.Context) error {
	if a.view == nil {
		return errNoView
	}

	if err := a.view.Load(ctx); err != nil {
		return err
	}

	return a.Show()
}

func (a *App) Search(term string) error {
	if a.view == nil {
		return errNoView
	}

	a.view.Search(term)
	return a.Show()
}

func (a *App) Sort(field string) error {
	if a.view == nil {
		return errNoView
	}

	if err := a.view.Sort(field); err != nil {
		return err
	}

	return a.Show()
}

func (a *App) Show() error {
	if a.view == nil {
		return errNoView
	}

	snap := a.view.Snapshot()
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)

	header := make([]string, 0, len(a.view.Fields()))
	for _, f := range a.view.Fields() {
		name := f.Name
		if snap.Sort != nil && snap.Sort.Field == f.Name {
			if snap.Sort.Direction == table.Descending {
				name += " v"
			} else {
				name += " ^"
			}
		}
		header = append(header, strings.ToUpper(name))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, row := range a.view.Rows() {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	summary := fmt.Sprintf("%d of %d %s", len(snap.Records), snap.Total, snap.Collection)
	if snap.Term != "" {
		summary += fmt.Sprintf(" matching %q", snap.Term)
	}
	if snap.State == table.StateLoading {
		summary += " (not loaded)"
	}
	fmt.Fprintln(a.out, summary)

	return nil
}

func (a *App) Edit(ctx context.Context, id string, assignments []string) error {
	if a.view == nil {
		return errNoView
	}
	if id == "" || len(assignments) == 0 {
		return errors.New("usage: edit <id> field=value ...")
	}

	payload, err := a.payload(assignments)
	if err != nil {
		return err
	}

	if err := a.view.BeginEdit(id); err != nil {
		return err
	}
	if _, err := a.view.Edit(ctx, id, payload); err != nil {
		return err
	}

	return a.Show()
}

func (a *App) Add(ctx context.Context, assignments []string) error {
	if a.view == nil {
		return errNoView
	}
	if len(assignments) == 0 {
		return errors.New("usage: add field=value ...")
	}

	payload, err := a.payload(assignments)
	if err != nil {
		return err
	}

	if _, err := a.view.Create(ctx, payload); err != nil {
		return err
	}

	return a.Show()
}

func (a *App) Remove(ctx context.Context, id string) error {
	if a.view == nil {
		return errNoView
	}
	if id == "" {
		return errors.New("usage: rm <id>")
	}

	if err := a.view.Remove(ctx, id); err != nil {
		return err
	}

	return a.Show()
}

func (a *App) Close() {
	a.closeView()
}

func (a *App) closeView() {
	if a.view != nil {
		a.view.Close()
		a.view = nil
	}
}

// payload turns field=value pairs into a JSON object. Values of number
// fields are sent as JSON numbers.
func (a *App) payload(assignments []string) (json.RawMessage, error) {
	kinds := make(map[string]string)
	for _, f := range a.view.Fields() {
		kinds[f.Name] = f.Kind
	}

	obj := make(map[string]any, len(assignments))
	for _, assignment := range assignments {
		field, value, ok := strings.Cut(assignment, "=")
		if !ok || field == "" {
			return nil, fmt.Errorf("expected field=value, got %q", assignment)
		}

		kind, known := kinds[field]
		if !known {
			return nil, fmt.Errorf("%w: %s", table.ErrUnknownField, field)
		}

		if kind == table.KindNumber.String() {
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				return nil, fmt.Errorf("%s must be a number, got %q", field, value)
			}
			obj[field] = json.Number(value)
			continue
		}
		obj[field] = value
	}

	return json.Marshal(obj)
}

func (a *App) toast(n table.Notification) {
	marker := "ok"
	if n.Level == table.LevelError {
		marker = "!!"
	}

	fmt.Fprintf(a.out, "[%s] %s: %s\n", marker, n.Title, n.Message)
}

// report prints err unless the table already surfaced it as a toast.
func (a *App) report(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, table.ErrOperationFailed) || errors.Is(err, table.ErrInvalidRecord) {
		return
	}

	fmt.Fprintln(a.out, "error:", err)
}
