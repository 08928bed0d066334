package collection

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"bizdesk/internal/model"
	"bizdesk/internal/restclient"
	"bizdesk/internal/session"
	"bizdesk/internal/table"
)

// Upstream service names used to pick a base URL.
const (
	ServiceEmployees = "employees"
	ServiceClients   = "clients"
	ServiceFinance   = "finance"
	ServiceProjects  = "projects"
	ServiceAuth      = "auth"
)

type OpenParams struct {
	Client   *restclient.Client
	Session  session.Session
	Notifier table.Notifier
	Logger   *slog.Logger
}

// Role names carried in the token's role claim.
const (
	RoleAdmin          = "admin"
	RoleFinanceManager = "Finance Manager"
)

type Definition struct {
	Name     string      `json:"name"`
	Service  string      `json:"service"`
	Path     string      `json:"path"`
	ListPath string      `json:"list_path,omitempty"`
	Roles    []string    `json:"roles,omitempty"`
	Fields   []FieldInfo `json:"fields"`

	open func(ctx context.Context, p OpenParams) (View, error)
}

func (d Definition) Open(ctx context.Context, p OpenParams) (View, error) {
	if d.open == nil {
		return nil, fmt.Errorf("%w: %s", model.ErrCollectionNotFound, d.Name)
	}

	return d.open(ctx, p)
}

// Allows reports whether the session's role is one the collection is shown
// to. Collections without roles are shown to everyone. This is a display
// hint; the upstream services enforce access.
func (d Definition) Allows(s session.Session) bool {
	return len(d.Roles) == 0 || s.HasRole(d.Roles...)
}

// ForRoles returns a copy of d shown only to the given roles.
func (d Definition) ForRoles(roles ...string) Definition {
	d.Roles = roles
	return d
}

// Entry is a definition as presented to one caller.
type Entry struct {
	Definition
	Allowed bool `json:"allowed"`
}

// Define declares a collection served at path by service. listPath may use
// the {org_id} placeholder, filled from the caller's token.
func Define[T any](service string, path string, listPath string, schema table.Schema[T]) Definition {
	return Definition{
		Name:     schema.Collection,
		Service:  service,
		Path:     path,
		ListPath: listPath,
		Fields:   fieldsOf(schema),
		open: func(ctx context.Context, p OpenParams) (View, error) {
			list, err := expandListPath(listPath, p.Session)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", schema.Collection, err)
			}
			backend := restclient.NewCollection[T](p.Client, path).WithListPath(list)

			ctrl, err := table.New[T](ctx, schema, backend,
				table.WithNotifier[T](p.Notifier),
				table.WithLogger[T](p.Logger),
				table.WithValidator(model.ValidatorFor[T]()),
			)
			if err != nil {
				return nil, err
			}

			return &tableView[T]{ctrl: ctrl}, nil
		},
	}
}

func expandListPath(listPath string, s session.Session) (string, error) {
	if !strings.Contains(listPath, "{org_id}") {
		return listPath, nil
	}

	org := strings.TrimSpace(string(s.Claims.OrgID))
	if org == "" {
		return "", fmt.Errorf("%w: token carries no org_id", model.ErrInvalidInput)
	}

	return strings.ReplaceAll(listPath, "{org_id}", org), nil
}

type Catalog struct {
	defs map[string]Definition
}

func NewCatalog(defs ...Definition) *Catalog {
	c := &Catalog{defs: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		c.defs[d.Name] = d
	}

	return c
}

// DefaultCatalog lists the collections of the business console and the
// paths their services expose them on.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		Define(ServiceEmployees, "employees", "{org_id}/employees", model.EmployeeSchema),
		Define(ServiceEmployees, "Org", "", model.OrganisationSchema),
		Define(ServiceClients, "clients", "", model.ClientSchema),
		Define(ServiceFinance, "finance", "", model.InvoiceSchema).ForRoles(RoleAdmin, RoleFinanceManager),
		Define(ServiceProjects, "projects", "projects/orgs/{org_id}", model.ProjectSchema),
		Define(ServiceAuth, "api/auth/get", "api/auth/org/{org_id}", model.UserSchema).ForRoles(RoleAdmin),
	)
}

func (c *Catalog) Lookup(name string) (Definition, error) {
	d, ok := c.defs[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", model.ErrCollectionNotFound, name)
	}

	return d, nil
}

func (c *Catalog) List() []Definition {
	out := make([]Definition, 0, len(c.defs))
	for _, d := range c.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}

// ListFor lists every collection with whether s's role is shown it.
func (c *Catalog) ListFor(s session.Session) []Entry {
	defs := c.List()
	out := make([]Entry, 0, len(defs))
	for _, d := range defs {
		out = append(out, Entry{Definition: d, Allowed: d.Allows(s)})
	}

	return out
}
