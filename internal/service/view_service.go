package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"bizdesk/internal/collection"
	"bizdesk/internal/event"
	"bizdesk/internal/model"
	"bizdesk/internal/restclient"
	"bizdesk/internal/session"
	"bizdesk/internal/table"
)

type mountedView struct {
	id    string
	owner string
	view  collection.View
}

// ViewService owns the tables mounted by console sessions. A view expires
// after ttl without use; expiry and CloseView both tear the table down.
type ViewService struct {
	catalog   *collection.Catalog
	upstreams map[string]*restclient.Client
	bus       event.Bus
	views     *cache.Cache
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func NewViewService(catalog *collection.Catalog, upstreams map[string]*restclient.Client, bus event.Bus, ttl time.Duration) *ViewService {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &ViewService{
		catalog:   catalog,
		upstreams: upstreams,
		bus:       bus,
		views:     cache.New(ttl, ttl/2),
		logger:    slog.Default().With("component", "views"),
		ctx:       ctx,
		cancel:    cancel,
	}
	s.views.OnEvicted(s.teardown)

	return s
}

// Collections lists the catalog as presented to sess.
func (s *ViewService) Collections(sess session.Session) []collection.Entry {
	return s.catalog.ListFor(sess)
}

// Open mounts a table for the caller and runs its first load. A failed load
// still mounts the view: it stays in the loading state and the failure is
// delivered as a notification.
func (s *ViewService) Open(ctx context.Context, sess session.Session, name string) (string, collection.View, error) {
	def, err := s.catalog.Lookup(name)
	if err != nil {
		return "", nil, err
	}

	client, ok := s.upstreams[def.Service]
	if !ok || client == nil {
		return "", nil, fmt.Errorf("%w: no upstream configured for %s", model.ErrCollectionNotFound, def.Name)
	}

	id := uuid.NewString()
	owner := sess.Owner()
	logger := s.logger.With("view_id", id, "collection", def.Name)
	if !def.Allows(sess) {
		logger.Info("opening collection outside the caller's roles", "role", sess.Claims.Role, "roles", def.Roles)
	}

	view, err := def.Open(s.ctx, collection.OpenParams{
		Client:  client.WithTokens(sess),
		Session: sess,
		Notifier: table.Tee(
			table.LogNotifier{Logger: logger},
			busNotifier{bus: s.bus, viewID: id, actorID: owner},
		),
		Logger: logger,
	})
	if err != nil {
		return "", nil, err
	}

	s.views.SetDefault(id, &mountedView{id: id, owner: owner, view: view})
	s.publish(event.TypeViewOpened, id, owner, def.Name)

	if err := view.Load(ctx); err != nil {
		logger.Debug("initial load failed", "error", err)
	}

	return id, view, nil
}

// Get returns the caller's view and extends its lifetime. Views owned by
// another session are reported as missing.
func (s *ViewService) Get(sess session.Session, id string) (collection.View, error) {
	mv, err := s.lookup(sess, id)
	if err != nil {
		return nil, err
	}

	s.views.SetDefault(id, mv)
	return mv.view, nil
}

func (s *ViewService) CloseView(sess session.Session, id string) error {
	if _, err := s.lookup(sess, id); err != nil {
		return err
	}

	s.views.Delete(id)
	return nil
}

func (s *ViewService) Count() int {
	return s.views.ItemCount()
}

// Shutdown cancels every in-flight table operation and unmounts all views.
func (s *ViewService) Shutdown() {
	s.cancel()
	for id := range s.views.Items() {
		s.views.Delete(id)
	}
}

func (s *ViewService) lookup(sess session.Session, id string) (*mountedView, error) {
	raw, ok := s.views.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrViewNotFound, id)
	}

	mv := raw.(*mountedView)
	if mv.owner != sess.Owner() {
		return nil, fmt.Errorf("%w: %s", model.ErrViewNotFound, id)
	}

	return mv, nil
}

func (s *ViewService) teardown(id string, raw any) {
	mv, ok := raw.(*mountedView)
	if !ok {
		return
	}

	mv.view.Close()
	s.publish(event.TypeViewClosed, id, mv.owner, mv.view.Collection())
	s.logger.Debug("view closed", "view_id", id, "collection", mv.view.Collection())
}

func (s *ViewService) publish(t event.Type, viewID string, owner string, collectionName string) {
	if s.bus == nil {
		return
	}

	s.bus.Publish(event.Event{
		Type:    t,
		ViewID:  viewID,
		ActorID: owner,
		Payload: map[string]string{"collection": collectionName},
	})
}

type busNotifier struct {
	bus     event.Bus
	viewID  string
	actorID string
}

func (b busNotifier) Notify(n table.Notification) {
	if b.bus == nil {
		return
	}

	b.bus.Publish(event.Event{
		Type:    event.TypeNotification,
		ViewID:  b.viewID,
		ActorID: b.actorID,
		Payload: n,
	})
}
