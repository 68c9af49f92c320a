// Package selection holds the tenant and station the user works in.
//
// The state moves UNSET -> COMPANY -> READY. It is persisted in the local
// metadata table, read once at startup and written on every change.
// Tenant-scoped reads take the State as an explicit input to their key
// builders instead of reading it mid-fetch.
package selection

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/hangarkeeper/internal/client/models"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/hangarkeeper/internal/common"
	"github.com/dmitrijs2005/hangarkeeper/internal/dbx"
	"github.com/dmitrijs2005/hangarkeeper/internal/logging"
)

var ErrNoCompany = common.ErrNoCompanySelected

type Phase int

const (
	PhaseUnset Phase = iota
	PhaseCompany
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseCompany:
		return "company"
	case PhaseReady:
		return "ready"
	default:
		return "unset"
	}
}

type State struct {
	Company *models.Company
	Station string
}

func (s State) Phase() Phase {
	switch {
	case s.Company == nil:
		return PhaseUnset
	case s.Station == "":
		return PhaseCompany
	default:
		return PhaseReady
	}
}

// CompanySlug is "" when no company is selected.
func (s State) CompanySlug() string {
	if s.Company == nil {
		return ""
	}
	return s.Company.Slug
}

type Store struct {
	db  *sql.DB
	log logging.Logger

	mu        sync.RWMutex
	state     State
	listeners map[int]func(State)
	nextID    int
}

func NewStore(db *sql.DB, log logging.Logger) *Store {
	if log == nil {
		log = logging.Nop()
	}
	return &Store{db: db, log: log, listeners: make(map[int]func(State))}
}

// Load reads the persisted selection. An unreadable company record is
// treated as no selection rather than an error.
func (s *Store) Load(ctx context.Context) error {
	repo := metadata.NewSQLiteRepository(s.db)

	rawCompany, err := repo.Get(ctx, common.SelectedCompanyKey)
	if err != nil {
		return fmt.Errorf("load selection: %w", err)
	}
	rawStation, err := repo.Get(ctx, common.SelectedStationKey)
	if err != nil {
		return fmt.Errorf("load selection: %w", err)
	}

	var st State
	if len(rawCompany) > 0 {
		var c models.Company
		if err := json.Unmarshal(rawCompany, &c); err != nil || c.Slug == "" {
			s.log.Warn(ctx, "ignoring malformed selected company", "error", err)
		} else {
			st.Company = &c
			st.Station = string(rawStation)
		}
	}

	s.set(st)
	return nil
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	if st.Company != nil {
		c := *st.Company
		st.Company = &c
	}
	return st
}

func (s *Store) Phase() Phase {
	return s.State().Phase()
}

// SelectCompany persists company. Switching to a different slug clears the
// station, which belongs to the previous tenant.
func (s *Store) SelectCompany(ctx context.Context, company models.Company) error {
	if company.Slug == "" {
		return fmt.Errorf("select company: %w", ErrNoCompany)
	}
	data, err := json.Marshal(company)
	if err != nil {
		return fmt.Errorf("select company: %w", err)
	}

	cur := s.State()
	clearStation := cur.CompanySlug() != company.Slug

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.SelectedCompanyKey, data); err != nil {
			return err
		}
		if clearStation {
			return repo.Delete(ctx, common.SelectedStationKey)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("select company: %w", err)
	}

	next := State{Company: &company, Station: cur.Station}
	if clearStation {
		next.Station = ""
	}
	s.set(next)
	s.log.Info(ctx, "company selected", "company", company.Slug)
	return nil
}

// SelectStation requires a selected company.
func (s *Store) SelectStation(ctx context.Context, station string) error {
	cur := s.State()
	if cur.Company == nil {
		return ErrNoCompany
	}
	if station == "" {
		return fmt.Errorf("select station: %w", common.ErrNoStationSelected)
	}

	repo := metadata.NewSQLiteRepository(s.db)
	if err := repo.Set(ctx, common.SelectedStationKey, []byte(station)); err != nil {
		return fmt.Errorf("select station: %w", err)
	}

	cur.Station = station
	s.set(cur)
	s.log.Info(ctx, "station selected", "company", cur.CompanySlug(), "station", station)
	return nil
}

// Reset clears both fields and their durable copy.
func (s *Store) Reset(ctx context.Context) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).Delete(ctx, common.SelectedCompanyKey, common.SelectedStationKey)
	})
	if err != nil {
		return fmt.Errorf("reset selection: %w", err)
	}
	s.set(State{})
	return nil
}

// Subscribe calls fn after every change. The returned func removes fn.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) set(st State) {
	s.mu.Lock()
	s.state = st
	fns := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	snapshot := s.State()
	for _, fn := range fns {
		fn(snapshot)
	}
}
