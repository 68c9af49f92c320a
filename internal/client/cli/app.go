package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/hangarkeeper/internal/client/querycache"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/selection"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/services"
	"github.com/dmitrijs2005/hangarkeeper/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// pingTimeout bounds a single connectivity probe.
const pingTimeout = 3 * time.Second

// Services is the set of resource services the commands run against.
type Services struct {
	Auth      services.AuthService
	Companies services.CompanyService
	Warehouse services.WarehouseService
	Flights   services.FlightService
	Credits   services.CreditService
	Safety    services.SafetyService
	HR        services.HRService
}

// Deps is everything NewApp needs. In and Out default to the process
// stdin/stdout, Navigator to one writing to Out.
type Deps struct {
	Services      Services
	Selection     *selection.Store
	Cache         *querycache.Cache
	Navigator     *Navigator
	Log           logging.Logger
	CheckInterval time.Duration
	In            io.Reader
	Out           io.Writer
}

type App struct {
	svc      Services
	sel      *selection.Store
	cache    *querycache.Cache
	nav      *Navigator
	log      logging.Logger
	interval time.Duration
	out      io.Writer
	reader   *bufio.Reader

	loggedIn atomic.Bool
	email    string

	mu   sync.Mutex
	mode Mode

	commands *registry
}

func NewApp(d Deps) *App {
	if d.Log == nil {
		d.Log = logging.Nop()
	}
	if d.In == nil {
		d.In = os.Stdin
	}
	if d.Out == nil {
		d.Out = os.Stdout
	}
	if d.Navigator == nil {
		d.Navigator = NewNavigator(d.Out)
	}

	a := &App{
		svc:      d.Services,
		sel:      d.Selection,
		cache:    d.Cache,
		nav:      d.Navigator,
		log:      d.Log,
		interval: d.CheckInterval,
		out:      d.Out,
		reader:   bufio.NewReader(d.In),
	}
	a.commands = a.buildCommands()
	return a
}

// Run restores the persisted session, starts the connectivity watcher and
// blocks in the REPL until the user exits or input ends.
func (a *App) Run(ctx context.Context) error {
	if err := a.sel.Load(ctx); err != nil {
		return err
	}
	st, err := a.svc.Auth.Status(ctx)
	if err != nil {
		return err
	}
	a.loggedIn.Store(st.LoggedIn)
	a.email = st.Claims.Email

	fmt.Fprintln(a.out, "Welcome to HangarKeeper CLI (type 'help' for commands)")
	if !st.LoggedIn {
		fmt.Fprintln(a.out, "You are not logged in, type 'login' to start")
	}

	if a.interval > 0 {
		go a.StartOnlineStatusWatcher(ctx, a.interval)
	}

	runREPL(ctx, a, a.reader, a.out)
	return nil
}

func (a *App) isLoggedIn() bool {
	if _, fired := a.nav.take(); fired {
		a.loggedIn.Store(false)
		a.email = ""
	}
	return a.loggedIn.Load()
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// setMode switches to mode and returns the previous one.
func (a *App) setMode(mode Mode) Mode {
	a.mu.Lock()
	prev := a.mode
	a.mode = mode
	a.mu.Unlock()

	if prev != mode {
		a.log.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
	return prev
}

// checkOnline probes the API once. Coming back from offline invalidates
// every cached query so observed reads resynchronise.
func (a *App) checkOnline(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := a.svc.Auth.Ping(pctx)
	cancel()

	if err != nil {
		a.setMode(ModeOffline)
		return
	}
	if prev := a.setMode(ModeOnline); prev == ModeOffline {
		n := a.cache.InvalidateAll()
		a.log.Info(ctx, "back online, cache invalidated", "entries", n)
	}
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	a.checkOnline(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) prompt() string {
	s := "hk"
	if a.email != "" && a.loggedIn.Load() {
		s += " " + a.email
	}
	st := a.sel.State()
	if slug := st.CompanySlug(); slug != "" {
		s += " " + slug
		if st.Station != "" {
			s += "/" + st.Station
		}
	}
	if m := a.Mode(); m != "" {
		s += " (" + string(m) + ")"
	}
	return promptStyle.Render(s+">") + " "
}
