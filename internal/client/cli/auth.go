package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/hangarkeeper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login authenticates with an email (argument or prompt) and a password
// read without echo. The password is wiped before returning.
func (a *App) Login(ctx context.Context, args []string) error {
	var email string
	if len(args) > 0 {
		email = args[0]
	} else {
		var err error
		if email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
			return err
		}
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.svc.Auth.Login(ctx, email, password); err != nil {
		return err
	}

	a.nav.take()
	a.loggedIn.Store(true)
	a.email = email
	fmt.Fprintln(a.out, "Logged in as", email)
	return nil
}

// Logout drops the credential, the cached server state and the selection.
func (a *App) Logout(ctx context.Context, _ []string) error {
	if err := a.svc.Auth.Logout(ctx); err != nil {
		return err
	}
	a.loggedIn.Store(false)
	a.email = ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) Status(ctx context.Context, _ []string) error {
	st, err := a.svc.Auth.Status(ctx)
	if err != nil {
		return err
	}

	rows := [][]string{{"logged in", strconv.FormatBool(st.LoggedIn)}}
	if st.Claims.Email != "" {
		rows = append(rows, []string{"user", st.Claims.Email})
	}
	if !st.Claims.ExpiresAt.IsZero() {
		exp := st.Claims.ExpiresAt.Format(time.RFC3339)
		if st.Claims.Expired(time.Now()) {
			exp += " (expired)"
		}
		rows = append(rows, []string{"token expires", exp})
	}
	if c := st.Selection.Company; c != nil {
		rows = append(rows, []string{"company", c.Slug})
	}
	if st.Selection.Station != "" {
		rows = append(rows, []string{"station", st.Selection.Station})
	}
	rows = append(rows, []string{"selection", st.Selection.Phase().String()})
	if m := a.Mode(); m != "" {
		rows = append(rows, []string{"mode", string(m)})
	}

	renderTable(a.out, []string{"", ""}, rows)
	return nil
}

// Refresh marks every cached query stale; observed ones refetch.
func (a *App) Refresh(_ context.Context, _ []string) error {
	n := a.cache.InvalidateAll()
	fmt.Fprintf(a.out, "Invalidated %d cached queries\n", n)
	return nil
}

func (a *App) CacheStats(_ context.Context, _ []string) error {
	s := a.cache.Stats()
	renderTable(a.out, []string{"entries", "hits", "misses", "fetches", "errors", "superseded", "invalidations", "evictions"},
		[][]string{{
			strconv.Itoa(s.Entries),
			strconv.FormatInt(s.Hits, 10),
			strconv.FormatInt(s.Misses, 10),
			strconv.FormatInt(s.Fetches, 10),
			strconv.FormatInt(s.FetchErrors, 10),
			strconv.FormatInt(s.Superseded, 10),
			strconv.FormatInt(s.Invalidations, 10),
			strconv.FormatInt(s.Evictions, 10),
		}})
	return nil
}
