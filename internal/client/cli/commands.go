package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/clansession/internal/client/team"
	"github.com/dmitrijs2005/clansession/internal/client/tokens"
)

const defaultTaskPageSize = 20

var errNotLoggedIn = errors.New("not logged in")

type usageError string

func (e usageError) Error() string { return "usage: " + string(e) }

// WhoAmI prints the cached profile, ignoring its age, and the permissions.
func (a *App) WhoAmI(ctx context.Context) error {
	u, err := a.users.Get(ctx, true)
	if err != nil {
		return err
	}
	if u == nil {
		return errNotLoggedIn
	}

	name, _, err := a.users.DisplayName(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s (id %d, username %s)\n", name, u.CharID, u.Username)
	if u.Email != nil {
		fmt.Fprintf(a.out, "email: %s\n", *u.Email)
	}

	perms, err := a.users.Permissions(ctx)
	if err != nil {
		return err
	}
	if len(perms) > 0 {
		fmt.Fprintf(a.out, "permissions: %s\n", strings.Join(perms, ", "))
	}
	return nil
}

// Status prints what the local session stores currently hold.
func (a *App) Status(ctx context.Context) error {
	has, err := a.tokens.HasToken(ctx)
	if err != nil {
		return err
	}
	if !has {
		fmt.Fprintln(a.out, "token: none")
	} else {
		expired, err := a.tokens.IsTokenExpired(ctx)
		if err != nil {
			return err
		}
		exp, _, err := a.tokens.ExpiresAt(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "token: present, expires %s, needs refresh: %t\n", exp.Format("2006-01-02 15:04:05"), expired)

		if access, _, err := a.tokens.AccessToken(ctx); err == nil {
			if claims, err := tokens.Inspect(access); err == nil && claims.Subject != "" {
				fmt.Fprintf(a.out, "token subject: %s\n", claims.Subject)
			}
		}
	}

	stale, err := a.users.IsCacheExpired(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "user cache stale: %t\n", stale)

	mode := a.teams.ViewMode()
	if cur := a.teams.Current(); cur != nil {
		fmt.Fprintf(a.out, "team: %s (sect %d, char %d), mode %s\n", cur.SectName, cur.SectID, cur.CharID, mode)
	} else {
		fmt.Fprintf(a.out, "team: none, mode %s\n", mode)
	}
	return nil
}

// ListTeams reloads the team list and prints it. The current team is marked
// with '*' and the default one with 'd'.
func (a *App) ListTeams(ctx context.Context) error {
	if err := a.ensureTeams(ctx); err != nil {
		return err
	}
	teams, err := a.teams.LoadTeams(ctx)
	if err != nil {
		return err
	}
	if len(teams) == 0 {
		fmt.Fprintln(a.out, "No teams")
		return nil
	}

	var curID int64
	if cur := a.teams.Current(); cur != nil {
		curID = cur.SectID
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tNAME\tCHARACTER\tUNREAD\tTODO")
	for _, t := range teams {
		mark := ""
		if t.SectID == curID {
			mark += "*"
		}
		if t.IsDefault {
			mark += "d"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%d\t%d\n", mark, t.SectID, t.SectName, t.CharName, t.UnreadCount, t.TodoTaskCount)
	}
	fmt.Fprintf(tw, "\t\ttotal\t\t%d\t%d\n", a.teams.TotalUnreadCount(), a.teams.TotalTodoCount())
	return tw.Flush()
}

// Switch makes the given team current.
func (a *App) Switch(ctx context.Context, args []string) error {
	id, err := sectIDArg(args, "switch <id>")
	if err != nil {
		return err
	}
	if err := a.ensureTeams(ctx); err != nil {
		return err
	}
	if err := a.teams.SwitchTeam(ctx, id); err != nil {
		return err
	}

	cur := a.teams.Current()
	if cur == nil {
		fmt.Fprintln(a.out, "Switched, but the team is no longer listed")
		return nil
	}
	if err := a.users.SaveCurrentSect(ctx, cur.SectID, cur.SectName); err != nil {
		a.log.Warn(ctx, "saving current sect failed", "error", err)
	}
	fmt.Fprintf(a.out, "Current team: %s (%d)\n", cur.SectName, cur.SectID)
	return nil
}

// SetDefault marks the given team as the default one.
func (a *App) SetDefault(ctx context.Context, args []string) error {
	id, err := sectIDArg(args, "default <id>")
	if err != nil {
		return err
	}
	if err := a.ensureTeams(ctx); err != nil {
		return err
	}
	if err := a.teams.SetDefaultTeam(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Team %d is now the default\n", id)
	return nil
}

// SetMode switches between the single-team and the cross-team view.
func (a *App) SetMode(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("mode <single|global>")
	}
	mode := team.ViewMode(strings.ToUpper(args[0]))
	if !mode.Valid() {
		return usageError("mode <single|global>")
	}
	if err := a.ensureTeams(ctx); err != nil {
		return err
	}
	if err := a.teams.SetViewMode(ctx, mode); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "View mode: %s\n", mode)
	return nil
}

// Tasks lists tasks across all teams. Only available in global mode.
func (a *App) Tasks(ctx context.Context, args []string) error {
	const usage = "tasks [status] [page] [size]"

	var (
		status string
		page   = 1
		size   = defaultTaskPageSize
		err    error
	)
	if len(args) > 3 {
		return usageError(usage)
	}
	if len(args) > 0 {
		status = args[0]
	}
	if len(args) > 1 {
		if page, err = strconv.Atoi(args[1]); err != nil || page < 1 {
			return usageError(usage)
		}
	}
	if len(args) > 2 {
		if size, err = strconv.Atoi(args[2]); err != nil || size < 1 {
			return usageError(usage)
		}
	}

	if err := a.ensureTeams(ctx); err != nil {
		return err
	}
	res, err := a.teams.GlobalTasks(ctx, status, page, size)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTASK\tSTATUS\tTEAM")
	for _, t := range res.Records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", t.TaskID, t.TaskName, t.TaskStatus, t.SectName)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "page %d of %d, %d tasks\n", res.Current, res.Pages, res.Total)
	return nil
}

// ensureTeams initializes the team context on first use after sign-in.
func (a *App) ensureTeams(ctx context.Context) error {
	if a.teams.Initialized() {
		return nil
	}
	if !a.isLoggedIn(ctx) {
		return errNotLoggedIn
	}
	return a.teams.Init(ctx)
}

func sectIDArg(args []string, usage string) (int64, error) {
	if len(args) != 1 {
		return 0, usageError(usage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, usageError(usage)
	}
	return id, nil
}
