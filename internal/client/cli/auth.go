package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/clansession/internal/client/api"
	"github.com/dmitrijs2005/clansession/internal/shared"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var errBadAnswer = errors.New("captcha answer must be an x offset or x,y pairs")

// Register prompts for a username and password and creates the account.
// Nothing is stored locally; the user signs in with login afterwards.
func (a *App) Register(ctx context.Context) error {
	username, password, err := a.promptCredentials()
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	code, err := a.solveCaptcha(ctx)
	if err != nil {
		return err
	}

	if err := a.auth.Register(ctx, username, string(password), code); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Success! You can login now.")
	return nil
}

// Login prompts for credentials, optionally solves a captcha, and signs in.
// The team context is loaded as part of the sign-in.
func (a *App) Login(ctx context.Context) error {
	username, password, err := a.promptCredentials()
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	code, err := a.solveCaptcha(ctx)
	if err != nil {
		return err
	}

	if err := a.auth.Login(ctx, username, string(password), code); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Login successful")
	if cur := a.teams.Current(); cur != nil {
		fmt.Fprintf(a.out, "Current team: %s (%d)\n", cur.SectName, cur.SectID)
	}
	return nil
}

// Logout tears the session down: server logout, then tokens, user cache and
// team context are cleared.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Teardown(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// Refresh trades the stored refresh token for a new pair.
func (a *App) Refresh(ctx context.Context) error {
	if err := a.auth.RefreshToken(ctx); err != nil {
		return err
	}
	exp, _, err := a.tokens.ExpiresAt(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Token refreshed, valid until %s\n", exp.Format("2006-01-02 15:04:05"))
	return nil
}

func (a *App) promptCredentials() (string, []byte, error) {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return "", nil, err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return "", nil, err
	}
	return username, password, nil
}

// solveCaptcha fetches a challenge of the configured type and asks the user
// for the answer. An empty answer, a disabled captcha or an unreachable
// captcha service yield an empty verification.
func (a *App) solveCaptcha(ctx context.Context) (string, error) {
	if a.config.CaptchaType == "" {
		return "", nil
	}

	ch, err := a.captcha.Fetch(ctx, a.config.CaptchaType)
	if err != nil {
		a.log.Warn(ctx, "captcha unavailable", "error", err)
		return "", nil
	}

	prompt := "Captcha: enter the slide x offset (empty to skip)"
	if ch.Type == api.CaptchaClickWord {
		prompt = fmt.Sprintf("Captcha: click %s, enter x,y pairs separated by spaces (empty to skip)", strings.Join(ch.WordList, " "))
	}
	answer, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return "", nil
	}

	points, err := parsePoints(ch.Type, answer)
	if err != nil {
		return "", err
	}
	return a.captcha.Verify(ctx, ch, points)
}

// parsePoints reads "120" or "120,5" for a block puzzle and "x,y x,y ..."
// for click-word.
func parsePoints(captchaType, s string) ([]api.Point, error) {
	fields := strings.Fields(s)
	if captchaType == api.CaptchaBlockPuzzle && len(fields) == 1 && !strings.Contains(fields[0], ",") {
		x, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, errBadAnswer
		}
		return []api.Point{{X: x, Y: 5}}, nil
	}

	points := make([]api.Point, 0, len(fields))
	for _, f := range fields {
		xs, ys, ok := strings.Cut(f, ",")
		if !ok {
			return nil, errBadAnswer
		}
		x, errX := strconv.ParseFloat(xs, 64)
		y, errY := strconv.ParseFloat(ys, 64)
		if errX != nil || errY != nil {
			return nil, errBadAnswer
		}
		points = append(points, api.Point{X: x, Y: y})
	}
	return points, nil
}
