// Command signify is the terminal driver for the Signify client core:
// login/registration, the survey session flow, and the notification
// feed against a running backend.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/signify-health/signify-client/internal/config"
	"github.com/signify-health/signify-client/internal/gateway"
	"github.com/signify-health/signify-client/internal/models"
	"github.com/signify-health/signify-client/internal/notify"
	"github.com/signify-health/signify-client/internal/session"
	"github.com/signify-health/signify-client/internal/storage"
	"github.com/signify-health/signify-client/internal/survey"
)

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	app, err := newApp(cfg)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}
	defer app.Close()

	ctx := context.Background()
	in := bufio.NewScanner(os.Stdin)

	switch os.Args[1] {
	case "login":
		err = app.login(ctx, in)
	case "register":
		err = app.register(ctx, in)
	case "survey":
		err = app.runSurvey(ctx, in)
	case "notifications":
		err = app.listNotifications(ctx)
	case "read":
		if len(os.Args) < 3 {
			log.Fatalf("usage: signify read <notification-id>")
		}
		err = app.markRead(ctx, os.Args[2])
	case "whoami":
		err = app.whoami()
	case "logout":
		err = app.sessions.Logout()
		if err == nil {
			fmt.Println("Logged out.")
		}
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%v", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: signify <command>

commands:
  login          log in with a phone number
  register       create an account
  survey         answer the active survey for your location
  notifications  list your notifications
  read <id>      mark one notification as read
  whoami         show the logged-in user
  logout         clear the local session`)
}

type app struct {
	kv       *storage.KVStore
	sessions *session.Store
	tokens   session.Tokens
	loader   *survey.Loader
	notifier *notify.Service
	submit   *survey.SubmitService
}

func newApp(cfg config.Config) (*app, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, err
	}
	kv, err := storage.Open(filepath.Join(cfg.DataDir, "signify.db"))
	if err != nil {
		return nil, err
	}
	key, err := session.LoadOrCreateKey(filepath.Join(cfg.DataDir, "seal.key"))
	if err != nil {
		return nil, err
	}
	sealer, err := session.NewSealer(key)
	if err != nil {
		return nil, err
	}
	deviceID, err := session.DeviceID(kv)
	if err != nil {
		return nil, err
	}

	tokens := session.NewTokens(kv)
	gw := gateway.NewClient(cfg.APIBaseURL, tokens,
		gateway.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		gateway.WithNotifier(func(msg string) { fmt.Fprintln(os.Stderr, msg) }),
		gateway.WithDeviceID(deviceID),
	)
	return &app{
		kv:       kv,
		sessions: session.NewStore(kv, gw, session.WithSealer(sealer)),
		tokens:   tokens,
		loader:   survey.NewLoader(gw),
		notifier: notify.NewService(gw),
		submit:   survey.NewSubmitService(gw),
	}, nil
}

func (a *app) Close() {
	if err := a.kv.Close(); err != nil {
		log.Printf("close store: %v", err)
	}
}

func (a *app) login(ctx context.Context, in *bufio.Scanner) error {
	phone, _ := prompt(in, "Phone number: ")
	user, err := a.sessions.Login(ctx, phone)
	if errors.Is(err, session.ErrNotRegistered) {
		fmt.Println("Phone number not found. Please register first.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("Welcome back, %s\n", displayName(user))
	return nil
}

func (a *app) register(ctx context.Context, in *bufio.Scanner) error {
	var reg models.RegisterUser
	reg.PhoneNumber, _ = prompt(in, "Phone number: ")
	reg.Name, _ = prompt(in, "Name (optional): ")
	reg.Country, _ = prompt(in, "Country: ")
	reg.District, _ = prompt(in, "District: ")
	reg.Sector, _ = prompt(in, "Sector: ")
	user, err := a.sessions.Register(ctx, reg)
	if err != nil {
		return err
	}
	fmt.Printf("Account created. Welcome, %s\n", displayName(user))
	return nil
}

func (a *app) runSurvey(ctx context.Context, in *bufio.Scanner) error {
	user := a.sessions.CurrentUser()
	if user == nil {
		return errors.New("not logged in; run `signify login` first")
	}
	sv, err := a.loader.LoadActive(ctx, *user)
	if err != nil {
		return err
	}
	if sv == nil {
		fmt.Println("No survey is active for your area right now. Check back later.")
		return nil
	}

	engine := survey.NewEngine(sv, *user, a.submit)
	if engine.State() == survey.StateEmpty {
		fmt.Println("This survey has no questions.")
		return nil
	}

	fmt.Println(sv.Title)
	for {
		q, ok := engine.Current()
		if !ok {
			break
		}
		fmt.Printf("\nQuestion %d of %d\n%s\n", engine.Position()+1, engine.Total(), q.Text)
		printAffordance(q)
		if prior, ok := engine.Answered(q.ID); ok {
			fmt.Printf("(previous answer: %s; answering again replaces it)\n", prior)
		}

		raw, ok := prompt(in, "> ")
		if !ok {
			return errors.New("input closed before the survey was finished")
		}
		if strings.EqualFold(raw, "back") {
			if !engine.Back() {
				fmt.Println("Already at the first question.")
			}
			continue
		}

		err := engine.Answer(ctx, raw)
		var invalid *survey.ValidationError
		switch {
		case errors.As(err, &invalid):
			fmt.Println(invalid.Reason)
		case err != nil:
			// Submission failure: the session is complete, the latch is
			// still open, and retry is the user's call.
			fmt.Printf("Could not submit your answers: %v\n", err)
			again, _ := prompt(in, "Retry? (yes/no) ")
			if strings.EqualFold(again, "yes") {
				if err := engine.Retry(ctx); err != nil {
					return err
				}
				break
			}
			return err
		}
	}

	fmt.Println("\nThank you! Your responses help protect your community.")
	return nil
}

func printAffordance(q survey.Question) {
	switch q.Kind {
	case survey.KindYesNo:
		fmt.Println("Answer yes or no.")
	case survey.KindNumber:
		fmt.Println("Enter a number.")
	case survey.KindChoice:
		for _, opt := range q.Options {
			fmt.Printf("  - %s\n", opt.Text)
		}
	}
}

func (a *app) listNotifications(ctx context.Context) error {
	user := a.sessions.CurrentUser()
	if user == nil {
		return errors.New("not logged in")
	}
	feed := a.notifier.List(ctx, user.UserID)
	if feed.Stale {
		fmt.Println("(offline: showing sample notifications)")
	}
	if len(feed.Items) == 0 {
		fmt.Println("No notifications.")
		return nil
	}
	now := time.Now().UTC()
	for _, n := range feed.Items {
		marker := "•"
		if n.IsRead {
			marker = " "
		}
		fmt.Printf("%s [%s] %s: %s (%s)\n", marker, n.Type, n.Title, n.Message, notify.TimeAgo(n.CreatedAt, now))
	}
	fmt.Printf("%d unread\n", feed.Unread())
	return nil
}

func (a *app) markRead(ctx context.Context, id string) error {
	user := a.sessions.CurrentUser()
	if user == nil {
		return errors.New("not logged in")
	}
	feed := a.notifier.List(ctx, user.UserID)
	if err := a.notifier.MarkRead(ctx, feed, id); err != nil {
		return err
	}
	fmt.Println("Marked as read.")
	return nil
}

func (a *app) whoami() error {
	user := a.sessions.CurrentUser()
	if user == nil {
		fmt.Println("Not logged in.")
		return nil
	}
	fmt.Printf("%s (%s)\n%s / %s / %s\n", displayName(user), user.PhoneNumber, user.Country, user.District, user.Sector)
	if exp, ok := a.tokens.Expiry(); ok {
		fmt.Printf("session expires %s\n", exp.Format("2006-01-02 15:04"))
	}
	return nil
}

func prompt(in *bufio.Scanner, label string) (string, bool) {
	fmt.Print(label)
	if !in.Scan() {
		return "", false
	}
	return strings.TrimSpace(in.Text()), true
}

func displayName(u *models.AuthUser) string {
	if u.Name != "" {
		return u.Name
	}
	return u.PhoneNumber
}
