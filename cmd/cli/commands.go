package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/and161185/barkcard/internal/client"
	"github.com/and161185/barkcard/internal/forms"
	"github.com/and161185/barkcard/internal/session"
)

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

func (a *app) timeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.cfg.Timeout)
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := a.flags("register")
	email := fs.String("email", "", "email")
	p := fs.String("p", "", "password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	pwd, again, err := a.password(*p, true)
	if err != nil {
		return err
	}
	form := forms.SignUp{Email: *email, Password: pwd, Confirm: again}
	if err := form.Validate(); err != nil {
		return err
	}

	ctx, cancel := a.timeout(ctx)
	defer cancel()
	c, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	id, err := c.Auth.SignUp(ctx, *email, pwd)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "account created for %s; check your inbox for the verification link\n", id.Email)
	return nil
}

func (a *app) verify(ctx context.Context, args []string) error {
	fs := a.flags("verify")
	token := fs.String("token", "", "verification token")
	if err := fs.Parse(args); err != nil || *token == "" {
		return errUsage
	}

	ctx, cancel := a.timeout(ctx)
	defer cancel()
	c, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	id, err := c.Auth.VerifyEmail(ctx, *token)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "email %s verified\n", id.Email)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	email := fs.String("email", "", "email")
	p := fs.String("p", "", "password (prompted when empty)")
	if err := fs.Parse(args); err != nil || *email == "" {
		return errUsage
	}
	pwd, _, err := a.password(*p, false)
	if err != nil {
		return err
	}

	ctx, cancel := a.timeout(ctx)
	defer cancel()
	s, err := a.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if _, err := s.client.Auth.SignIn(ctx, *email, pwd); err != nil {
		return err
	}
	v, err := waitFor(ctx, s.monitor, func(v session.View) bool {
		return settled(v) && v.Identity != nil
	})
	if err != nil {
		return err
	}
	printJSON(a.out, statusOf(v))
	return nil
}

func (a *app) logout(ctx context.Context, _ []string) error {
	ctx, cancel := a.timeout(ctx)
	defer cancel()
	s, err := a.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.monitor.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "ok")
	return nil
}

func (a *app) status(ctx context.Context, _ []string) error {
	ctx, cancel := a.timeout(ctx)
	defer cancel()
	s, err := a.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	v, err := waitFor(ctx, s.monitor, settled)
	if err != nil {
		return err
	}
	printJSON(a.out, statusOf(v))
	return nil
}

// watch prints the routed screen after every change until interrupted.
func (a *app) watch(ctx context.Context, _ []string) error {
	s, err := a.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	w := &syncWriter{w: a.out}
	cancel := s.monitor.Subscribe(func(v session.View) { w.printChanged(routeLine(v)) })
	defer cancel()

	<-ctx.Done()
	return nil
}

func (a *app) recheck(ctx context.Context, _ []string) error {
	ctx, cancel := a.timeout(ctx)
	defer cancel()
	s, err := a.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	v, err := waitFor(ctx, s.monitor, settled)
	if err != nil {
		return err
	}
	if v.Identity == nil {
		return errNotSignedIn
	}
	ok, err := s.monitor.CheckVerification(ctx)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "email not verified yet")
		return nil
	}
	if v, err = waitFor(ctx, s.monitor, settled); err != nil {
		return err
	}
	printJSON(a.out, statusOf(v))
	return nil
}

func (a *app) completeProfile(ctx context.Context, args []string) error {
	fs := a.flags("complete-profile")
	var f forms.Profile
	fs.StringVar(&f.FirstName, "first", "", "first name")
	fs.StringVar(&f.MiddleName, "middle", "", "middle name (optional)")
	fs.StringVar(&f.LastName, "last", "", "last name")
	fs.StringVar(&f.Mobile, "mobile", "", "mobile number")
	fs.StringVar(&f.StudentNumber, "student", "", "student number (YYYY-######)")
	fs.StringVar(&f.Region, "region", "", "region")
	fs.StringVar(&f.Province, "province", "", "province")
	fs.StringVar(&f.Municipality, "municipality", "", "city or municipality")
	fs.StringVar(&f.Barangay, "barangay", "", "barangay")
	fs.StringVar(&f.ZipCode, "zip", "", "zip code")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if err := f.Validate(); err != nil {
		return err
	}

	ctx, cancel := a.timeout(ctx)
	defer cancel()
	s, err := a.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	v, err := s.signedIn(ctx)
	if err != nil {
		return err
	}
	if err := client.New(s.client.Docs, a.log).CompleteProfile(ctx, *v.Identity, f); err != nil {
		return err
	}
	v, err = waitFor(ctx, s.monitor, func(v session.View) bool { return v.State == session.StateComplete })
	if err != nil {
		return err
	}
	printJSON(a.out, statusOf(v))
	return nil
}

type txOut struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	Amount    float64   `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
	OrderID   string    `json:"orderId,omitempty"`
	Items     []string  `json:"items,omitempty"`
}

type historyOut struct {
	Filter       string        `json:"filter"`
	Totals       client.Totals `json:"totals"`
	Transactions []txOut       `json:"transactions"`
}

func historyView(h client.History, f client.Filter) historyOut {
	out := historyOut{Filter: string(f), Totals: h.Totals(), Transactions: []txOut{}}
	for _, tx := range h.Filter(f) {
		out.Transactions = append(out.Transactions, txOut{
			ID: tx.ID, Title: tx.Title, Type: tx.Type, Amount: tx.Amount,
			Timestamp: tx.Timestamp, OrderID: tx.OrderID, Items: tx.Items,
		})
	}
	return out
}

func (a *app) transactions(ctx context.Context, args []string) error {
	fs := a.flags("transactions")
	filter := fs.String("filter", "all", "all, purchases or reloads")
	follow := fs.Bool("follow", false, "keep printing on every change")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	f, err := client.ParseFilter(*filter)
	if err != nil {
		return err
	}

	base := ctx
	ctx, cancel := a.timeout(ctx)
	defer cancel()
	s, err := a.openSession(base)
	if err != nil {
		return err
	}
	defer s.Close()

	v, err := s.signedIn(ctx)
	if err != nil {
		return err
	}
	cl := client.New(s.client.Docs, a.log)

	if !*follow {
		printJSON(a.out, historyView(cl.Transactions(ctx, v.Profile.StudentID), f))
		return nil
	}

	w := &syncWriter{w: a.out}
	stop := cl.WatchTransactions(base, v.Profile.StudentID, func(h client.History) {
		w.json(historyView(h, f))
	})
	defer stop()
	<-base.Done()
	return nil
}

func (a *app) deactivate(ctx context.Context, args []string) error {
	fs := a.flags("deactivate")
	confirm := fs.String("confirm", "", "type AGREED to confirm")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *confirm == "" {
		answer, err := a.ask("This permanently deactivates your account. Type " + client.DeactivationConfirmation + " to confirm: ")
		if err != nil {
			return err
		}
		*confirm = answer
	}

	ctx, cancel := a.timeout(ctx)
	defer cancel()
	s, err := a.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	v, err := s.signedIn(ctx)
	if err != nil {
		return err
	}
	if err := client.New(s.client.Docs, a.log).Deactivate(ctx, *v.Identity, *confirm); err != nil {
		return err
	}
	if _, err := waitFor(ctx, s.monitor, func(v session.View) bool {
		return v.State == session.StateUnauthenticated
	}); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "account deactivated; signed out")
	return nil
}

func (a *app) support(ctx context.Context, args []string) error {
	fs := a.flags("support")
	var f forms.Support
	fs.StringVar(&f.Email, "email", "", "contact email (defaults to the account email)")
	fs.StringVar(&f.ServiceType, "service", "", "service type")
	fs.StringVar(&f.IssueCategory, "category", "", "issue category")
	fs.StringVar(&f.AtMerchant, "merchant", "", "at the merchant's store: Yes or No")
	fs.StringVar(&f.SelectedOrder, "order", "", "related order (optional)")
	fs.StringVar(&f.Subject, "subject", "", "subject")
	fs.StringVar(&f.Message, "message", "", "message")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	ctx, cancel := a.timeout(ctx)
	defer cancel()
	s, err := a.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	v, err := s.signedIn(ctx)
	if err != nil {
		return err
	}
	if f.Email == "" {
		f.Email = v.Identity.Email
	}
	id, err := client.New(s.client.Docs, a.log).SubmitSupport(ctx, *v.Identity, v.Profile, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "support request %s filed\n", id)
	return nil
}
