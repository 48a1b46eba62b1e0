package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/parkinglot/internal/client"
	"github.com/Domenick1991/parkinglot/internal/domain"
	"github.com/spf13/pflag"
)

func commands() []*command {
	return []*command{
		{
			name:    "login",
			usage:   "login --username NAME --password PASS",
			summary: "sign in and save the token",
			flags: func(fs *pflag.FlagSet) {
				fs.StringP("username", "u", "", "username")
				fs.StringP("password", "p", "", "password")
			},
			run: runLogin,
		},
		{
			name:    "logout",
			usage:   "logout",
			summary: "revoke the saved token",
			run:     runLogout,
		},
		{
			name:    "whoami",
			usage:   "whoami",
			summary: "show the signed-in user and remaining session time",
			run:     runWhoami,
		},
		{
			name:    "spaces",
			usage:   "spaces [--state S] [--type T] [--section X]",
			summary: "list parking spaces",
			flags: func(fs *pflag.FlagSet) {
				fs.String("state", "", "available, occupied or maintenance")
				fs.String("type", "", "regular, motorcycle or accessible")
				fs.String("section", "", "section letter")
			},
			run: runSpaces,
		},
		{
			name:    "stats",
			usage:   "stats",
			summary: "occupancy and today's revenue",
			run:     runStats,
		},
		{
			name:    "enter",
			usage:   "enter PLATE [--type T]",
			summary: "register a vehicle entry",
			flags: func(fs *pflag.FlagSet) {
				fs.StringP("type", "t", string(domain.VehicleRegular), "vehicle type")
			},
			run: runEnter,
		},
		{
			name:    "exit",
			usage:   "exit SESSION_ID [--payment cash|card] [--yes]",
			summary: "check a vehicle out and print the receipt",
			flags: func(fs *pflag.FlagSet) {
				fs.String("payment", "", "payment method; prompted when empty")
				fs.BoolP("yes", "y", false, "skip the confirmation prompt")
			},
			run: runExit,
		},
		{
			name:    "active",
			usage:   "active [--type T] [--plate P] [--min-hours H] [--alert] [--watch]",
			summary: "list vehicles currently parked",
			flags: func(fs *pflag.FlagSet) {
				fs.String("type", "", "vehicle type")
				fs.String("plate", "", "plate substring")
				fs.Float64("min-hours", 0, "only sessions parked at least this long")
				fs.Bool("alert", false, "only long-stay sessions")
				fs.BoolP("watch", "w", false, "keep refreshing")
				fs.Duration("interval", client.DefaultPollInterval, "refresh interval with --watch")
			},
			run: runActive,
		},
	}
}

func runLogin(ctx context.Context, a *app, fs *pflag.FlagSet) error {
	username, _ := fs.GetString("username")
	password, _ := fs.GetString("password")
	if username == "" || password == "" {
		return fmt.Errorf("login: --username and --password are required")
	}
	result, err := a.client.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if err := a.saveToken(result.Token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	fmt.Fprintf(a.out, "Signed in as %s (%s) until %s\n", result.User.Username, result.User.Role, result.ExpiresAt.Local().Format(time.DateTime))
	return nil
}

func runLogout(ctx context.Context, a *app, _ *pflag.FlagSet) error {
	if err := a.client.Logout(ctx); err != nil {
		return err
	}
	if err := a.saveToken(""); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func runWhoami(ctx context.Context, a *app, _ *pflag.FlagSet) error {
	info, err := a.client.SessionInfo(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s (%s), session ends in %s\n", info.Username, info.Role, info.RemainingText)
	return nil
}

func runSpaces(ctx context.Context, a *app, fs *pflag.FlagSet) error {
	state, _ := fs.GetString("state")
	vehicleType, _ := fs.GetString("type")
	section, _ := fs.GetString("section")

	list, err := a.client.ListSpaces(ctx, domain.SpaceFilter{
		State:   domain.SpaceState(state),
		Type:    domain.VehicleType(vehicleType),
		Section: section,
	})
	if err != nil {
		return err
	}

	w := a.table()
	fmt.Fprintln(w, "ID\tNUMBER\tTYPE\tSTATE\tFLOOR\tSECTION")
	for _, s := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\n", s.ID, s.Number, typeLabel(s.Type), s.State, s.Floor, s.Section)
	}
	return w.Flush()
}

func runStats(ctx context.Context, a *app, _ *pflag.FlagSet) error {
	dash, err := a.client.Dashboard(ctx)
	if err != nil {
		return err
	}
	w := a.table()
	fmt.Fprintf(w, "Spaces\t%d/%d occupied (%.1f%%)\n", dash.OccupiedSpaces, dash.TotalSpaces, dash.OccupancyPercent)
	fmt.Fprintf(w, "Active sessions\t%d\n", dash.ActiveSessions)
	fmt.Fprintf(w, "Registered vehicles\t%d\n", dash.RegisteredVehicles)
	fmt.Fprintf(w, "Today\t%s (%d transactions)\n", dash.TodayRevenue, dash.TransactionsToday)
	fmt.Fprintf(w, "This month\t%s\n", dash.MonthRevenue)
	return w.Flush()
}

func runEnter(ctx context.Context, a *app, fs *pflag.FlagSet) error {
	if fs.NArg() != 1 {
		return fmt.Errorf("enter: expected exactly one plate")
	}
	vehicleType, _ := fs.GetString("type")
	session, err := a.client.Enter(ctx, fs.Arg(0), domain.VehicleType(vehicleType))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Session %d: %s parked on space %s at %s\n",
		session.ID, session.Plate, session.SpaceNumber, session.EntryTime.Local().Format(time.TimeOnly))
	return nil
}

func runExit(ctx context.Context, a *app, fs *pflag.FlagSet) error {
	if fs.NArg() != 1 {
		return fmt.Errorf("exit: expected exactly one session id")
	}
	id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("exit: invalid session id %q", fs.Arg(0))
	}
	payment, _ := fs.GetString("payment")
	yes, _ := fs.GetBool("yes")

	session, err := findActive(ctx, a.client, id)
	if err != nil {
		return err
	}

	prompt := bufio.NewReader(a.in)
	wizard := client.NewCheckoutWizard(a.client)
	if err := wizard.Start(*session); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Session %d: %s on space %s, parked %s\n", session.ID, session.Plate, session.SpaceNumber, session.ElapsedText)
	if !yes && !ask(a, prompt, "Check out this vehicle? [y/N] ") {
		_ = wizard.Cancel()
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}
	if err := wizard.Confirm(); err != nil {
		return err
	}

	for {
		method := domain.PaymentMethod(payment)
		if method == "" {
			line, ok := readLine(a, prompt, "Payment method (cash/card): ")
			if !ok {
				_ = wizard.Cancel()
				return fmt.Errorf("exit: no payment method given")
			}
			method = domain.PaymentMethod(strings.ToLower(line))
		}
		receipt, err := wizard.ChoosePayment(ctx, method)
		if err == nil {
			printReceipt(a, receipt)
			return nil
		}
		if wizard.State() == client.WizardChoosingPayment {
			// Unknown method; ask again.
			fmt.Fprintf(a.errOut, "%v\n", err)
			payment = ""
			continue
		}
		var expired *client.AuthExpiredError
		if errors.As(err, &expired) {
			return err
		}
		fmt.Fprintf(a.errOut, "Checkout failed: %v\n", err)
		if yes || !ask(a, prompt, "Retry? [y/N] ") {
			return err
		}
		if err := wizard.Retry(); err != nil {
			return err
		}
	}
}

func findActive(ctx context.Context, c *client.Client, id int64) (*domain.ActiveSession, error) {
	active, err := c.ListActive(ctx, domain.ActiveFilter{})
	if err != nil {
		return nil, err
	}
	for i := range active {
		if active[i].ID == id {
			return &active[i], nil
		}
	}
	return nil, domain.NotFoundf("no active session %d", id)
}

func printReceipt(a *app, r *domain.Receipt) {
	w := a.table()
	fmt.Fprintf(w, "Plate\t%s\n", r.Transaction.Plate)
	fmt.Fprintf(w, "Space\t%s\n", r.Transaction.SpaceNumber)
	fmt.Fprintf(w, "Entry\t%s\n", r.Transaction.EntryTime.Local().Format(time.DateTime))
	fmt.Fprintf(w, "Exit\t%s\n", r.Transaction.ExitTime.Local().Format(time.DateTime))
	fmt.Fprintf(w, "Time\t%s (%.2f h)\n", r.ElapsedText, r.ElapsedHours)
	fmt.Fprintf(w, "Payment\t%s\n", r.Transaction.PaymentMethod)
	fmt.Fprintf(w, "Total\t%s\n", r.AmountFormatted)
	_ = w.Flush()
}

func runActive(ctx context.Context, a *app, fs *pflag.FlagSet) error {
	vehicleType, _ := fs.GetString("type")
	plate, _ := fs.GetString("plate")
	minHours, _ := fs.GetFloat64("min-hours")
	alert, _ := fs.GetBool("alert")
	watch, _ := fs.GetBool("watch")
	interval, _ := fs.GetDuration("interval")

	filter := domain.ActiveFilter{
		VehicleType:     domain.VehicleType(vehicleType),
		PlateSubstring:  plate,
		MinElapsedHours: minHours,
		Alert:           alert,
	}
	show := func(ctx context.Context) error {
		list, err := a.client.ListActive(ctx, filter)
		if err != nil {
			return err
		}
		return printActive(a, list)
	}

	if !watch {
		return show(ctx)
	}
	err := client.NewPoller(interval, func(ctx context.Context) error {
		fmt.Fprintf(a.out, "\n%s\n", time.Now().Format(time.TimeOnly))
		return show(ctx)
	}).Run(ctx)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func printActive(a *app, list []domain.ActiveSession) error {
	w := a.table()
	fmt.Fprintln(w, "SESSION\tPLATE\tTYPE\tSPACE\tPARKED\t")
	for _, s := range list {
		flag := ""
		if s.Alert {
			flag = "LONG STAY"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", s.ID, s.Plate, typeLabel(s.VehicleType), s.SpaceNumber, s.ElapsedText, flag)
	}
	return w.Flush()
}

func typeLabel(t domain.VehicleType) string {
	if !t.Valid() {
		return string(t)
	}
	return t.Presentation().Label
}

// readLine reports false once input is exhausted.
func readLine(a *app, in *bufio.Reader, prompt string) (string, bool) {
	fmt.Fprint(a.out, prompt)
	line, err := in.ReadString('\n')
	line = strings.TrimSpace(line)
	return line, err == nil || line != ""
}

func ask(a *app, in *bufio.Reader, prompt string) bool {
	answer, _ := readLine(a, in, prompt)
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}
