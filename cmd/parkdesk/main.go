// Command parkdesk is a terminal console for the parking backend. It signs in
// against the API, keeps the credential on disk between runs, and gates each
// screen by the caller's role the same way the web dashboard does.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"parkdesk.app/internal/access"
	"parkdesk.app/internal/api"
	"parkdesk.app/internal/config"
	"parkdesk.app/internal/credstore"
	"parkdesk.app/internal/obs"
	"parkdesk.app/internal/services"
	"parkdesk.app/internal/session"
)

var version = "0.3.0"

type app struct {
	cfg      config.Config
	log      zerolog.Logger
	creds    credstore.Store
	client   *api.Client
	manager  *session.Manager
	resolver *access.Resolver

	businesses *services.BusinessService
	users      *services.UsersService
	vehicles   *services.VehiclesService
	logs       *services.VehicleLogsService
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cmd := os.Args[1]
	args := os.Args[2:]

	if cmd == "version" {
		fmt.Println("parkdesk", version)
		return
	}

	a, err := newApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.RequestTimeout)
	defer cancel()

	if err := a.run(ctx, cmd, args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := obs.NewLogger(cfg.Environment).With().Str("service", "parkdesk").Logger()
	obs.Init()

	creds, err := credstore.NewFileStore(cfg.CredentialFile)
	if err != nil {
		return nil, fmt.Errorf("credential store: %w", err)
	}

	client := api.New(cfg.APIBaseURL, creds,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithLogger(log),
	)

	state := session.NewState()
	authSvc := services.NewAuthService(client)
	businessSvc := services.NewBusinessService(client)
	manager := session.NewManager(state, creds, authSvc, businessSvc, log)

	// A structured 401 anywhere tears the session down globally.
	client.OnUnauthorized(manager.HandleUnauthorized)
	manager.OnSessionInvalidated(func() {
		fmt.Fprintln(os.Stderr, "session expired, please log in again")
	})

	return &app{
		cfg:        cfg,
		log:        log,
		creds:      creds,
		client:     client,
		manager:    manager,
		resolver:   access.NewResolver(state, creds),
		businesses: businessSvc,
		users:      services.NewUsersService(client),
		vehicles:   services.NewVehiclesService(client),
		logs:       services.NewVehicleLogsService(client),
	}, nil
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.cmdLogin(ctx, args)
	case "logout":
		a.manager.SignOut(ctx)
		fmt.Println("logged out")
		return nil
	}

	// Everything below needs a restored session.
	a.manager.CheckAuthStatus(ctx)
	if err := a.manager.WaitSettled(ctx); err != nil {
		return err
	}

	switch cmd {
	case "whoami":
		return a.cmdWhoami()
	case "status":
		return a.cmdStatus()
	case "business":
		return a.cmdBusiness(ctx, args)
	case "users":
		return a.cmdUsers(ctx, args)
	case "vehicles":
		return a.cmdVehicles(ctx, args)
	case "logs":
		return a.cmdLogs(ctx, args)
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// require gates a screen by role, mirroring the dashboard's route guards.
func (a *app) require(roles ...session.Role) error {
	switch a.resolver.Resolve(roles...) {
	case access.Allowed:
		return nil
	case access.Pending:
		return fmt.Errorf("session not settled, try again")
	default:
		snap := a.manager.Snapshot()
		if !snap.Authenticated {
			return fmt.Errorf("not logged in, run: parkdesk login")
		}
		return fmt.Errorf("access denied for role %q", snap.Identity.Role)
	}
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	user := fs.String("user", "", "username or email")
	password := fs.String("password", "", "password")
	_ = fs.Parse(args)

	if *user == "" || *password == "" {
		return fmt.Errorf("usage: parkdesk login -user <user> -password <password>")
	}

	if !a.manager.SignIn(ctx, *user, *password) {
		snap := a.manager.Snapshot()
		return fmt.Errorf("sign-in failed: %s", snap.ErrorMessage)
	}
	if err := a.manager.WaitSettled(ctx); err != nil {
		return err
	}

	snap := a.manager.Snapshot()
	fmt.Printf("logged in as %s (%s)\n", snap.Identity.Username, snap.Identity.Role)
	if rec, ok := snap.Business.Record(); ok {
		fmt.Printf("business: %s\n", rec.BusinessName)
	}
	return nil
}

func (a *app) cmdWhoami() error {
	if err := a.require(session.RoleAdmin, session.RoleUser, session.RoleWorker); err != nil {
		return err
	}
	snap := a.manager.Snapshot()
	fmt.Printf("user:     %s\n", snap.Identity.Username)
	fmt.Printf("id:       %s\n", snap.Identity.ID)
	fmt.Printf("role:     %s\n", snap.Identity.Role)
	if rec, ok := snap.Business.Record(); ok {
		fmt.Printf("business: %s (%s)\n", rec.BusinessName, rec.ID)
	} else {
		fmt.Println("business: none")
	}
	return nil
}

func (a *app) cmdStatus() error {
	snap := a.manager.Snapshot()
	token, _ := a.creds.Read()

	fmt.Printf("api:           %s\n", a.cfg.APIBaseURL)
	fmt.Printf("credential:    %v\n", token != "")
	fmt.Printf("authenticated: %v\n", snap.Authenticated)
	if snap.Identity != nil {
		fmt.Printf("role:          %s\n", snap.Identity.Role)
	}
	fmt.Printf("admin access:  %s\n", a.resolver.Resolve(session.RoleAdmin))
	fmt.Printf("desk access:   %s\n", a.resolver.Resolve(session.RoleAdmin, session.RoleUser, session.RoleWorker))
	return nil
}

func (a *app) cmdBusiness(ctx context.Context, args []string) error {
	sub := "mine"
	if len(args) > 0 {
		sub = args[0]
	}
	switch sub {
	case "list":
		if err := a.require(session.RoleAdmin); err != nil {
			return err
		}
		list, err := a.businesses.All(ctx)
		if err != nil {
			return err
		}
		return printBusinesses(list)
	case "mine":
		if err := a.require(session.RoleAdmin, session.RoleUser); err != nil {
			return err
		}
		list, err := a.businesses.Mine(ctx)
		if err != nil {
			return err
		}
		return printBusinesses(list)
	case "show":
		if len(args) < 2 {
			return fmt.Errorf("usage: parkdesk business show <id>")
		}
		if err := a.require(session.RoleAdmin, session.RoleUser, session.RoleWorker); err != nil {
			return err
		}
		b, err := a.businesses.ByID(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("%s\n  brand: %s\n  nit: %s\n  address: %s\n  car/hour: %.0f\n  moto/hour: %.0f\n",
			b.BusinessName, b.BusinessBrand, b.BusinessNIT, b.Address, b.CarHourCost, b.MotorcycleHourCost)
		return nil
	default:
		return fmt.Errorf("usage: parkdesk business [list|mine|show <id>]")
	}
}

func (a *app) cmdUsers(ctx context.Context, args []string) error {
	sub := "my-business"
	if len(args) > 0 {
		sub = args[0]
	}
	var (
		list []services.User
		err  error
	)
	switch sub {
	case "list":
		if err := a.require(session.RoleAdmin); err != nil {
			return err
		}
		list, err = a.users.All(ctx)
	case "my-business":
		if err := a.require(session.RoleAdmin, session.RoleUser); err != nil {
			return err
		}
		list, err = a.users.MyBusiness(ctx)
	default:
		return fmt.Errorf("usage: parkdesk users [list|my-business]")
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSER\tROLE\tENABLED")
	for _, u := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\n", u.ID, u.User, u.Role, u.Enabled)
	}
	return w.Flush()
}

func (a *app) cmdVehicles(ctx context.Context, args []string) error {
	if err := a.require(session.RoleAdmin, session.RoleUser, session.RoleWorker); err != nil {
		return err
	}
	if len(args) > 0 && args[0] == "search" {
		if len(args) < 2 {
			return fmt.Errorf("usage: parkdesk vehicles search <plate>")
		}
		v, err := a.vehicles.ByPlate(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s) in parking: %v\n", v.Plate, v.Type, v.InParking)
		return nil
	}

	list, err := a.vehicles.All(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PLATE\tTYPE\tIN PARKING")
	for _, v := range list {
		fmt.Fprintf(w, "%s\t%s\t%v\n", v.Plate, v.Type, v.InParking)
	}
	return w.Flush()
}

func (a *app) cmdLogs(ctx context.Context, args []string) error {
	if err := a.require(session.RoleAdmin, session.RoleUser, session.RoleWorker); err != nil {
		return err
	}
	sub := "active"
	if len(args) > 0 {
		sub = args[0]
	}

	switch sub {
	case "active", "list":
		var (
			list []services.VehicleLog
			err  error
		)
		if sub == "active" {
			list, err = a.logs.Active(ctx)
		} else {
			list, err = a.logs.All(ctx)
		}
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tPLATE\tENTRY\tEXIT\tCOST")
		for _, l := range list {
			exit := "-"
			if l.ExitTime != nil {
				exit = *l.ExitTime
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.0f\n", l.ID, l.Plate, l.EntryTime, exit, l.Cost)
		}
		return w.Flush()
	case "entry":
		fs := flag.NewFlagSet("entry", flag.ExitOnError)
		plate := fs.String("plate", "", "plate number")
		vtype := fs.String("type", "car", "car or motorcycle")
		_ = fs.Parse(args[1:])
		if *plate == "" {
			return fmt.Errorf("usage: parkdesk logs entry -plate <plate> [-type car|motorcycle]")
		}
		log, err := a.logs.Entry(ctx, services.EntryRequest{
			Plate: *plate,
			Type:  services.VehicleType(*vtype),
		})
		if err != nil {
			return err
		}
		fmt.Printf("entry %s registered at %s\n", log.Plate, log.EntryTime)
		return nil
	case "checkout":
		fs := flag.NewFlagSet("checkout", flag.ExitOnError)
		id := fs.String("id", "", "log id")
		cost := fs.Float64("cost", 0, "amount charged")
		_ = fs.Parse(args[1:])
		if *id == "" {
			return fmt.Errorf("usage: parkdesk logs checkout -id <log> -cost <amount>")
		}
		log, err := a.logs.Checkout(ctx, *id, services.CheckoutRequest{Cost: *cost})
		if err != nil {
			return err
		}
		fmt.Printf("checkout %s, charged %.0f\n", log.Plate, log.Cost)
		return nil
	default:
		return fmt.Errorf("usage: parkdesk logs [active|list|entry|checkout]")
	}
}

func printBusinesses(list []services.Business) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tBRAND\tADDRESS")
	for _, b := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", b.ID, b.BusinessName, b.BusinessBrand, b.Address)
	}
	return w.Flush()
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: parkdesk <command> [args]

commands:
  login -user <u> -password <p>   sign in and store the credential
  logout                          sign out and discard the credential
  whoami                          show the current identity
  status                          show session and access state
  business [list|mine|show <id>]  business screens
  users [list|my-business]        user screens
  vehicles [search <plate>]       vehicle screens
  logs [active|list|entry|checkout]
  version`)
}
