// Command fueltrack is the station terminal for the fleet-fueling tracker.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/anhhuy/fueltrack/internal/config"
	"github.com/anhhuy/fueltrack/internal/errs"
	"github.com/anhhuy/fueltrack/internal/form"
	"github.com/anhhuy/fueltrack/internal/ledger"
	"github.com/anhhuy/fueltrack/internal/migrate"
	"github.com/anhhuy/fueltrack/internal/model"
	"github.com/anhhuy/fueltrack/internal/qrcard"
	"github.com/anhhuy/fueltrack/internal/receipt"
	"github.com/anhhuy/fueltrack/internal/registry"
	"github.com/anhhuy/fueltrack/internal/scan"
	"github.com/anhhuy/fueltrack/internal/store"
	"github.com/anhhuy/fueltrack/internal/store/filestore"
	"github.com/anhhuy/fueltrack/internal/store/postgres"
	"github.com/anhhuy/fueltrack/internal/verify"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func usage() {
	fmt.Fprintf(os.Stderr, `fueltrack station terminal
Usage:
  fueltrack [-store file|postgres] [-data-dir DIR] [-dsn DSN] <cmd> [args]

Commands:
  version
  add-driver   -name NAME -company COMPANY [-qr-dir DIR]
  add-vehicle  -plate PLATE
  drivers
  vehicles
  fuel                                   (interactive fueling session)
  transactions
  export       [-o FILE]
`)
	os.Exit(2)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

// openStore builds the configured backend; the postgres path migrates first.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (store.Store, func(), error) {
	switch cfg.Store {
	case "file":
		st, err := filestore.New(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return st, func() {}, nil
	case "postgres":
		if cfg.DSN == "" {
			return nil, nil, errors.New("postgres store needs -dsn or FUELTRACK_DSN")
		}
		if err := migrate.Up(ctx, cfg.DSN); err != nil {
			return nil, nil, fmt.Errorf("migrate up: %w", err)
		}
		db, err := postgres.New(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("connected to postgres store")
		return postgres.NewStore(db), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

func main() {
	cfg := config.Load()

	storeKind := flag.String("store", cfg.Store, "store backend: file or postgres")
	dataDir := flag.String("data-dir", cfg.DataDir, "file store directory")
	dsn := flag.String("dsn", cfg.DSN, "PostgreSQL DSN (postgres store)")
	station := flag.String("station", cfg.StationName, "station name")
	receiptDir := flag.String("receipt-dir", cfg.ReceiptDir, "receipt output directory")
	flag.Usage = usage
	flag.Parse()

	cfg.Store = *storeKind
	cfg.DataDir = *dataDir
	cfg.DSN = *dsn
	cfg.StationName = *station
	cfg.ReceiptDir = *receiptDir

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)

	if cmd == "version" {
		fmt.Printf("fueltrack %s (%s)\n", version, buildDate)
		return
	}

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		fail(err)
	}
	defer closeStore()

	reg, err := registry.NewRegistry(ctx, st)
	if err != nil {
		fail(err)
	}
	led, err := ledger.NewLedger(ctx, st, reg.HasVehicle)
	if err != nil {
		fail(err)
	}

	switch cmd {

	case "add-driver":
		fs := flag.NewFlagSet("add-driver", flag.ExitOnError)
		name := fs.String("name", "", "driver name")
		company := fs.String("company", "", "company/organization")
		qrDir := fs.String("qr-dir", "qr", "QR credential output directory")
		_ = fs.Parse(flag.Args()[1:])

		d, err := reg.RegisterDriver(ctx, *name, *company)
		if err != nil {
			fail(err)
		}
		fmt.Printf("driver registered: %s (%s, %s)\n", d.ID, d.Name, d.Company)

		// The registration stands even if the QR card cannot be rendered.
		if path, err := qrcard.Write(*qrDir, *d); err != nil {
			logger.Warn("qr card not rendered", zap.Error(err))
		} else {
			fmt.Println("qr card:", path)
		}

	case "add-vehicle":
		fs := flag.NewFlagSet("add-vehicle", flag.ExitOnError)
		plate := fs.String("plate", "", "vehicle plate number")
		_ = fs.Parse(flag.Args()[1:])

		v, err := reg.RegisterVehicle(ctx, *plate)
		if err != nil {
			fail(err)
		}
		fmt.Printf("vehicle %q added to fleet (%s)\n", v.Plate, v.ID)

	case "drivers":
		for _, d := range reg.Drivers() {
			fmt.Printf("%s\t%s\t%s\t%s\n", d.ID, d.Name, d.Company, d.AddedAt.Format(time.RFC3339))
		}

	case "vehicles":
		for _, v := range reg.Vehicles() {
			fmt.Printf("%s\t%s\t%s\n", v.ID, v.Plate, v.AddedAt.Format(time.RFC3339))
		}

	case "fuel":
		renderer := &receipt.ImageRenderer{Station: cfg.StationName, Dir: cfg.ReceiptDir}
		if err := fuelSession(ctx, os.Stdin, os.Stdout, reg, led, renderer); err != nil {
			fail(err)
		}

	case "transactions":
		txs := led.Transactions()
		// newest first for the terminal view
		for i := len(txs) - 1; i >= 0; i-- {
			t := txs[i]
			fmt.Printf("%s\t%s\t%s\t%s\t%s L @ %s\t%s VND\n",
				t.ID, t.Date, t.DriverName, t.VehiclePlate, t.Quantity, t.UnitPrice, t.Total)
		}

	case "export":
		fs := flag.NewFlagSet("export", flag.ExitOnError)
		out := fs.String("o", "", "output file (default <station>_Transactions_<ms>.csv)")
		_ = fs.Parse(flag.Args()[1:])

		path := *out
		if path == "" {
			prefix := strings.ReplaceAll(cfg.StationName, " ", "_")
			path = fmt.Sprintf("%s_Transactions_%d.csv", prefix, time.Now().UnixMilli())
		}
		f, err := os.Create(path)
		if err != nil {
			fail(err)
		}
		if err := led.ExportCSV(f); err != nil {
			f.Close()
			_ = os.Remove(path)
			if errors.Is(err, errs.ErrEmpty) {
				fmt.Println("no transactions to export")
				return
			}
			fail(err)
		}
		if err := f.Close(); err != nil {
			fail(err)
		}
		fmt.Println("exported:", path)

	default:
		usage()
	}
}

// fuelSession runs one verification + transaction sequence interactively.
func fuelSession(ctx context.Context, in io.Reader, out io.Writer, reg *registry.Registry, led *ledger.Ledger, renderer receipt.Renderer) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- strings.TrimSpace(sc.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()

	m := verify.NewMachine(reg, scan.NewChannelReader(lines))

	driver, err := verifyDriver(ctx, out, m, lines)
	if err != nil || driver == nil {
		return err
	}
	fmt.Fprintf(out, "Driver verified: %s (%s)\n", driver.Name, driver.Company)

	f := form.NewForm()
	if err := fillForm(out, f, lines); err != nil {
		return err
	}

	draft := f.Draft()
	fmt.Fprintf(out, "Quantity: %s L — commit? [y/N] ", draft.Quantity)
	answer, ok := <-lines
	if !ok || !strings.EqualFold(answer, "y") {
		fmt.Fprintln(out, "discarded")
		return nil
	}

	tx, err := led.Commit(ctx, draft, driver)
	if err != nil {
		return err
	}
	f.Reset()
	m.Reset()
	fmt.Fprintln(out, "transaction saved:", tx.ID)

	if path, err := renderer.Render(*tx); err != nil {
		fmt.Fprintln(out, "receipt not rendered:", err)
	} else {
		fmt.Fprintln(out, "receipt:", path)
	}
	return nil
}

// verifyDriver loops on scanned candidates until one resolves, the operator
// switches to list selection, or the session is canceled. Returns nil driver
// on cancel.
func verifyDriver(ctx context.Context, out io.Writer, m *verify.Machine, lines chan string) (*model.Driver, error) {
	fmt.Fprintln(out, "Scan driver token ('list' to pick from the registry, 'cancel' to abort):")
	ch, err := m.BeginToken(ctx)
	if err != nil {
		return nil, err
	}

	for candidate := range ch {
		switch candidate {
		case "cancel":
			return nil, m.Cancel()
		case "list":
			if err := m.Cancel(); err != nil {
				return nil, err
			}
			return selectDriver(out, m, lines)
		default:
			d, err := m.SubmitToken(candidate)
			if errors.Is(err, errs.ErrNotFound) {
				fmt.Fprintln(out, "invalid token, driver not found; try again or type 'cancel'")
				continue
			}
			if err != nil {
				return nil, err
			}
			return d, nil
		}
	}
	// scanner input ended without a verdict
	if m.State() == verify.StateAwaitingToken {
		return nil, m.Cancel()
	}
	return nil, nil
}

func selectDriver(out io.Writer, m *verify.Machine, lines chan string) (*model.Driver, error) {
	drivers, err := m.BeginSelection()
	if err != nil {
		return nil, err
	}
	if len(drivers) == 0 {
		fmt.Fprintln(out, "no drivers registered")
		return nil, m.Cancel()
	}
	for i, d := range drivers {
		fmt.Fprintf(out, "%2d. %s (%s)\n", i+1, d.Name, d.Company)
	}
	fmt.Fprint(out, "Driver number: ")
	answer, ok := <-lines
	if !ok {
		return nil, m.Cancel()
	}
	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(drivers) {
		fmt.Fprintln(out, "no such driver")
		return nil, m.Cancel()
	}
	return m.Select(drivers[n-1])
}

// fillForm prompts for the remaining draft fields. Date and fuel type keep
// their defaults on empty input.
func fillForm(out io.Writer, f *form.Form, lines chan string) error {
	fmt.Fprint(out, "Vehicle plate: ")
	if plate, ok := <-lines; ok {
		f.SetVehiclePlate(plate)
	}

	fmt.Fprint(out, "Fuel type [Diesel]: ")
	if s, ok := <-lines; ok && s != "" {
		ft, err := model.ParseFuelType(s)
		if err != nil {
			return err
		}
		f.SetFuelType(ft)
	}

	fmt.Fprint(out, "Unit price (VND/L): ")
	if s, ok := <-lines; ok && s != "" {
		p, err := decimal.NewFromString(s)
		if err != nil {
			return fmt.Errorf("unit price: %w", err)
		}
		f.SetUnitPrice(p)
	}

	fmt.Fprint(out, "Total (VND): ")
	if s, ok := <-lines; ok && s != "" {
		t, err := decimal.NewFromString(s)
		if err != nil {
			return fmt.Errorf("total: %w", err)
		}
		f.SetTotal(t)
	}
	return nil
}
