package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"inventory_back_end/internal/client"
	"inventory_back_end/internal/config"
	"inventory_back_end/internal/dialog"
	"inventory_back_end/internal/logger"
	"inventory_back_end/internal/store"
	"inventory_back_end/internal/table"
)

const usage = `usage: inventoryctl <command> [flags]

commands:
  list     show the product table (filters, sort, pagination)
  add      add a product
  edit     edit a product by id
  delete   delete a product by id
  watch    print product changes as they happen
  icons    list the available icons
`

type app struct {
	api      *client.Client
	store    *store.Store
	table    *table.Table
	products *dialog.ProductDialog
	deletes  *dialog.DeleteDialog
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if _, err := logger.Init(false); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg := config.LoadClient()
	api := client.NewFromConfig(cfg)
	st := store.New(api)
	a := &app{
		api:      api,
		store:    st,
		table:    table.New(cfg.PageSize),
		products: dialog.NewProductDialog(st, dialog.LogNotifier{}),
		deletes:  dialog.NewDeleteDialog(st, dialog.LogNotifier{}),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case "list":
		err = a.list(ctx, args)
	case "add":
		err = a.add(ctx, args)
	case "edit":
		err = a.edit(ctx, args)
	case "delete":
		err = a.delete(ctx, args)
	case "watch":
		err = a.watch(ctx)
	case "icons":
		a.icons()
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}

	if err != nil {
		zap.S().Errorf("❌ %s: %v", cmd, err)
		logger.Sync()
		os.Exit(1)
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}
