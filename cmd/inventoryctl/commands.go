package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"inventory_back_end/internal/dialog"
	"inventory_back_end/internal/icons"
	"inventory_back_end/internal/models"
	"inventory_back_end/internal/table"
)

func (a *app) load(ctx context.Context) error {
	if res := a.store.LoadProducts(ctx); !res.Success {
		return res.Err
	}
	a.table.SetData(a.store.Snapshot().Products)
	return nil
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := newFlagSet("list")
	search := fs.String("search", "", "filter by product name (case-insensitive)")
	categories := fs.String("categories", "", "comma-separated categories, e.g. Books,Toys")
	sortBy := fs.String("sort", string(table.ColumnCreatedAt), "sort column")
	asc := fs.Bool("asc", false, "ascending sort")
	page := fs.Int("page", 1, "page number (1-based)")
	pageSize := fs.Int("page-size", 0, "rows per page")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.load(ctx); err != nil {
		return err
	}

	a.table.SetNameFilter(*search)
	a.table.SetCategoryFilter(models.ParseCategories(*categories))
	a.table.SetSort(table.Column(*sortBy), !*asc)
	if *pageSize > 0 {
		a.table.SetPageSize(*pageSize)
	}
	a.table.SetPageIndex(*page - 1)

	printPage(a.table.Project())
	return nil
}

func printPage(p table.Page) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tID\tNAME\tSKU\tSUPPLIER\tCATEGORY\tQTY\tPRICE\tCREATED")
	for _, r := range p.Rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			r.Glyph.Symbol, r.Product.ID, r.Product.Name, r.Product.SKU, r.Product.Supplier,
			r.Product.Category, r.Product.QuantityInStock, r.Price, r.CreatedAt)
	}
	w.Flush()

	nav := func(enabled bool, label string) string {
		if enabled {
			return label
		}
		return strings.Repeat("-", len(label))
	}
	fmt.Printf("\nPage %d of %d (%d products)  %s %s\n",
		p.PageIndex+1, p.PageCount, p.TotalRows, nav(p.CanPrevious, "<prev"), nav(p.CanNext, "next>"))
}

func fieldFlags(name string) *flag.FlagSet {
	fs := newFlagSet(name)
	fs.String("name", "", "product name")
	fs.String("sku", "", "SKU (letters, digits, - and _)")
	fs.String("supplier", "", "supplier")
	fs.String("category", "", "one of: "+categoryList())
	fs.String("qty", "", "quantity in stock (> 0)")
	fs.String("price", "", "price (> 0)")
	fs.String("icon", "", "icon name, see `inventoryctl icons`")
	return fs
}

func categoryList() string {
	cats := models.Categories()
	out := make([]string, 0, len(cats))
	for _, c := range cats {
		out = append(out, string(c))
	}
	return strings.Join(out, ", ")
}

// applyFlags recopie dans le dialogue les seuls champs passés explicitement.
func (a *app) applyFlags(fs *flag.FlagSet) error {
	var err error
	fs.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		field := flagField(f.Name)
		if field == "icon" {
			err = a.products.SelectIcon(f.Value.String())
			return
		}
		err = a.products.Set(field, f.Value.String())
	})
	return err
}

func flagField(flagName string) string {
	if flagName == "qty" {
		return "quantityInStock"
	}
	return flagName
}

func (a *app) submit(ctx context.Context) error {
	if a.products.Submit(ctx) {
		return nil
	}
	errs := a.products.Errors()
	for _, field := range dialog.FieldNames() {
		if msg, ok := errs[field]; ok {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", field, msg)
		}
	}
	return errors.New("product not saved")
}

func (a *app) add(ctx context.Context, args []string) error {
	fs := fieldFlags("add")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a.products.OpenNew()
	if err := a.applyFlags(fs); err != nil {
		return err
	}
	return a.submit(ctx)
}

func (a *app) find(ctx context.Context, id string) (table.Row, error) {
	if err := a.load(ctx); err != nil {
		return table.Row{}, err
	}
	for _, p := range a.store.Snapshot().Products {
		if p.ID == id {
			return table.Row{Product: p}, nil
		}
	}
	return table.Row{}, fmt.Errorf("product %s not found", id)
}

func (a *app) edit(ctx context.Context, args []string) error {
	fs := fieldFlags("edit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: inventoryctl edit [flags] <id>")
	}

	row, err := a.find(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	table.Edit(a.store, row)
	a.products.Sync()

	if err := a.applyFlags(fs); err != nil {
		return err
	}
	return a.submit(ctx)
}

func (a *app) delete(ctx context.Context, args []string) error {
	fs := newFlagSet("delete")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: inventoryctl delete [-yes] <id>")
	}

	row, err := a.find(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	table.Delete(a.store, row)
	a.deletes.Sync()

	if !*yes && !confirm(fmt.Sprintf("Delete %q? This cannot be undone. [y/N] ", row.Product.Name)) {
		a.deletes.Cancel()
		fmt.Println("Cancelled.")
		return nil
	}
	if !a.deletes.Confirm(ctx) {
		return errors.New("product not deleted")
	}
	return nil
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	var answer string
	_, _ = fmt.Scanln(&answer)
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func (a *app) watch(ctx context.Context) error {
	if err := a.load(ctx); err != nil {
		return err
	}
	events, err := a.api.WatchProducts(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Watching %d products, Ctrl-C to stop.\n", len(a.store.Snapshot().Products))
	for ev := range events {
		a.store.ApplyEvent(ev)
		name := ev.ID
		if ev.Product != nil {
			name = ev.Product.Name
		}
		fmt.Printf("%-8s %s (%d products)\n", ev.Type, name, len(a.store.Snapshot().Products))
	}
	return nil
}

func (a *app) icons() {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tNAME\tLUCIDE")
	for _, g := range icons.All() {
		def := ""
		if g.Name == icons.DefaultName {
			def = " (default)"
		}
		fmt.Fprintf(w, "%s\t%s%s\t%s\n", g.Symbol, g.Name, def, g.Lucide)
	}
	w.Flush()
}
