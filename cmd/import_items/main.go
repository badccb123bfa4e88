package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"library-lending/config"
	"library-lending/library"
)

func main() {
	var file string
	cmd := &cobra.Command{
		Use:          "import_items",
		Short:        "Add inventory items from a CSV file of title,author,quantity rows",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(file, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&file, "file", "books.csv", "CSV file to import")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(file string, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	store, err := library.OpenStore(cfg.Store, cfg.StorePath())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	manager, err := library.NewLibraryManager(store, library.WithLogger(logger))
	if err != nil {
		store.Close()
		return err
	}
	defer manager.Close()

	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(out, "Importing books from %s...\n", file)
	res, err := importItems(manager.Library, f, out)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}

	fmt.Fprintf(out, "\nImport complete!\n")
	fmt.Fprintf(out, "Successfully imported: %d books\n", res.added)
	fmt.Fprintf(out, "Skipped (already present): %d\n", res.duplicates)
	fmt.Fprintf(out, "Errors: %d\n", res.errors)

	if res.added == 0 {
		return nil
	}
	if err := manager.SaveData(); err != nil {
		return err
	}
	fmt.Fprintln(out, "\nInventory:")
	manager.WriteItems(out)
	return nil
}

type importResult struct {
	added, duplicates, errors int
}

// importItems adds one item per CSV row. A first row whose quantity column
// reads "quantity" is taken as a header.
func importItems(lib *library.Library, r io.Reader, out io.Writer) (importResult, error) {
	var res importResult

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3
	cr.TrimLeadingSpace = true

	for line := 1; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			return res, nil
		}
		if errors.Is(err, csv.ErrFieldCount) {
			fmt.Fprintf(out, "line %d: ERROR - expected title,author,quantity\n", line)
			res.errors++
			continue
		}
		if err != nil {
			return res, err
		}

		if line == 1 && strings.EqualFold(strings.TrimSpace(row[2]), "quantity") {
			continue
		}

		title, author := strings.TrimSpace(row[0]), strings.TrimSpace(row[1])
		quantity, err := strconv.Atoi(strings.TrimSpace(row[2]))
		if err != nil {
			fmt.Fprintf(out, "line %d: ERROR - invalid quantity %q\n", line, row[2])
			res.errors++
			continue
		}

		fmt.Fprintf(out, "Importing: %s by %s (%d)... ", title, author, quantity)
		switch err := lib.AddItem(title, author, quantity); {
		case err == nil:
			fmt.Fprintln(out, "SUCCESS")
			res.added++
		case errors.Is(err, library.ErrDuplicateKey):
			fmt.Fprintln(out, "SKIPPED - already in inventory")
			res.duplicates++
		default:
			fmt.Fprintf(out, "ERROR - %v\n", err)
			res.errors++
		}
	}
}
