package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"library-lending/config"
	"library-lending/library"
)

// app carries what every command needs once PersistentPreRunE has run.
type app struct {
	cfg *config.Config
	mgr *library.LibraryManager

	dataDir  string
	store    string
	dbPath   string
	logLevel string
}

func main() {
	a := &app{}
	err := newRootCmd(a).Execute()
	a.close()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "library",
		Short:         "Track library members, inventory and loans",
		Long:          "Without a subcommand, library starts the interactive menu. Data is saved only by menu action 5.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !needsLibrary(cmd) {
				return nil
			}
			return a.open(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMenu(cmd.InOrStdin(), cmd.OutOrStdout(), a.mgr)
		},
	}
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "directory holding the JSON documents (env LIBRARY_DATA_DIR)")
	root.PersistentFlags().StringVar(&a.store, "store", "", "storage backend: json or sqlite (env LIBRARY_STORE)")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite database file (env LIBRARY_SQLITE_PATH)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (env LIBRARY_LOG_LEVEL)")

	root.AddCommand(
		newAddMemberCmd(a),
		newAddItemCmd(a),
		newIssueCmd(a),
		newReturnCmd(a),
		newListCmd(a),
	)
	return root
}

// needsLibrary reports whether cmd works on library data. Help and shell
// completion must run even when the data is unreadable.
func needsLibrary(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return false
		}
	}
	return cmd.Runnable()
}

// open loads configuration, applies flag overrides and loads the library.
func (a *app) open(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return a.fail(cmd, err)
	}
	if a.dataDir != "" {
		cfg.SetDataDir(a.dataDir)
	}
	if a.dbPath != "" {
		cfg.SetSQLitePath(a.dbPath)
	}
	if a.store != "" {
		cfg.Store = strings.ToLower(a.store)
	}
	if a.logLevel != "" {
		cfg.LogLevel = strings.ToLower(a.logLevel)
	}
	if err := cfg.Validate(); err != nil {
		return a.fail(cmd, err)
	}
	a.cfg = cfg

	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	store, err := library.OpenStore(cfg.Store, cfg.StorePath())
	if err != nil {
		return a.fail(cmd, err)
	}
	mgr, err := library.NewLibraryManager(store, library.WithLogger(logger))
	if err != nil {
		store.Close()
		return a.fail(cmd, err)
	}
	a.mgr = mgr
	return nil
}

// close releases the store. It never saves.
func (a *app) close() error {
	if a.mgr == nil {
		return nil
	}
	err := a.mgr.Close()
	a.mgr = nil
	return err
}

// save persists the library after a successful one-shot command.
func (a *app) save(cmd *cobra.Command) error {
	if err := a.mgr.SaveData(); err != nil {
		return a.fail(cmd, err)
	}
	return nil
}

func (a *app) fail(cmd *cobra.Command, err error) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	return err
}
