// Command registryctl manages the holder registry at deploy time: it creates
// the schema, seeds holder rows from a YAML file and looks wallets up.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/privatechef/concierge/internal/config"
	"github.com/privatechef/concierge/internal/registry"
	"github.com/privatechef/concierge/internal/wallet"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to read .env file", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// registryFlags are shared by every subcommand that opens the registry.
type registryFlags struct {
	driver  string
	dsn     string
	timeout time.Duration
}

// open resolves unset flags from the environment, then connects.
func (f *registryFlags) open(cmd *cobra.Command) (registry.Repository, context.Context, context.CancelFunc, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading configuration: %w", err)
	}
	driver, dsn := cfg.RegistryDriver, cfg.RegistryDSN
	if cmd.Flags().Changed("driver") {
		driver = f.driver
	}
	if cmd.Flags().Changed("dsn") {
		dsn = f.dsn
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), f.timeout)
	repo, err := registry.Open(ctx, driver, dsn)
	if err != nil {
		cancel()
		return nil, nil, nil, err
	}
	slog.Debug("registry opened", "driver", driver)
	return repo, ctx, cancel, nil
}

func rootCmd() *cobra.Command {
	flags := &registryFlags{}

	cmd := &cobra.Command{
		Use:   "registryctl",
		Short: "Manage the collectible holder registry",
		Long: `Manage the local registry of wallets known to hold the collectible.

The registry backend defaults to REGISTRY_DRIVER and REGISTRY_DSN from the
environment (or .env). Flags override them.

Examples:
  registryctl migrate
  registryctl seed --file holders.yaml
  registryctl lookup 0x9e8aa5728b2cba33f8a7d1a31ccaa6b9c39f5c12
  registryctl list --driver postgres --dsn postgres://localhost:5432/concierge
`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.driver, "driver", registry.DriverSQLite, "Registry driver (sqlite or postgres)")
	cmd.PersistentFlags().StringVar(&flags.dsn, "dsn", "holders.db", "Registry DSN (file path for sqlite, URL for postgres)")
	cmd.PersistentFlags().DurationVar(&flags.timeout, "timeout", 30*time.Second, "Timeout for the whole command")

	cmd.AddCommand(migrateCmd(flags), seedCmd(flags), lookupCmd(flags), listCmd(flags), versionCmd())
	return cmd
}

func migrateCmd(flags *registryFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the registry schema if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, ctx, cancel, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer cancel()
			defer repo.Close()

			if err := repo.Migrate(ctx); err != nil {
				return fmt.Errorf("migrating registry: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "registry schema is up to date")
			return nil
		},
	}
}

func seedCmd(flags *registryFlags) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert holder rows from a YAML seed file",
		Long: `Upsert holder rows from a YAML seed file of the form:

  holders:
    - wallet: "0x9e8aa5728b2cba33f8a7d1a31ccaa6b9c39f5c12"
      note: minted at launch
    - wallet: "0x1111111111111111111111111111111111111111"
      holder: false

The schema is created first if needed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			holders, err := registry.LoadSeedFile(file)
			if err != nil {
				return err
			}

			repo, ctx, cancel, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer cancel()
			defer repo.Close()

			if err := repo.Migrate(ctx); err != nil {
				return fmt.Errorf("migrating registry: %w", err)
			}
			n, err := registry.Seed(ctx, repo, holders)
			if err != nil {
				return fmt.Errorf("seeded %d of %d holders: %w", n, len(holders), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d holders\n", n)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the YAML seed file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func lookupCmd(flags *registryFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <wallet>",
		Short: "Report whether a wallet is recorded as a holder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, ok := wallet.Normalize(args[0])
			if !ok {
				return fmt.Errorf("%w: %q", registry.ErrInvalidWallet, args[0])
			}

			repo, ctx, cancel, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer cancel()
			defer repo.Close()

			isHolder, err := repo.IsHolder(ctx, addr)
			if err != nil {
				return fmt.Errorf("looking up %s: %w", addr, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s holder=%t\n", addr, isHolder)
			return nil
		},
	}
}

func listCmd(flags *registryFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every registry row",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, ctx, cancel, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer cancel()
			defer repo.Close()

			holders, err := repo.List(ctx)
			if err != nil {
				return fmt.Errorf("listing holders: %w", err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "WALLET\tHOLDER\tNOTE")
			for _, h := range holders {
				fmt.Fprintf(tw, "%s\t%t\t%s\n", h.WalletAddress, h.IsHolder, h.Note)
			}
			return tw.Flush()
		},
	}
}

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the registryctl version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "registryctl %s\n", version)
		},
	}
}
