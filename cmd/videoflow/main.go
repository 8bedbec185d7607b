package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"videoflow/internal/app"
	"videoflow/internal/config"
	"videoflow/internal/encryption"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file, falling back to the defaults when none
// has been written yet.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, "", fmt.Errorf("getting defaults: %w", err)
	}
	path := defaults["config_path"]
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		path = p
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return config.NewConfig(defaults["base_dir"]), path, nil
	}
	cfg, err := config.ReadFromFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading config: %w", err)
	}
	return cfg, path, nil
}

// newApp reads the config and creates a VideoFlowApp. The caller must defer app.Close().
// The command path names the operation in the log (e.g. "videoflow project create").
func newApp(ctx context.Context, cmd *cobra.Command) (*app.VideoFlowApp, error) {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	verbose, _ := cmd.Flags().GetBool("verbose")

	a, err := app.NewVideoFlowApp(ctx, cfg, cmd.CommandPath(), app.Options{
		Verbose: verbose,
		Stderr:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// withApp runs fn against a freshly built app and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.VideoFlowApp) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := fn(ctx, a); err != nil {
		a.Logger().Error("command failed", "operation", a.Operation().Name, "error", err)
		return err
	}
	return nil
}

var rootCmd = &cobra.Command{
	Use:           "videoflow",
	Short:         "Plan video projects: storyboards, dialogue, scenes, cast and models",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}
		path := defaults["config_path"]
		if p, _ := cmd.Flags().GetString("config"); p != "" {
			path = p
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if err := config.Init(path, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration initialized at %s\n", path)
		fmt.Fprintf(out, "Base Dir: %s\n", cfg.BaseDir)
		fmt.Fprintf(out, "Database: %s\n", cfg.Database.FilePath())
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "View configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if _, err := os.Stat(path); err != nil {
			fmt.Fprintf(out, "No configuration file at %s, using defaults:\n\n", path)
		} else {
			fmt.Fprintf(out, "Configuration from %s:\n\n", path)
		}
		fmt.Fprintf(out, "Base Dir:     %s\n", cfg.BaseDir)
		fmt.Fprintf(out, "Log Dir:      %s\n", cfg.LogDir)
		fmt.Fprintf(out, "Log Level:    %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "Database:     %s (%s)\n", cfg.Database.FilePath(), cfg.Database.Type)
		fmt.Fprintf(out, "Busy Timeout: %dms\n", cfg.Database.BusyTimeoutMS)
		fmt.Fprintf(out, "Backup Key:   %s\n", cfg.Backup.PublicKeyPath)

		if len(cfg.Vaults) > 0 {
			fmt.Fprintf(out, "\nVaults:\n")
			for _, v := range cfg.Vaults {
				switch v.Type {
				case "s3":
					fmt.Fprintf(out, "  %s (s3): s3://%s/%s\n", v.Name, v.S3Bucket, v.S3Prefix)
				case "filesystem":
					fmt.Fprintf(out, "  %s (filesystem): %s\n", v.Name, v.FSVaultRoot)
				default:
					fmt.Fprintf(out, "  %s (%s)\n", v.Name, v.Type)
				}
			}
		}
		return nil
	},
}

// db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the project database",
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create or upgrade the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			fmt.Fprintf(cmd.OutOrStdout(), "Database ready at %s\n", a.DB().Path())
			return nil
		})
	},
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show schema version and table sizes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			st, err := a.DB().MigrationStatus()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Database: %s\n", a.DB().Path())
			fmt.Fprintf(out, "Schema:   version %d of %d", st.Version, st.Latest)
			if st.Dirty {
				fmt.Fprint(out, " (dirty)")
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out)

			tables, err := a.DB().Tables(ctx)
			if err != nil {
				return err
			}
			var rows [][]string
			for _, name := range tables {
				res, err := a.Repos().Query.ExecuteSQL(ctx, fmt.Sprintf("SELECT COUNT(*) AS n FROM %q", name))
				if err != nil {
					return err
				}
				rows = append(rows, []string{name, fmt.Sprint(res[0]["n"])})
			}
			printTable(out, []string{"Table", "Rows"}, rows, []columnAlignment{alignLeft, alignRight})
			return nil
		})
	},
}

var dbSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the schema DDL",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			schema, err := a.DB().Schema(ctx)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), schema)
			return nil
		})
	},
}

var dbBackupCmd = &cobra.Command{
	Use:   "backup PATH",
	Short: "Write a consistent copy of the database to PATH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		encrypt, _ := cmd.Flags().GetBool("encrypt")
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			if err := a.Backup(ctx, args[0], encrypt); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backed up database to %s\n", args[0])
			return nil
		})
	},
}

var dbKeygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Create the key pair used for encrypted backups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		enc := encryption.NewAgeEncryptor(cfg.Backup)
		if enc.IsConfigured() {
			return fmt.Errorf("backup keys already exist at %s", cfg.Backup.PublicKeyPath)
		}

		passphrase, err := readPassphrase(cmd, "Passphrase: ", true)
		if err != nil {
			return err
		}
		recipient, err := enc.Setup(passphrase)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Public key:  %s\n", cfg.Backup.PublicKeyPath)
		fmt.Fprintf(out, "Private key: %s (passphrase protected)\n", cfg.Backup.PrivateKeyPath)
		fmt.Fprintf(out, "Recipient:   %s\n", recipient)
		return nil
	},
}

var dbDecryptCmd = &cobra.Command{
	Use:   "decrypt BACKUP PATH",
	Short: "Decrypt an encrypted backup to PATH",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		passphrase, err := readPassphrase(cmd, "Passphrase: ", false)
		if err != nil {
			return err
		}
		dec, err := encryption.NewAgeEncryptor(cfg.Backup).Unlock(passphrase)
		if err != nil {
			return err
		}
		if err := app.DecryptBackup(dec, args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Decrypted %s to %s\n", args[0], args[1])
		return nil
	},
}

var dbPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Store a snapshot of the database in a vault",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		vaultName, _ := cmd.Flags().GetString("vault")
		encrypt, _ := cmd.Flags().GetBool("encrypt")
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			v, err := a.OpenVault(ctx, vaultName)
			if err != nil {
				return err
			}
			name, err := a.Push(ctx, v, encrypt)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pushed %s to vault %s\n", name, v.Name())
			return nil
		})
	},
}

var dbPullCmd = &cobra.Command{
	Use:   "pull SNAPSHOT PATH",
	Short: "Copy a snapshot from a vault to PATH",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		vaultName, _ := cmd.Flags().GetString("vault")
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			v, err := a.OpenVault(ctx, vaultName)
			if err != nil {
				return err
			}
			if err := a.Pull(ctx, v, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pulled %s from vault %s to %s\n", args[0], v.Name(), args[1])
			return nil
		})
	},
}

var dbSnapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List the snapshots in a vault",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		vaultName, _ := cmd.Flags().GetString("vault")
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			v, err := a.OpenVault(ctx, vaultName)
			if err != nil {
				return err
			}
			snaps, err := v.List(ctx)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(snaps))
			for _, s := range snaps {
				rows = append(rows, []string{s.Name, fmt.Sprint(s.Size), formatTime(s.ModTime)})
			}
			printTable(cmd.OutOrStdout(), []string{"Snapshot", "Bytes", "Stored"}, rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft})
			return nil
		})
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Copy log output to stderr")
	rootCmd.PersistentFlags().String("config", "", "Config file (default $VIDEOFLOW_CONFIG_PATH or ~/.config/videoflow.toml)")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	// db subcommands
	dbCmd.AddCommand(dbInitCmd)
	dbCmd.AddCommand(dbStatusCmd)
	dbCmd.AddCommand(dbSchemaCmd)
	dbCmd.AddCommand(dbBackupCmd)
	dbCmd.AddCommand(dbKeygenCmd)
	dbCmd.AddCommand(dbDecryptCmd)
	dbCmd.AddCommand(dbPushCmd)
	dbCmd.AddCommand(dbPullCmd)
	dbCmd.AddCommand(dbSnapshotsCmd)
	dbBackupCmd.Flags().Bool("encrypt", false, "Encrypt the backup to the key from 'db keygen'")
	dbPushCmd.Flags().Bool("encrypt", false, "Encrypt the snapshot to the key from 'db keygen'")
	for _, c := range []*cobra.Command{dbPushCmd, dbPullCmd, dbSnapshotsCmd} {
		c.Flags().String("vault", "", "Vault name (default: first configured vault)")
	}

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(storyboardCmd)
	rootCmd.AddCommand(dialogueCmd)
	rootCmd.AddCommand(sceneCmd)
	rootCmd.AddCommand(characterCmd)
	rootCmd.AddCommand(modelCmd)
	rootCmd.AddCommand(videoCmd)
	rootCmd.AddCommand(tagCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
}
