package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tiertrack/internal/app"
	"tiertrack/internal/config"
	"tiertrack/internal/storage"
	"tiertrack/internal/ui"
)

func NewRootCmd(version string) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "tiertrack",
		Short:        "Tiertrack — tasks sorted by how soon they are due",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			defer e.Close()
			return ui.Run(e.ctrl, e.cfg)
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $TIERTRACK_CONFIG or the user config dir)")

	cmd.AddCommand(newAddCmd(&configPath))
	cmd.AddCommand(newListCmd(&configPath))
	cmd.AddCommand(newEditCmd(&configPath))
	cmd.AddCommand(newDoneCmd(&configPath))
	cmd.AddCommand(newRemoveCmd(&configPath))
	cmd.AddCommand(newReflectCmd(&configPath))
	cmd.AddCommand(newTeamCmd(&configPath))

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.SetVersionTemplate("{{.Version}}\n")
	if version != "" {
		cmd.Version = version
	} else {
		cmd.Version = "dev"
	}

	return cmd
}

// env is everything a command needs to operate on the task collection.
type env struct {
	cfg     config.Config
	store   *storage.Store
	ctrl    *app.Controller
	logFile *os.File
}

func openEnv(ctx context.Context, configPath string) (*env, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if configPath == "" {
		configPath = config.ResolveConfigPath()
	}
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	e := &env{cfg: cfg}
	logger, err := e.newLogger()
	if err != nil {
		return nil, err
	}

	e.store, err = storage.Open(cfg.DBPath)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	e.ctrl, err = app.Load(ctx, e.store, app.Options{
		Logger: logger,
		View:   cfg.ViewState(),
	})
	if err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

func (e *env) newLogger() (*slog.Logger, error) {
	w := io.Discard
	if e.cfg.LogPath != "" {
		if err := os.MkdirAll(filepath.Dir(e.cfg.LogPath), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(e.cfg.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		e.logFile = f
		w = f
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: e.cfg.Level()})), nil
}

func (e *env) Close() {
	if e.store != nil {
		_ = e.store.Close()
	}
	if e.logFile != nil {
		_ = e.logFile.Close()
	}
}

// promptConfirmer asks on out and reads a y/n answer from in.
func promptConfirmer(in io.Reader, out io.Writer) app.Confirmer {
	r := bufio.NewReader(in)
	return func(prompt string) bool {
		_, _ = fmt.Fprintf(out, "%s [y/N]: ", prompt)
		line, _ := r.ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	}
}

func confirmer(cmd *cobra.Command, yes bool) app.Confirmer {
	if yes {
		return app.Yes
	}
	return promptConfirmer(cmd.InOrStdin(), cmd.OutOrStdout())
}
