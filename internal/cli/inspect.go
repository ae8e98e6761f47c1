// Package cli implements the inspect command.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"docinspect/internal/inspector"
	"docinspect/internal/model"
	"docinspect/internal/view"
)

const defaultTimeout = 10 * time.Second

// ErrNotFound is returned when the load finished without a document.
var ErrNotFound = errors.New("document not found")

// Session is what the command needs to run one inspection.
type Session struct {
	Loader   inspector.Loader
	Location *time.Location
	Close    func() error
}

// OpenFunc connects the backing services.
type OpenFunc func(ctx context.Context) (*Session, error)

type inspectOptions struct {
	json    bool
	timeout time.Duration
}

// NewInspectCmd creates the inspect command. open runs only after the
// arguments have been validated.
func NewInspectCmd(open OpenFunc) *cobra.Command {
	var opts inspectOptions
	cmd := &cobra.Command{
		Use:   "inspect <id>",
		Short: "Show the inspector panel for a document",
		Long: `Loads a document's metadata from the catalogue and object storage and renders
the inspector panel: a header with the name and type, followed by the details.`,
		Example: `  # Render the panel
  inspect 3f2b8c1e-8c51-4d0e-9a55-6f2a4c0f7d10

  # Print the panel as JSON
  inspect 3f2b8c1e-8c51-4d0e-9a55-6f2a4c0f7d10 --json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, open, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "print the panel as JSON")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", defaultTimeout, "give up waiting for the document after this long")

	return cmd
}

func runInspect(cmd *cobra.Command, open OpenFunc, id string, opts inspectOptions) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid document id %q", id)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	s, err := open(ctx)
	if err != nil {
		return err
	}
	if s.Close != nil {
		defer func() { _ = s.Close() }()
	}

	panel := view.NewPanel(s.Location)
	loaded := make(chan bool, 1)
	ctrl, err := inspector.NewControllerFromContainer(s.Loader, panel,
		inspector.OnLoaded(func(info *model.DocumentInfo) {
			loaded <- info != nil
		}),
	)
	if err != nil {
		return err
	}
	defer ctrl.Reset()

	ctrl.LoadInfo(ctx, id)

	select {
	case found := <-loaded:
		if !found {
			return fmt.Errorf("%s: %w", id, ErrNotFound)
		}
	case <-ctx.Done():
		return fmt.Errorf("loading %s: %w", id, ctx.Err())
	}

	if opts.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(panel)
	}
	cmd.Println(panel.Render())
	return nil
}
