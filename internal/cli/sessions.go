package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harishkotra/SketchStack/pkg/config"
	"github.com/harishkotra/SketchStack/pkg/session"
)

// sessionsCommand groups the session store maintenance commands. They are
// only useful with a persistent backend.
func (c *CLI) sessionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect and prune stored sessions",
	}
	cmd.AddCommand(c.sessionsShowCommand())
	cmd.AddCommand(c.sessionsDeleteCommand())
	cmd.AddCommand(c.sessionsCleanupCommand())
	return cmd
}

// withStore opens the configured session store for the duration of fn.
func (c *CLI) withStore(ctx context.Context, fn func(session.Store) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if cfg.Session.Backend == config.BackendMemory {
		c.printWarning("the memory session backend holds nothing between runs")
	}
	store, err := newSessionStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			c.Logger.Warn("close session store", "err", err)
		}
	}()
	return fn(store)
}

func (c *CLI) sessionsShowCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show a stored session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(store session.Store) error {
				sess, err := session.MustGet(cmd.Context(), store, args[0])
				if err != nil {
					return err
				}
				if asJSON {
					data, err := json.MarshalIndent(sess, "", "  ")
					if err != nil {
						return err
					}
					c.printf("%s\n", data)
					return nil
				}
				c.printKeyValue("Session", sess.ID)
				c.printKeyValue("Provider", string(sess.CloudProvider))
				c.printKeyValue("Style", string(sess.ArchitecturePlan.ArchitectureStyle))
				c.printKeyValue("Updated", sess.UpdatedAt.Format(time.RFC3339))
				c.printKeyValue("Expires", sess.ExpiresAt.Format(time.RFC3339))
				c.printNewline()
				c.printf("%s\n", sess.Description)
				c.printComponents(sess.DiagramPlan.Nodes)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the stored record as JSON")
	return cmd
}

func (c *CLI) sessionsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a stored session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(store session.Store) error {
				if err := store.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				c.printSuccess("Deleted %s", args[0])
				return nil
			})
		},
	}
}

func (c *CLI) sessionsCleanupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove expired sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(store session.Store) error {
				n, err := store.Cleanup(cmd.Context())
				if err != nil {
					return err
				}
				c.printSuccess("Removed %s", plural(n, "expired session"))
				return nil
			})
		},
	}
}
