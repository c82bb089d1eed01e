package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dom/tickify/internal/client"
	"github.com/dom/tickify/internal/client/view"
	"github.com/dom/tickify/internal/domain"
	"github.com/spf13/cobra"
)

func (a *app) listCmd() *cobra.Command {
	var high bool
	var query string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the checklist",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withStore(ctx, func(store client.ChecklistStore) error {
				items, err := store.List(ctx)
				if err != nil {
					return err
				}
				if high {
					items = client.HighPriority(items)
				}

				switch {
				case query != "":
					a.print(cmd, a.render.Search(items, query))
				case high:
					a.print(cmd, a.render.Checklist("High priority", items))
				default:
					a.print(cmd, a.render.Checklist(a.checklistTitle(), items))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&high, "high", false, "only high priority items")
	cmd.Flags().StringVarP(&query, "search", "s", "", "only items whose text contains this")
	return cmd
}

func (a *app) checklistTitle() string {
	if a.authenticated() {
		return "Checklist of " + a.session.DisplayName()
	}
	return "Guest checklist"
}

func (a *app) addCmd() *cobra.Command {
	var priority string
	var done bool

	cmd := &cobra.Command{
		Use:   "add TEXT...",
		Short: "Add an item",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withStore(ctx, func(store client.ChecklistStore) error {
				item, err := store.Add(ctx, client.NewItem{
					Text:      strings.Join(args, " "),
					Completed: done,
					Priority:  domain.Priority(priority),
				})
				if err != nil {
					return err
				}
				a.print(cmd, a.render.Success("Added "+item.Text))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&priority, "priority", "p", "", "low, medium or high (default low)")
	cmd.Flags().BoolVar(&done, "done", false, "add the item already completed")
	return cmd
}

// doneCmd builds `done` or, with completed false, `undone`.
func (a *app) doneCmd(completed bool) *cobra.Command {
	use, short, verb := "done ITEM", "Mark an item completed", "Completed"
	if !completed {
		use, short, verb = "undone ITEM", "Mark an item not completed", "Reopened"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := a.updateItem(cmd.Context(), args[0], domain.ItemPatch{Completed: &completed})
			if err != nil {
				return err
			}
			a.print(cmd, a.render.Success(verb+" "+item.Text))
			return nil
		},
	}
}

func (a *app) editCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit ITEM TEXT...",
		Short: "Replace the text of an item",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args[1:], " ")
			item, err := a.updateItem(cmd.Context(), args[0], domain.ItemPatch{Text: &text})
			if err != nil {
				return err
			}
			a.print(cmd, a.render.Success("Updated "+item.Text))
			return nil
		},
	}
}

func (a *app) priorityCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "priority ITEM low|medium|high",
		Short:     "Set the priority of an item",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(domain.PriorityLow), string(domain.PriorityMedium), string(domain.PriorityHigh)},
		RunE: func(cmd *cobra.Command, args []string) error {
			priority := domain.Priority(strings.ToLower(args[1]))
			item, err := a.updateItem(cmd.Context(), args[0], domain.ItemPatch{Priority: &priority})
			if err != nil {
				return err
			}
			a.print(cmd, a.render.Success(fmt.Sprintf("%s is now %s priority", item.Text, item.Priority)))
			return nil
		},
	}
}

func (a *app) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm ITEM",
		Aliases: []string{"delete"},
		Short:   "Delete an item",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withStore(ctx, func(store client.ChecklistStore) error {
				item, err := a.resolveItem(ctx, store, args[0])
				if err != nil {
					return err
				}
				if err := store.Delete(ctx, item.ID); err != nil {
					return err
				}
				a.print(cmd, a.render.Success("Deleted "+item.Text))
				return nil
			})
		},
	}
}

func (a *app) shareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "share",
		Short: "Print the checklist as text to paste into a message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withStore(ctx, func(store client.ChecklistStore) error {
				items, err := store.List(ctx)
				if err != nil {
					return err
				}
				a.print(cmd, view.Share(items))
				return nil
			})
		},
	}
}

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show how much of the checklist is done",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if a.authenticated() {
				stats, err := a.api.Stats(ctx, a.session.Token)
				if err != nil {
					return err
				}
				a.print(cmd, a.render.Stats(*stats))
				return nil
			}

			return a.withStore(ctx, func(store client.ChecklistStore) error {
				items, err := store.List(ctx)
				if err != nil {
					return err
				}
				a.print(cmd, a.render.Stats(client.Stats(items)))
				return nil
			})
		},
	}
}

// export is the backup written by `tickify export`.
type export struct {
	Email       string        `json:"email,omitempty"`
	AccountID   string        `json:"accountId,omitempty"`
	AccountName *string       `json:"accountName,omitempty"`
	Items       []client.Item `json:"items"`
	ExportDate  time.Time     `json:"exportDate"`
}

func (a *app) exportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the account and its checklist as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withStore(ctx, func(store client.ChecklistStore) error {
				items, err := store.List(ctx)
				if err != nil {
					return err
				}

				data, err := json.MarshalIndent(export{
					Email:       a.session.Email,
					AccountID:   a.session.AccountID,
					AccountName: a.session.AccountName,
					Items:       items,
					ExportDate:  a.now().UTC(),
				}, "", "  ")
				if err != nil {
					return err
				}

				if output == "" {
					fmt.Fprintln(cmd.OutOrStdout(), string(data))
					return nil
				}
				if err := os.WriteFile(output, append(data, '\n'), 0o600); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				a.print(cmd, a.render.Success(fmt.Sprintf("Exported %d items to %s", len(items), output)))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default stdout)")
	return cmd
}

func (a *app) updateItem(ctx context.Context, ref string, patch domain.ItemPatch) (*client.Item, error) {
	var updated *client.Item
	err := a.withStore(ctx, func(store client.ChecklistStore) error {
		item, err := a.resolveItem(ctx, store, ref)
		if err != nil {
			return err
		}
		updated, err = store.Update(ctx, item.ID, patch)
		return err
	})
	return updated, err
}

// resolveItem finds ref among the items in the order `list` shows them.
func (a *app) resolveItem(ctx context.Context, store client.ChecklistStore, ref string) (*client.Item, error) {
	items, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	return client.FindItem(items, ref)
}
