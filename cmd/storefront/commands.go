package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"MiniShop/internal/cart"
	"MiniShop/internal/catalog"
	"MiniShop/internal/money"
	"MiniShop/internal/storefront"
)

const (
	msgCancelled = "Cancelado."
	msgEmptyCart = "Tu carrito está vacío."
)

// withApp opens the runtime for a one-shot command and closes it after fn.
func (c *cli) withApp(ctx context.Context, fn func(*storefront.App) error) error {
	rt, err := openRuntime(ctx, c.cfg, c.log)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			c.log.Warn("close storage", zap.Error(err))
		}
	}()
	return fn(rt.app)
}

// withCatalog loads only the catalog, so read-only commands work while
// serve holds the cart storage.
func (c *cli) withCatalog(ctx context.Context, fn func(*catalog.Catalog) error) error {
	cat, err := loadCatalog(ctx, c.cfg)
	if err != nil {
		return err
	}
	return fn(cat)
}

func newProductsCmd(c *cli) *cobra.Command {
	var q, category, sort string

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List products with the storefront filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := catalog.ParseFilter(q, category, sort)
			fm := money.NewFormatter(c.cfg.Locale, c.cfg.CurrencySymbol)
			return c.withCatalog(cmd.Context(), func(cat *catalog.Catalog) error {
				printProducts(cmd.OutOrStdout(), storefront.RenderProducts(cat.Project(f), f, fm))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&q, "query", "q", "", "search text matched against name, category and tag")
	cmd.Flags().StringVarP(&category, "category", "c", catalog.AllCategories, "exact category, or \"all\"")
	cmd.Flags().StringVarP(&sort, "sort", "s", string(catalog.SortRelevance), "relevance | price-asc | price-desc | name-asc")
	return cmd
}

func newCategoriesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the distinct categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withCatalog(cmd.Context(), func(cat *catalog.Catalog) error {
				printCategories(cmd.OutOrStdout(), cat.Categories())
				return nil
			})
		},
	}
}

func newCartCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Inspect and change the persisted cart",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd.Context(), func(a *storefront.App) error {
				printCart(cmd.OutOrStdout(), a.Cart())
				return nil
			})
		},
	}

	cmd.AddCommand(
		show,
		c.itemCmd("add <id>", "Add one unit of a product", (*storefront.App).Add),
		c.itemCmd("inc <id>", "Increase a line by one", (*storefront.App).Increment),
		c.itemCmd("dec <id>", "Decrease a line by one; zero removes it", (*storefront.App).Decrement),
		c.itemCmd("remove <id>", "Remove a line", (*storefront.App).Remove),
		newSetCmd(c),
		newClearCmd(c),
		newCheckoutCmd(c),
	)
	return cmd
}

type itemAction func(*storefront.App, context.Context, string) (storefront.Outcome, error)

func (c *cli) itemCmd(use, short string, action itemAction) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *storefront.App) error {
				out, err := action(a, cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printOutcome(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
}

func newSetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "set <id> <qty>",
		Short: "Set an absolute quantity; zero or less removes the line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("qty must be an integer: %q", args[1])
			}
			return c.withApp(cmd.Context(), func(a *storefront.App) error {
				out, err := a.SetQuantity(cmd.Context(), args[0], qty)
				if err != nil {
					return err
				}
				printOutcome(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
}

func newClearCmd(c *cli) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd.Context(), func(a *storefront.App) error {
				out, err := a.Clear(cmd.Context(), confirmer(cmd, yes))
				if errors.Is(err, storefront.ErrNotConfirmed) {
					fmt.Fprintln(cmd.OutOrStdout(), msgCancelled)
					return nil
				}
				if err != nil {
					return err
				}
				printOutcome(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newCheckoutCmd(c *cli) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Simulate a purchase and clear the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd.Context(), func(a *storefront.App) error {
				w := cmd.OutOrStdout()

				res, err := a.Checkout(cmd.Context(), confirmer(cmd, yes))
				switch {
				case errors.Is(err, storefront.ErrNotConfirmed):
					fmt.Fprintln(w, msgCancelled)
					return nil
				case err != nil:
					return err
				}

				printOutcome(w, res.Outcome)
				fmt.Fprintf(w, "Recibo %s · %s\n", res.Receipt.ID, res.Token)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func printOutcome(w io.Writer, out storefront.Outcome) {
	printToast(w, out.Toast)
	printCart(w, out.Cart)
}

func confirmer(cmd *cobra.Command, yes bool) cart.Confirm {
	if yes {
		return cart.Yes
	}
	return promptConfirm(cmd.InOrStdin(), cmd.OutOrStdout())
}

// promptConfirm asks on out and reads one answer line from in. Anything but
// an explicit yes declines.
func promptConfirm(in io.Reader, out io.Writer) cart.Confirm {
	return func(prompt string) bool {
		fmt.Fprintf(out, "%s [s/N] ", prompt)

		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "s", "si", "sí", "y", "yes":
			return true
		default:
			return false
		}
	}
}
