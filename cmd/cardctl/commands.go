package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/juantap/web/internal/normalize"
	"github.com/juantap/web/internal/platform/requestctx"
	"github.com/juantap/web/internal/platform/textutil"
	"github.com/juantap/web/internal/preview"
	"github.com/juantap/web/internal/pricing"
)

const stdinArg = "-"

// readInput reads the named file, or stdin when the name is empty or "-".
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == stdinArg {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", args[0], err)
	}
	return data, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newNormalizeCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "normalize [file|-]",
		Short: "Print the canonical form of a backend template or user record",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			var out any
			switch strings.ToLower(kind) {
			case "template":
				out, err = normalize.TemplateJSON(data)
			case "user":
				out, err = normalize.UserJSON(data)
			default:
				return fmt.Errorf("unknown --kind %q (want template or user)", kind)
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "template", "record kind: template or user")
	return cmd
}

func newSlugCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "slug <name>...",
		Short: "Derive the slug of a template name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slug := textutil.Slugify(strings.Join(args, " "))
			if slug == "" {
				return errors.New("name has no letters or digits")
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), slug)
			return err
		},
	}
}

func newPriceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "price <original> <discount-percent>",
		Short: "Compute the discounted price of a premium template",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			original, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("original price %q is not a number", args[0])
			}
			discount, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("discount %q is not a number", args[1])
			}
			quote, err := pricing.NewQuote(original, discount)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "original\t%.2f\n", quote.OriginalPrice)
			fmt.Fprintf(w, "discount\t%s%%\n", strconv.FormatFloat(quote.DiscountPercent, 'f', -1, 64))
			fmt.Fprintf(w, "price\t%.2f\n", quote.Price)
			fmt.Fprintf(w, "savings\t%.2f\n", quote.Savings())
			return w.Flush()
		},
	}
}

func newRenderCmd() *cobra.Command {
	var (
		profilePath string
		baseURL     string
	)
	cmd := &cobra.Command{
		Use:   "render [template-file|-]",
		Short: "Render the preview card of a template",
		Long:  "Renders the template with the given user record, or the sample profile when --profile is not set.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			tpl, err := normalize.TemplateJSON(data)
			if err != nil {
				return err
			}
			profile := preview.SampleProfile()
			if profilePath != "" {
				raw, err := os.ReadFile(profilePath)
				if err != nil {
					return fmt.Errorf("read %s: %w", profilePath, err)
				}
				if profile, err = normalize.UserJSON(raw); err != nil {
					return err
				}
			}

			renderer, err := preview.NewRenderer(preview.WithFrontendBaseURL(baseURL))
			if err != nil {
				return err
			}
			variant := renderer.Resolve(tpl)
			requestctx.Logger(cmd.Context()).Info("rendering preview",
				zap.String("template", tpl.Key()),
				zap.String("variant", variant.ID),
			)
			html, err := renderer.Render(cmd.Context(), tpl, profile)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), string(html))
			return err
		},
	}
	cmd.Flags().StringVar(&profilePath, "profile", "", "user record JSON file to render instead of the sample profile")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "frontend base URL used for the share link and QR code")
	return cmd
}

func newVariantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "variants",
		Short: "List the preview variants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := preview.DefaultCatalog()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tLAYOUT\tPREMIUM\tLABEL")
			for _, v := range catalog.Variants() {
				fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", v.ID, v.Layout, v.Premium, v.Label)
			}
			return w.Flush()
		},
	}
}
