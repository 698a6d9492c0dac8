// Package cmd - quote command
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"catalog-cost/adapters/pricingapi"
	"catalog-cost/core/pricing"
	"catalog-cost/core/quote"
	"catalog-cost/core/types"
	"catalog-cost/internal/config"
)

var (
	quoteOffering string
	quotePlan     string
	quoteCurrency string
	quoteRegion   string
	quoteInputs   []string
	quoteSetupFee bool
	quoteServer   string
	quoteFormat   string
)

// quoteCmd represents the quote command
var quoteCmd = &cobra.Command{
	Use:   "quote ROLE_ID",
	Short: "Price a catalog role",
	Long: `Evaluate a role's pricing document against the given inputs.

Without --server the pricing document is evaluated locally from the
loaded catalog. With --server the request goes through the quote
orchestrator to a remote pricing service.

Examples:
  catalog-cost quote web-app-files
  catalog-cost quote web-app-files --plan team --input users=20
  catalog-cost quote web-app-files --currency USD --region eu --setup-fee
  catalog-cost quote web-app-files --server http://localhost:8080`,
	Args: cobra.ExactArgs(1),
	RunE: runQuote,
}

func init() {
	quoteCmd.Flags().StringVar(&quoteOffering, "offering", "", "offering ID (default from the pricing document)")
	quoteCmd.Flags().StringVar(&quotePlan, "plan", "", "plan ID (default from the pricing document)")
	quoteCmd.Flags().StringVar(&quoteCurrency, "currency", "", "quote currency (default from config)")
	quoteCmd.Flags().StringVar(&quoteRegion, "region", "", "pricing region (default from config)")
	quoteCmd.Flags().StringArrayVarP(&quoteInputs, "input", "i", nil, "input value as key=value (repeatable)")
	quoteCmd.Flags().BoolVar(&quoteSetupFee, "setup-fee", false, "include the one-time setup fee")
	quoteCmd.Flags().StringVar(&quoteServer, "server", "", "base URL of a remote pricing service")
	quoteCmd.Flags().StringVarP(&quoteFormat, "format", "f", "", "output format (cli, json)")
}

func runQuote(cmd *cobra.Command, args []string) error {
	roleID := strings.TrimSpace(args[0])
	cfg := config.Get()

	currency := types.Currency(quoteCurrency)
	if quoteCurrency == "" {
		currency = cfg.Pricing.DefaultCurrency
	}
	region := types.Region(quoteRegion)
	if quoteRegion == "" {
		region = cfg.Pricing.DefaultRegion
	}
	includeSetupFee := cfg.Pricing.IncludeSetupFee
	if cmd.Flags().Changed("setup-fee") {
		includeSetupFee = quoteSetupFee
	}

	inputs, err := parseInputValues(quoteInputs)
	if err != nil {
		return err
	}

	if quoteServer != "" {
		return runRemoteQuote(cmd.Context(), roleID, inputs, currency, region, includeSetupFee)
	}
	return runLocalQuote(roleID, inputs, currency, region, includeSetupFee)
}

func runLocalQuote(roleID string, inputs map[string]interface{}, currency types.Currency, region types.Region, includeSetupFee bool) error {
	cat, err := loadCatalog()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	role, ok := cat.Role(roleID)
	if !ok {
		return fmt.Errorf("role not found: %s", roleID)
	}
	if role.Pricing == nil {
		return fmt.Errorf("role %s has no pricing document", roleID)
	}

	doc := role.Pricing
	offeringID, planID := resolveSelection(doc, quoteOffering, quotePlan)

	result, err := pricing.EvaluateQuote(doc, offeringID, planID, inputs, currency, region, includeSetupFee)
	if err != nil {
		return err
	}

	if quoteResultFormat() == "json" {
		return printJSON(result)
	}

	printQuote(roleID, offeringID, planID, result)
	if role.Summary != nil && role.Summary.Implicit {
		fmt.Println("\nNote: this role ships no pricing file; the quote uses the implicit fallback document.")
	}
	return nil
}

func runRemoteQuote(ctx context.Context, roleID string, inputs map[string]interface{}, currency types.Currency, region types.Region, includeSetupFee bool) error {
	timeout := time.Duration(config.Get().Service.HTTPTimeoutSeconds) * time.Second
	client := pricingapi.NewClient(&pricingapi.Config{
		BaseURL:     quoteServer,
		HTTPTimeout: timeout,
	})

	orch := quote.NewOrchestrator(quote.NewRemoteModel(client))
	defer orch.Close()

	done := make(chan quote.State, 1)
	orch.SetOnChange(func(st quote.State) {
		if st.Pending {
			return
		}
		select {
		case done <- st:
		default:
		}
	})

	orch.Update(ctx, quote.Params{
		RoleID:          roleID,
		OfferingID:      strings.TrimSpace(quoteOffering),
		PlanID:          strings.TrimSpace(quotePlan),
		Currency:        currency,
		Region:          region,
		IncludeSetupFee: includeSetupFee,
		Inputs:          inputs,
	})

	select {
	case st := <-done:
		if st.Err != "" {
			return fmt.Errorf("quote failed: %s", st.Err)
		}
		if quoteResultFormat() == "json" {
			return printJSON(st.Quote)
		}
		printQuote(roleID, quoteOffering, quotePlan, st.Quote)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// resolveSelection applies document defaults for offering and plan IDs
// the caller left empty. Explicit IDs pass through untouched so unknown
// ones surface as validation errors.
func resolveSelection(doc *types.PricingDocument, offeringID, planID string) (string, string) {
	offeringID = strings.TrimSpace(offeringID)
	planID = strings.TrimSpace(planID)

	if offeringID == "" {
		if offering := pricing.SelectOffering(doc.Offerings, planID, "", doc.DefaultOfferingID); offering != nil {
			offeringID = offering.ID
		}
	}
	if planID == "" {
		if offering, ok := doc.Offering(offeringID); ok {
			if plan := pricing.SelectPlan(offering, doc.DefaultPlanID); plan != nil {
				planID = plan.ID
			}
		}
	}
	return offeringID, planID
}

// parseInputValues turns repeated key=value flags into typed values:
// booleans and numbers are recognized, everything else stays a string.
func parseInputValues(pairs []string) (map[string]interface{}, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	inputs := make(map[string]interface{}, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --input %q, expected key=value", pair)
		}
		value = strings.TrimSpace(value)

		// Numbers win over booleans so users=1 stays numeric.
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			inputs[key] = parsed
			continue
		}
		if parsed, err := strconv.ParseBool(value); err == nil {
			inputs[key] = parsed
			continue
		}
		inputs[key] = value
	}
	return inputs, nil
}

func quoteResultFormat() string {
	if quoteFormat != "" {
		return quoteFormat
	}
	return config.Get().Output.DefaultFormat
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printQuote(roleID, offeringID, planID string, q *types.Quote) {
	fmt.Printf("Role:      %s\n", roleID)
	if offeringID != "" {
		fmt.Printf("Offering:  %s\n", offeringID)
	}
	if planID != "" {
		fmt.Printf("Plan:      %s\n", planID)
	}
	fmt.Printf("Region:    %s\n", q.Region)

	if q.ContactSales {
		fmt.Println("\nTotal: contact sales")
		printNotes(q.Notes)
		return
	}

	if config.Get().Output.ShowBreakdown {
		b := q.Breakdown
		fmt.Println("")
		fmt.Printf("  Base:           %s\n", b.Base.String())
		fmt.Printf("  Usage:          %s\n", b.Usage.String())
		fmt.Printf("  Addons:         %s\n", b.Addons.String())
		fmt.Printf("  Factor delta:   %s\n", b.Factors.String())
		if b.SetupFee.IsPositive() {
			fmt.Printf("  Setup fee:      %s\n", b.SetupFee.String())
		}
		if b.MinimumCommit.Applied {
			fmt.Printf("  Minimum floor:  +%s\n", b.MinimumCommit.Delta.String())
		}
	}

	if q.IsFree() {
		fmt.Println("\nTotal: Free")
	} else {
		fmt.Printf("\nTotal: %s %s/%s\n", q.Total.String(), q.Currency, q.Interval)
	}
	printNotes(q.Notes)
}

func printNotes(notes []string) {
	for _, note := range notes {
		fmt.Printf("Note: %s\n", note)
	}
}
