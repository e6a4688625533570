package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tournevent/mondialrelay/pkg/mondialrelay"
)

var version = "0.0.1"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "mondialrelay",
	Short:   "Mondial Relay carrier client - relay search, labels and tracking",
	Version: version,
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search relay points around a postal code",
	RunE:  runSearch,
}

var trackCmd = &cobra.Command{
	Use:   "track EXPEDITION...",
	Short: "Track one or more expeditions",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTrack,
}

var labelsCmd = &cobra.Command{
	Use:   "labels EXPEDITION...",
	Short: "Regroup expedition labels into a single PDF per format",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLabels,
}

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Check carrier API connectivity and configuration",
	RunE:  runDiagnose,
}

var (
	searchPostalCode string
	searchCountry    string
	searchMode       string
	searchRadiusKm   int
	searchMaxResults int
	labelFormat      string
)

func init() {
	searchCmd.Flags().StringVar(&searchPostalCode, "postal-code", "", "postal code to search around (required)")
	searchCmd.Flags().StringVar(&searchCountry, "country", "FR", "destination country code")
	searchCmd.Flags().StringVar(&searchMode, "mode", "24R", "delivery mode")
	searchCmd.Flags().IntVar(&searchRadiusKm, "radius", 0, "search radius in km (carrier default when 0)")
	searchCmd.Flags().IntVar(&searchMaxResults, "max", 0, "maximum number of results (carrier default when 0)")
	searchCmd.MarkFlagRequired("postal-code")

	labelsCmd.Flags().StringVar(&labelFormat, "format", "A4", "label format: A4, A5 or 10x15")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(trackCmd)
	rootCmd.AddCommand(labelsCmd)
	rootCmd.AddCommand(diagnoseCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close(cmd.Context())

	req := &mondialrelay.RelaySearchRequest{
		PostalCode:     searchPostalCode,
		Country:        searchCountry,
		DeliveryMode:   mondialrelay.DeliveryMode(searchMode),
		SearchRadiusKm: searchRadiusKm,
		MaxResults:     searchMaxResults,
	}

	start := time.Now()
	points, err := a.gateway.SearchRelayPoints(cmd.Context(), req)
	a.metrics.RecordOperation("searchRelayPoints", "soap", err, time.Since(start))
	if err != nil {
		return reportError(a, err)
	}

	fmt.Printf("%d relay points near %s (%s)\n\n", len(points), searchPostalCode, searchCountry)
	for i := range points {
		p := &points[i]
		fmt.Printf("%s  %s\n", p.Number, p.Name)
		fmt.Printf("        %s\n", p.FullAddress())
		fmt.Printf("        %s away\n", p.FormattedDistance())
	}
	return nil
}

func runTrack(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close(cmd.Context())

	start := time.Now()
	results, errs := mondialrelay.TrackAll(cmd.Context(), a.gateway, args)
	var firstErr error
	if len(errs) > 0 {
		firstErr = errs[0]
	}
	a.metrics.RecordOperation("trackPackage", "soap", firstErr, time.Since(start))

	for _, number := range args {
		info, ok := results[number]
		if !ok {
			continue
		}
		fmt.Printf("%s: %s\n", number, info.StatusMessage())
		if info.HasRelay() {
			fmt.Printf("  Relay %s %s\n", info.RelayNumber, info.RelayName)
		}
		for i := range info.Events {
			e := &info.Events[i]
			fmt.Printf("  %s  %-40s %s\n", e.FormattedDateTime(), e.Label, e.Location)
		}
		fmt.Printf("  %s\n", mondialrelay.PublicTrackingURL(number))
	}

	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d expeditions failed", len(errs), len(args))
	}
	return nil
}

func runLabels(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close(cmd.Context())

	start := time.Now()
	batch, err := a.gateway.GetLabels(cmd.Context(), args)
	a.metrics.RecordOperation("getLabelBatch", "soap", err, time.Since(start))
	if err != nil {
		return reportError(a, err)
	}

	url, err := batch.URLByFormat(labelFormat)
	if err != nil {
		return err
	}
	fmt.Printf("Label batch for %s\n", strings.Join(batch.ExpeditionNumbers, ", "))
	fmt.Println(url)
	return nil
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close(cmd.Context())

	fmt.Printf("Enseigne:      %s\n", a.config.Enseigne)
	fmt.Printf("SOAP endpoint: %s\n", a.config.APIURL)
	fmt.Printf("API V2:        %v\n", a.config.V2Enabled())
	fmt.Printf("Prefer V2:     %v\n", a.gateway.UsesRest())
	fmt.Printf("Mock mode:     %v\n", a.config.UseMock)

	// A minimal relay search exercises credentials and connectivity.
	_, err = a.gateway.SearchRelayPoints(cmd.Context(), &mondialrelay.RelaySearchRequest{
		PostalCode: "75001",
		Country:    "FR",
		MaxResults: 1,
	})
	if err != nil {
		fmt.Printf("SOAP API:      ERROR (%v)\n", err)
		return reportError(a, err)
	}
	fmt.Println("SOAP API:      OK")
	return nil
}

// reportError prints carrier guidance before handing the error back to
// cobra.
func reportError(a *app, err error) error {
	var mrErr *mondialrelay.Error
	if errors.As(err, &mrErr) {
		a.logger.Error("Carrier call failed",
			zap.Int("code", mrErr.Code),
			zap.String("category", string(mrErr.Category())),
			zap.String("operation", mrErr.Operation),
		)
		fmt.Fprintf(os.Stderr, "error: %s\n", mrErr.UserMessage())
		for _, action := range mrErr.Actions() {
			fmt.Fprintf(os.Stderr, "  - %s\n", action)
		}
		return err
	}
	return err
}
