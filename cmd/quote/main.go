// README: Quote CLI; prices a single trip with the same estimator the API uses.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"matasaa/internal/backend"
	"matasaa/internal/config"
	"matasaa/internal/logging"
	"matasaa/internal/maps"
	"matasaa/internal/modules/pricing"
	"matasaa/internal/types"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := run(context.Background(), cfg, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	req     pricing.Request
	local   bool
	timeout time.Duration
}

func parseFlags(args []string) (options, error) {
	var o options
	var vehicle string
	fs := flag.NewFlagSet("quote", flag.ContinueOnError)
	fs.StringVar(&o.req.PickupAddress, "pickup", "", "Pickup address")
	fs.StringVar(&o.req.DropoffAddress, "dropoff", "", "Dropoff address")
	fs.StringVar(&o.req.PickupDate, "date", time.Now().Format("2006-01-02"), "Pickup date (YYYY-MM-DD)")
	fs.StringVar(&o.req.PickupTime, "time", "", "Pickup time (HH:MM)")
	fs.StringVar(&vehicle, "vehicle", string(pricing.VehicleStandard), "Vehicle type")
	fs.IntVar(&o.req.Passengers, "passengers", 1, "Number of passengers")
	fs.BoolVar(&o.local, "local", false, "Skip the backend and compute the local estimate")
	fs.DurationVar(&o.timeout, "timeout", 15*time.Second, "Total timeout")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	o.req.VehicleType = pricing.VehicleType(vehicle)
	if !o.req.Complete() {
		return options{}, fmt.Errorf("pickup, dropoff, date, time and vehicle are required")
	}
	return o, nil
}

type output struct {
	Source  pricing.Source   `json:"source"`
	Display string           `json:"display"`
	Request pricing.Request  `json:"request"`
	Result  pricing.Estimate `json:"estimate"`
}

// run prints the quote as a single JSON document on out. Diagnostics go to
// errOut so the output stays pipeable.
func run(ctx context.Context, cfg config.Config, args []string, out, errOut io.Writer) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	log := logging.NewWithWriter(errOut, cfg.Service)

	var remote pricing.RemoteQuoter
	if !o.local {
		remote = backend.NewClient(cfg.Backend)
	}
	routes, err := maps.NewRouteService(cfg.Maps.APIKey, log)
	if err != nil {
		return err
	}
	opts := []pricing.Option{pricing.WithLogger(log)}
	if routes.Enabled() {
		opts = append(opts, pricing.WithDistanceProvider(routes))
	}
	est := pricing.NewEstimator(remote, cfg.Pricing, loc, opts...)

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	q := est.Estimate(ctx, o.req)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(output{
		Source:  q.Source,
		Display: types.Money{Amount: q.Estimate.EstimatedPrice, Currency: cfg.Pricing.Currency}.Display(),
		Request: q.Request,
		Result:  q.Estimate,
	})
}
