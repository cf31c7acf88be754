package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"partnerbot/config"
	"partnerbot/pkg/logger"
	"partnerbot/pkg/models"
	"partnerbot/pkg/partnerapi"
	"partnerbot/pkg/registration"
)

type cli struct {
	cfg config.Config
	log logger.ILogger

	token   string
	apiURL  string
	timeout time.Duration
}

// newRootCmd builds partnerctl. Every subcommand talks to the backend
// directly with the token given by flag or PARTNER_TOKEN.
func newRootCmd(cfg config.Config, log logger.ILogger) *cobra.Command {
	c := &cli{cfg: cfg, log: log}

	root := &cobra.Command{
		Use:           "partnerctl",
		Short:         "Inspect and continue MinhHungCar partner car registrations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.token, "token", cfg.PartnerToken, "partner access token")
	root.PersistentFlags().StringVar(&c.apiURL, "api", cfg.APIBaseURL, "backend base URL")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", cfg.APITimeout, "request timeout")

	root.AddCommand(
		c.metadataCmd(),
		c.carsCmd(),
		c.routeCmd(),
		c.priceCmd(),
	)
	return root
}

func (c *cli) session() *models.Session {
	return &models.Session{AccessToken: c.token}
}

func (c *cli) workflow() *registration.Workflow {
	return registration.NewWorkflow(partnerapi.New(c.apiURL, c.timeout), nil, 0, c.log)
}

func (c *cli) metadataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metadata",
		Short: "Print the registration catalogs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			md, err := c.workflow().Metadata(cmd.Context(), c.session())
			if err != nil {
				return errors.Wrap(err, "load metadata")
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tYEAR\tBRAND\tMODEL\tSEATS\tBASED PRICE")
			for _, m := range md.Models {
				fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%d\t%d\n", m.ID, m.Year, m.Brand, m.Model, m.NumberOfSeats, m.BasedPrice)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			printOptions(cmd, "motions", md.Motions)
			printOptions(cmd, "fuels", md.Fuels)
			printOptions(cmd, "parking lots", md.ParkingLot)
			fmt.Fprintln(out, "periods:")
			for _, p := range md.Periods {
				fmt.Fprintf(out, "  %d\t%s\n", p.Code, p.Text)
			}
			return nil
		},
	}
}

func printOptions(cmd *cobra.Command, title string, opts []models.Option) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s:\n", title)
	for _, o := range opts {
		fmt.Fprintf(out, "  %s\t%s\n", o.Code, o.Text)
	}
}

func (c *cli) carsCmd() *cobra.Command {
	var (
		status string
		page   int
	)
	cmd := &cobra.Command{
		Use:   "cars",
		Short: "List the partner's cars",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cars, err := c.workflow().Cars(cmd.Context(), c.session(), models.CarStatus(status), page, c.cfg.CarsPageSize)
			if err != nil {
				return errors.Wrap(err, "list cars")
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPLATE\tMODEL\tSTATUS\tPRICE")
			for _, car := range cars {
				fmt.Fprintf(w, "%d\t%s\t%s %s\t%s\t%d\n",
					car.ID, car.LicensePlate, car.CarModel.Brand, car.CarModel.Model, car.Status, car.Price)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by car status")
	cmd.Flags().IntVar(&page, "page", 0, "zero-based page")
	return cmd
}

func (c *cli) routeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "route <car-id>",
		Short: "Show which registration step a car continues at",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			carID, err := parseCarID(args[0])
			if err != nil {
				return err
			}
			dest, _, err := c.workflow().Resume(cmd.Context(), c.session(), carID)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "car %d: status=%q screen=%s based_price=%d\n",
				dest.CarID, dest.Status, dest.Screen, dest.BasedPrice)
			if dest.Unknown {
				fmt.Fprintln(cmd.OutOrStdout(), "warning: unrecognised status")
			}
			return nil
		},
	}
}

func (c *cli) priceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "price <car-id> <value>",
		Short: "Set the rental price of a car waiting for one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			carID, err := parseCarID(args[0])
			if err != nil {
				return err
			}
			price, err := strconv.Atoi(args[1])
			if err != nil {
				return errors.Wrapf(err, "invalid price %q", args[1])
			}

			wf := c.workflow()
			dest, car, err := wf.Resume(cmd.Context(), c.session(), carID)
			if err != nil {
				return err
			}
			if dest.Screen != registration.ScreenPrice {
				return errors.Errorf("car %d is not waiting for a price (status %q)", car.ID, car.Status)
			}

			if _, err := wf.SetPrice(cmd.Context(), c.session(), registration.DraftFor(dest), price); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "car %d: price set to %d\n", carID, price)
			return nil
		},
	}
}

func parseCarID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Errorf("invalid car id %q", s)
	}
	return id, nil
}
