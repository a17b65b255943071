package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/granjalink/farm-backend-go/internal/domain/pig"
	"github.com/granjalink/farm-backend-go/internal/farmdata"
)

var pigHeaders = []string{"ID", "IDENTIFIER", "STATUS", "BREED", "PEN", "WEIGHT", "PURCHASED", "PRICE"}

func pigRow(p pig.Pig) []string {
	return []string{p.ID, str(p.Identifier), string(p.Status), str(p.Breed), str(p.PenLocation), num(p.CurrentWeight), day(p.PurchaseDate), money(p.PurchasePrice)}
}

func pigRows(pigs []pig.Pig) [][]string {
	rows := make([][]string, 0, len(pigs))
	for _, p := range pigs {
		rows = append(rows, pigRow(p))
	}
	return rows
}

func today() string {
	return time.Now().Format(time.DateOnly)
}

func newPigsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pigs",
		Short: "List and record pigs",
	}
	cmd.AddCommand(
		newPigsListCmd(opts),
		newPigsAddCmd(opts),
		newPigsSellCmd(opts),
		newPigsDeathCmd(opts),
		newPigsWeighCmd(opts),
	)
	return cmd
}

func newPigsListCmd(opts *options) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pigs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if status != "" && !pig.Status(status).Valid() {
				return fmt.Errorf("unknown status %q (active, sold, deceased)", status)
			}
			s, err := opts.app.requireSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			pigs, err := loaded(farmdata.NewPigs(s.deps(), pig.Status(status)).Await(cmd.Context()))
			if err != nil {
				return err
			}
			p, _ := opts.printer(cmd)
			return p.print(pigs, pigHeaders, pigRows(pigs))
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only pigs with this status")
	return cmd
}

func newPigsAddCmd(opts *options) *cobra.Command {
	var (
		date, identifier, breed, sex, pen, notes string
		price, weight                            float64
		quantity                                 int
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register purchased pigs",
		Example: `  farmctl pigs add --price 120 --weight 25 --identifier C-07
  farmctl pigs add --quantity 10 --price 1100 --weight 24 --pen B`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var w *float64
			if weight > 0 {
				w = &weight
			}
			var sx *pig.Sex
			if sex != "" {
				v := pig.Sex(sex)
				sx = &v
			}

			if quantity > 1 {
				req := pig.CreateBatchRequest{
					Quantity:      quantity,
					PurchaseDate:  date,
					TotalPrice:    price,
					AverageWeight: w,
					Breed:         optional(breed),
					Sex:           sx,
					PenLocation:   optional(pen),
					Notes:         optional(notes),
				}
				if err := req.Validate(); err != nil {
					return err
				}
				return withPigs(cmd, opts, func(pigs *farmdata.Pigs, p printer) error {
					created, err := pigs.CreateBatch(cmd.Context(), req)
					if err != nil {
						return err
					}
					return p.print(created, pigHeaders, pigRows(created))
				})
			}

			req := pig.CreatePigRequest{
				Identifier:     optional(identifier),
				PurchaseDate:   date,
				PurchasePrice:  price,
				PurchaseWeight: w,
				Breed:          optional(breed),
				Sex:            sx,
				PenLocation:    optional(pen),
				Notes:          optional(notes),
			}
			if err := req.Validate(); err != nil {
				return err
			}
			return withPigs(cmd, opts, func(pigs *farmdata.Pigs, p printer) error {
				created, err := pigs.Create(cmd.Context(), req)
				if err != nil {
					return err
				}
				return p.print(created, pigHeaders, [][]string{pigRow(created)})
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&date, "purchase-date", today(), "purchase date (YYYY-MM-DD)")
	f.Float64Var(&price, "price", 0, "purchase price, the total for a batch")
	f.Float64Var(&weight, "weight", 0, "weight in kg, the average for a batch")
	f.StringVar(&identifier, "identifier", "", "ear tag or name")
	f.StringVar(&breed, "breed", "", "breed")
	f.StringVar(&sex, "sex", "", "male, female or unknown")
	f.StringVar(&pen, "pen", "", "pen location")
	f.StringVar(&notes, "notes", "", "notes")
	f.IntVar(&quantity, "quantity", 1, "number of pigs in the batch")
	return cmd
}

func newPigsSellCmd(opts *options) *cobra.Command {
	var (
		req          pig.SellPigRequest
		weight       float64
		client, note string
	)

	cmd := &cobra.Command{
		Use:   "sell <id>",
		Short: "Record the sale of a pig",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if weight > 0 {
				req.SaleWeight = &weight
			}
			req.ClientID = optional(client)
			req.Notes = optional(note)
			if err := req.Validate(); err != nil {
				return err
			}
			return withPigs(cmd, opts, func(pigs *farmdata.Pigs, p printer) error {
				sold, err := pigs.Sell(cmd.Context(), args[0], req)
				if err != nil {
					return err
				}
				return p.print(sold, pigHeaders, [][]string{pigRow(sold)})
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.SaleDate, "date", today(), "sale date (YYYY-MM-DD)")
	f.Float64Var(&req.SalePrice, "price", 0, "sale price")
	f.Float64Var(&weight, "weight", 0, "weight at sale in kg")
	f.StringVar(&client, "client", "", "buyer id")
	f.StringVar(&note, "notes", "", "notes")
	return cmd
}

func newPigsDeathCmd(opts *options) *cobra.Command {
	var (
		req  pig.RegisterDeathRequest
		note string
	)

	cmd := &cobra.Command{
		Use:   "death <id>",
		Short: "Record the death of a pig",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Notes = optional(note)
			if err := req.Validate(); err != nil {
				return err
			}
			return withPigs(cmd, opts, func(pigs *farmdata.Pigs, p printer) error {
				dead, err := pigs.RegisterDeath(cmd.Context(), args[0], req)
				if err != nil {
					return err
				}
				return p.print(dead, pigHeaders, [][]string{pigRow(dead)})
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.DeathDate, "date", today(), "date of death (YYYY-MM-DD)")
	f.StringVar(&req.DeathReason, "reason", "", "cause of death")
	f.StringVar(&note, "notes", "", "notes")
	return cmd
}

func newPigsWeighCmd(opts *options) *cobra.Command {
	var (
		req  pig.CreateWeightRecordRequest
		note string
	)

	cmd := &cobra.Command{
		Use:   "weigh <id>",
		Short: "Add a weight record to a pig",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Notes = optional(note)
			if err := req.Validate(); err != nil {
				return err
			}
			s, err := opts.app.requireSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			record, err := farmdata.NewPigDetail(s.deps(), args[0]).AddWeightRecord(cmd.Context(), req)
			if err != nil {
				return err
			}
			p, _ := opts.printer(cmd)
			return p.print(record,
				[]string{"ID", "PIG", "WEIGHT", "DATE"},
				[][]string{{record.ID, record.PigID, money(record.Weight), day(record.Date)}},
			)
		},
	}
	f := cmd.Flags()
	f.Float64Var(&req.Weight, "weight", 0, "weight in kg")
	f.StringVar(&req.Date, "date", today(), "date of weighing (YYYY-MM-DD)")
	f.StringVar(&note, "notes", "", "notes")
	return cmd
}

// withPigs runs fn with a pigs hook bound to a signed-in session.
func withPigs(cmd *cobra.Command, opts *options, fn func(*farmdata.Pigs, printer) error) error {
	s, err := opts.app.requireSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	p, _ := opts.printer(cmd)
	return fn(farmdata.NewPigs(s.deps(), ""), p)
}
