package cli

import (
	"github.com/spf13/cobra"

	"github.com/granjalink/farm-backend-go/internal/domain/vaccination"
	"github.com/granjalink/farm-backend-go/internal/farmdata"
)

var vaccinationHeaders = []string{"ID", "VACCINE", "PIG", "APPLIED", "DOSE", "NEXT DOSE", "BY"}

func vaccinationRows(vs []vaccination.Vaccination) [][]string {
	rows := make([][]string, 0, len(vs))
	for _, v := range vs {
		rows = append(rows, []string{
			v.ID, v.VaccineName, str(v.PigID), day(v.ApplicationDate),
			itoa(v.DoseNumber), dayPtr(v.NextDoseDate), v.AdministeredBy,
		})
	}
	return rows
}

func newVaccinationsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "vaccinations",
		Aliases: []string{"vacunas"},
		Short:   "List and record vaccinations",
	}
	cmd.AddCommand(
		newVaccinationsListCmd(opts),
		newVaccinationsAddCmd(opts),
		newVaccinationsDueCmd(opts),
	)
	return cmd
}

func newVaccinationsListCmd(opts *options) *cobra.Command {
	var pigID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List vaccinations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.app.requireSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			hook := farmdata.NewVaccinations(s.deps())
			if pigID != "" {
				hook = farmdata.NewPigVaccinations(s.deps(), pigID)
			}
			vs, err := loaded(hook.Await(cmd.Context()))
			if err != nil {
				return err
			}
			p, _ := opts.printer(cmd)
			return p.print(vs, vaccinationHeaders, vaccinationRows(vs))
		},
	}
	cmd.Flags().StringVar(&pigID, "pig", "", "only vaccinations of this pig")
	return cmd
}

func newVaccinationsAddCmd(opts *options) *cobra.Command {
	var (
		req         vaccination.CreateVaccinationRequest
		pigID, next string
		note        string
	)

	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Record an applied vaccine",
		Example: `  farmctl vaccinations add --vaccine Circovirus --by "Dr. Rojas" --next 2026-11-20`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req.PigID = optional(pigID)
			req.NextDoseDate = optional(next)
			req.Notes = optional(note)
			if err := req.Validate(); err != nil {
				return err
			}

			s, err := opts.app.requireSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			created, err := farmdata.NewVaccinations(s.deps()).Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			p, _ := opts.printer(cmd)
			return p.print(created, vaccinationHeaders, vaccinationRows([]vaccination.Vaccination{created}))
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.VaccineName, "vaccine", "", "vaccine name")
	f.StringVar(&req.ApplicationDate, "date", today(), "application date (YYYY-MM-DD)")
	f.StringVar(&next, "next", "", "next dose date (YYYY-MM-DD)")
	f.IntVar(&req.DoseNumber, "dose", 1, "dose number")
	f.StringVar(&req.AdministeredBy, "by", "", "who applied the vaccine")
	f.StringVar(&pigID, "pig", "", "vaccinated pig")
	f.StringVar(&note, "notes", "", "notes")
	return cmd
}

func newVaccinationsDueCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "due",
		Short: "Show overdue doses and doses due within a week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.app.requireSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			due, err := loaded(farmdata.NewDueVaccinations(s.deps()).Await(cmd.Context()))
			if err != nil {
				return err
			}
			p, _ := opts.printer(cmd)
			if p.format != formatTable {
				return p.print(due, nil, nil)
			}

			if err := p.message(nil, "Overdue"); err != nil {
				return err
			}
			if err := p.print(nil, vaccinationHeaders, vaccinationRows(due.Overdue)); err != nil {
				return err
			}
			if err := p.message(nil, "Upcoming"); err != nil {
				return err
			}
			return p.print(nil, vaccinationHeaders, vaccinationRows(due.Upcoming))
		},
	}
}
