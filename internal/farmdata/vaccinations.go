package farmdata

import (
	"context"
	"time"

	"github.com/granjalink/farm-backend-go/internal/authsync"
	"github.com/granjalink/farm-backend-go/internal/client"
	"github.com/granjalink/farm-backend-go/internal/domain/vaccination"
)

// Vaccinations lists applied vaccinations, all of them or those of one pig.
type Vaccinations struct {
	view[[]vaccination.Vaccination]
}

func NewVaccinations(d Deps) *Vaccinations {
	return newVaccinations(d, "", true)
}

// NewPigVaccinations is disabled for an empty pig id.
func NewPigVaccinations(d Deps, pigID string) *Vaccinations {
	return newVaccinations(d, pigID, pigID != "")
}

func newVaccinations(d Deps, pigID string, enabled bool) *Vaccinations {
	return &Vaccinations{view: newView(d, func(ctx context.Context, c *client.DataClient) ([]vaccination.Vaccination, error) {
		return c.ListVaccinations(ctx, pigID)
	}, enabled)}
}

func (v *Vaccinations) Items() []vaccination.Vaccination {
	return valueOr(v.Result())
}

// Due splits the loaded vaccinations by the date of their next dose.
func (v *Vaccinations) Due(now time.Time) vaccination.Due {
	return vaccination.Classify(v.Items(), now)
}

func (v *Vaccinations) Create(ctx context.Context, req vaccination.CreateVaccinationRequest) (vaccination.Vaccination, error) {
	return authsync.Mutate(ctx, v.query, func(ctx context.Context, c *client.DataClient) (vaccination.Vaccination, error) {
		return c.CreateVaccination(ctx, req)
	})
}

func (v *Vaccinations) Update(ctx context.Context, id string, req vaccination.UpdateVaccinationRequest) (vaccination.Vaccination, error) {
	return authsync.Mutate(ctx, v.query, func(ctx context.Context, c *client.DataClient) (vaccination.Vaccination, error) {
		return c.UpdateVaccination(ctx, id, req)
	})
}

func (v *Vaccinations) Delete(ctx context.Context, id string) error {
	return authsync.Exec(ctx, v.query, func(ctx context.Context, c *client.DataClient) error {
		return c.DeleteVaccination(ctx, id)
	})
}

func (v *Vaccinations) MarkReminderSent(ctx context.Context, id string) error {
	return authsync.Exec(ctx, v.query, func(ctx context.Context, c *client.DataClient) error {
		return c.MarkReminderSent(ctx, id)
	})
}

// DueVaccinations is the server's view of overdue and upcoming doses.
type DueVaccinations struct {
	view[vaccination.Due]
}

func NewDueVaccinations(d Deps) *DueVaccinations {
	return &DueVaccinations{view: newView(d, func(ctx context.Context, c *client.DataClient) (vaccination.Due, error) {
		return c.DueVaccinations(ctx)
	}, true)}
}

type Schedules struct {
	view[[]vaccination.Schedule]
}

func NewSchedules(d Deps) *Schedules {
	return &Schedules{view: newView(d, func(ctx context.Context, c *client.DataClient) ([]vaccination.Schedule, error) {
		return c.VaccinationSchedules(ctx)
	}, true)}
}
