package vaccination

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/granjalink/farm-backend-go/internal/domain/pig"
	"github.com/granjalink/farm-backend-go/internal/domain/user"
	"github.com/granjalink/farm-backend-go/internal/domain/vaccination"
	"github.com/granjalink/farm-backend-go/internal/pkg/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVaccinations struct {
	vaccination.VaccinationRepository
	stored     map[string]vaccination.Vaccination
	candidates []vaccination.Vaccination
	marked     []string
}

func (s *stubVaccinations) List(context.Context, vaccination.ListFilter) ([]vaccination.Vaccination, error) {
	out := make([]vaccination.Vaccination, 0, len(s.stored))
	for _, v := range s.stored {
		out = append(out, v)
	}
	return out, nil
}

func (s *stubVaccinations) GetByID(_ context.Context, id string) (vaccination.Vaccination, error) {
	v, ok := s.stored[id]
	if !ok {
		return vaccination.Vaccination{}, vaccination.ErrVaccinationNotFound
	}
	return v, nil
}

func (s *stubVaccinations) Create(_ context.Context, v vaccination.Vaccination) (vaccination.Vaccination, error) {
	v.ID = "new"
	s.stored[v.ID] = v
	return v, nil
}

func (s *stubVaccinations) Update(_ context.Context, v vaccination.Vaccination) (vaccination.Vaccination, error) {
	s.stored[v.ID] = v
	return v, nil
}

func (s *stubVaccinations) MarkReminderSent(_ context.Context, id string) error {
	s.marked = append(s.marked, id)
	return nil
}

func (s *stubVaccinations) ListReminderCandidates(context.Context, time.Time) ([]vaccination.Vaccination, error) {
	return s.candidates, nil
}

type stubUsers struct {
	user.UserRepository
}

func (stubUsers) GetByID(_ context.Context, id string) (user.User, error) {
	if id == "ghost" {
		return user.User{}, user.ErrUserNotFound
	}
	return user.User{ID: id, Email: id + "@farm.test"}, nil
}

type stubPigs struct {
	pig.PigRepository
}

func (stubPigs) GetByID(_ context.Context, id string) (pig.Pig, error) {
	label := "C-" + id
	return pig.Pig{ID: id, Identifier: &label}, nil
}

type recordingMailer struct {
	sent []email.VaccinationReminder
	fail map[string]bool
}

func (m *recordingMailer) SendPasswordReset(context.Context, string, string, string) error {
	return nil
}

func (m *recordingMailer) SendVaccinationReminder(_ context.Context, to string, r email.VaccinationReminder) error {
	if m.fail[to] {
		return errors.New("smtp down")
	}
	m.sent = append(m.sent, r)
	return nil
}

var fixedNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func dateAt(offsetDays int) *time.Time {
	d := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offsetDays)
	return &d
}

func newTestVaccinationService(repo *stubVaccinations, mailer *recordingMailer) *VaccinationServiceImpl {
	svc := NewVaccinationService(repo, nil, stubPigs{}, stubUsers{}, mailer).(*VaccinationServiceImpl)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestVaccinationService_Due(t *testing.T) {
	repo := &stubVaccinations{stored: map[string]vaccination.Vaccination{
		"overdue":  {ID: "overdue", NextDoseDate: dateAt(-1)},
		"today":    {ID: "today", NextDoseDate: dateAt(0)},
		"week":     {ID: "week", NextDoseDate: dateAt(7)},
		"later":    {ID: "later", NextDoseDate: dateAt(8)},
		"complete": {ID: "complete"},
	}}
	svc := newTestVaccinationService(repo, &recordingMailer{})

	due, err := svc.Due(context.Background())
	require.NoError(t, err)

	ids := func(vs []vaccination.Vaccination) []string {
		out := make([]string, 0, len(vs))
		for _, v := range vs {
			out = append(out, v.ID)
		}
		return out
	}
	assert.ElementsMatch(t, []string{"overdue"}, ids(due.Overdue))
	assert.ElementsMatch(t, []string{"today", "week", "later"}, ids(due.Pending))
	assert.ElementsMatch(t, []string{"today", "week"}, ids(due.Upcoming))
}

func TestVaccinationService_CreateDefaultsDose(t *testing.T) {
	repo := &stubVaccinations{stored: map[string]vaccination.Vaccination{}}
	svc := newTestVaccinationService(repo, &recordingMailer{})

	next := "2024-03-22"
	v, err := svc.Create(context.Background(), "u1", vaccination.CreateVaccinationRequest{
		VaccineName:     "Mycoplasma",
		ApplicationDate: "2024-03-01",
		NextDoseDate:    &next,
		AdministeredBy:  "Dra. Pérez",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, v.DoseNumber)
	assert.Equal(t, *dateAt(21), *v.NextDoseDate)
	assert.Equal(t, "u1", v.CreatedBy)
}

func TestVaccinationService_UpdateRearmsReminder(t *testing.T) {
	repo := &stubVaccinations{stored: map[string]vaccination.Vaccination{
		"v1": {ID: "v1", VaccineName: "PRRS", NextDoseDate: dateAt(2), ReminderSent: true},
	}}
	svc := newTestVaccinationService(repo, &recordingMailer{})

	notes := "lote 4"
	v, err := svc.Update(context.Background(), "v1", vaccination.UpdateVaccinationRequest{Notes: &notes})
	require.NoError(t, err)
	assert.True(t, v.ReminderSent)

	moved := "2024-03-10"
	v, err = svc.Update(context.Background(), "v1", vaccination.UpdateVaccinationRequest{NextDoseDate: &moved})
	require.NoError(t, err)
	assert.False(t, v.ReminderSent)
}

func TestVaccinationService_SendDueReminders(t *testing.T) {
	pigID := "p7"
	repo := &stubVaccinations{candidates: []vaccination.Vaccination{
		{ID: "v1", VaccineName: "Circovirus", PigID: &pigID, DoseNumber: 1, NextDoseDate: dateAt(3), CreatedBy: "vet"},
		{ID: "v2", VaccineName: "PRRS", DoseNumber: 2, NextDoseDate: dateAt(1), CreatedBy: "ghost"},
		{ID: "v3", VaccineName: "Erisipela", DoseNumber: 1, NextDoseDate: dateAt(0), CreatedBy: "down"},
	}}
	mailer := &recordingMailer{fail: map[string]bool{"down@farm.test": true}}
	svc := newTestVaccinationService(repo, mailer)

	sent, err := svc.SendDueReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, []string{"v1"}, repo.marked)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "C-p7", mailer.sent[0].PigLabel)
	assert.Equal(t, 2, mailer.sent[0].DoseNumber)
	assert.Equal(t, 3, mailer.sent[0].DaysLeft)
	assert.Equal(t, "2024-03-04", mailer.sent[0].NextDoseDate)
}
