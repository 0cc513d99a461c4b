package storage

import (
	"database/sql"

	"github.com/petcare-labs/petcare/internal/care"
)

var petTable = tableDef[care.Pet]{
	name:    "pets",
	kind:    care.KindPet,
	columns: []string{"name", "type", "breed", "birth_date", "photo_url", "notes", "appetite", "energy"},
	values: func(p *care.Pet) []any {
		return []any{p.Name, string(p.Type), p.Breed, p.BirthDate, p.PhotoURL, p.Notes, p.Appetite, p.Energy}
	},
	scan: func(row rowScanner) (*care.Pet, error) {
		var p care.Pet
		var petType string
		if err := row.Scan(&p.ID, &p.Name, &petType, &p.Breed, &p.BirthDate, &p.PhotoURL, &p.Notes, &p.Appetite, &p.Energy); err != nil {
			return nil, err
		}
		p.Type = care.PetType(petType)
		return &p, nil
	},
}

var reminderTable = tableDef[care.Reminder]{
	name:    "reminders",
	kind:    care.KindReminder,
	columns: []string{"pet_id", "type", "title", "description", "date_time", "completed", "snoozed_until"},
	values: func(r *care.Reminder) []any {
		var snoozed sql.NullString
		if r.SnoozedUntil != nil {
			snoozed = sql.NullString{String: formatTime(*r.SnoozedUntil), Valid: true}
		}
		return []any{r.PetID, string(r.Type), r.Title, r.Description, formatTime(r.DateTime), r.Completed, snoozed}
	},
	scan: func(row rowScanner) (*care.Reminder, error) {
		var r care.Reminder
		var remType, dateTime string
		var snoozed sql.NullString
		if err := row.Scan(&r.ID, &r.PetID, &remType, &r.Title, &r.Description, &dateTime, &r.Completed, &snoozed); err != nil {
			return nil, err
		}
		r.Type = care.ReminderType(remType)

		var err error
		if r.DateTime, err = parseTime(dateTime); err != nil {
			return nil, err
		}
		if snoozed.Valid {
			until, err := parseTime(snoozed.String)
			if err != nil {
				return nil, err
			}
			r.SnoozedUntil = &until
		}
		return &r, nil
	},
}

var appointmentTable = tableDef[care.Appointment]{
	name:    "appointments",
	kind:    care.KindAppointment,
	columns: []string{"pet_id", "type", "date_time", "veterinarian", "reason", "notes", "completed"},
	values: func(a *care.Appointment) []any {
		return []any{a.PetID, string(a.Type), formatTime(a.DateTime), a.Veterinarian, a.Reason, a.Notes, a.Completed}
	},
	scan: func(row rowScanner) (*care.Appointment, error) {
		var a care.Appointment
		var aptType, dateTime string
		if err := row.Scan(&a.ID, &a.PetID, &aptType, &dateTime, &a.Veterinarian, &a.Reason, &a.Notes, &a.Completed); err != nil {
			return nil, err
		}
		a.Type = care.AppointmentType(aptType)

		var err error
		if a.DateTime, err = parseTime(dateTime); err != nil {
			return nil, err
		}
		return &a, nil
	},
}

var feedingTable = tableDef[care.FeedingSchedule]{
	name:    "feeding_schedules",
	kind:    care.KindFeeding,
	columns: []string{"pet_id", "feed_time", "food_type", "amount", "notes", "enabled"},
	values: func(f *care.FeedingSchedule) []any {
		return []any{f.PetID, f.Time, f.FoodType, f.Amount, f.Notes, f.Enabled}
	},
	scan: func(row rowScanner) (*care.FeedingSchedule, error) {
		var f care.FeedingSchedule
		if err := row.Scan(&f.ID, &f.PetID, &f.Time, &f.FoodType, &f.Amount, &f.Notes, &f.Enabled); err != nil {
			return nil, err
		}
		return &f, nil
	},
}

var vaccinationTable = tableDef[care.Vaccination]{
	name:    "vaccinations",
	kind:    care.KindVaccination,
	columns: []string{"pet_id", "name", "date_given", "next_due_date", "veterinarian", "notes"},
	values: func(v *care.Vaccination) []any {
		return []any{v.PetID, v.Name, v.DateGiven, v.NextDueDate, v.Veterinarian, v.Notes}
	},
	scan: func(row rowScanner) (*care.Vaccination, error) {
		var v care.Vaccination
		if err := row.Scan(&v.ID, &v.PetID, &v.Name, &v.DateGiven, &v.NextDueDate, &v.Veterinarian, &v.Notes); err != nil {
			return nil, err
		}
		return &v, nil
	},
}
