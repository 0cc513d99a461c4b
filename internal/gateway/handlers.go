package gateway

import (
	"net/http"
	"strconv"
	"time"

	"github.com/petcare-labs/petcare/internal/errors"
	"github.com/petcare-labs/petcare/internal/schedule"
	"github.com/petcare-labs/petcare/pkg/api"
	"github.com/petcare-labs/petcare/pkg/models"
)

// Pets

func (g *Gateway) listPets(w http.ResponseWriter, r *http.Request) error {
	pets, err := g.svc.PetSummaries(r.Context())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, pets)
	return nil
}

func (g *Gateway) createPet(w http.ResponseWriter, r *http.Request) error {
	var patch models.PetPatch
	if err := decodeJSON(r, &patch); err != nil {
		return err
	}
	pet, err := g.svc.CreatePet(r.Context(), patch)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, pet)
	return nil
}

func (g *Gateway) getPet(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	pet, err := g.svc.GetPet(r.Context(), id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, pet)
	return nil
}

func (g *Gateway) updatePet(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	var patch models.PetPatch
	if err := decodeJSON(r, &patch); err != nil {
		return err
	}
	pet, err := g.svc.UpdatePet(r.Context(), id, patch)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, pet)
	return nil
}

func (g *Gateway) deletePet(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	if err := g.svc.DeletePet(r.Context(), id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (g *Gateway) petDetail(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	detail, err := g.svc.PetDetail(r.Context(), id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, detail)
	return nil
}

func (g *Gateway) updateTracking(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	var req models.TrackingRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	pet, err := g.svc.UpdateTracking(r.Context(), id, req.Appetite, req.Energy)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, pet)
	return nil
}

// Reminders

func (g *Gateway) listReminders(w http.ResponseWriter, r *http.Request) error {
	filter, err := schedule.ParseFilter(r.URL.Query().Get(api.ParamFilter))
	if err != nil {
		return errors.NewBadRequest(err.Error())
	}
	petID, err := queryPetID(r)
	if err != nil {
		return err
	}
	list, err := g.svc.Reminders(r.Context(), filter, petID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, list)
	return nil
}

func (g *Gateway) createReminder(w http.ResponseWriter, r *http.Request) error {
	var patch models.ReminderPatch
	if err := decodeJSON(r, &patch); err != nil {
		return err
	}
	rem, err := g.svc.CreateReminder(r.Context(), patch)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, rem)
	return nil
}

func (g *Gateway) getReminder(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	rem, err := g.svc.GetReminder(r.Context(), id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, rem)
	return nil
}

func (g *Gateway) updateReminder(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	var patch models.ReminderPatch
	if err := decodeJSON(r, &patch); err != nil {
		return err
	}
	rem, err := g.svc.UpdateReminder(r.Context(), id, patch)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, rem)
	return nil
}

func (g *Gateway) deleteReminder(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	if err := g.svc.DeleteReminder(r.Context(), id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (g *Gateway) completeReminder(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	rem, err := g.svc.CompleteReminder(r.Context(), id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, rem)
	return nil
}

// snoozeReminder accepts an optional {"duration": "30m"} body.
func (g *Gateway) snoozeReminder(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	var req models.SnoozeRequest
	if _, err := decodeOptionalJSON(r, &req); err != nil {
		return err
	}
	var d time.Duration
	if req.Duration != "" {
		d, err = time.ParseDuration(req.Duration)
		if err != nil || d <= 0 {
			return errors.NewBadRequest("invalid snooze duration: " + strconv.Quote(req.Duration))
		}
	}
	rem, err := g.svc.SnoozeReminder(r.Context(), id, d)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, rem)
	return nil
}

// Appointments

func (g *Gateway) listAppointments(w http.ResponseWriter, r *http.Request) error {
	petID, err := queryPetID(r)
	if err != nil {
		return err
	}
	apts, err := g.svc.ListAppointments(r.Context(), petID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, apts)
	return nil
}

func (g *Gateway) createAppointment(w http.ResponseWriter, r *http.Request) error {
	var patch models.AppointmentPatch
	if err := decodeJSON(r, &patch); err != nil {
		return err
	}
	apt, err := g.svc.CreateAppointment(r.Context(), patch)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, apt)
	return nil
}

func (g *Gateway) getAppointment(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	apt, err := g.svc.GetAppointment(r.Context(), id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, apt)
	return nil
}

func (g *Gateway) updateAppointment(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	var patch models.AppointmentPatch
	if err := decodeJSON(r, &patch); err != nil {
		return err
	}
	apt, err := g.svc.UpdateAppointment(r.Context(), id, patch)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, apt)
	return nil
}

func (g *Gateway) deleteAppointment(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	if err := g.svc.DeleteAppointment(r.Context(), id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (g *Gateway) completeAppointment(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	apt, err := g.svc.CompleteAppointment(r.Context(), id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, apt)
	return nil
}

// calendar lays out ?month=YYYY-MM, defaulting to the current month.
func (g *Gateway) calendar(w http.ResponseWriter, r *http.Request) error {
	month := g.svc.Now()
	if raw := r.URL.Query().Get(api.ParamMonth); raw != "" {
		m, err := time.ParseInLocation(api.MonthLayout, raw, g.svc.Location())
		if err != nil {
			return errors.NewBadRequest("invalid month " + strconv.Quote(raw) + ", want YYYY-MM")
		}
		month = m
	}
	days, err := g.svc.Calendar(r.Context(), month)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, days)
	return nil
}

// Feedings

func (g *Gateway) listFeedings(w http.ResponseWriter, r *http.Request) error {
	petID, err := queryPetID(r)
	if err != nil {
		return err
	}
	feedings, err := g.svc.ListFeedings(r.Context(), petID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, feedings)
	return nil
}

func (g *Gateway) createFeeding(w http.ResponseWriter, r *http.Request) error {
	var patch models.FeedingPatch
	if err := decodeJSON(r, &patch); err != nil {
		return err
	}
	f, err := g.svc.CreateFeeding(r.Context(), patch)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, f)
	return nil
}

func (g *Gateway) getFeeding(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	f, err := g.svc.GetFeeding(r.Context(), id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, f)
	return nil
}

func (g *Gateway) updateFeeding(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	var patch models.FeedingPatch
	if err := decodeJSON(r, &patch); err != nil {
		return err
	}
	f, err := g.svc.UpdateFeeding(r.Context(), id, patch)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, f)
	return nil
}

func (g *Gateway) deleteFeeding(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	if err := g.svc.DeleteFeeding(r.Context(), id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (g *Gateway) toggleFeeding(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	f, err := g.svc.ToggleFeeding(r.Context(), id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, f)
	return nil
}

// Vaccinations

func (g *Gateway) listVaccinations(w http.ResponseWriter, r *http.Request) error {
	petID, err := queryPetID(r)
	if err != nil {
		return err
	}
	vs, err := g.svc.ListVaccinations(r.Context(), petID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, vs)
	return nil
}

func (g *Gateway) createVaccination(w http.ResponseWriter, r *http.Request) error {
	var patch models.VaccinationPatch
	if err := decodeJSON(r, &patch); err != nil {
		return err
	}
	v, err := g.svc.CreateVaccination(r.Context(), patch)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, v)
	return nil
}

func (g *Gateway) getVaccination(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	v, err := g.svc.GetVaccination(r.Context(), id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, v)
	return nil
}

func (g *Gateway) updateVaccination(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	var patch models.VaccinationPatch
	if err := decodeJSON(r, &patch); err != nil {
		return err
	}
	v, err := g.svc.UpdateVaccination(r.Context(), id, patch)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, v)
	return nil
}

func (g *Gateway) deleteVaccination(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	if err := g.svc.DeleteVaccination(r.Context(), id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (g *Gateway) dashboard(w http.ResponseWriter, r *http.Request) error {
	d, err := g.svc.Dashboard(r.Context())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, d)
	return nil
}
