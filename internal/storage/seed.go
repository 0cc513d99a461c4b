package storage

import (
	"context"
	"fmt"

	"github.com/petcare-labs/petcare/internal/fixtures"
)

// Seed inserts every record of ds into repo through the normal Create
// path. Stores assign their own IDs, so child records are re-pointed at
// the IDs their pets actually received. Returns the number of records
// inserted.
func Seed(ctx context.Context, repo Repository, ds *fixtures.Dataset) (int, error) {
	petIDs := make(map[int64]int64, len(ds.Pets))
	n := 0

	for _, p := range ds.Pets {
		created, err := repo.Pets().Create(ctx, p)
		if err != nil {
			return n, fmt.Errorf("seed pet %q: %w", p.Name, err)
		}
		petIDs[p.ID] = created.ID
		n++
	}

	remap := func(petID int64) (int64, error) {
		id, ok := petIDs[petID]
		if !ok {
			return 0, fmt.Errorf("unknown pet %d", petID)
		}
		return id, nil
	}

	for _, r := range ds.Reminders {
		r = r.Clone()
		var err error
		if r.PetID, err = remap(r.PetID); err != nil {
			return n, fmt.Errorf("seed reminder %q: %w", r.Title, err)
		}
		if _, err := repo.Reminders().Create(ctx, r); err != nil {
			return n, fmt.Errorf("seed reminder %q: %w", r.Title, err)
		}
		n++
	}
	for _, a := range ds.Appointments {
		a = a.Clone()
		var err error
		if a.PetID, err = remap(a.PetID); err != nil {
			return n, fmt.Errorf("seed appointment %q: %w", a.Reason, err)
		}
		if _, err := repo.Appointments().Create(ctx, a); err != nil {
			return n, fmt.Errorf("seed appointment %q: %w", a.Reason, err)
		}
		n++
	}
	for _, f := range ds.Feedings {
		f = f.Clone()
		var err error
		if f.PetID, err = remap(f.PetID); err != nil {
			return n, fmt.Errorf("seed feeding %s: %w", f.Time, err)
		}
		if _, err := repo.Feedings().Create(ctx, f); err != nil {
			return n, fmt.Errorf("seed feeding %s: %w", f.Time, err)
		}
		n++
	}
	for _, v := range ds.Vaccinations {
		v = v.Clone()
		var err error
		if v.PetID, err = remap(v.PetID); err != nil {
			return n, fmt.Errorf("seed vaccination %q: %w", v.Name, err)
		}
		if _, err := repo.Vaccinations().Create(ctx, v); err != nil {
			return n, fmt.Errorf("seed vaccination %q: %w", v.Name, err)
		}
		n++
	}
	return n, nil
}

// SeedIfEmpty seeds repo only when it holds no pets. It reports whether
// seeding happened.
func SeedIfEmpty(ctx context.Context, repo Repository, ds *fixtures.Dataset) (bool, error) {
	pets, err := repo.Pets().List(ctx)
	if err != nil {
		return false, err
	}
	if len(pets) > 0 {
		return false, nil
	}
	if _, err := Seed(ctx, repo, ds); err != nil {
		return false, err
	}
	return true, nil
}
