package sqlite

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"conservation-registry/internal/domain/animals"
	"conservation-registry/internal/domain/cages"
	"conservation-registry/internal/domain/conservation"
	"conservation-registry/internal/domain/keepers"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	st, err := Open(filepath.Join(t.TempDir(), "registry.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestStore_SaveLoadRoundtrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	snap := conservation.Snapshot{
		Animals: []animals.Animal{
			{
				ID: 1, Name: "Mia", Species: "rabbit",
				Category: animals.CategoryPrey, Sex: animals.SexFemale,
				BirthDate: day(2023, 3, 10), AcquiredDate: day(2024, 1, 5),
			},
			{
				ID: 2, Name: "Rex", Species: "lynx",
				Category: animals.CategoryPredator, Sex: animals.SexMale,
				BirthDate: day(2022, 1, 15), AcquiredDate: day(2023, 11, 20),
			},
		},
		Cages: []cages.Cage{
			{ID: 1, Number: "C-1", Description: "north wing", Capacity: 2, AnimalIDs: []int64{1}, KeeperID: 1},
			{ID: 2, Number: "C-2", Capacity: 1, AnimalIDs: []int64{2}},
		},
		Keepers: []keepers.Keeper{
			{
				ID: 1, FirstName: "Ana", Surname: "Paz", Address: "Av. Sur 120",
				ContactNumber: "555-0101", Position: keepers.PositionHead, CageIDs: []int64{1},
			},
		},
	}

	if err := st.Save(ctx, snap); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, snap) {
		t.Fatalf("roundtrip mismatch:\n got  %+v\n want %+v", got, snap)
	}
}

func TestStore_SaveReplacesPreviousState(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	first := conservation.Snapshot{
		Animals: []animals.Animal{{
			ID: 1, Name: "Mia", Species: "rabbit",
			Category: animals.CategoryPrey, Sex: animals.SexFemale,
			BirthDate: day(2023, 3, 10), AcquiredDate: day(2024, 1, 5),
		}},
	}
	if err := st.Save(ctx, first); err != nil {
		t.Fatalf("Save first: %v", err)
	}

	// el segundo snapshot reemplaza por completo al primero
	second := conservation.Snapshot{
		Keepers: []keepers.Keeper{{
			ID: 5, FirstName: "Eva", Surname: "Sol", Position: keepers.PositionAssistant,
		}},
	}
	if err := st.Save(ctx, second); err != nil {
		t.Fatalf("Save second: %v", err)
	}

	got, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Animals) != 0 {
		t.Fatalf("expected animals replaced, got %+v", got.Animals)
	}
	if len(got.Keepers) != 1 || got.Keepers[0].ID != 5 {
		t.Fatalf("expected keeper 5, got %+v", got.Keepers)
	}
}

func TestStore_LoadEmptyDatabase(t *testing.T) {
	st := openTestStore(t)

	got, err := st.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Animals) != 0 || len(got.Cages) != 0 || len(got.Keepers) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", got)
	}
}

func TestStore_KeeperCageOrderPreserved(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	snap := conservation.Snapshot{
		Cages: []cages.Cage{
			{ID: 1, Number: "C-1", Capacity: 1, KeeperID: 1},
			{ID: 2, Number: "C-2", Capacity: 1, KeeperID: 1},
			{ID: 3, Number: "C-3", Capacity: 1, KeeperID: 1},
		},
		Keepers: []keepers.Keeper{{
			ID: 1, FirstName: "Ana", Surname: "Paz",
			Position: keepers.PositionAssistant, CageIDs: []int64{3, 1, 2},
		}},
	}
	if err := st.Save(ctx, snap); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []int64{3, 1, 2}
	if !reflect.DeepEqual(got.Keepers[0].CageIDs, want) {
		t.Fatalf("expected assignment order %v, got %v", want, got.Keepers[0].CageIDs)
	}
}
