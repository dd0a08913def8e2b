package conservation

import (
	"context"
	"errors"
	"testing"

	"conservation-registry/internal/adapters/storage/memory"
	"conservation-registry/internal/domain/animals"
	"conservation-registry/internal/domain/cages"
	"conservation-registry/internal/domain/keepers"
)

func newTestService(cfg *testConstraints) *Service {
	return NewService(
		memory.NewAnimalRegistry(),
		memory.NewCageRegistry(),
		memory.NewKeeperRegistry(),
		NewRules(cfg),
	)
}

func mustAnimal(t *testing.T, svc *Service, name string, cat animals.Category) animals.Animal {
	t.Helper()
	a, err := svc.RegisterAnimal(context.Background(), animals.Animal{
		Name: name, Species: "generic", Category: cat, Sex: animals.SexFemale,
		BirthDate: testDay.AddDate(-2, 0, 0), AcquiredDate: testDay.AddDate(-1, 0, 0),
	})
	if err != nil {
		t.Fatalf("RegisterAnimal(%s): %v", name, err)
	}
	return a
}

func mustCage(t *testing.T, svc *Service, number string, capacity int) cages.Cage {
	t.Helper()
	c, err := svc.RegisterCage(context.Background(), cages.Cage{Number: number, Capacity: capacity})
	if err != nil {
		t.Fatalf("RegisterCage(%s): %v", number, err)
	}
	return c
}

func mustKeeper(t *testing.T, svc *Service, first, last string) keepers.Keeper {
	t.Helper()
	k, err := svc.RegisterKeeper(context.Background(), keepers.Keeper{
		FirstName: first, Surname: last, Position: keepers.PositionAssistant,
	})
	if err != nil {
		t.Fatalf("RegisterKeeper(%s): %v", first, err)
	}
	return k
}

func mustAllocate(t *testing.T, svc *Service, animalID, cageID int64) {
	t.Helper()
	if err := svc.AllocateAnimal(context.Background(), animalID, cageID); err != nil {
		t.Fatalf("AllocateAnimal(%d -> %d): %v", animalID, cageID, err)
	}
}

func wantViolationErr(t *testing.T, err error, kind Kind) {
	t.Helper()
	v, ok := AsViolation(err)
	if !ok {
		t.Fatalf("expected a %s violation, got %v", kind, err)
	}
	if v.Kind != kind {
		t.Fatalf("expected kind %s, got %s (%s)", kind, v.Kind, v.Message)
	}
}

// -------------------------
// Asignación de animales
// -------------------------

func TestService_AllocateAnimal_CapacityExceeded(t *testing.T) {
	svc := newTestService(defaultConstraints())
	ctx := context.Background()

	// jaula de capacidad 1: la segunda presa rebota por capacidad
	c := mustCage(t, svc, "C-1", 1)
	first := mustAnimal(t, svc, "Mia", animals.CategoryPrey)
	second := mustAnimal(t, svc, "Lu", animals.CategoryPrey)

	mustAllocate(t, svc, first.ID, c.ID)

	err := svc.AllocateAnimal(ctx, second.ID, c.ID)
	wantViolationErr(t, err, KindCageCapacityExceeded)

	got, _ := svc.GetCage(ctx, c.ID)
	if got.Occupancy() != 1 {
		t.Fatalf("expected occupancy 1 after failed allocation, got %d", got.Occupancy())
	}
}

func TestService_AllocateAnimal_PredatorAloneThenAnyMixRejected(t *testing.T) {
	svc := newTestService(defaultConstraints())
	ctx := context.Background()

	c := mustCage(t, svc, "C-1", 3)
	pred := mustAnimal(t, svc, "Rex", animals.CategoryPredator)
	prey := mustAnimal(t, svc, "Mia", animals.CategoryPrey)

	mustAllocate(t, svc, pred.ID, c.ID)

	// la jaula con depredador no admite a nadie más
	err := svc.AllocateAnimal(ctx, prey.ID, c.ID)
	wantViolationErr(t, err, KindPredatorPreyMix)
}

func TestService_AllocateAnimal_PredatorIntoPreyCage(t *testing.T) {
	svc := newTestService(defaultConstraints())
	ctx := context.Background()

	c := mustCage(t, svc, "C-1", 3)
	prey := mustAnimal(t, svc, "Mia", animals.CategoryPrey)
	pred := mustAnimal(t, svc, "Rex", animals.CategoryPredator)

	mustAllocate(t, svc, prey.ID, c.ID)

	err := svc.AllocateAnimal(ctx, pred.ID, c.ID)
	wantViolationErr(t, err, KindPredatorPreyMix)

	// el set de ocupantes queda byte a byte igual
	got, _ := svc.GetCage(ctx, c.ID)
	if len(got.AnimalIDs) != 1 || got.AnimalIDs[0] != prey.ID {
		t.Fatalf("expected occupants unchanged [%d], got %v", prey.ID, got.AnimalIDs)
	}
}

func TestService_AllocateAnimal_NotFoundIsDistinctFromViolation(t *testing.T) {
	svc := newTestService(defaultConstraints())
	ctx := context.Background()

	c := mustCage(t, svc, "C-1", 1)

	err := svc.AllocateAnimal(ctx, 999, c.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, ok := AsViolation(err); ok {
		t.Fatalf("not-found must not be a rule violation")
	}

	a := mustAnimal(t, svc, "Mia", animals.CategoryPrey)
	if err := svc.AllocateAnimal(ctx, a.ID, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing cage, got %v", err)
	}
}

func TestService_ReleaseAnimal_FreesExactlyOneSpace(t *testing.T) {
	svc := newTestService(defaultConstraints())
	ctx := context.Background()

	c := mustCage(t, svc, "C-1", 2)
	a := mustAnimal(t, svc, "Mia", animals.CategoryPrey)
	mustAllocate(t, svc, a.ID, c.ID)

	before, _ := svc.GetCage(ctx, c.ID)

	if err := svc.ReleaseAnimal(ctx, a.ID, c.ID); err != nil {
		t.Fatalf("ReleaseAnimal: %v", err)
	}

	after, _ := svc.GetCage(ctx, c.ID)
	if after.Holds(a.ID) {
		t.Fatalf("expected animal %d released from cage", a.ID)
	}
	if after.AvailableSpace() != before.AvailableSpace()+1 {
		t.Fatalf("expected free space to grow by 1: before=%d after=%d",
			before.AvailableSpace(), after.AvailableSpace())
	}
}

func TestService_ReleaseAnimal_NotHoused(t *testing.T) {
	svc := newTestService(defaultConstraints())

	c := mustCage(t, svc, "C-1", 2)
	a := mustAnimal(t, svc, "Mia", animals.CategoryPrey)

	err := svc.ReleaseAnimal(context.Background(), a.ID, c.ID)
	wantViolationErr(t, err, KindInvalidAnimalData)
}

// -------------------------
// Asignación de cuidadores
// -------------------------

func TestService_AssignKeeper_OverloadLeavesWorkloadUnchanged(t *testing.T) {
	svc := newTestService(defaultConstraints())
	ctx := context.Background()

	k := mustKeeper(t, svc, "Ana", "Paz")
	for i := 0; i < 4; i++ {
		c := mustCage(t, svc, "C", 1)
		if err := svc.AssignKeeper(ctx, k.ID, c.ID); err != nil {
			t.Fatalf("AssignKeeper #%d: %v", i+1, err)
		}
	}

	fifth := mustCage(t, svc, "C-5", 1)
	err := svc.AssignKeeper(ctx, k.ID, fifth.ID)
	wantViolationErr(t, err, KindKeeperOverload)

	got, _ := svc.GetKeeper(ctx, k.ID)
	if got.Workload() != 4 {
		t.Fatalf("expected workload to stay at 4, got %d", got.Workload())
	}
	gotCage, _ := svc.GetCage(ctx, fifth.ID)
	if gotCage.KeeperID != 0 {
		t.Fatalf("expected cage to stay unassigned, got keeper %d", gotCage.KeeperID)
	}
}

func TestService_AssignKeeper_Reassignment(t *testing.T) {
	svc := newTestService(defaultConstraints())
	ctx := context.Background()

	c := mustCage(t, svc, "C-1", 1)
	k1 := mustKeeper(t, svc, "Ana", "Paz")
	k2 := mustKeeper(t, svc, "Eva", "Sol")

	if err := svc.AssignKeeper(ctx, k1.ID, c.ID); err != nil {
		t.Fatalf("AssignKeeper k1: %v", err)
	}
	// asignar otro cuidador funciona como reasignación: desvincula al anterior
	if err := svc.AssignKeeper(ctx, k2.ID, c.ID); err != nil {
		t.Fatalf("AssignKeeper k2: %v", err)
	}

	gotC, _ := svc.GetCage(ctx, c.ID)
	if gotC.KeeperID != k2.ID {
		t.Fatalf("expected cage keeper %d, got %d", k2.ID, gotC.KeeperID)
	}
	got1, _ := svc.GetKeeper(ctx, k1.ID)
	if got1.Holds(c.ID) {
		t.Fatalf("expected previous keeper detached from cage %d", c.ID)
	}
	got2, _ := svc.GetKeeper(ctx, k2.ID)
	if !got2.Holds(c.ID) {
		t.Fatalf("expected new keeper to hold cage %d", c.ID)
	}
}

func TestService_UnassignKeeper_UnderloadRule(t *testing.T) {
	svc := newTestService(defaultConstraints())
	ctx := context.Background()

	c := mustCage(t, svc, "C-1", 1)
	k := mustKeeper(t, svc, "Ana", "Paz")
	if err := svc.AssignKeeper(ctx, k.ID, c.ID); err != nil {
		t.Fatalf("AssignKeeper: %v", err)
	}

	// con 1 jaula y min 1, quedar en 0 se bloquea por defecto
	err := svc.UnassignKeeper(ctx, k.ID, c.ID, false)
	wantViolationErr(t, err, KindKeeperUnderload)

	got, _ := svc.GetKeeper(ctx, k.ID)
	if got.Workload() != 1 {
		t.Fatalf("expected workload unchanged at 1, got %d", got.Workload())
	}

	// el estado terminal se habilita con allowUnderload
	if err := svc.UnassignKeeper(ctx, k.ID, c.ID, true); err != nil {
		t.Fatalf("UnassignKeeper with allowUnderload: %v", err)
	}
	got, _ = svc.GetKeeper(ctx, k.ID)
	if got.Workload() != 0 {
		t.Fatalf("expected workload 0, got %d", got.Workload())
	}
	gotC, _ := svc.GetCage(ctx, c.ID)
	if gotC.KeeperID != 0 {
		t.Fatalf("expected cage unassigned, got keeper %d", gotC.KeeperID)
	}
}

func TestService_UnassignKeeper_IdempotentWhenNotAssigned(t *testing.T) {
	svc := newTestService(defaultConstraints())
	ctx := context.Background()

	c := mustCage(t, svc, "C-1", 1)
	k := mustKeeper(t, svc, "Ana", "Paz")

	// quitar una asignación inexistente no es error
	if err := svc.UnassignKeeper(ctx, k.ID, c.ID, false); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}

// -------------------------
// Bajas completas
// -------------------------

func TestService_RemoveCage_BlockedWhileOccupied(t *testing.T) {
	svc := newTestService(defaultConstraints())
	ctx := context.Background()

	c := mustCage(t, svc, "C-1", 1)
	a := mustAnimal(t, svc, "Mia", animals.CategoryPrey)
	mustAllocate(t, svc, a.ID, c.ID)

	err := svc.RemoveCage(ctx, c.ID)
	if !errors.Is(err, ErrStateConflict) {
		t.Fatalf("expected ErrStateConflict, got %v", err)
	}

	// vaciada la jaula, la baja pasa y desvincula al cuidador asignado
	k := mustKeeper(t, svc, "Ana", "Paz")
	if err := svc.AssignKeeper(ctx, k.ID, c.ID); err != nil {
		t.Fatalf("AssignKeeper: %v", err)
	}
	if err := svc.ReleaseAnimal(ctx, a.ID, c.ID); err != nil {
		t.Fatalf("ReleaseAnimal: %v", err)
	}
	if err := svc.RemoveCage(ctx, c.ID); err != nil {
		t.Fatalf("RemoveCage: %v", err)
	}

	gotK, _ := svc.GetKeeper(ctx, k.ID)
	if gotK.Holds(c.ID) {
		t.Fatalf("expected keeper detached from removed cage")
	}
	if _, err := svc.GetCage(ctx, c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected cage gone, got %v", err)
	}
}

func TestService_RemoveKeeper_BlockedWhileLoaded(t *testing.T) {
	svc := newTestService(defaultConstraints())
	ctx := context.Background()

	c := mustCage(t, svc, "C-1", 1)
	k := mustKeeper(t, svc, "Ana", "Paz")
	if err := svc.AssignKeeper(ctx, k.ID, c.ID); err != nil {
		t.Fatalf("AssignKeeper: %v", err)
	}

	err := svc.RemoveKeeper(ctx, k.ID)
	if !errors.Is(err, ErrStateConflict) {
		t.Fatalf("expected ErrStateConflict, got %v", err)
	}

	if err := svc.UnassignKeeper(ctx, k.ID, c.ID, true); err != nil {
		t.Fatalf("UnassignKeeper: %v", err)
	}
	if err := svc.RemoveKeeper(ctx, k.ID); err != nil {
		t.Fatalf("RemoveKeeper after zero cages: %v", err)
	}
}

func TestService_RemoveAnimal_DetachesFromCage(t *testing.T) {
	svc := newTestService(defaultConstraints())
	ctx := context.Background()

	c := mustCage(t, svc, "C-1", 1)
	a := mustAnimal(t, svc, "Mia", animals.CategoryPrey)
	mustAllocate(t, svc, a.ID, c.ID)

	if err := svc.RemoveAnimal(ctx, a.ID); err != nil {
		t.Fatalf("RemoveAnimal: %v", err)
	}

	gotC, _ := svc.GetCage(ctx, c.ID)
	if gotC.Holds(a.ID) {
		t.Fatalf("expected animal detached from cage before deregistration")
	}
	if _, err := svc.GetAnimal(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected animal gone, got %v", err)
	}
}

// -------------------------
// Updates
// -------------------------

func TestService_UpdateCage_CapacityBelowOccupancy(t *testing.T) {
	svc := newTestService(defaultConstraints())
	ctx := context.Background()

	c := mustCage(t, svc, "C-1", 2)
	a1 := mustAnimal(t, svc, "Mia", animals.CategoryPrey)
	a2 := mustAnimal(t, svc, "Lu", animals.CategoryPrey)
	mustAllocate(t, svc, a1.ID, c.ID)
	mustAllocate(t, svc, a2.ID, c.ID)

	c.Capacity = 1
	_, err := svc.UpdateCage(ctx, c)
	wantViolationErr(t, err, KindInvalidCageData)

	// ampliar siempre se puede
	c.Capacity = 5
	updated, err := svc.UpdateCage(ctx, c)
	if err != nil {
		t.Fatalf("UpdateCage: %v", err)
	}
	if updated.Capacity != 5 || updated.Occupancy() != 2 {
		t.Fatalf("expected capacity 5 with occupants preserved, got %+v", updated)
	}
}

func TestService_RegisterAnimal_RejectsBadData(t *testing.T) {
	svc := newTestService(defaultConstraints())

	_, err := svc.RegisterAnimal(context.Background(), animals.Animal{
		Name: "Ghost", Species: "generic", Category: "omnivore", Sex: animals.SexMale,
		BirthDate: testDay, AcquiredDate: testDay,
	})
	wantViolationErr(t, err, KindInvalidAnimalData)
}

// -------------------------
// Vistas derivadas
// -------------------------

func TestService_AvailableViews(t *testing.T) {
	svc := newTestService(defaultConstraints())
	ctx := context.Background()

	housed := mustAnimal(t, svc, "Mia", animals.CategoryPrey)
	free := mustAnimal(t, svc, "Lu", animals.CategoryPrey)

	full := mustCage(t, svc, "C-1", 1)
	open := mustCage(t, svc, "C-2", 2)
	mustAllocate(t, svc, housed.ID, full.ID)

	avail, err := svc.AvailableAnimals(ctx)
	if err != nil {
		t.Fatalf("AvailableAnimals: %v", err)
	}
	if len(avail) != 1 || avail[0].ID != free.ID {
		t.Fatalf("expected only unhoused animal %d, got %v", free.ID, avail)
	}

	availCages, err := svc.AvailableCages(ctx)
	if err != nil {
		t.Fatalf("AvailableCages: %v", err)
	}
	if len(availCages) != 1 || availCages[0].ID != open.ID {
		t.Fatalf("expected only cage %d below capacity, got %v", open.ID, availCages)
	}

	k := mustKeeper(t, svc, "Ana", "Paz")
	loaded := mustKeeper(t, svc, "Eva", "Sol")
	for i := 0; i < 4; i++ {
		c := mustCage(t, svc, "K", 1)
		if err := svc.AssignKeeper(ctx, loaded.ID, c.ID); err != nil {
			t.Fatalf("AssignKeeper: %v", err)
		}
	}

	availKeepers, err := svc.AvailableKeepers(ctx)
	if err != nil {
		t.Fatalf("AvailableKeepers: %v", err)
	}
	if len(availKeepers) != 1 || availKeepers[0].ID != k.ID {
		t.Fatalf("expected only keeper %d below max workload, got %v", k.ID, availKeepers)
	}
}

// -------------------------
// Snapshot / Restore
// -------------------------

func TestService_SnapshotRestore_Roundtrip(t *testing.T) {
	svc := newTestService(defaultConstraints())
	ctx := context.Background()

	a := mustAnimal(t, svc, "Mia", animals.CategoryPrey)
	c := mustCage(t, svc, "C-1", 2)
	k := mustKeeper(t, svc, "Ana", "Paz")
	mustAllocate(t, svc, a.ID, c.ID)
	if err := svc.AssignKeeper(ctx, k.ID, c.ID); err != nil {
		t.Fatalf("AssignKeeper: %v", err)
	}

	snap, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	restored := newTestService(defaultConstraints())
	if err := restored.Restore(ctx, snap); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	gotC, err := restored.GetCage(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetCage after restore: %v", err)
	}
	if !gotC.Holds(a.ID) || gotC.KeeperID != k.ID {
		t.Fatalf("expected relationships restored, got %+v", gotC)
	}

	// las altas nuevas no colisionan con IDs restaurados
	fresh := mustAnimal(t, svc, "Lu", animals.CategoryPrey)
	freshRestored := mustAnimal(t, restored, "Lu", animals.CategoryPrey)
	if fresh.ID != freshRestored.ID {
		t.Fatalf("expected same next id on both stores, got %d vs %d", fresh.ID, freshRestored.ID)
	}
	if freshRestored.ID <= a.ID {
		t.Fatalf("expected restored counter past %d, got %d", a.ID, freshRestored.ID)
	}
}

func TestService_Restore_RejectsInvalidEntities(t *testing.T) {
	svc := newTestService(defaultConstraints())

	err := svc.Restore(context.Background(), Snapshot{
		Cages: []cages.Cage{{ID: 1, Number: "C-1", Capacity: 0}},
	})
	wantViolationErr(t, err, KindInvalidCageData)
}
