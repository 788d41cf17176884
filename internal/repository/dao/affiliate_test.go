package dao

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAffiliateProgramDAO_IncrementPoints(t *testing.T) {
	db := setupTestDB(t)
	d := NewAffiliateProgramDAO(db)
	ctx := context.Background()
	client := insertMember(t, db, 1, "standard")

	require.NoError(t, d.IncrementPoints(ctx, client.AffiliateProgram.ID, 4))
	require.NoError(t, d.IncrementPoints(ctx, client.AffiliateProgram.ID, 6))

	program, err := d.FindByID(ctx, client.AffiliateProgram.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, program.Points)
}

func TestAffiliateProgramDAO_IncrementPoints_Concurrent(t *testing.T) {
	// Arrange
	db := setupTestDB(t)
	d := NewAffiliateProgramDAO(db)
	ctx := context.Background()
	client := insertMember(t, db, 1, "standard")
	const workers = 20

	// Act
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- d.IncrementPoints(ctx, client.AffiliateProgram.ID, 2)
		}()
	}
	wg.Wait()
	close(errs)

	// Assert
	for err := range errs {
		require.NoError(t, err)
	}
	program, err := d.FindByID(ctx, client.AffiliateProgram.ID)
	require.NoError(t, err)
	assert.Equal(t, workers*2, program.Points, "no increment may be lost")
}

func TestAffiliateProgramDAO_IncrementPoints_NotFound(t *testing.T) {
	db := setupTestDB(t)

	err := NewAffiliateProgramDAO(db).IncrementPoints(context.Background(), 99, 1)

	assert.ErrorIs(t, err, ErrAffiliateProgramNotFound)
}

func TestAffiliateProgramDAO_DeductPoints_StopsAtZero(t *testing.T) {
	db := setupTestDB(t)
	d := NewAffiliateProgramDAO(db)
	ctx := context.Background()
	client := insertMember(t, db, 1, "standard")
	id := client.AffiliateProgram.ID

	require.NoError(t, d.IncrementPoints(ctx, id, 5))
	require.NoError(t, d.DeductPoints(ctx, id, 3))
	program, err := d.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, program.Points)

	require.NoError(t, d.DeductPoints(ctx, id, 10))
	program, err = d.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, program.Points)
}

func TestAffiliateProgramDAO_ReassignTier(t *testing.T) {
	db := setupTestDB(t)
	d := NewAffiliateProgramDAO(db)
	ctx := context.Background()
	client := insertMember(t, db, 1, "standard")

	moved, err := d.ReassignTier(ctx, client.ID, "standard", "premium")
	require.NoError(t, err)
	assert.True(t, moved)

	moved, err = d.ReassignTier(ctx, client.ID, "standard", "premium")
	require.NoError(t, err)
	assert.False(t, moved, "second promotion is a no-op")

	program, err := d.FindByClientID(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, "premium", program.Tier)
}

func TestAffiliateProgramDAO_Insert_DuplicateCardNumber(t *testing.T) {
	db := setupTestDB(t)
	d := NewAffiliateProgramDAO(db)
	ctx := context.Background()
	insertMember(t, db, 1, "standard")

	other, err := NewClientDAO(db).Insert(ctx, newTestClient(2))
	require.NoError(t, err)

	_, err = d.Insert(ctx, AffiliateProgram{ClientID: other.ID, Tier: "standard", CardNumber: "CARD-1"})

	assert.ErrorIs(t, err, ErrCardNumberExists)
}

func TestAffiliateProgramDAO_Tiers(t *testing.T) {
	db := setupTestDB(t)
	d := NewAffiliateProgramDAO(db)
	ctx := context.Background()

	_, err := d.FindTierByName(ctx, "premium")
	assert.ErrorIs(t, err, ErrTierNotFound)

	_, err = d.UpsertTier(ctx, AffiliateTier{Name: "premium", Description: "first"})
	require.NoError(t, err)
	tier, err := d.UpsertTier(ctx, AffiliateTier{Name: "premium", Description: "second"})
	require.NoError(t, err)
	assert.Equal(t, "second", tier.Description)

	tiers, err := d.FindAllTiers(ctx)
	require.NoError(t, err)
	assert.Len(t, tiers, 1)

	require.NoError(t, d.DeleteTier(ctx, "premium"))
	_, err = d.FindTierByName(ctx, "premium")
	assert.ErrorIs(t, err, ErrTierNotFound)
}
