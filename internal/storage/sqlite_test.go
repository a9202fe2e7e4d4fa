package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceezaa/tasteflow/internal/common"
	"github.com/ceezaa/tasteflow/internal/model"
)

func setupStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewSQLiteStorage(t *testing.T) {
	tests := []struct {
		name    string
		dbPath  func(t *testing.T) string
		wantErr bool
	}{
		{
			name:   "in-memory database",
			dbPath: func(_ *testing.T) string { return ":memory:" },
		},
		{
			name: "file database creates parent directory",
			dbPath: func(t *testing.T) string {
				t.Helper()
				return filepath.Join(t.TempDir(), "nested", "taste.db")
			},
		},
		{
			name:    "empty path",
			dbPath:  func(_ *testing.T) string { return "" },
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewSQLiteStorage(tt.dbPath(t))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, store.Migrate(context.Background()))
			assert.NoError(t, store.Close())
		})
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := setupStorage(t)
	require.NoError(t, store.Migrate(context.Background()))
	require.NoError(t, store.Migrate(context.Background()))
}

func TestDeclaredTasteVersioning(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()

	_, err := store.GetDeclaredTaste(ctx, "user-1")
	assert.True(t, errors.Is(err, common.ErrNoDeclaredTaste))

	first := model.DeclaredTaste{
		CategoryWeights:  map[string]float64{"coffee": 0.8, "dining": 0.3},
		SocialPreference: "small_group",
		ExplorationStyle: model.ExplorationAdventurous,
		PriceTier:        model.PriceModerate,
		Vibes:            []string{"chill", "cozy"},
	}
	version, err := store.SaveDeclaredTaste(ctx, "user-1", first)
	require.NoError(t, err)
	assert.Equal(t, 1, version)

	second := model.DeclaredTaste{
		CategoryWeights: map[string]float64{"nightlife": 0.7},
		PriceTier:       model.PriceLuxury,
		Vibes:           []string{"energetic"},
	}
	version, err = store.SaveDeclaredTaste(ctx, "user-1", second)
	require.NoError(t, err)
	assert.Equal(t, 2, version)

	got, err := store.GetDeclaredTaste(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)
	assert.Equal(t, map[string]float64{"nightlife": 0.7}, got.CategoryWeights)
	assert.Equal(t, model.PriceLuxury, got.PriceTier)

	// Other users are unaffected.
	_, err = store.GetDeclaredTaste(ctx, "user-2")
	assert.True(t, errors.Is(err, common.ErrNoDeclaredTaste))
}

func TestSaveDeclaredTasteValidation(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()

	_, err := store.SaveDeclaredTaste(ctx, "", model.DeclaredTaste{})
	assert.Error(t, err)

	_, err = store.SaveDeclaredTaste(ctx, "user-1", model.DeclaredTaste{
		CategoryWeights: map[string]float64{"coffee": 1.5},
	})
	assert.True(t, errors.Is(err, ErrInvalidTaste))
}

func TestObservedProfileRoundTrip(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()

	got, err := store.GetObservedProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	profile := model.NewObservedTasteProfile("user-1")
	profile.Version = 3
	profile.TotalTransactions = 2
	stat := model.NewCategoryStat()
	stat.Count = 2
	stat.TotalSpend = decimal.NewFromFloat(31.75)
	stat.MerchantFrequency["m-1"] = 2
	stat.LastSeenAt = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	profile.Categories["coffee"] = stat
	profile.Cuisines["thai"] = 1
	profile.TimePatterns.TimeOfDay["morning"] = 2

	require.NoError(t, store.SaveObservedProfile(ctx, profile))

	got, err = store.GetObservedProfile(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.Version)
	assert.Equal(t, 2, got.TotalTransactions)
	require.NotNil(t, got.Categories["coffee"])
	assert.True(t, got.Categories["coffee"].TotalSpend.Equal(decimal.NewFromFloat(31.75)))
	assert.Equal(t, 2, got.Categories["coffee"].MerchantFrequency["m-1"])

	// Upsert replaces the document.
	profile.Version = 4
	profile.TotalTransactions = 3
	require.NoError(t, store.SaveObservedProfile(ctx, profile))
	got, err = store.GetObservedProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 4, got.Version)
	assert.Equal(t, 3, got.TotalTransactions)
}

func TestAppliedStateCRUD(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()

	got, err := store.GetAppliedState(ctx, "user-1", "txn-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	state := &model.AppliedState{
		TransactionID: "txn-1",
		UserID:        "user-1",
		Category:      "dining",
		Cuisine:       "thai",
		Merchant:      "m-1",
		MerchantName:  "Thai Basil",
		Amount:        decimal.NewFromFloat(24.99),
		OccurredAt:    time.Date(2025, 5, 1, 19, 30, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveAppliedState(ctx, state))

	got, err = store.GetAppliedState(ctx, "user-1", "txn-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "dining", got.Category)
	assert.Equal(t, "thai", got.Cuisine)
	assert.Equal(t, "m-1", got.Merchant)
	assert.True(t, got.Amount.Equal(decimal.NewFromFloat(24.99)))
	assert.True(t, got.OccurredAt.Equal(state.OccurredAt))

	// Upsert overwrites in place.
	state.Category = "coffee"
	state.Amount = decimal.NewFromInt(5)
	require.NoError(t, store.SaveAppliedState(ctx, state))
	got, err = store.GetAppliedState(ctx, "user-1", "txn-1")
	require.NoError(t, err)
	assert.Equal(t, "coffee", got.Category)

	require.NoError(t, store.DeleteAppliedState(ctx, "user-1", "txn-1"))
	got, err = store.GetAppliedState(ctx, "user-1", "txn-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting a missing record is not an error.
	assert.NoError(t, store.DeleteAppliedState(ctx, "user-1", "txn-1"))
}

func TestSaveProfileWithAppliedState(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()

	profile := model.NewObservedTasteProfile("user-1")
	profile.Version = 1
	profile.TotalTransactions = 1
	state := &model.AppliedState{
		TransactionID: "txn-1",
		UserID:        "user-1",
		Category:      "coffee",
		Amount:        decimal.NewFromInt(5),
		OccurredAt:    time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveProfileWithAppliedState(ctx, profile, state))

	gotProfile, err := store.GetObservedProfile(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, gotProfile)
	assert.Equal(t, 1, gotProfile.Version)

	gotState, err := store.GetAppliedState(ctx, "user-1", "txn-1")
	require.NoError(t, err)
	require.NotNil(t, gotState)
	assert.Equal(t, "coffee", gotState.Category)

	// Deleting variant removes the index row with the same profile write.
	profile.Version = 2
	profile.TotalTransactions = 0
	require.NoError(t, store.SaveProfileDeletingAppliedState(ctx, profile, "txn-1"))

	gotProfile, err = store.GetObservedProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, gotProfile.Version)

	gotState, err = store.GetAppliedState(ctx, "user-1", "txn-1")
	require.NoError(t, err)
	assert.Nil(t, gotState)
}

func TestSaveProfileWithAppliedStateValidation(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()

	profile := model.NewObservedTasteProfile("user-1")
	state := &model.AppliedState{
		TransactionID: "txn-1",
		UserID:        "user-1",
		Category:      "coffee",
		Amount:        decimal.NewFromInt(5),
		OccurredAt:    time.Now().UTC(),
	}

	assert.Error(t, store.SaveProfileWithAppliedState(ctx, nil, state))
	assert.Error(t, store.SaveProfileWithAppliedState(ctx, profile, nil))
	assert.Error(t, store.SaveProfileDeletingAppliedState(ctx, nil, "txn-1"))
	assert.Error(t, store.SaveProfileDeletingAppliedState(ctx, profile, ""))

	// Nothing was written by the rejected calls.
	got, err := store.GetObservedProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAppliedStateIsolatedPerUser(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()

	state := &model.AppliedState{
		TransactionID: "txn-1",
		UserID:        "user-1",
		Category:      "coffee",
		Amount:        decimal.NewFromInt(4),
		OccurredAt:    time.Now().UTC(),
	}
	require.NoError(t, store.SaveAppliedState(ctx, state))

	got, err := store.GetAppliedState(ctx, "user-2", "txn-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestVenues(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()

	rating := 4.6
	venues := []model.Venue{
		{
			ID:           "venue-2",
			Name:         "Neon Alley",
			TasteCluster: "nightlife",
			PriceTier:    model.PricePremium,
			VibeTags:     []string{"energetic", "social"},
			Rating:       &rating,
			Active:       true,
		},
		{
			ID:             "venue-1",
			Name:           "Slow Pour",
			TasteCluster:   "coffee",
			CuisineType:    "cafe",
			PriceTier:      model.PriceBudget,
			ClusterWeights: map[string]float64{"coffee": 0.8, "dining": 0.2},
			VibeTags:       []string{"chill"},
			BestFor:        []string{"solo work"},
			Active:         true,
		},
		{
			ID:           "venue-3",
			Name:         "Closed Doors",
			TasteCluster: "dining",
			PriceTier:    model.PriceModerate,
			Active:       false,
		},
	}
	require.NoError(t, store.SaveVenues(ctx, venues))

	all, err := store.GetActiveVenues(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	// Ordered by ID for deterministic scoring downstream.
	assert.Equal(t, "venue-1", all[0].ID)
	assert.Equal(t, "venue-2", all[1].ID)
	assert.Equal(t, map[string]float64{"coffee": 0.8, "dining": 0.2}, all[0].ClusterWeights)
	require.NotNil(t, all[1].Rating)
	assert.InDelta(t, 4.6, *all[1].Rating, 0.001)

	clustered, err := store.GetActiveVenues(ctx, "coffee")
	require.NoError(t, err)
	require.Len(t, clustered, 1)
	assert.Equal(t, "Slow Pour", clustered[0].Name)

	// Re-importing flips state in place.
	venues[0].Active = false
	require.NoError(t, store.SaveVenues(ctx, venues[:1]))
	all, err = store.GetActiveVenues(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "venue-1", all[0].ID)
}

func TestSaveVenuesValidation(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()

	assert.NoError(t, store.SaveVenues(ctx, nil))

	err := store.SaveVenues(ctx, []model.Venue{{Name: "No ID", TasteCluster: "dining"}})
	assert.True(t, errors.Is(err, ErrInvalidVenue))

	err = store.SaveVenues(ctx, []model.Venue{{ID: "v", Name: "No Cluster"}})
	assert.True(t, errors.Is(err, ErrInvalidVenue))
}

func TestLinkedAccounts(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()

	account := &model.LinkedAccount{
		ID:              "acct-1",
		UserID:          "user-1",
		ItemID:          "item-1",
		AccessToken:     "access-sandbox-123",
		InstitutionName: "Chase",
	}
	require.NoError(t, store.SaveLinkedAccount(ctx, account))

	accounts, err := store.GetLinkedAccounts(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "Chase", accounts[0].InstitutionName)
	assert.Empty(t, accounts[0].SyncCursor)
	assert.True(t, accounts[0].LastSyncedAt.IsZero())

	syncedAt := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.UpdateSyncCursor(ctx, "acct-1", "cursor-abc", syncedAt))

	accounts, err = store.GetLinkedAccounts(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "cursor-abc", accounts[0].SyncCursor)
	assert.True(t, accounts[0].LastSyncedAt.Equal(syncedAt))

	err = store.UpdateSyncCursor(ctx, "acct-missing", "cursor", syncedAt)
	assert.True(t, errors.Is(err, common.ErrNotFound))

	others, err := store.GetLinkedAccounts(ctx, "user-2")
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestSaveLinkedAccountValidation(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()

	err := store.SaveLinkedAccount(ctx, nil)
	assert.Error(t, err)

	err = store.SaveLinkedAccount(ctx, &model.LinkedAccount{ID: "a", UserID: "u"})
	assert.True(t, errors.Is(err, ErrInvalidLinked))
}
