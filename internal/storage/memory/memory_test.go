package memory

import (
	"context"
	"testing"

	"github.com/fdg312/meal-planner/internal/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type MemoryStorageSuite struct {
	suite.Suite
	ctx   context.Context
	store *MemoryStorage
}

func TestMemoryStorageSuite(t *testing.T) {
	suite.Run(t, new(MemoryStorageSuite))
}

func (s *MemoryStorageSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = New()
}

func (s *MemoryStorageSuite) createRecipe(owner, title string) storage.Recipe {
	r := storage.Recipe{
		OwnerUserID: owner,
		Title:       title,
		Servings:    2,
		Ingredients: []storage.RecipeIngredient{
			{Name: "Garlic", Amount: 3, Unit: "cloves"},
			{Name: "Olive oil", Amount: 2, Unit: "tbsp"},
		},
	}
	s.Require().NoError(s.store.GetRecipesStorage().CreateRecipe(s.ctx, &r))
	return r
}

func (s *MemoryStorageSuite) TestRecipesRoundTrip() {
	created := s.createRecipe("alice", "Pasta")
	s.NotEqual(uuid.Nil, created.ID)

	got, err := s.store.GetRecipesStorage().GetRecipe(s.ctx, "alice", created.ID)
	s.Require().NoError(err)
	s.Equal("Pasta", got.Title)
	s.Len(got.Ingredients, 2)
	s.Equal(1, got.Ingredients[1].Position)

	_, err = s.store.GetRecipesStorage().GetRecipe(s.ctx, "bob", created.ID)
	s.ErrorIs(err, storage.ErrNotFound)
}

func (s *MemoryStorageSuite) TestRecipesReturnedCopiesAreIsolated() {
	created := s.createRecipe("alice", "Pasta")

	got, err := s.store.GetRecipesStorage().GetRecipe(s.ctx, "alice", created.ID)
	s.Require().NoError(err)
	got.Ingredients[0].Name = "Shallot"

	again, err := s.store.GetRecipesStorage().GetRecipe(s.ctx, "alice", created.ID)
	s.Require().NoError(err)
	s.Equal("Garlic", again.Ingredients[0].Name)
}

func (s *MemoryStorageSuite) TestGetRecipesByIDsSkipsForeignAndMissing() {
	mine := s.createRecipe("alice", "Pasta")
	theirs := s.createRecipe("bob", "Soup")

	got, err := s.store.GetRecipesStorage().GetRecipesByIDs(s.ctx, "alice", []uuid.UUID{mine.ID, theirs.ID, uuid.New(), mine.ID})
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(mine.ID, got[0].ID)
}

func (s *MemoryStorageSuite) TestListAndDeleteRecipes() {
	s.createRecipe("alice", "A")
	b := s.createRecipe("alice", "B")
	s.createRecipe("bob", "C")

	list, err := s.store.GetRecipesStorage().ListRecipes(s.ctx, "alice", 10, 0)
	s.Require().NoError(err)
	s.Len(list, 2)

	page, err := s.store.GetRecipesStorage().ListRecipes(s.ctx, "alice", 1, 5)
	s.Require().NoError(err)
	s.Empty(page)

	s.Require().NoError(s.store.GetRecipesStorage().DeleteRecipe(s.ctx, "alice", b.ID))
	s.ErrorIs(s.store.GetRecipesStorage().DeleteRecipe(s.ctx, "alice", b.ID), storage.ErrNotFound)
}

func (s *MemoryStorageSuite) TestInventoryUpsertIsCaseInsensitive() {
	inv := s.store.GetInventoryStorage()

	first, err := inv.UpsertInventoryItem(s.ctx, "alice", storage.InventoryItemUpsert{Name: "Milk", Quantity: 1, Unit: "cup"})
	s.Require().NoError(err)

	second, err := inv.UpsertInventoryItem(s.ctx, "alice", storage.InventoryItemUpsert{Name: "milk", Quantity: 16, Unit: "tbsp"})
	s.Require().NoError(err)
	s.Equal(first.ID, second.ID)

	items, err := inv.ListInventory(s.ctx, "alice")
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal(16.0, items[0].Quantity)
	s.Equal("tbsp", items[0].Unit)

	other, err := inv.ListInventory(s.ctx, "bob")
	s.Require().NoError(err)
	s.Empty(other)

	s.ErrorIs(inv.DeleteInventoryItem(s.ctx, "bob", first.ID), storage.ErrNotFound)
	s.NoError(inv.DeleteInventoryItem(s.ctx, "alice", first.ID))
}

func (s *MemoryStorageSuite) TestReplaceSlotsOnlyTouchesRange() {
	plans := s.store.GetMealPlansStorage()
	recipeID := uuid.New()

	_, err := plans.ReplaceSlots(s.ctx, "alice", "2024-01-01", "2024-01-07", []storage.MealSlotUpsert{
		{Date: "2024-01-01", MealType: "dinner", RecipeID: &recipeID},
		{Date: "2024-01-05", MealType: "lunch"},
	})
	s.Require().NoError(err)

	slots, err := plans.ReplaceSlots(s.ctx, "alice", "2024-01-05", "2024-01-05", []storage.MealSlotUpsert{
		{Date: "2024-01-05", MealType: "breakfast", Servings: 3},
	})
	s.Require().NoError(err)
	s.Require().Len(slots, 1)
	s.Equal("breakfast", slots[0].MealType)

	all, err := plans.ListSlots(s.ctx, "alice", "2024-01-01", "2024-01-31")
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal("2024-01-01", all[0].Date)
	s.Require().NotNil(all[0].RecipeID)
	s.Equal(recipeID, *all[0].RecipeID)

	s.Require().NoError(plans.DeleteSlots(s.ctx, "alice", "2024-01-01", "2024-01-31"))
	all, err = plans.ListSlots(s.ctx, "alice", "2024-01-01", "2024-01-31")
	s.Require().NoError(err)
	s.Empty(all)
}

func (s *MemoryStorageSuite) TestShoppingSessions() {
	sessions := s.store.GetShoppingSessionsStorage()

	_, found, err := sessions.GetSession(s.ctx, "alice")
	s.Require().NoError(err)
	s.False(found)

	s.Require().NoError(sessions.SaveSession(s.ctx, "alice", []byte(`{"selected":{}}`)))
	payload, found, err := sessions.GetSession(s.ctx, "alice")
	s.Require().NoError(err)
	s.True(found)
	s.JSONEq(`{"selected":{}}`, string(payload))

	s.Require().NoError(sessions.DeleteSession(s.ctx, "alice"))
	_, found, err = sessions.GetSession(s.ctx, "alice")
	s.Require().NoError(err)
	s.False(found)
}

func (s *MemoryStorageSuite) TestExports() {
	exports := s.store.GetExportsStorage()

	meta := &storage.ExportMeta{OwnerUserID: "alice", Format: "csv", ItemCount: 3, Status: "ready", Data: []byte("a,b")}
	s.Require().NoError(exports.CreateExport(s.ctx, meta))
	s.NotEqual(uuid.Nil, meta.ID)

	got, err := exports.GetExport(s.ctx, meta.ID)
	s.Require().NoError(err)
	s.Equal("a,b", string(got.Data))

	list, err := exports.ListExports(s.ctx, "alice", 20, 0)
	s.Require().NoError(err)
	s.Len(list, 1)

	s.Require().NoError(exports.DeleteExport(s.ctx, meta.ID))
	_, err = exports.GetExport(s.ctx, meta.ID)
	s.ErrorIs(err, storage.ErrNotFound)
}
