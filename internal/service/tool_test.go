package service_test

import (
	"context"
	"testing"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestToolService_CreateTool(t *testing.T) {
	e := newEngine(t, "2024-01-01")
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		lat, lng := 47.6, -122.3
		icon := "drill"
		v, err := e.tools.CreateTool(ctx, ownerID, service.ToolInput{Name: "  Drill ", Lat: &lat, Lng: &lng, IconKey: &icon})
		require.NoError(t, err)
		assert.Equal(t, "Drill", v.Name)
		assert.Equal(t, ownerID, v.OwnerID)
		assert.True(t, v.IsAvailable)
		assert.False(t, v.IsBorrowed)
		assert.Zero(t, v.PendingRequestCount)
	})

	t.Run("StartsUnavailable", func(t *testing.T) {
		v, err := e.tools.CreateTool(ctx, ownerID, service.ToolInput{Name: "Saw", IsAvailable: boolPtr(false)})
		require.NoError(t, err)
		assert.False(t, v.IsAvailable)
	})

	t.Run("Validation", func(t *testing.T) {
		_, err := e.tools.CreateTool(ctx, ownerID, service.ToolInput{Name: " "})
		assert.ErrorIs(t, err, domain.ErrValidation)

		lat := 10.0
		_, err = e.tools.CreateTool(ctx, ownerID, service.ToolInput{Name: "Saw", Lat: &lat})
		assert.ErrorIs(t, err, domain.ErrValidation)

		bad := 200.0
		_, err = e.tools.CreateTool(ctx, ownerID, service.ToolInput{Name: "Saw", Lat: &lat, Lng: &bad})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestToolService_SetAvailability(t *testing.T) {
	e := newEngine(t, "2024-01-01")
	ctx := context.Background()
	tool := e.seedTool(t, ownerID)

	t.Run("Toggle", func(t *testing.T) {
		v, err := e.tools.SetAvailability(ctx, ownerID, tool.ID, nil)
		require.NoError(t, err)
		assert.False(t, v.IsAvailable)

		v, err = e.tools.SetAvailability(ctx, ownerID, tool.ID, nil)
		require.NoError(t, err)
		assert.True(t, v.IsAvailable)
	})

	t.Run("ExplicitValueIsIdempotent", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			v, err := e.tools.SetAvailability(ctx, ownerID, tool.ID, boolPtr(true))
			require.NoError(t, err)
			assert.True(t, v.IsAvailable)
		}
	})

	t.Run("NotOwner", func(t *testing.T) {
		_, err := e.tools.SetAvailability(ctx, borrowerID, tool.ID, nil)
		assert.ErrorIs(t, err, domain.ErrAuthorization)
	})

	t.Run("UnknownTool", func(t *testing.T) {
		_, err := e.tools.SetAvailability(ctx, ownerID, 404, nil)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("RejectedDuringLoan", func(t *testing.T) {
		r := e.request(t, tool.ID, borrowerID, "2024-01-01", "2024-01-08")
		_, err := e.requests.Approve(ctx, ownerID, r.ID)
		require.NoError(t, err)

		_, err = e.tools.SetAvailability(ctx, ownerID, tool.ID, boolPtr(true))
		assert.ErrorIs(t, err, domain.ErrConflict)
		_, err = e.tools.SetAvailability(ctx, ownerID, tool.ID, nil)
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.False(t, e.tool(t, tool.ID).IsAvailable)

		_, err = e.requests.InitiateReturn(ctx, borrowerID, r.ID)
		require.NoError(t, err)
		_, err = e.tools.SetAvailability(ctx, ownerID, tool.ID, nil)
		assert.ErrorIs(t, err, domain.ErrConflict)

		_, err = e.requests.ConfirmReturn(ctx, ownerID, r.ID)
		require.NoError(t, err)
		v, err := e.tools.SetAvailability(ctx, ownerID, tool.ID, nil)
		require.NoError(t, err)
		assert.False(t, v.IsAvailable)
	})
}

func TestToolService_UpdateTool(t *testing.T) {
	e := newEngine(t, "2024-01-01")
	ctx := context.Background()
	tool := e.seedTool(t, ownerID)
	r := e.request(t, tool.ID, borrowerID, "2024-01-01", "2024-01-08")
	_, err := e.requests.Approve(ctx, ownerID, r.ID)
	require.NoError(t, err)

	t.Run("CatalogFieldsOnly", func(t *testing.T) {
		v, err := e.tools.UpdateTool(ctx, ownerID, tool.ID, service.ToolInput{
			Name:        "Hammer Drill",
			Description: "SDS",
			IsAvailable: boolPtr(true),
		})
		require.NoError(t, err)
		assert.Equal(t, "Hammer Drill", v.Name)
		assert.Equal(t, "SDS", v.Description)
		assert.False(t, v.IsAvailable)
		assert.True(t, v.IsBorrowed)
	})

	t.Run("NotOwner", func(t *testing.T) {
		_, err := e.tools.UpdateTool(ctx, borrowerID, tool.ID, service.ToolInput{Name: "Mine now"})
		assert.ErrorIs(t, err, domain.ErrAuthorization)
	})
}

func TestToolService_DeleteTool(t *testing.T) {
	e := newEngine(t, "2024-01-01")
	ctx := context.Background()
	tool := e.seedTool(t, ownerID)
	r := e.request(t, tool.ID, borrowerID, "2024-01-01", "2024-01-08")
	_, err := e.requests.Approve(ctx, ownerID, r.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, e.tools.DeleteTool(ctx, ownerID, tool.ID), domain.ErrConflict)
	assert.ErrorIs(t, e.tools.DeleteTool(ctx, borrowerID, tool.ID), domain.ErrAuthorization)

	_, err = e.requests.Return(ctx, ownerID, r.ID)
	require.NoError(t, err)
	require.NoError(t, e.tools.DeleteTool(ctx, ownerID, tool.ID))

	_, err = e.tools.GetTool(ctx, tool.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// History survives the delete and still names the tool.
	v, err := e.requests.GetRequest(ctx, borrowerID, r.ID)
	require.NoError(t, err)
	require.NotNil(t, v.Tool)
	assert.Equal(t, "Drill", v.Tool.Name)

	listed, err := e.tools.ListToolsByOwner(ctx, ownerID)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestToolService_ListTools(t *testing.T) {
	e := newEngine(t, "2024-01-10")
	ctx := context.Background()
	lent := e.seedTool(t, ownerID)
	idle := e.seedTool(t, borrower2ID)

	r := e.request(t, lent.ID, borrowerID, "2024-01-01", "2024-01-08")
	_, err := e.requests.Approve(ctx, ownerID, r.ID)
	require.NoError(t, err)
	e.request(t, idle.ID, borrowerID, "2024-01-11", "2024-01-12")

	views, err := e.tools.ListTools(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, lent.ID, views[0].ID)
	assert.True(t, views[0].IsBorrowed)
	assert.True(t, views[0].BorrowedIsOverdue)
	assert.Equal(t, 2, views[0].BorrowedDaysOverdue)
	assert.Equal(t, "2024-01-01", views[0].BorrowedStartDate.String())

	assert.Equal(t, idle.ID, views[1].ID)
	assert.False(t, views[1].IsBorrowed)
	assert.Nil(t, views[1].BorrowedByUserID)
	assert.Equal(t, 1, views[1].PendingRequestCount)

	mine, err := e.tools.ListToolsByOwner(ctx, borrower2ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, idle.ID, mine[0].ID)
}
