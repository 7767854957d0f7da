package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"autoshop/internal/model"
	"autoshop/internal/testutil"
)

func seedUser(t *testing.T, repos *Repositories, email string) *model.User {
	t.Helper()
	user := &model.User{Name: "Owner", Email: email, PasswordHash: "x", Phone: "555-0100"}
	require.NoError(t, repos.Users.Create(context.Background(), user))
	return user
}

func TestNewPage(t *testing.T) {
	tests := []struct {
		name       string
		number     int
		size       int
		wantNumber int
		wantSize   int
	}{
		{"defaults", 0, 0, 1, DefaultPerPage},
		{"negative", -3, -1, 1, DefaultPerPage},
		{"capped", 2, 1000, 2, MaxPerPage},
		{"explicit", 3, 25, 3, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := NewPage(tt.number, tt.size)
			assert.Equal(t, tt.wantNumber, page.Number)
			assert.Equal(t, tt.wantSize, page.Size)
		})
	}
}

func TestPaginated_Navigation(t *testing.T) {
	p := &Paginated[int]{Total: 5, Page: NewPage(1, 2)}
	assert.Equal(t, 3, p.Pages())
	assert.True(t, p.HasNext())
	assert.False(t, p.HasPrev())

	p.Page = NewPage(3, 2)
	assert.False(t, p.HasNext())
	assert.True(t, p.HasPrev())

	empty := &Paginated[int]{Page: NewPage(1, 10)}
	assert.Equal(t, 0, empty.Pages())
	assert.False(t, empty.HasNext())
}

func TestMechanicRepository_ListPaginates(t *testing.T) {
	repos := New(testutil.NewDB(t))
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		require.NoError(t, repos.Mechanics.Create(ctx, &model.Mechanic{Name: fmt.Sprintf("Mechanic %d", i), Phone: "555"}))
	}

	page, err := repos.Mechanics.List(ctx, NewPage(1, 2))
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, 3, page.Pages())
	assert.Equal(t, "Mechanic 1", page.Items[0].Name)

	last, err := repos.Mechanics.List(ctx, NewPage(3, 2))
	require.NoError(t, err)
	assert.Len(t, last.Items, 1)

	past, err := repos.Mechanics.List(ctx, NewPage(9, 2))
	require.NoError(t, err)
	assert.Empty(t, past.Items)
	assert.Equal(t, int64(5), past.Total)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	repos := New(testutil.NewDB(t))
	seedUser(t, repos, "dup@example.com")

	err := repos.Users.Create(context.Background(), &model.User{Name: "Again", Email: "dup@example.com", PasswordHash: "x", Phone: "1"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestUserRepository_UpdateAndDelete(t *testing.T) {
	repos := New(testutil.NewDB(t))
	ctx := context.Background()
	user := seedUser(t, repos, "u@example.com")

	require.NoError(t, repos.Users.Update(ctx, user.ID, map[string]interface{}{"name": "Renamed"}))
	got, err := repos.Users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, "u@example.com", got.Email)

	require.NoError(t, repos.Users.Delete(ctx, user.ID))
	assert.ErrorIs(t, repos.Users.Delete(ctx, user.ID), gorm.ErrRecordNotFound)
	_, err = repos.Users.FindByID(ctx, user.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestTicketRepository_Links(t *testing.T) {
	repos := New(testutil.NewDB(t))
	ctx := context.Background()
	user := seedUser(t, repos, "links@example.com")

	m1 := &model.Mechanic{Name: "Ann", Phone: "1"}
	m2 := &model.Mechanic{Name: "Bob", Phone: "2"}
	require.NoError(t, repos.Mechanics.Create(ctx, m1))
	require.NoError(t, repos.Mechanics.Create(ctx, m2))
	part := &model.Part{Name: "Filter", Price: decimal.NewFromInt(12)}
	require.NoError(t, repos.Parts.Create(ctx, part))

	ticket := &model.ServiceTicket{UserID: user.ID, Title: "Brakes", Description: "squeal", Status: model.TicketStatusOpen, Priority: model.TicketPriorityHigh}
	require.NoError(t, repos.Tickets.Create(ctx, ticket))

	require.NoError(t, repos.Tickets.AttachMechanics(ctx, ticket.ID, []uint{m2.ID, m1.ID}))
	require.NoError(t, repos.Tickets.AttachParts(ctx, ticket.ID, []uint{part.ID}))

	ids, err := repos.Tickets.MechanicIDs(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{m1.ID, m2.ID}, ids)

	loaded, err := repos.Tickets.FindByID(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Mechanics, 2)
	assert.Equal(t, "Ann", loaded.Mechanics[0].Name)
	require.Len(t, loaded.Parts, 1)
	assert.Equal(t, user.ID, loaded.User.ID)

	assigned, err := repos.Mechanics.ListTickets(ctx, m1.ID)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, ticket.ID, assigned[0].ID)

	count, err := repos.Parts.CountTicketReferences(ctx, part.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, repos.Tickets.DetachMechanics(ctx, ticket.ID, []uint{m1.ID}))
	ids, err = repos.Tickets.MechanicIDs(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{m2.ID}, ids)

	require.NoError(t, repos.Tickets.ClearMechanics(ctx, ticket.ID))
	require.NoError(t, repos.Tickets.ClearParts(ctx, ticket.ID))
	count, err = repos.Parts.CountTicketReferences(ctx, part.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
	require.NoError(t, repos.Tickets.Delete(ctx, ticket.ID))
}

func TestWithTransaction_RollsBack(t *testing.T) {
	repos := New(testutil.NewDB(t))
	ctx := context.Background()

	err := repos.WithTransaction(ctx, func(ctx context.Context, tx *Repositories) error {
		if err := tx.Mechanics.Create(ctx, &model.Mechanic{Name: "Temp", Phone: "1"}); err != nil {
			return err
		}
		return fmt.Errorf("boom")
	})
	require.Error(t, err)

	page, err := repos.Mechanics.List(ctx, NewPage(1, 10))
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}
