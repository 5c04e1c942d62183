package address

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/agromart/agromart-backend/pkg/db"
	"github.com/agromart/agromart-backend/pkg/db/dbtest"
	"github.com/agromart/agromart-backend/pkg/db/models"
	"github.com/agromart/agromart-backend/pkg/enums"
	pkgerrors "github.com/agromart/agromart-backend/pkg/errors"
)

type countingTx struct {
	inner *db.Client
	calls int
}

func (c *countingTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	c.calls++
	return c.inner.WithTx(ctx, fn)
}

func newAddressService(t *testing.T) (*gorm.DB, Service, *countingTx) {
	t.Helper()
	conn := dbtest.Open(t)
	tx := &countingTx{inner: db.Wrap(conn)}
	svc, err := NewService(NewRepository(conn), tx)
	require.NoError(t, err)
	return conn, svc, tx
}

func input(name string, isDefault bool) CreateInput {
	return CreateInput{
		Name:         name,
		Phone:        "01711000000",
		AddressLine1: "House 12, Road 5",
		City:         "Dhaka",
		State:        "Dhaka",
		PostalCode:   "1207",
		IsDefault:    isDefault,
	}
}

func defaults(t *testing.T, conn *gorm.DB, userID uuid.UUID) []uuid.UUID {
	t.Helper()
	var ids []uuid.UUID
	require.NoError(t, conn.Model(&models.Address{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Pluck("id", &ids).Error)
	return ids
}

func TestDefaultAddressStaysExclusive(t *testing.T) {
	conn, svc, _ := newAddressService(t)
	ctx := context.Background()
	user := dbtest.CreateUser(t, conn, enums.RoleCustomer)

	first, err := svc.Create(ctx, user.ID, input("Home", false))
	require.NoError(t, err)
	assert.True(t, first.IsDefault, "first address becomes default")
	assert.Equal(t, "Bangladesh", first.Country)
	assert.Equal(t, []uuid.UUID{first.ID}, defaults(t, conn, user.ID))

	second, err := svc.Create(ctx, user.ID, input("Office", false))
	require.NoError(t, err)
	assert.False(t, second.IsDefault)
	assert.Equal(t, []uuid.UUID{first.ID}, defaults(t, conn, user.ID))

	third, err := svc.Create(ctx, user.ID, input("Farm", true))
	require.NoError(t, err)
	assert.True(t, third.IsDefault)
	assert.Equal(t, []uuid.UUID{third.ID}, defaults(t, conn, user.ID))

	moved, err := svc.SetDefault(ctx, user.ID, second.ID)
	require.NoError(t, err)
	assert.True(t, moved.IsDefault)
	assert.Equal(t, []uuid.UUID{second.ID}, defaults(t, conn, user.ID))

	list, err := svc.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, second.ID, list[0].ID)
}

func TestSetDefaultShortCircuitsWhenAlreadyDefault(t *testing.T) {
	conn, svc, tx := newAddressService(t)
	ctx := context.Background()
	user := dbtest.CreateUser(t, conn, enums.RoleCustomer)

	home, err := svc.Create(ctx, user.ID, input("Home", true))
	require.NoError(t, err)
	before := tx.calls

	got, err := svc.SetDefault(ctx, user.ID, home.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDefault)
	assert.Equal(t, before, tx.calls, "no transaction for an address that is already default")
}

func TestDefaultsAreScopedPerUser(t *testing.T) {
	conn, svc, _ := newAddressService(t)
	ctx := context.Background()
	alice := dbtest.CreateUser(t, conn, enums.RoleCustomer)
	bob := dbtest.CreateUser(t, conn, enums.RoleCustomer)

	aliceHome, err := svc.Create(ctx, alice.ID, input("Home", true))
	require.NoError(t, err)
	bobHome, err := svc.Create(ctx, bob.ID, input("Home", true))
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{aliceHome.ID}, defaults(t, conn, alice.ID))
	assert.Equal(t, []uuid.UUID{bobHome.ID}, defaults(t, conn, bob.ID))

	_, err = svc.SetDefault(ctx, alice.ID, bobHome.ID)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
	assert.Equal(t, []uuid.UUID{bobHome.ID}, defaults(t, conn, bob.ID))
}

func TestUpdateCanMoveDefault(t *testing.T) {
	conn, svc, _ := newAddressService(t)
	ctx := context.Background()
	user := dbtest.CreateUser(t, conn, enums.RoleCustomer)

	_, err := svc.Create(ctx, user.ID, input("Home", false))
	require.NoError(t, err)
	office, err := svc.Create(ctx, user.ID, input("Office", false))
	require.NoError(t, err)

	city := "Chattogram"
	yes := true
	updated, err := svc.Update(ctx, user.ID, office.ID, UpdateInput{City: &city, IsDefault: &yes})
	require.NoError(t, err)
	assert.Equal(t, "Chattogram", updated.City)
	assert.True(t, updated.IsDefault)
	assert.Equal(t, []uuid.UUID{office.ID}, defaults(t, conn, user.ID))

	no := false
	cleared, err := svc.Update(ctx, user.ID, office.ID, UpdateInput{IsDefault: &no})
	require.NoError(t, err)
	assert.False(t, cleared.IsDefault)
	assert.Empty(t, defaults(t, conn, user.ID))
}

func TestDeleteIsOwnerScoped(t *testing.T) {
	conn, svc, _ := newAddressService(t)
	ctx := context.Background()
	owner := dbtest.CreateUser(t, conn, enums.RoleCustomer)
	other := dbtest.CreateUser(t, conn, enums.RoleCustomer)

	home, err := svc.Create(ctx, owner.ID, input("Home", false))
	require.NoError(t, err)

	err = svc.Delete(ctx, other.ID, home.ID)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	require.NoError(t, svc.Delete(ctx, owner.ID, home.ID))
	err = svc.Delete(ctx, owner.ID, home.ID)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

// lostRaceRepo fails default assignment the way Postgres does when another
// transaction committed a default for the same user first.
type lostRaceRepo struct {
	Repository
}

func (r lostRaceRepo) WithTx(tx *gorm.DB) Repository {
	return lostRaceRepo{Repository: r.Repository.WithTx(tx)}
}

func (r lostRaceRepo) AssignDefault(ctx context.Context, userID, id uuid.UUID) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: defaultIndex}
}

func TestSetDefaultLostRaceIsConflict(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewService(lostRaceRepo{Repository: NewRepository(conn)}, db.Wrap(conn))
	require.NoError(t, err)
	ctx := context.Background()
	user := dbtest.CreateUser(t, conn, enums.RoleCustomer)

	office := &models.Address{
		UserID: user.ID, Name: "Office", Phone: "01711000000", AddressLine1: "Road 5",
		City: "Dhaka", State: "Dhaka", PostalCode: "1207", Country: "Bangladesh",
	}
	require.NoError(t, conn.Create(office).Error)

	_, err = svc.SetDefault(ctx, user.ID, office.ID)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))

	yes := true
	_, err = svc.Update(ctx, user.ID, office.ID, UpdateInput{IsDefault: &yes})
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))
}
