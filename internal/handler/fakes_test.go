package handler

// In-memory fakes behind the handler store interfaces.  They implement just
// enough semantics (duplicate email detection, ownership scoping, default
// address demotion) for the handler tests to exercise real flows without a
// database.

import (
	"context"
	"strings"
	"time"

	"github.com/fabrichub/fabrichub/internal/model"
	"github.com/fabrichub/fabrichub/internal/repository"
)

// --- users ---

type fakeUserStore struct {
	users  map[uint64]model.User
	nextID uint64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uint64]model.User), nextID: 1}
}

func (f *fakeUserStore) add(u model.User) model.User {
	if u.ID == 0 {
		u.ID = f.nextID
	}
	if u.ID >= f.nextID {
		f.nextID = u.ID + 1
	}
	f.users[u.ID] = u
	return u
}

func (f *fakeUserStore) Create(_ context.Context, email, passwordHash, firstName, lastName, phone, role string) (model.User, error) {
	email = strings.ToLower(email)
	for _, u := range f.users {
		if u.Email == email {
			return model.User{}, repository.ErrEmailExists
		}
	}
	now := time.Now().UTC()
	u := model.User{
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		Phone:        phone,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return f.add(u), nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range f.users {
		if u.Email == strings.ToLower(email) {
			return u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func (f *fakeUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserStore) List(_ context.Context, flt repository.UserFilter) ([]model.User, int, error) {
	var out []model.User
	for _, u := range f.users {
		if flt.Role != "" && u.Role != flt.Role {
			continue
		}
		if flt.Search != "" && !strings.Contains(u.Email, flt.Search) &&
			!strings.Contains(u.FirstName, flt.Search) && !strings.Contains(u.LastName, flt.Search) {
			continue
		}
		out = append(out, u)
	}
	return out, len(out), nil
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, id uint64, p repository.ProfileUpdate) (model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	f.users[id] = u
	return u, nil
}

func (f *fakeUserStore) UpdateRole(_ context.Context, id uint64, role string) (model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	u.Role = role
	f.users[id] = u
	return u, nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, id uint64, passwordHash string) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	f.users[id] = u
	return nil
}

func (f *fakeUserStore) Delete(_ context.Context, id uint64) error {
	if _, ok := f.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

// --- refresh tokens ---

type fakeTokenStore struct {
	rows map[string]model.RefreshToken
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{rows: make(map[string]model.RefreshToken)}
}

func (f *fakeTokenStore) Store(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	f.rows[tokenHash] = model.RefreshToken{UserID: userID, TokenHash: tokenHash, ExpiresAt: exp}
	return nil
}

func (f *fakeTokenStore) Find(_ context.Context, tokenHash string) (model.RefreshToken, error) {
	row, ok := f.rows[tokenHash]
	if !ok {
		return model.RefreshToken{}, repository.ErrTokenNotFound
	}
	return row, nil
}

func (f *fakeTokenStore) DeleteByHash(_ context.Context, tokenHash string) error {
	delete(f.rows, tokenHash)
	return nil
}

func (f *fakeTokenStore) DeleteAllForUser(_ context.Context, userID uint64) error {
	for h, row := range f.rows {
		if row.UserID == userID {
			delete(f.rows, h)
		}
	}
	return nil
}

// --- products ---

type fakeProductStore struct {
	products map[uint64]model.Product
	nextID   uint64
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{products: make(map[uint64]model.Product), nextID: 1}
}

func (f *fakeProductStore) add(p model.Product) model.Product {
	if p.ID == 0 {
		p.ID = f.nextID
	}
	if p.ID >= f.nextID {
		f.nextID = p.ID + 1
	}
	f.products[p.ID] = p
	return p
}

func (f *fakeProductStore) List(_ context.Context, flt repository.ProductFilter) ([]model.Product, int, error) {
	var out []model.Product
	for _, p := range f.products {
		if flt.Category != "" && p.Category != flt.Category {
			continue
		}
		if flt.Search != "" && !strings.Contains(p.Name, flt.Search) {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

func (f *fakeProductStore) GetByID(_ context.Context, id uint64) (model.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return model.Product{}, repository.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeProductStore) Create(_ context.Context, p *model.Product) error {
	*p = f.add(*p)
	return nil
}

func (f *fakeProductStore) Update(_ context.Context, id, sellerID uint64, u repository.ProductUpdate) (model.Product, error) {
	p, ok := f.products[id]
	if !ok || (sellerID != 0 && p.SellerID != sellerID) {
		return model.Product{}, repository.ErrProductNotFound
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Material != nil {
		p.Material = *u.Material
	}
	if u.Width != nil {
		p.Width = *u.Width
	}
	if u.Colors != nil {
		p.Colors = *u.Colors
	}
	if u.PricePerMeterCents != nil {
		p.PricePerMeterCents = *u.PricePerMeterCents
	}
	if u.PricePerRollCents != nil {
		p.PricePerRollCents = *u.PricePerRollCents
	}
	if u.RollLengthMeters != nil {
		p.RollLengthMeters = *u.RollLengthMeters
	}
	if u.Stock != nil {
		p.Stock = *u.Stock
	}
	f.products[id] = p
	return p, nil
}

// --- orders ---

type fakeOrderStore struct {
	orders map[uint64]model.Order
	nextID uint64
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[uint64]model.Order), nextID: 1}
}

func (f *fakeOrderStore) Create(_ context.Context, o *model.Order) error {
	o.ID = f.nextID
	f.nextID++
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	f.orders[o.ID] = *o
	return nil
}

func (f *fakeOrderStore) GetByID(_ context.Context, id uint64) (model.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return model.Order{}, repository.ErrOrderNotFound
	}
	return o, nil
}

func (f *fakeOrderStore) ListByUser(_ context.Context, userID uint64) ([]model.Order, error) {
	var out []model.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderStore) UpdateStatus(_ context.Context, id uint64, status string) (model.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return model.Order{}, repository.ErrOrderNotFound
	}
	o.Status = status
	f.orders[id] = o
	return o, nil
}

// --- addresses ---

type fakeAddressStore struct {
	addrs  map[uint64]model.Address
	nextID uint64
}

func newFakeAddressStore() *fakeAddressStore {
	return &fakeAddressStore{addrs: make(map[uint64]model.Address), nextID: 1}
}

func (f *fakeAddressStore) ListByUser(_ context.Context, userID uint64) ([]model.Address, error) {
	var out []model.Address
	for _, a := range f.addrs {
		if a.UserID == userID {
			if a.IsDefault {
				out = append([]model.Address{a}, out...)
			} else {
				out = append(out, a)
			}
		}
	}
	return out, nil
}

func (f *fakeAddressStore) Create(_ context.Context, a *model.Address) error {
	if a.IsDefault {
		f.demoteDefaults(a.UserID)
	}
	a.ID = f.nextID
	f.nextID++
	f.addrs[a.ID] = *a
	return nil
}

func (f *fakeAddressStore) Update(_ context.Context, id, userID uint64, u repository.AddressUpdate) (model.Address, error) {
	a, ok := f.addrs[id]
	if !ok || a.UserID != userID {
		return model.Address{}, repository.ErrAddressNotFound
	}
	if u.IsDefault != nil && *u.IsDefault {
		f.demoteDefaults(userID)
		a.IsDefault = true
	}
	if u.FirstName != nil {
		a.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		a.LastName = *u.LastName
	}
	if u.Phone != nil {
		a.Phone = *u.Phone
	}
	if u.Address != nil {
		a.Address = *u.Address
	}
	if u.City != nil {
		a.City = *u.City
	}
	if u.State != nil {
		a.State = *u.State
	}
	if u.Zip != nil {
		a.Zip = *u.Zip
	}
	if u.Country != nil {
		a.Country = *u.Country
	}
	f.addrs[id] = a
	return a, nil
}

func (f *fakeAddressStore) Delete(_ context.Context, id, userID uint64) error {
	a, ok := f.addrs[id]
	if !ok || a.UserID != userID {
		return repository.ErrAddressNotFound
	}
	delete(f.addrs, id)
	return nil
}

func (f *fakeAddressStore) demoteDefaults(userID uint64) {
	for id, a := range f.addrs {
		if a.UserID == userID && a.IsDefault {
			a.IsDefault = false
			f.addrs[id] = a
		}
	}
}

// --- compile-time interface checks ---

var _ UserStore = (*fakeUserStore)(nil)
var _ UserAdminStore = (*fakeUserStore)(nil)
var _ SessionRevoker = (*fakeTokenStore)(nil)
var _ ProductStore = (*fakeProductStore)(nil)
var _ OrderPricer = (*fakeProductStore)(nil)
var _ OrderStore = (*fakeOrderStore)(nil)
var _ AddressStore = (*fakeAddressStore)(nil)
