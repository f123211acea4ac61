package basket

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/foodbank/backend/internal/domain/basket"
	"github.com/foodbank/backend/internal/domain/catalog"
	"github.com/foodbank/backend/internal/domain/inventory"
	"github.com/foodbank/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// memoryStore is an in-memory stand-in for the database. Its transaction
// scope snapshots every table and restores it when the callback fails.
type memoryStore struct {
	mu sync.Mutex

	foods      map[int64]catalog.Food
	lots       map[int64]inventory.Lot
	batches    map[int64]basket.BasketBatch
	items      []basket.BasketItem
	deliveries map[int64]basket.BasketDelivery
	dItems     []basket.DeliveryItem
	nextID     int64

	// beforeUpdate runs before each compare-and-set; it may mutate lots to
	// simulate a concurrent writer
	beforeUpdate func(s *memoryStore, update inventory.LotUpdate)
	// failInsertItems makes InsertItems fail after the header was written
	failInsertItems error
	casCalls        int
	txCount         int
	preImages       map[int64]inventory.Lot
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		foods:      make(map[int64]catalog.Food),
		lots:       make(map[int64]inventory.Lot),
		batches:    make(map[int64]basket.BasketBatch),
		deliveries: make(map[int64]basket.BasketDelivery),
		nextID:     100,
	}
}

func (s *memoryStore) addFood(id int64, name string, perBasket *decimal.Decimal) {
	f := catalog.Food{Name: name, Unit: "kg"}
	f.ID = id
	f.IncludeInBasket(perBasket)
	s.foods[id] = f
}

func (s *memoryStore) addLot(id, foodID int64, qty string, expiry *time.Time) {
	l := inventory.Lot{
		FoodID:     foodID,
		Quantity:   decimal.RequireFromString(qty),
		ExpiryDate: expiry,
		Status:     inventory.LotStatusAvailable,
		ReceivedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(id) * time.Hour),
	}
	l.ID = id
	s.lots[id] = l
}

func (s *memoryStore) lot(id int64) inventory.Lot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lots[id]
}

func (s *memoryStore) totalStock(foodID int64) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, l := range s.lots {
		if l.FoodID == foodID && l.Status == inventory.LotStatusAvailable {
			total = total.Add(l.Quantity)
		}
	}
	return total
}

func (s *memoryStore) issueID() int64 {
	s.nextID++
	return s.nextID
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func dec(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

// catalog.FoodRepository

type memoryFoodRepo struct{ s *memoryStore }

func (r memoryFoodRepo) FindByID(_ context.Context, id int64) (*catalog.Food, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.foods[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &f, nil
}

func (r memoryFoodRepo) FindByIDs(_ context.Context, ids []int64) ([]catalog.Food, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var foods []catalog.Food
	for _, id := range ids {
		if f, ok := r.s.foods[id]; ok {
			foods = append(foods, f)
		}
	}
	return foods, nil
}

func (r memoryFoodRepo) FindBasketFoods(_ context.Context) ([]catalog.Food, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var foods []catalog.Food
	for _, f := range r.s.foods {
		if f.InBasket {
			foods = append(foods, f)
		}
	}
	sort.Slice(foods, func(i, j int) bool { return foods[i].ID < foods[j].ID })
	return foods, nil
}

func (r memoryFoodRepo) Save(_ context.Context, food *catalog.Food) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if food.ID == 0 {
		food.ID = r.s.issueID()
	}
	r.s.foods[food.ID] = *food
	return nil
}

// inventory.LotRepository

type memoryLotRepo struct{ s *memoryStore }

func (r memoryLotRepo) FindByID(_ context.Context, id int64) (*inventory.Lot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.lots[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &l, nil
}

func (r memoryLotRepo) FindAvailableByFoods(_ context.Context, foodIDs []int64) ([]inventory.Lot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wanted := make(map[int64]bool, len(foodIDs))
	for _, id := range foodIDs {
		wanted[id] = true
	}
	var lots []inventory.Lot
	for _, l := range r.s.lots {
		if wanted[l.FoodID] && l.Status == inventory.LotStatusAvailable {
			lots = append(lots, l)
		}
	}
	inventory.SortByExpiry(lots)
	return lots, nil
}

func (r memoryLotRepo) FindAvailableExpiringBefore(_ context.Context, cutoff time.Time) ([]inventory.Lot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var lots []inventory.Lot
	for _, l := range r.s.lots {
		if l.Status == inventory.LotStatusAvailable && l.ExpiryDate != nil && l.ExpiryDate.Before(cutoff) {
			lots = append(lots, l)
		}
	}
	inventory.SortByExpiry(lots)
	return lots, nil
}

func (r memoryLotRepo) Save(_ context.Context, lot *inventory.Lot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if lot.ID == 0 {
		lot.ID = r.s.issueID()
	}
	r.s.lots[lot.ID] = *lot
	return nil
}

func (r memoryLotRepo) CompareAndUpdate(_ context.Context, update inventory.LotUpdate) error {
	if err := update.Validate(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.casCalls++
	if r.s.beforeUpdate != nil {
		r.s.beforeUpdate(r.s, update)
	}
	l, ok := r.s.lots[update.LotID]
	if !ok || l.Status != inventory.LotStatusAvailable || !l.Quantity.Equal(update.ExpectedQuantity) {
		return shared.ErrConcurrencyConflict.WithMessage(fmt.Sprintf("Lot %d was modified by another transaction", update.LotID))
	}
	if r.s.preImages != nil {
		if _, seen := r.s.preImages[update.LotID]; !seen {
			r.s.preImages[update.LotID] = l
		}
	}
	l.Quantity = update.Quantity
	l.Status = update.Status
	if update.DiscardReason != nil {
		l.DiscardReason = update.DiscardReason
		l.DiscardedAt = update.DiscardedAt
	}
	r.s.lots[update.LotID] = l
	return nil
}

// basket.BatchRepository

type memoryBatchRepo struct{ s *memoryStore }

func (r memoryBatchRepo) InsertBatch(_ context.Context, batch *basket.BasketBatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	batch.ID = r.s.issueID()
	header := *batch
	header.Items = nil
	r.s.batches[batch.ID] = header
	return nil
}

func (r memoryBatchRepo) InsertItems(_ context.Context, items []basket.BasketItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failInsertItems != nil {
		return r.s.failInsertItems
	}
	for i := range items {
		items[i].ID = r.s.issueID()
		r.s.items = append(r.s.items, items[i])
	}
	return nil
}

func (r memoryBatchRepo) FindByID(_ context.Context, id int64) (*basket.BasketBatch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.batches[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	for _, item := range r.s.items {
		if item.BasketBatchID == id {
			item.FoodName = r.s.foods[item.FoodID].Name
			b.Items = append(b.Items, item)
		}
	}
	return &b, nil
}

func (r memoryBatchRepo) List(_ context.Context, filter shared.Filter) ([]basket.BasketBatch, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := make([]basket.BasketBatch, 0, len(r.s.batches))
	for _, b := range r.s.batches {
		all = append(all, b)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	start := filter.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + filter.PageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

// basket.DeliveryRepository

type memoryDeliveryRepo struct{ s *memoryStore }

func (r memoryDeliveryRepo) InsertDelivery(_ context.Context, d *basket.BasketDelivery) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d.ID = r.s.issueID()
	header := *d
	header.Items = nil
	r.s.deliveries[d.ID] = header
	return nil
}

func (r memoryDeliveryRepo) InsertItems(_ context.Context, items []basket.DeliveryItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range items {
		items[i].ID = r.s.issueID()
		r.s.dItems = append(r.s.dItems, items[i])
	}
	return nil
}

func (r memoryDeliveryRepo) FindByID(_ context.Context, id int64) (*basket.BasketDelivery, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.deliveries[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	for _, item := range r.s.dItems {
		if item.DeliveryID == id {
			d.Items = append(d.Items, item)
		}
	}
	return &d, nil
}

// TransactionScope

type memoryTxScope struct{ s *memoryStore }

// Execute keeps the pre-image of every lot the callback writes and restores
// those lots on failure. Writes made by others in the meantime survive, as
// they would in a database.
func (t memoryTxScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	t.s.mu.Lock()
	t.s.txCount++
	t.s.preImages = make(map[int64]inventory.Lot)
	batches := make(map[int64]basket.BasketBatch, len(t.s.batches))
	for k, v := range t.s.batches {
		batches[k] = v
	}
	deliveries := make(map[int64]basket.BasketDelivery, len(t.s.deliveries))
	for k, v := range t.s.deliveries {
		deliveries[k] = v
	}
	items := append([]basket.BasketItem(nil), t.s.items...)
	dItems := append([]basket.DeliveryItem(nil), t.s.dItems...)
	t.s.mu.Unlock()

	err := fn(t)

	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if err != nil {
		for id, l := range t.s.preImages {
			t.s.lots[id] = l
		}
		t.s.batches = batches
		t.s.deliveries = deliveries
		t.s.items = items
		t.s.dItems = dItems
	}
	t.s.preImages = nil
	return err
}

func (t memoryTxScope) Lots() inventory.LotRepository         { return memoryLotRepo{t.s} }
func (t memoryTxScope) Batches() basket.BatchRepository       { return memoryBatchRepo{t.s} }
func (t memoryTxScope) Deliveries() basket.DeliveryRepository { return memoryDeliveryRepo{t.s} }
