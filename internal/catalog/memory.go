package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/gemlight/diamond-agent/internal/agent/model"
)

// MemoryStore serves a fixed inventory from memory. It backs tests and local
// runs without a catalog database.
type MemoryStore struct {
	mu       sync.RWMutex
	diamonds []model.Diamond
}

func NewMemoryStore(diamonds []model.Diamond) *MemoryStore {
	if diamonds == nil {
		diamonds = SeedInventory
	}
	copied := make([]model.Diamond, len(diamonds))
	copy(copied, diamonds)
	return &MemoryStore{diamonds: copied}
}

func (s *MemoryStore) Search(ctx context.Context, criteria *model.SearchCriteria) ([]model.Diamond, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []model.Diamond
	for i := range s.diamonds {
		if criteria.Matches(&s.diamonds[i]) {
			matched = append(matched, s.diamonds[i])
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Price < matched[j].Price
	})
	if len(matched) > SearchLimit {
		matched = matched[:SearchLimit]
	}
	return matched, nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (*model.Diamond, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.diamonds {
		if s.diamonds[i].ID == id {
			d := s.diamonds[i]
			return &d, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) Recommend(ctx context.Context, budget float64, prefs map[string]any) ([]model.Diamond, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var candidates []model.Diamond
	for i := range s.diamonds {
		if s.diamonds[i].Price <= budget {
			candidates = append(candidates, s.diamonds[i])
		}
	}

	return RankByScore(candidates, prefs, RecommendLimit), nil
}

var _ Store = (*MemoryStore)(nil)

// SeedInventory is the default development inventory.
var SeedInventory = []model.Diamond{
	{ID: "dia-001", Carat: 1.01, Cut: "Excellent", Color: "H", Clarity: "VS2", Shape: "Round", Price: 4850, Certificate: "GIA-2216748391", InStock: true},
	{ID: "dia-002", Carat: 0.95, Cut: "Excellent", Color: "G", Clarity: "SI1", Shape: "Round", Price: 4600, Certificate: "GIA-2216748522", InStock: true},
	{ID: "dia-003", Carat: 1.05, Cut: "Very Good", Color: "I", Clarity: "VS1", Shape: "Round", Price: 4950, Certificate: "GIA-1159024417", InStock: true},
	{ID: "dia-004", Carat: 1.20, Cut: "Excellent", Color: "F", Clarity: "VVS2", Shape: "Round", Price: 9800, Certificate: "GIA-6204113885", InStock: true},
	{ID: "dia-005", Carat: 1.50, Cut: "Excellent", Color: "E", Clarity: "VVS1", Shape: "Round", Price: 16500, Certificate: "GIA-5201447210", InStock: true},
	{ID: "dia-006", Carat: 2.01, Cut: "Excellent", Color: "D", Clarity: "IF", Shape: "Round", Price: 38400, Certificate: "GIA-1206591733", InStock: false},
	{ID: "dia-007", Carat: 1.02, Cut: "Very Good", Color: "G", Clarity: "VS1", Shape: "Princess", Price: 5200, Certificate: "GIA-2225917604", InStock: true},
	{ID: "dia-008", Carat: 0.90, Cut: "Good", Color: "H", Clarity: "SI2", Shape: "Princess", Price: 3100, Certificate: "IGI-448792011", InStock: true},
	{ID: "dia-009", Carat: 1.10, Cut: "Excellent", Color: "F", Clarity: "VS2", Shape: "Oval", Price: 6900, Certificate: "GIA-7362214905", InStock: true},
	{ID: "dia-010", Carat: 1.31, Cut: "Very Good", Color: "H", Clarity: "SI1", Shape: "Cushion", Price: 6200, Certificate: "GIA-2375910468", InStock: true},
	{ID: "dia-011", Carat: 0.75, Cut: "Excellent", Color: "E", Clarity: "VVS2", Shape: "Emerald", Price: 3900, Certificate: "GIA-1187340952", InStock: true},
	{ID: "dia-012", Carat: 1.62, Cut: "Very Good", Color: "J", Clarity: "VS2", Shape: "Pear", Price: 8700, Certificate: "IGI-512038467", InStock: true},
	{ID: "dia-013", Carat: 1.00, Cut: "Good", Color: "K", Clarity: "SI1", Shape: "Marquise", Price: 3450, Certificate: "", InStock: true},
	{ID: "dia-014", Carat: 2.50, Cut: "Excellent", Color: "D", Clarity: "VVS1", Shape: "Heart", Price: 52800, Certificate: "GIA-6219035171", InStock: true},
	{ID: "dia-015", Carat: 0.52, Cut: "Very Good", Color: "F", Clarity: "VS1", Shape: "Round", Price: 1750, Certificate: "GIA-2219480773", InStock: true},
	{ID: "dia-016", Carat: 1.04, Cut: "Excellent", Color: "G", Clarity: "VS2", Shape: "Radiant", Price: 5450, Certificate: "GIA-5222910348", InStock: true},
}
