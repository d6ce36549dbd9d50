// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package datamodel

import (
	"math"
	"sort"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/salerec/internal/recommend"
)

// Samples maps user id -> item id -> preference value.
type Samples map[string]map[string]float64

// MatrixModel is a dense preference matrix with users as rows and items
// as columns. It implements recommend.DataModel.
type MatrixModel struct {
	userIDs   []string
	itemIDs   []string
	userIndex map[string]int
	itemIndex map[string]int

	// matrix is nil when the model has no users or no items.
	matrix *mat.Dense

	// sets holds the column indexes each row has a preference for.
	sets []*roaring.Bitmap

	explicit bool

	transposeOnce sync.Once
	transposed    *MatrixModel
}

// Compile-time interface check.
var _ recommend.DataModel = (*MatrixModel)(nil)

// NewMatrixModel builds an explicit-rating model. Missing preferences are NaN.
// NaN values inside samples are treated as missing.
func NewMatrixModel(samples Samples) *MatrixModel {
	return build(samples, true)
}

// NewBooleanModel builds an implicit model: every (user, item) pair present
// in samples becomes 1, everything else 0. Sample values are ignored.
func NewBooleanModel(samples Samples) *MatrixModel {
	return build(samples, false)
}

// NewBooleanModelFromSets builds an implicit model from user item sets.
func NewBooleanModelFromSets(sets map[string][]string) *MatrixModel {
	samples := make(Samples, len(sets))
	for user, items := range sets {
		row := make(map[string]float64, len(items))
		for _, item := range items {
			row[item] = 1.0
		}
		samples[user] = row
	}
	return build(samples, false)
}

func build(samples Samples, explicit bool) *MatrixModel {
	userIDs := make([]string, 0, len(samples))
	itemSet := make(map[string]struct{})
	for user, prefs := range samples {
		userIDs = append(userIDs, user)
		for item, v := range prefs {
			if explicit && math.IsNaN(v) {
				continue
			}
			itemSet[item] = struct{}{}
		}
	}
	itemIDs := make([]string, 0, len(itemSet))
	for item := range itemSet {
		itemIDs = append(itemIDs, item)
	}
	sort.Strings(userIDs)
	sort.Strings(itemIDs)

	m := &MatrixModel{
		userIDs:   userIDs,
		itemIDs:   itemIDs,
		userIndex: indexOf(userIDs),
		itemIndex: indexOf(itemIDs),
		sets:      make([]*roaring.Bitmap, len(userIDs)),
		explicit:  explicit,
	}

	if len(userIDs) > 0 && len(itemIDs) > 0 {
		m.matrix = mat.NewDense(len(userIDs), len(itemIDs), nil)
		if explicit {
			fillNaN(m.matrix)
		}
	}

	for row, user := range userIDs {
		bm := roaring.New()
		for item, v := range samples[user] {
			if explicit && math.IsNaN(v) {
				continue
			}
			col := m.itemIndex[item]
			if !explicit {
				v = 1.0
			}
			m.matrix.Set(row, col, v)
			bm.Add(uint32(col))
		}
		m.sets[row] = bm
	}

	return m
}

func indexOf(ids []string) map[string]int {
	out := make(map[string]int, len(ids))
	for i, id := range ids {
		out[id] = i
	}
	return out
}

func fillNaN(m *mat.Dense) {
	r, c := m.Dims()
	nan := math.NaN()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m.Set(i, j, nan)
		}
	}
}

// UserIDs returns the sorted user ids. The slice must not be modified.
func (m *MatrixModel) UserIDs() []string { return m.userIDs }

// ItemIDs returns the sorted item ids. The slice must not be modified.
func (m *MatrixModel) ItemIDs() []string { return m.itemIDs }

// UsersCount returns the number of users.
func (m *MatrixModel) UsersCount() int { return len(m.userIDs) }

// ItemsCount returns the number of items.
func (m *MatrixModel) ItemsCount() int { return len(m.itemIDs) }

// HasUser reports whether id is a row of the model.
func (m *MatrixModel) HasUser(id string) bool {
	_, ok := m.userIndex[id]
	return ok
}

// HasPreferenceValues reports whether the model stores explicit ratings.
func (m *MatrixModel) HasPreferenceValues() bool { return m.explicit }

// Matrix returns the preference matrix, or an empty matrix when the model
// has no users or items.
func (m *MatrixModel) Matrix() mat.Matrix {
	if m.matrix == nil {
		return &mat.Dense{}
	}
	return m.matrix
}

// Dense returns the underlying matrix, nil for an empty model.
// Callers must not modify it.
func (m *MatrixModel) Dense() *mat.Dense { return m.matrix }

// PreferencesFromUser returns a copy of the user's row.
func (m *MatrixModel) PreferencesFromUser(userID string) ([]float64, error) {
	row, ok := m.userIndex[userID]
	if !ok {
		return nil, recommend.NotFoundError("user", userID)
	}
	if m.matrix == nil {
		return []float64{}, nil
	}
	return mat.Row(nil, row, m.matrix), nil
}

// ItemSetFromUser returns the items the user has a preference for, in
// column order.
func (m *MatrixModel) ItemSetFromUser(userID string) ([]string, error) {
	row, ok := m.userIndex[userID]
	if !ok {
		return nil, recommend.NotFoundError("user", userID)
	}
	items := make([]string, 0, m.sets[row].GetCardinality())
	it := m.sets[row].Iterator()
	for it.HasNext() {
		items = append(items, m.itemIDs[it.Next()])
	}
	return items, nil
}

// ItemSets returns every user's item set in row order.
func (m *MatrixModel) ItemSets() [][]string {
	out := make([][]string, len(m.userIDs))
	for i, user := range m.userIDs {
		out[i], _ = m.ItemSetFromUser(user)
	}
	return out
}

// HasPreference reports whether the user has a preference for the item.
func (m *MatrixModel) HasPreference(userID, itemID string) bool {
	row, ok := m.userIndex[userID]
	if !ok {
		return false
	}
	col, ok := m.itemIndex[itemID]
	if !ok {
		return false
	}
	return m.sets[row].Contains(uint32(col))
}

// PreferenceValue returns the stored preference. Explicit models return
// NaN for items the user did not rate; boolean models return 0.
func (m *MatrixModel) PreferenceValue(userID, itemID string) (float64, error) {
	row, ok := m.userIndex[userID]
	if !ok {
		return 0, recommend.NotFoundError("user", userID)
	}
	col, ok := m.itemIndex[itemID]
	if !ok {
		return 0, recommend.NotFoundError("item", itemID)
	}
	return m.matrix.At(row, col), nil
}

// Transpose returns the item-major view of the model. The view is built
// once and shared by later calls.
func (m *MatrixModel) Transpose() recommend.DataModel {
	m.transposeOnce.Do(func() {
		t := &MatrixModel{
			userIDs:   m.itemIDs,
			itemIDs:   m.userIDs,
			userIndex: m.itemIndex,
			itemIndex: m.userIndex,
			sets:      make([]*roaring.Bitmap, len(m.itemIDs)),
			explicit:  m.explicit,
		}
		if m.matrix != nil {
			t.matrix = mat.DenseCopyOf(m.matrix.T())
		}
		for col := range t.sets {
			t.sets[col] = roaring.New()
		}
		for row, bm := range m.sets {
			it := bm.Iterator()
			for it.HasNext() {
				t.sets[it.Next()].Add(uint32(row))
			}
		}
		t.transposeOnce.Do(func() {})
		t.transposed = m
		m.transposed = t
	})
	return m.transposed
}
