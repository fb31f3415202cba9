package model

import (
	"math"
	"math/rand"
	"testing"
)

func trainingSet() []Interaction {
	return []Interaction{
		{UserID: 1, MovieID: 10, Rating: 5},
		{UserID: 1, MovieID: 11, Rating: 4},
		{UserID: 1, MovieID: 12, Rating: 2},
		{UserID: 2, MovieID: 10, Rating: 4},
		{UserID: 2, MovieID: 12, Rating: 1},
		{UserID: 2, MovieID: 13, Rating: 5},
		{UserID: 3, MovieID: 11, Rating: 3},
		{UserID: 3, MovieID: 13, Rating: 4},
	}
}

func TestTrainEmpty(t *testing.T) {
	_, err := Train(nil, DefaultHyperparams(), rand.New(rand.NewSource(1)))
	if err != ErrNoInteractions {
		t.Errorf("expected ErrNoInteractions, got %v", err)
	}
}

func TestTrainShapes(t *testing.T) {
	hp := Hyperparams{Factors: 8, LearningRate: 0.01, Regularization: 0.1, Iterations: 10}
	m, err := Train(trainingSet(), hp, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("train: %v", err)
	}

	if m.TrainedUserCount() != 3 {
		t.Errorf("expected 3 trained users, got %d", m.TrainedUserCount())
	}
	if m.TrainedItemCount() != 4 {
		t.Errorf("expected 4 trained items, got %d", m.TrainedItemCount())
	}
	if len(m.UserBias) != 3 || len(m.ItemBias) != 4 {
		t.Errorf("bias lengths: users=%d items=%d", len(m.UserBias), len(m.ItemBias))
	}
	for _, v := range m.UserFactors {
		if len(v) != hp.Factors {
			t.Fatalf("user vector has %d components, want %d", len(v), hp.Factors)
		}
	}
	for _, v := range m.ItemFactors {
		if len(v) != hp.Factors {
			t.Fatalf("item vector has %d components, want %d", len(v), hp.Factors)
		}
	}

	// global mean of the fixture ratings: 28/8
	if math.Abs(m.GlobalMean-3.5) > 1e-9 {
		t.Errorf("expected global mean 3.5, got %f", m.GlobalMean)
	}
}

func TestTrainDeterministicUnderSeed(t *testing.T) {
	hp := Hyperparams{Factors: 6, LearningRate: 0.01, Regularization: 0.1, Iterations: 25}

	a, err := Train(trainingSet(), hp, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("train a: %v", err)
	}
	b, err := Train(trainingSet(), hp, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("train b: %v", err)
	}

	for u := range a.UserFactors {
		for f := range a.UserFactors[u] {
			if a.UserFactors[u][f] != b.UserFactors[u][f] {
				t.Fatalf("user factor [%d][%d] differs: %f vs %f", u, f, a.UserFactors[u][f], b.UserFactors[u][f])
			}
		}
		if a.UserBias[u] != b.UserBias[u] {
			t.Fatalf("user bias %d differs", u)
		}
	}
	for i := range a.ItemFactors {
		for f := range a.ItemFactors[i] {
			if a.ItemFactors[i][f] != b.ItemFactors[i][f] {
				t.Fatalf("item factor [%d][%d] differs", i, f)
			}
		}
		if a.ItemBias[i] != b.ItemBias[i] {
			t.Fatalf("item bias %d differs", i)
		}
	}
}

func TestTrainFitsObservedRatings(t *testing.T) {
	hp := Hyperparams{Factors: 10, LearningRate: 0.02, Regularization: 0.02, Iterations: 200}
	set := trainingSet()
	m, err := Train(set, hp, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("train: %v", err)
	}

	var sqErr float64
	for _, in := range set {
		pred, ok := m.Predict(in.UserID, in.MovieID)
		if !ok {
			t.Fatalf("predict (%d,%d): item unknown", in.UserID, in.MovieID)
		}
		sqErr += (pred - in.Rating) * (pred - in.Rating)
	}
	rmse := math.Sqrt(sqErr / float64(len(set)))
	if rmse > 1.0 {
		t.Errorf("model failed to fit training data, rmse=%f", rmse)
	}
}

func TestPredictUnknowns(t *testing.T) {
	m, err := Train(trainingSet(), Hyperparams{Factors: 4, LearningRate: 0.01, Regularization: 0.1, Iterations: 5}, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("train: %v", err)
	}

	if _, ok := m.Predict(1, 999); ok {
		t.Error("unknown item must report ok=false")
	}

	// Unknown user falls back to global mean plus item bias.
	got, ok := m.Predict(999, 10)
	if !ok {
		t.Fatal("known item with unknown user should still predict")
	}
	i := m.itemIndex[10]
	want := m.GlobalMean + m.ItemBias[i]
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("unknown-user prediction %f, want %f", got, want)
	}
}

func TestSizeBytes(t *testing.T) {
	m, err := Train(trainingSet(), Hyperparams{Factors: 4, LearningRate: 0.01, Regularization: 0.1, Iterations: 1}, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	// 7 vectors * 4 factors + 7 biases = 35 floats, plus index overhead.
	if got := m.SizeBytes(); got < 35*8 {
		t.Errorf("size estimate %d too small", got)
	}
}
