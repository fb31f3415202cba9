package model

import (
	"errors"
	"math/rand"
)

// Hyperparams controls SGD matrix factorization training.
type Hyperparams struct {
	Factors        int
	LearningRate   float64
	Regularization float64
	Iterations     int
}

func DefaultHyperparams() Hyperparams {
	return Hyperparams{
		Factors:        50,
		LearningRate:   0.01,
		Regularization: 0.1,
		Iterations:     100,
	}
}

// Interaction is a single (user, movie, rating) training triple.
type Interaction struct {
	UserID  int64
	MovieID int64
	Rating  float64
}

var ErrNoInteractions = errors.New("no training interactions")

// LatentFactors is a trained bilinear latent-factor model with bias terms.
// It is immutable after training.
type LatentFactors struct {
	UserFactors [][]float64
	ItemFactors [][]float64
	UserBias    []float64
	ItemBias    []float64
	GlobalMean  float64
	Factors     int

	userIndex map[int64]int
	itemIndex map[int64]int
}

// Train fits a latent-factor model to the interactions by stochastic
// gradient descent. The rand source determines factor initialization and
// per-pass shuffle order, so a fixed seed gives a reproducible model.
func Train(interactions []Interaction, hp Hyperparams, rng *rand.Rand) (*LatentFactors, error) {
	if len(interactions) == 0 {
		return nil, ErrNoInteractions
	}

	userIndex := make(map[int64]int)
	itemIndex := make(map[int64]int)
	var sum float64
	for _, in := range interactions {
		if _, ok := userIndex[in.UserID]; !ok {
			userIndex[in.UserID] = len(userIndex)
		}
		if _, ok := itemIndex[in.MovieID]; !ok {
			itemIndex[in.MovieID] = len(itemIndex)
		}
		sum += in.Rating
	}

	m := &LatentFactors{
		UserFactors: randomFactors(len(userIndex), hp.Factors, rng),
		ItemFactors: randomFactors(len(itemIndex), hp.Factors, rng),
		UserBias:    make([]float64, len(userIndex)),
		ItemBias:    make([]float64, len(itemIndex)),
		GlobalMean:  sum / float64(len(interactions)),
		Factors:     hp.Factors,
		userIndex:   userIndex,
		itemIndex:   itemIndex,
	}

	order := make([]Interaction, len(interactions))
	copy(order, interactions)

	lr := hp.LearningRate
	reg := hp.Regularization
	for iter := 0; iter < hp.Iterations; iter++ {
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
		for _, in := range order {
			u := userIndex[in.UserID]
			i := itemIndex[in.MovieID]
			uf := m.UserFactors[u]
			vf := m.ItemFactors[i]

			pred := m.GlobalMean + m.UserBias[u] + m.ItemBias[i] + dot(uf, vf)
			diff := in.Rating - pred

			m.UserBias[u] += lr * (diff - reg*m.UserBias[u])
			m.ItemBias[i] += lr * (diff - reg*m.ItemBias[i])

			// Simultaneous update: each component step reads the pre-update
			// value of the opposite vector.
			for f := 0; f < hp.Factors; f++ {
				ufv := uf[f]
				vfv := vf[f]
				uf[f] += lr * (diff*vfv - reg*ufv)
				vf[f] += lr * (diff*ufv - reg*vfv)
			}
		}
	}

	return m, nil
}

// randomFactors initializes n vectors of k components with uniform noise in
// roughly [-0.05, 0.05].
func randomFactors(n, k int, rng *rand.Rand) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		v := make([]float64, k)
		for f := range v {
			v[f] = (rng.Float64() - 0.5) * 0.1
		}
		out[i] = v
	}
	return out
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Predict scores a (user, movie) pair. An unseen movie reports ok=false. An
// unseen user degrades to the global mean plus the item bias.
func (m *LatentFactors) Predict(userID, movieID int64) (score float64, ok bool) {
	i, itemKnown := m.itemIndex[movieID]
	if !itemKnown {
		return 0, false
	}
	u, userKnown := m.userIndex[userID]
	if !userKnown {
		return m.GlobalMean + m.ItemBias[i], true
	}
	return m.GlobalMean + m.UserBias[u] + m.ItemBias[i] + dot(m.UserFactors[u], m.ItemFactors[i]), true
}

// TrainedUserCount reports how many distinct users the model was fit on.
func (m *LatentFactors) TrainedUserCount() int { return len(m.UserFactors) }

// TrainedItemCount reports how many distinct items the model was fit on.
func (m *LatentFactors) TrainedItemCount() int { return len(m.ItemFactors) }

// SizeBytes estimates the model's resident memory footprint for cache
// budget accounting.
func (m *LatentFactors) SizeBytes() int64 {
	vectors := int64(len(m.UserFactors)+len(m.ItemFactors)) * int64(m.Factors)
	biases := int64(len(m.UserBias) + len(m.ItemBias))
	index := int64(len(m.userIndex)+len(m.itemIndex)) * 16
	return (vectors+biases)*8 + index
}
