// Package indextrainer trains the PCA + flat L2 vector index offline:
// given accumulated embeddings, it fits a PCA projection down to a
// configurable dimensionality and persists the projection plus the
// projected vectors to disk as a single composite index file, the "PCA{d},Flat"
// index spec.md §6 names.
//
// Grounded on the use of gonum.org/v1/gonum observed in the retrieval pack
// (lookatitude-beluga-ai's go.mod); no example repo trains a vector index
// itself, so the PCA and flat-scan math are hand-written against gonum's
// linear-algebra primitives, which is the ecosystem-standard way to do this
// in Go (there is no equivalent of faiss/Annoy with Go bindings anywhere in
// the pack).
package indextrainer

import (
	"encoding/gob"
	"os"

	"gonum.org/v1/gonum/mat"
	"gitlab.com/tozd/go/errors"
)

// Index is a trained PCA projection (InputDim -> OutputDim) plus the
// projected corpus vectors it was trained on, searchable by flat L2 scan.
type Index struct {
	InputDim  int
	OutputDim int
	Mean      []float64   // InputDim
	Basis     [][]float64 // OutputDim x InputDim, rows are principal components
	IDs       []int64
	Vectors   [][]float64 // projected, OutputDim each
}

// Train fits a PCA projection from InputDim to outputDim over vectors (one
// document_id per vector) using the eigendecomposition of the covariance
// matrix, and projects every training vector through it.
func Train(ids []int64, vectors [][]float32, outputDim int) (*Index, errors.E) {
	if len(vectors) == 0 {
		return nil, errors.New("no vectors to train on")
	}
	n := len(vectors)
	d := len(vectors[0])
	if outputDim > d {
		outputDim = d
	}

	mean := make([]float64, d)
	for _, v := range vectors {
		for j, f := range v {
			mean[j] += float64(f)
		}
	}
	for j := range mean {
		mean[j] /= float64(n)
	}

	centered := mat.NewDense(n, d, nil)
	for i, v := range vectors {
		for j, f := range v {
			centered.Set(i, j, float64(f)-mean[j])
		}
	}

	var cov mat.SymDense
	cov.SymOuterK(1.0/float64(n-1), centered.T())

	var eig mat.EigenSym
	ok := eig.Factorize(&cov, true)
	if !ok {
		return nil, errors.New("eigendecomposition failed to converge")
	}

	values := eig.Values(nil)
	var vectorsMat mat.Dense
	eig.VectorsTo(&vectorsMat)

	// eig reports eigenvalues ascending; we want the outputDim components
	// with the largest variance, i.e. the last outputDim columns.
	basis := make([][]float64, outputDim)
	for k := 0; k < outputDim; k++ {
		col := d - 1 - k
		_ = values[col]
		component := make([]float64, d)
		for j := 0; j < d; j++ {
			component[j] = vectorsMat.At(j, col)
		}
		basis[k] = component
	}

	idx := &Index{
		InputDim:  d,
		OutputDim: outputDim,
		Mean:      mean,
		Basis:     basis,
		IDs:       append([]int64(nil), ids...),
	}
	idx.Vectors = make([][]float64, n)
	for i, v := range vectors {
		idx.Vectors[i] = idx.project(v)
	}

	return idx, nil
}

func (idx *Index) project(v []float32) []float64 {
	out := make([]float64, idx.OutputDim)
	for k, component := range idx.Basis {
		var sum float64
		for j, f := range v {
			sum += (float64(f) - idx.Mean[j]) * component[j]
		}
		out[k] = sum
	}
	return out
}

// Search performs a flat L2 scan over the trained index's projected
// vectors, returning the k nearest document IDs in ascending-distance
// order.
func (idx *Index) Search(query []float32, k int) []int64 {
	projected := idx.project(query)

	type candidate = struct {
		id   int64
		dist float64
	}
	candidates := make([]candidate, len(idx.Vectors))
	for i, v := range idx.Vectors {
		var d float64
		for j := range v {
			diff := v[j] - projected[j]
			d += diff * diff
		}
		candidates[i] = candidate{id: idx.IDs[i], dist: d}
	}

	sortByDistance(candidates)

	if k > len(candidates) {
		k = len(candidates)
	}
	ids := make([]int64, k)
	for i := 0; i < k; i++ {
		ids[i] = candidates[i].id
	}
	return ids
}

func sortByDistance(c []struct {
	id   int64
	dist float64
}) {
	for i := 1; i < len(c); i++ {
		for j := i; j > 0 && c[j].dist < c[j-1].dist; j-- {
			c[j], c[j-1] = c[j-1], c[j]
		}
	}
}

// Persist writes idx to path in gob format.
func Persist(idx *Index, path string) errors.E {
	f, err := os.Create(path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(idx); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// Load reads an Index previously written by Persist.
func Load(path string) (*Index, errors.E) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()
	var idx Index
	if err := gob.NewDecoder(f).Decode(&idx); err != nil {
		return nil, errors.WithStack(err)
	}
	return &idx, nil
}

// Exists reports whether path already contains a trained, loadable index,
// letting the ingestion pipeline's startup check skip retraining.
func Exists(path string) bool {
	_, errE := Load(path)
	return errE == nil
}

// TrainAndPersist trains a new index and writes it to outPath, unless one
// already exists there, in which case it is left untouched.
func TrainAndPersist(ids []int64, vectors [][]float32, outputDim int, outPath string) (trained bool, errE errors.E) {
	if Exists(outPath) {
		return false, nil
	}
	idx, errE := Train(ids, vectors, outputDim)
	if errE != nil {
		return false, errE
	}
	errE = Persist(idx, outPath)
	if errE != nil {
		return false, errE
	}
	return true, nil
}
