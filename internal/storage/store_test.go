package storage_test

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"

	"github.com/LAPKB/ode-solvers/internal/analysis"
	"github.com/LAPKB/ode-solvers/internal/storage"
	"github.com/LAPKB/ode-solvers/sde"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Store", func() {
	var (
		dir    string
		st     *storage.Store
		sample sde.Trajectory[float64]
		meta   storage.RunMetadata
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		st = storage.New(dir)
		Expect(st.Init()).To(Succeed())

		sample = sde.Trajectory[float64]{
			X:     []float64{0, 0.5, 1},
			Y:     []sde.Vector[float64]{{1, 2}, {0.5, 1.5}, {0.25, 1.125}},
			Stats: sde.Stats{NumEval: 2, AcceptedSteps: 2},
		}

		summary, err := analysis.Summarize([]sde.Trajectory[float64]{sample, sample}, 0)
		Expect(err).NotTo(HaveOccurred())

		meta = storage.RunMetadata{
			Model:   "decay",
			Seed:    42,
			T0:      0,
			TEnd:    1,
			Dt:      0.5,
			Runs:    2,
			Y0:      []float64{1, 2},
			Params:  map[string]float64{"k": 1},
			Stats:   sde.Stats{NumEval: 4, AcceptedSteps: 4},
			Summary: summary,
			Comparison: &analysis.Comparison{
				MaxAbsError: 0.1,
			},
		}
	})

	It("starts empty", func() {
		runs, err := st.List()
		Expect(err).NotTo(HaveOccurred())
		Expect(runs).To(BeEmpty())
	})

	It("lists nothing when the directory does not exist", func() {
		runs, err := storage.New(filepath.Join(dir, "missing")).List()
		Expect(err).NotTo(HaveOccurred())
		Expect(runs).To(BeEmpty())
	})

	Context("after saving a run", func() {
		var runID string

		BeforeEach(func() {
			var err error
			runID, err = st.Save(meta, sample)
			Expect(err).NotTo(HaveOccurred())
		})

		It("creates the run files", func() {
			Expect(runID).To(HavePrefix("decay_"))
			for _, name := range []string{"metadata.json", "mean.csv", "states.csv"} {
				_, err := os.Stat(filepath.Join(dir, runID, name))
				Expect(err).NotTo(HaveOccurred(), name)
			}
		})

		It("round-trips the metadata", func() {
			loaded, err := st.Load(runID)
			Expect(err).NotTo(HaveOccurred())

			Expect(loaded.ID).To(Equal(runID))
			Expect(loaded.Seed).To(BeEquivalentTo(42))
			Expect(loaded.Params).To(HaveKeyWithValue("k", 1.0))
			Expect(loaded.Stats.AcceptedSteps).To(BeEquivalentTo(4))
			Expect(loaded.Summary.Final.Mean).To(Equal(0.25))
			Expect(loaded.Comparison.MaxAbsError).To(Equal(0.1))
		})

		It("round-trips the sample trajectory", func() {
			tr, err := st.LoadStates(runID)
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.X).To(Equal(sample.X))
			Expect(tr.Y).To(Equal(sample.Y))
		})

		It("round-trips the mean curve", func() {
			sum, err := st.LoadMean(runID)
			Expect(err).NotTo(HaveOccurred())
			Expect(sum.Times).To(Equal([]float64{0, 0.5, 1}))
			Expect(sum.Mean).To(Equal([]float64{1, 0.5, 0.25}))
			Expect(sum.Std).To(Equal([]float64{0, 0, 0}))
			Expect(sum.Count).To(Equal([]int{2, 2, 2}))
		})

		It("lists the run", func() {
			_, err := st.Save(meta, sample)
			Expect(err).NotTo(HaveOccurred())

			runs, err := st.List()
			Expect(err).NotTo(HaveOccurred())
			Expect(runs).To(HaveLen(2))
			Expect(runs[0].ID).To(Equal(runID))
		})

		It("exports the run as JSON", func() {
			var buf bytes.Buffer
			Expect(st.ExportJSON(&buf, runID)).To(Succeed())

			var data storage.ExportData
			Expect(json.Unmarshal(buf.Bytes(), &data)).To(Succeed())
			Expect(data.Metadata.Model).To(Equal("decay"))
			Expect(data.Times).To(HaveLen(3))
			Expect(data.States[2]).To(Equal([]float64{0.25, 1.125}))
			Expect(data.Mean).To(Equal([]float64{1, 0.5, 0.25}))
		})
	})

	It("leaves nothing behind when a save fails", func() {
		meta.Metrics = map[string]float64{"max_abs": math.NaN()}

		_, err := st.Save(meta, sample)
		Expect(err).To(HaveOccurred())

		entries, err := os.ReadDir(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(BeEmpty())

		runs, err := st.List()
		Expect(err).NotTo(HaveOccurred())
		Expect(runs).To(BeEmpty())
	})

	It("fails to load an unknown run", func() {
		_, err := st.Load("nope")
		Expect(err).To(HaveOccurred())
		_, err = st.LoadStates("nope")
		Expect(err).To(HaveOccurred())
	})
})
