package montecarlo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/liftmc/internal/physics"
	"github.com/san-kum/liftmc/internal/sampler"
	"github.com/san-kum/liftmc/internal/stats"
)

// recordingModel captures the conditions it is evaluated with.
type recordingModel struct {
	humidity []float64
	lift     float64
}

func (m *recordingModel) Lift(tempC, staticPa, totalPa, relHumidity, area, liftCoeff float64) float64 {
	m.humidity = append(m.humidity, relHumidity)
	return m.lift
}

func run(seed int64, cfg Config) (*Result, error) {
	s := New(physics.NewLiftModel(), sampler.NewSeeded(seed))
	return s.Run(context.Background(), cfg)
}

var _ = Describe("Simulator", func() {
	var cfg Config

	BeforeEach(func() {
		cfg = DefaultConfig()
	})

	Describe("the reference experiment", func() {
		It("produces a lift distribution of the expected magnitude", func() {
			result, err := run(42, cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(result.TrialsRun).To(Equal(DefaultTrials))
			Expect(result.Lifts).To(HaveLen(DefaultTrials))
			Expect(result.Summary.Trials).To(Equal(DefaultTrials))
			Expect(result.Summary.NonFinite).To(BeZero())

			// lift reduces to (Pt - Ps) * area * CL, so the mean sits near 3675 * 1.2
			Expect(result.Summary.Mean).To(BeNumerically("~", 4410, 150))
			Expect(result.Summary.StdDev).To(BeNumerically("~", 975, 120))
			Expect(result.Summary.P05).To(BeNumerically("<", result.Summary.P50))
			Expect(result.Summary.P50).To(BeNumerically("<", result.Summary.P95))
		})

		It("reports pinned moments for seed 42", func() {
			result, err := run(42, cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(fmt.Sprintf("%f", result.Summary.Mean)).To(Equal("4415.580707"))
			Expect(fmt.Sprintf("%f", result.Summary.StdDev)).To(Equal("957.957805"))
		})

		It("is reproducible for a fixed seed", func() {
			a, err := run(2024, cfg)
			Expect(err).NotTo(HaveOccurred())
			b, err := run(2024, cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(a.Summary).To(Equal(b.Summary))
			Expect(a.Lifts).To(Equal(b.Lifts))
		})

		It("differs between seeds", func() {
			a, _ := run(1, cfg)
			b, _ := run(2, cfg)
			Expect(a.Summary.Mean).NotTo(Equal(b.Summary.Mean))
		})

		It("agrees between accumulation methods", func() {
			sumsq, err := run(7, cfg)
			Expect(err).NotTo(HaveOccurred())

			cfg.Method = stats.MethodWelford
			welford, err := run(7, cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(welford.Summary.Mean).To(BeNumerically("~", sumsq.Summary.Mean, 1e-6))
			Expect(welford.Summary.StdDev).To(BeNumerically("~", sumsq.Summary.StdDev, 1e-4))
		})
	})

	Describe("draw order", func() {
		It("samples temperature, static, total, humidity, area, coefficient", func() {
			var first Conditions
			s := New(physics.NewLiftModel(), sampler.NewSeeded(11))
			s.AddObserver(ObserverFunc(func(trial int, c Conditions, lift float64) {
				if trial == 0 {
					first = c
				}
			}))
			cfg.Trials = 1
			_, err := s.Run(context.Background(), cfg)
			Expect(err).NotTo(HaveOccurred())

			in := DefaultInputs()
			ref := sampler.NewSeeded(11)
			temp := ref.Sample(in.Temperature.Mean, in.Temperature.StdDev)
			static := ref.Sample(in.StaticPressure.Mean, in.StaticPressure.StdDev)
			total := ref.Sample(in.TotalPressure.Mean, in.TotalPressure.StdDev)
			humidity := ref.Sample(in.Humidity.Mean, in.Humidity.StdDev)
			area := ref.Sample(in.Area.Mean, in.Area.StdDev)
			coeff := ref.Sample(in.LiftCoeff.Mean, in.LiftCoeff.StdDev)

			Expect(first.TempC).To(Equal(temp))
			Expect(first.StaticPa).To(Equal(static * 100))
			Expect(first.TotalPa).To(Equal(total * 100))
			Expect(first.RelHumidity).To(Equal(ClampHumidity(humidity / 100)))
			Expect(first.Area).To(Equal(area))
			Expect(first.LiftCoeff).To(Equal(coeff))
		})
	})

	Describe("zero variance", func() {
		BeforeEach(func() {
			cfg.Inputs = DefaultInputs().Deterministic()
		})

		It("gives identical trials and no spread with sum of squares", func() {
			result, err := run(5, cfg)
			Expect(err).NotTo(HaveOccurred())

			for _, l := range result.Lifts {
				Expect(l).To(Equal(result.Lifts[0]))
			}
			Expect(math.IsNaN(result.Summary.StdDev)).To(BeFalse())
			Expect(result.Summary.StdDev).To(BeNumerically("<=", 1e-6*result.Summary.Mean))
		})

		It("gives exactly zero spread with Welford", func() {
			cfg.Method = stats.MethodWelford
			result, err := run(5, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Summary.StdDev).To(BeZero())
			Expect(result.Summary.Mean).To(BeNumerically("~", 4410, 1e-6))
		})
	})

	Describe("humidity clamping", func() {
		DescribeTable("clamps the fraction handed to the model",
			func(meanPct, expected float64) {
				cfg.Inputs = DefaultInputs().Deterministic()
				cfg.Inputs.Humidity = Distribution{Mean: meanPct}
				cfg.Trials = 3

				m := &recordingModel{lift: 1}
				_, err := New(m, sampler.NewSeeded(1)).Run(context.Background(), cfg)
				Expect(err).NotTo(HaveOccurred())

				Expect(m.humidity).To(HaveLen(3))
				for _, h := range m.humidity {
					Expect(h).To(Equal(expected))
				}
			},
			Entry("below zero", -20.0, 0.0),
			Entry("above one hundred", 150.0, 1.0),
			Entry("lower boundary", 0.0, 0.0),
			Entry("upper boundary", 100.0, 1.0),
			Entry("inside range", 42.0, 0.42),
		)
	})

	Describe("non-finite lift", func() {
		BeforeEach(func() {
			cfg.Inputs = DefaultInputs().Deterministic()
			cfg.Inputs.TotalPressure = Distribution{Mean: 900}
		})

		It("completes the run and reports the first bad trial", func() {
			result, err := run(3, cfg)
			Expect(err).To(MatchError(ErrNonFinite))

			var trialErr *TrialError
			Expect(errors.As(err, &trialErr)).To(BeTrue())
			Expect(trialErr.Trial).To(BeZero())
			Expect(math.IsNaN(trialErr.Lift)).To(BeTrue())

			Expect(result).NotTo(BeNil())
			Expect(result.TrialsRun).To(Equal(cfg.Trials))
			Expect(result.Summary.NonFinite).To(Equal(cfg.Trials))
			Expect(result.Summary.IsFinite()).To(BeFalse())
		})

		It("propagates NaN silently when validation is off", func() {
			cfg.ValidateResults = false
			result, err := run(3, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(math.IsNaN(result.Summary.Mean)).To(BeTrue())
		})

		It("still counts bad trials when lifts are not kept", func() {
			cfg.ValidateResults = false
			cfg.KeepLifts = false
			result, err := run(3, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Lifts).To(BeNil())
			Expect(result.Summary.NonFinite).To(Equal(cfg.Trials))
		})
	})

	Describe("configuration errors", func() {
		It("rejects a non-positive trial count", func() {
			cfg.Trials = 0
			_, err := run(1, cfg)
			Expect(err).To(MatchError(ErrInvalidTrials))
		})

		It("rejects a negative standard deviation", func() {
			cfg.Inputs.Area.StdDev = -0.1
			_, err := run(1, cfg)
			Expect(err).To(MatchError(ErrNegativeStdDev))
		})

		It("rejects an unknown accumulation method", func() {
			cfg.Method = "median"
			_, err := run(1, cfg)
			Expect(err).To(MatchError(stats.ErrUnknownMethod))
		})
	})

	Describe("cancellation", func() {
		It("stops between trials and returns the partial summary", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			s := New(physics.NewLiftModel(), sampler.NewSeeded(9))
			s.AddObserver(ObserverFunc(func(trial int, c Conditions, lift float64) {
				if trial == 9 {
					cancel()
				}
			}))

			result, err := s.Run(ctx, cfg)
			Expect(err).To(MatchError(context.Canceled))
			Expect(result.TrialsRun).To(Equal(10))
			Expect(result.Summary.Trials).To(Equal(10))
		})
	})
})

var _ = Describe("Ensemble", func() {
	It("matches independent single runs seeded per replicate", func() {
		cfg := DefaultConfig()
		cfg.Trials = 200

		results, err := NewEnsemble(physics.NewLiftModel(), 4, 100).Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(4))

		for i, r := range results {
			single, err := run(100+int64(i), cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Summary).To(Equal(single.Summary))
		}

		mean, sd := Spread(results)
		Expect(mean).To(BeNumerically("~", 4410, 300))
		Expect(sd).To(BeNumerically(">", 0))
	})

	It("notifies observers from every replicate", func() {
		cfg := DefaultConfig()
		cfg.Trials = 50

		var seen atomic.Int64
		e := NewEnsemble(physics.NewLiftModel(), 3, 7)
		e.AddObserver(ObserverFunc(func(int, Conditions, float64) { seen.Add(1) }))

		_, err := e.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(seen.Load()).To(Equal(int64(150)))
	})

	It("rejects zero replicates", func() {
		_, err := NewEnsemble(physics.NewLiftModel(), 0, 1).Run(context.Background(), DefaultConfig())
		Expect(err).To(MatchError(ErrInvalidReplicates))
	})

	It("keeps every replicate's result when one fails", func() {
		cfg := DefaultConfig()
		cfg.Trials = 100
		cfg.Inputs.TotalPressure = Distribution{Mean: 900}

		results, err := NewEnsemble(physics.NewLiftModel(), 3, 1).Run(context.Background(), cfg)
		Expect(err).To(MatchError(ErrNonFinite))
		Expect(results).To(HaveLen(3))
		for _, r := range results {
			Expect(r).NotTo(BeNil())
			Expect(r.TrialsRun).To(Equal(100))
			Expect(r.Summary.NonFinite).To(Equal(100))
		}
	})

	It("runs the healthy replicates to completion next to a failing one", func() {
		cfg := DefaultConfig()
		cfg.Trials = 200
		cfg.Inputs.StaticPressure = Distribution{Mean: 1013.25, StdDev: 1}
		cfg.Inputs.TotalPressure = Distribution{Mean: 1014.25, StdDev: 1}

		results, err := NewEnsemble(physics.NewLiftModel(), 3, 1).Run(context.Background(), cfg)
		Expect(err).To(MatchError(ErrNonFinite))
		Expect(results).To(HaveLen(3))
		for _, r := range results {
			Expect(r).NotTo(BeNil())
			Expect(r.TrialsRun).To(Equal(200))
		}
	})
})
