// Package synthetic generates repeated-measures difference data from a known
// two-level model, for demonstrations and for checking the agreement
// statistics against ground truth.
//
// Model: x_ij = Bias + b_i + e_ij with b_i ~ N(0, BetweenSD) per participant
// and e_ij ~ N(0, WithinSD) per observation. Each participant gets a uniform
// number of repeats in [MinRepeats, MaxRepeats], and each repeat contributes
// PointsPerRepeat rows (a stride normalised to 101 points, for example).
package synthetic

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"strconv"

	"goagree/domain/agreement"
	"goagree/domain/core"

	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/stat/distuv"
)

// Default column names of the long-format layout
const (
	ParticipantColumn = "participants"
	ValueColumn       = "variables"
)

type Config struct {
	Participants    int
	MinRepeats      int
	MaxRepeats      int
	PointsPerRepeat int
	Seed            uint64

	Bias      float64
	BetweenSD float64
	WithinSD  float64
}

func DefaultConfig() Config {
	return Config{
		Participants:    10,
		MinRepeats:      3,
		MaxRepeats:      10,
		PointsPerRepeat: 1,
		Seed:            42,
		Bias:            1.5,
		BetweenSD:       2.0,
		WithinSD:        1.0,
	}
}

// Validate checks the generator parameters
func (c Config) Validate() error {
	if c.Participants <= 0 {
		return fmt.Errorf("participants must be > 0")
	}
	if c.MinRepeats <= 0 {
		return fmt.Errorf("min repeats must be > 0")
	}
	if c.MaxRepeats < c.MinRepeats {
		return fmt.Errorf("max repeats (%d) must be >= min repeats (%d)", c.MaxRepeats, c.MinRepeats)
	}
	if c.PointsPerRepeat < 0 {
		return fmt.Errorf("points per repeat must be >= 0")
	}
	if c.BetweenSD < 0 || c.WithinSD < 0 {
		return fmt.Errorf("standard deviations must be >= 0")
	}
	return nil
}

// TotalSD is the SD of a single difference under the model
func (c Config) TotalSD() float64 {
	return math.Sqrt(c.BetweenSD*c.BetweenSD + c.WithinSD*c.WithinSD)
}

// Generate draws a dataset. The same Config always yields the same rows.
func Generate(cfg Config) (*agreement.Dataset, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	points := cfg.PointsPerRepeat
	if points == 0 {
		points = 1
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	between := distuv.Normal{Mu: 0, Sigma: cfg.BetweenSD, Src: rng}
	within := distuv.Normal{Mu: 0, Sigma: cfg.WithinSD, Src: rng}

	width := len(strconv.Itoa(cfg.Participants))
	if width < 2 {
		width = 2
	}

	ds := agreement.NewDataset(fmt.Sprintf("synthetic(seed=%d)", cfg.Seed), nil)
	for i := 1; i <= cfg.Participants; i++ {
		id := core.ParticipantID(fmt.Sprintf("P%0*d", width, i))
		effect := between.Rand()
		repeats := cfg.MinRepeats + rng.IntN(cfg.MaxRepeats-cfg.MinRepeats+1)
		for r := 0; r < repeats*points; r++ {
			ds.Add(id, cfg.Bias+effect+within.Rand())
		}
	}
	return ds, nil
}

// Rows formats a dataset in long format with a header row
func Rows(ds *agreement.Dataset) [][]string {
	rows := make([][]string, 0, ds.Len()+1)
	rows = append(rows, []string{ParticipantColumn, ValueColumn})
	for _, o := range ds.Observations {
		rows = append(rows, []string{o.Participant.String(), strconv.FormatFloat(o.Difference, 'g', -1, 64)})
	}
	return rows
}

func WriteCSV(path string, ds *agreement.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(Rows(ds)); err != nil {
		return err
	}
	return w.Error()
}

func WriteXLSX(path string, ds *agreement.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{ParticipantColumn, ValueColumn}); err != nil {
		return err
	}
	for i, o := range ds.Observations {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &[]interface{}{o.Participant.String(), o.Difference}); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}
