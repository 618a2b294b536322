// Package catalog lists the dataset files the atlas can load and resolves
// model selections to a single file.
package catalog

import (
	_ "embed"
	"slices"
	"sync"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embedded []byte

// ClimateModel is the GCM (or reanalysis) that forced the impact model.
type ClimateModel string

const (
	ClimateWATCH      ClimateModel = "watch"
	ClimateGFDLESM2M  ClimateModel = "gfdl-esm2m"
	ClimateHadGEM2ES  ClimateModel = "hadgem2-es"
	ClimateIPSLCM5ALR ClimateModel = "ipsl-cm5a-lr"
	ClimateMIROC5     ClimateModel = "miroc5"
)

// ClimateModels lists climate models in display order.
var ClimateModels = []ClimateModel{ClimateWATCH, ClimateGFDLESM2M, ClimateHadGEM2ES, ClimateIPSLCM5ALR, ClimateMIROC5}

// ReanalysisOnly reports whether the model only exists for historical runs.
func (c ClimateModel) ReanalysisOnly() bool {
	return c == ClimateWATCH
}

// ImpactModel is the global hydrological model that produced the data.
type ImpactModel string

const (
	ImpactWaterGAP  ImpactModel = "watergap"
	ImpactH08       ImpactModel = "h08"
	ImpactLPJmL     ImpactModel = "lpjml"
	ImpactPCRGLOBWB ImpactModel = "pcr-globwb"
	ImpactMPIHM     ImpactModel = "mpi-hm"
)

// ImpactModels lists impact models in display order. The reducer falls back
// to the first compatible entry of this list.
var ImpactModels = []ImpactModel{ImpactWaterGAP, ImpactH08, ImpactLPJmL, ImpactPCRGLOBWB, ImpactMPIHM}

// TimeScale is the length of one time bucket.
type TimeScale string

const (
	TimeScaleDecadal TimeScale = "decadal"
	TimeScaleAnnual  TimeScale = "annual"
)

// TimeScales lists the supported time scales.
var TimeScales = []TimeScale{TimeScaleDecadal, TimeScaleAnnual}

// ParseClimateModel validates s against ClimateModels.
func ParseClimateModel(s string) (ClimateModel, error) {
	if c := ClimateModel(s); slices.Contains(ClimateModels, c) {
		return c, nil
	}
	return "", eris.Errorf("catalog: unknown climate model %q", s)
}

// ParseImpactModel validates s against ImpactModels.
func ParseImpactModel(s string) (ImpactModel, error) {
	if m := ImpactModel(s); slices.Contains(ImpactModels, m) {
		return m, nil
	}
	return "", eris.Errorf("catalog: unknown impact model %q", s)
}

// ParseTimeScale validates s against TimeScales.
func ParseTimeScale(s string) (TimeScale, error) {
	if ts := TimeScale(s); slices.Contains(TimeScales, ts) {
		return ts, nil
	}
	return "", eris.Errorf("catalog: unknown time scale %q", s)
}

// Scenario identifiers used in the catalog.
const (
	SpatialUnitFPU        = "fpu"
	PopulationHistorical  = "hist"
	ExperimentHistorical  = "hist"
	CO2ForcingFixed       = "noco2"
	CO2ForcingTransient   = "co2"
	DataTypeBlueWater     = "bluewater"
	SocialForcingHistoric = "histsoc"
)

// Entry describes one published dataset file.
type Entry struct {
	SpatialUnit       string       `yaml:"spatialUnit" json:"spatialUnit"`
	TimeScale         TimeScale    `yaml:"timeScale" json:"timeScale"`
	DataType          string       `yaml:"dataType" json:"dataType"`
	Population        string       `yaml:"population" json:"population"`
	ImpactModel       ImpactModel  `yaml:"impactModel" json:"impactModel"`
	ClimateModel      ClimateModel `yaml:"climateModel" json:"climateModel"`
	ClimateExperiment string       `yaml:"climateExperiment" json:"climateExperiment"`
	CO2Forcing        string       `yaml:"co2Forcing" json:"co2Forcing"`
	SocialForcing     string       `yaml:"socialForcing" json:"socialForcing"`
	Filename          string       `yaml:"filename" json:"filename"`
}

// Catalog is an immutable list of dataset entries.
type Catalog struct {
	Entries []Entry `yaml:"datasets" json:"datasets"`
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, eris.Wrap(err, "catalog: decode yaml")
	}
	for i, e := range c.Entries {
		if e.Filename == "" {
			return nil, eris.Errorf("catalog: entry %d has no filename", i)
		}
		if _, err := ParseClimateModel(string(e.ClimateModel)); err != nil {
			return nil, eris.Wrapf(err, "catalog: entry %s", e.Filename)
		}
		if _, err := ParseImpactModel(string(e.ImpactModel)); err != nil {
			return nil, eris.Wrapf(err, "catalog: entry %s", e.Filename)
		}
		if _, err := ParseTimeScale(string(e.TimeScale)); err != nil {
			return nil, eris.Wrapf(err, "catalog: entry %s", e.Filename)
		}
	}
	return &c, nil
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(embedded)
		if err != nil {
			panic(err)
		}
		defaultCat = c
	})
	return defaultCat
}

func (c *Catalog) filter(keep func(Entry) bool) []Entry {
	var out []Entry
	for _, e := range c.Entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func isHistorical(e Entry) bool {
	return e.SpatialUnit == SpatialUnitFPU &&
		e.Population == PopulationHistorical &&
		e.ClimateExperiment == ExperimentHistorical &&
		e.CO2Forcing != CO2ForcingFixed
}

// LookupHistorical returns the single historical entry for the selection.
func (c *Catalog) LookupHistorical(climate ClimateModel, impact ImpactModel, ts TimeScale) (Entry, error) {
	matches := c.filter(func(e Entry) bool {
		return isHistorical(e) && e.ClimateModel == climate && e.ImpactModel == impact && e.TimeScale == ts
	})
	return single(matches, "historical %s/%s/%s", climate, impact, ts)
}

// FutureScenario selects a projection dataset.
type FutureScenario struct {
	ClimateModel ClimateModel `json:"climateModel"`
	ImpactModel  ImpactModel  `json:"impactModel"`
	TimeScale    TimeScale    `json:"timeScale"`
	Experiment   string       `json:"experiment"`
	Population   string       `json:"population"`
}

// Key identifies the scenario in caches.
func (s FutureScenario) Key() string {
	return "future/" + string(s.ClimateModel) + "/" + string(s.ImpactModel) + "/" + string(s.TimeScale) + "/" + s.Experiment + "/" + s.Population
}

// LookupFuture returns the single projection entry for the scenario.
func (c *Catalog) LookupFuture(s FutureScenario) (Entry, error) {
	matches := c.filter(func(e Entry) bool {
		return e.SpatialUnit == SpatialUnitFPU &&
			e.ClimateExperiment == s.Experiment &&
			e.Population == s.Population &&
			e.ClimateModel == s.ClimateModel &&
			e.ImpactModel == s.ImpactModel &&
			e.TimeScale == s.TimeScale &&
			e.CO2Forcing != CO2ForcingFixed
	})
	return single(matches, "future %s", s.Key())
}

// ImpactModelsFor lists, in ImpactModels order, the impact models that have a
// historical dataset for the given climate model and time scale.
func (c *Catalog) ImpactModelsFor(climate ClimateModel, ts TimeScale) []ImpactModel {
	available := make(map[ImpactModel]bool)
	for _, e := range c.Entries {
		if isHistorical(e) && e.ClimateModel == climate && e.TimeScale == ts {
			available[e.ImpactModel] = true
		}
	}
	var out []ImpactModel
	for _, m := range ImpactModels {
		if available[m] {
			out = append(out, m)
		}
	}
	return out
}

// HistoricalKey identifies a historical selection in caches.
func HistoricalKey(climate ClimateModel, impact ImpactModel, ts TimeScale) string {
	return "hist/" + string(climate) + "/" + string(impact) + "/" + string(ts)
}

func single(matches []Entry, format string, args ...any) (Entry, error) {
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return Entry{}, eris.Wrapf(ErrNotFound, format, args...)
	default:
		return Entry{}, eris.Wrapf(ErrAmbiguous, format, args...)
	}
}

// Lookup failures.
var (
	ErrNotFound  = eris.New("catalog: no matching dataset")
	ErrAmbiguous = eris.New("catalog: several matching datasets")
)
