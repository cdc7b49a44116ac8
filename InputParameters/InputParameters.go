package InputParameters

import (
	"fmt"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file
type ModelParameters struct {
	Title        string  `yaml:"Title"`
	Potential    string  `yaml:"Potential"` // Plummer, Hernquist or Isochrone
	Mass         float64 `yaml:"Mass"`
	ScaleRadius  float64 `yaml:"ScaleRadius"`
	Mbh          float64 `yaml:"Mbh"` // optional central point mass
	NumParticles int     `yaml:"NumParticles"`
	Seed         int64   `yaml:"Seed"`
}

func DefaultModelParameters() *ModelParameters {
	return &ModelParameters{
		Title:        "spherical isotropic model",
		Potential:    "Plummer",
		Mass:         1,
		ScaleRadius:  1,
		NumParticles: 10000,
		Seed:         1,
	}
}

func (mp *ModelParameters) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, mp); err != nil {
		return err
	}
	return mp.Validate()
}

func (mp *ModelParameters) Validate() error {
	if mp.Mass <= 0 {
		return fmt.Errorf("Mass must be positive, got %g", mp.Mass)
	}
	if mp.ScaleRadius <= 0 {
		return fmt.Errorf("ScaleRadius must be positive, got %g", mp.ScaleRadius)
	}
	if mp.Mbh < 0 {
		return fmt.Errorf("Mbh must be non-negative, got %g", mp.Mbh)
	}
	switch mp.Potential {
	case "Plummer", "Hernquist", "Isochrone":
	default:
		return fmt.Errorf("unknown Potential %q, must be Plummer, Hernquist or Isochrone", mp.Potential)
	}
	return nil
}

func (mp *ModelParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", mp.Title)
	fmt.Printf("[%s]\t\t= Potential\n", mp.Potential)
	fmt.Printf("%8.5f\t\t= Mass\n", mp.Mass)
	fmt.Printf("%8.5f\t\t= ScaleRadius\n", mp.ScaleRadius)
	fmt.Printf("%8.5f\t\t= Mbh\n", mp.Mbh)
	fmt.Printf("[%d]\t\t\t= NumParticles\n", mp.NumParticles)
}
