/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/spf13/cobra"

	"github.com/notargets/gosphere/InputParameters"
	"github.com/notargets/gosphere/potential"
	"github.com/notargets/gosphere/sphmodel"
)

// ReportCmd represents the report command
var ReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write a table of radial profiles and relaxation quantities",
	Long: `
Builds the isotropic model for the configured potential and writes a text
table with one row per energy level: radius, enclosed mass, density, DF
value, radial period, velocity dispersions, surface density, diffusion
coefficients and phase-volume fluxes.

gosphere report -I model.yaml -o model.dat`,
	Run: func(cmd *cobra.Command, args []string) {
		mp := processInput(cmd)
		outFile, _ := cmd.Flags().GetString("output")
		_, pot, _, model, err := buildModel(mp)
		if err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		out := os.Stdout
		if outFile != "" {
			if out, err = os.Create(outFile); err != nil {
				panic(err)
			}
			defer out.Close()
		}
		if err = sphmodel.WriteSphericalIsotropicModel(
			out, mp.Title, model.SphericalIsotropicModel, pot, nil); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(ReportCmd)
	ReportCmd.Flags().StringP("inputParametersFile", "I", "", "YAML file with model parameters like:\n\t- Potential\n\t- Mass\n\t- ScaleRadius")
	ReportCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
}

func processInput(cmd *cobra.Command) (mp *InputParameters.ModelParameters) {
	var (
		err error
	)
	ipFile, _ := cmd.Flags().GetString("inputParametersFile")
	mp = InputParameters.DefaultModelParameters()
	if len(ipFile) == 0 {
		exampleFile := `
########################################
Title: "Plummer model"
Potential: Plummer    # or Hernquist, Isochrone
Mass: 1.
ScaleRadius: 1.
Mbh: 0.               # optional central point mass
NumParticles: 10000   # for the sample command
Seed: 1
########################################
`
		fmt.Printf("no input parameters file (-I), using defaults; example file:%s\n", exampleFile)
		return
	}
	var data []byte
	if data, err = ioutil.ReadFile(ipFile); err != nil {
		panic(err)
	}
	if err = mp.Parse(data); err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	mp.Print()
	return
}

// buildModel assembles the stellar potential, its self-consistent DF and
// the combined model from the input parameters. The model is built in the
// stellar potential; a central point mass, if configured, enters only the
// total potential used for radii, orbits and loss-cone quantities in the
// report.
func buildModel(mp *InputParameters.ModelParameters) (
	stars, total potential.Potential, df sphmodel.DF, model *sphmodel.LocalModel, err error) {

	switch mp.Potential {
	case "Plummer":
		stars = potential.Plummer{Mass: mp.Mass, ScaleRadius: mp.ScaleRadius}
	case "Hernquist":
		stars = potential.Hernquist{Mass: mp.Mass, ScaleRadius: mp.ScaleRadius}
	case "Isochrone":
		stars = potential.Isochrone{Mass: mp.Mass, ScaleRadius: mp.ScaleRadius}
	default:
		return nil, nil, nil, nil, fmt.Errorf("unknown Potential %q", mp.Potential)
	}
	total = stars
	if mp.Mbh > 0 {
		total = potential.Composite{stars, potential.PointMass{Mass: mp.Mbh}}
	}
	pv, err := potential.NewPhaseVolume(stars)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	switch mp.Potential {
	case "Hernquist":
		df = sphmodel.NewHernquistDF(pv, mp.Mass, mp.ScaleRadius)
	default:
		df = sphmodel.NewPlummerDF(pv, mp.Mass, mp.ScaleRadius)
	}
	model, err = sphmodel.NewLocalModel(pv, df, nil, nil)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return stars, total, df, model, nil
}
