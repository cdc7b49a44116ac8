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
	"bufio"
	"fmt"
	"math/rand"
	"os"

	"github.com/spf13/cobra"

	"github.com/notargets/gosphere/sphmodel"
)

// SampleCmd represents the sample command
var SampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Create an N-body realization of the model",
	Long: `
Draws particle positions and velocities from the isotropic distribution
function and writes them as text, one particle per line:
x y z vx vy vz mass.

gosphere sample -I model.yaml -n 100000 -o particles.dat`,
	Run: func(cmd *cobra.Command, args []string) {
		mp := processInput(cmd)
		if n, _ := cmd.Flags().GetInt("numParticles"); n > 0 {
			mp.NumParticles = n
		}
		if seed, _ := cmd.Flags().GetInt64("seed"); seed != 0 {
			mp.Seed = seed
		}
		outFile, _ := cmd.Flags().GetString("output")
		pot, _, df, _, err := buildModel(mp)
		if err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		particles, err := sphmodel.SamplePosVel(pot, df, mp.NumParticles,
			rand.New(rand.NewSource(mp.Seed)))
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
		w := bufio.NewWriter(out)
		defer w.Flush()
		for _, p := range particles {
			fmt.Fprintf(w, "%.8g %.8g %.8g %.8g %.8g %.8g %.8g\n",
				p.Pos[0], p.Pos[1], p.Pos[2], p.Vel[0], p.Vel[1], p.Vel[2], p.Mass)
		}
	},
}

func init() {
	rootCmd.AddCommand(SampleCmd)
	SampleCmd.Flags().StringP("inputParametersFile", "I", "", "YAML file with model parameters")
	SampleCmd.Flags().IntP("numParticles", "n", 0, "number of particles to sample (overrides the input file)")
	SampleCmd.Flags().Int64P("seed", "s", 0, "random seed (overrides the input file)")
	SampleCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
}
