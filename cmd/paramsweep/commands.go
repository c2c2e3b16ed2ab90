// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"github.com/spf13/cobra"

	"github.com/AleutianAI/paramsweep/pkg/logging"
	"github.com/AleutianAI/paramsweep/pkg/ux"
)

// --- Global Command Variables ---
var (
	logLevel    string
	logDir      string
	plainOutput bool

	outputPath   string
	verbatim     bool
	watchInput   bool
	preludeKey   string
	basePath     string
	outFolder    string
	dryRun       bool
	sortFirst    []string
	sortLast     []string
	sortReverse  []string
	sortRevAll   bool

	logger *logging.Logger

	rootCmd = &cobra.Command{
		Use:   "paramsweep",
		Short: "A cli to resolve computed-parameter YAML files and fan them into sweeps",
		Long: `Paramsweep works with YAML parameter files that carry a computed
				prelude: named values evaluated in order, referenced from the
				document body via !get and !eval tags. It resolves single files
				and expands one base file into a whole parameter sweep.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.New(logging.Config{
				Level:   logging.ParseLevel(logLevel),
				LogDir:  logDir,
				Service: "cli",
			})
			ux.SetPlain(plainOutput)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Close()
			}
		},
	}

	// --- Resolve ---
	resolveCmd = &cobra.Command{
		Use:   "resolve [file]",
		Short: "Resolve a parameter file's prelude and tags and print the result",
		Args:  cobra.ExactArgs(1),
		RunE:  runResolve, // Defined in cmd_resolve.go
	}

	// --- Sweep ---
	sweepCmd = &cobra.Command{
		Use:   "sweep [plan]",
		Short: "Expand a base parameter file into many named files following a sweep plan",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep, // Defined in cmd_sweep.go
	}

	// --- Sort ---
	sortCmd = &cobra.Command{
		Use:   "sort [filename...]",
		Short: "Sort sweep output filenames by the values embedded in their names",
		Long: `Sorts filenames built from label_value fragments (the names the
				sweep command produces). Reads names from arguments, or from
				stdin when none are given.`,
		RunE: runSort, // Defined in cmd_sort.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Minimum log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "",
		"Also write JSON logs to this directory")
	rootCmd.PersistentFlags().BoolVar(&plainOutput, "plain", false,
		"Machine-friendly output: no color, no icons")

	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().StringVarP(&outputPath, "output", "o", "",
		"Write the resolved document to this file instead of stdout")
	resolveCmd.Flags().BoolVar(&verbatim, "verbatim", false,
		"Only normalize the document, do not resolve the prelude or tags")
	resolveCmd.Flags().BoolVar(&watchInput, "watch", false,
		"Re-resolve whenever the input file changes (requires --output)")
	resolveCmd.Flags().StringVar(&preludeKey, "prelude-key", "",
		"Override the prelude key (default: __prelude__, then cache)")

	rootCmd.AddCommand(sweepCmd)
	sweepCmd.Flags().StringVar(&basePath, "base", "",
		"Base parameter file the sweep expands (required)")
	_ = sweepCmd.MarkFlagRequired("base")
	sweepCmd.Flags().StringVar(&outFolder, "out", "",
		"Output folder (overrides the plan's out setting)")
	sweepCmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"Name every generated file but write nothing")

	rootCmd.AddCommand(sortCmd)
	sortCmd.Flags().StringArrayVarP(&sortFirst, "first", "f", nil,
		"Sort by this label first (repeatable, in order)")
	sortCmd.Flags().StringArrayVarP(&sortLast, "last", "l", nil,
		"Sort by this label last (repeatable, in order)")
	sortCmd.Flags().StringArrayVarP(&sortReverse, "reverse", "r", nil,
		"Order this label in reverse (repeatable)")
	sortCmd.Flags().BoolVarP(&sortRevAll, "reverse-all", "R", false,
		"Order all labels in reverse; -r labels flip back to ascending")
}
