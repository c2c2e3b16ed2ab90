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
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/paramsweep/pkg/plan"
	"github.com/AleutianAI/paramsweep/pkg/sweep"
	"github.com/AleutianAI/paramsweep/pkg/ux"
)

func runSweep(cmd *cobra.Command, args []string) error {
	planPath := args[0]

	p, err := plan.Load(planPath)
	if err != nil {
		return err
	}
	sw, err := p.Compile()
	if err != nil {
		return err
	}

	base, err := sweep.Load(basePath, newResolver())
	if err != nil {
		return err
	}

	folder := p.Out
	if outFolder != "" {
		folder = outFolder
	}

	logger.Info("sweep started",
		"plan", planPath, "base", basePath, "out", folder, "dry_run", dryRun)

	report, err := sw.Dump(base, sweep.DumpOptions{
		Basefolder: folder,
		WriteFiles: !dryRun,
	})
	if err != nil {
		var collision *sweep.NamingCollisionError
		if errors.As(err, &collision) {
			ux.Error(fmt.Sprintf(
				"%d parameter sets share %d names; add namers until every set is unique",
				collision.Total, collision.Unique))
			logger.Error("naming collision",
				"total", collision.Total, "unique", collision.Unique)
		}
		return err
	}

	for _, outcome := range report.Outcomes {
		switch outcome.Status {
		case sweep.StatusWritten:
			ux.FileStatus(outcome.Path, ux.IconSuccess, "")
		case sweep.StatusPlanned:
			ux.FileStatus(outcome.Path, ux.IconPending, "dry run")
		default:
			ux.FileStatus(outcome.Path, ux.IconError, outcome.Status)
		}
	}

	written := 0
	if !dryRun {
		written = len(report.Outcomes)
	}
	ux.Summary(written, report.Collisions(), report.Total)
	logger.Info("sweep finished",
		"total", report.Total, "unique", report.Unique, "written", written)
	return nil
}
