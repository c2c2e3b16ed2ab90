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
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/paramsweep/pkg/sortnames"
)

func runSort(cmd *cobra.Command, args []string) error {
	names := args
	if len(names) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" {
				names = append(names, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
	}

	sorted, err := sortnames.Sort(names, sortnames.Spec{
		First:      sortFirst,
		Last:       sortLast,
		Reverse:    sortReverse,
		ReverseAll: sortRevAll,
	})
	if err != nil {
		return err
	}
	for _, name := range sorted {
		fmt.Println(name)
	}
	return nil
}
