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
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/paramsweep/pkg/document"
	"github.com/AleutianAI/paramsweep/pkg/eval"
	"github.com/AleutianAI/paramsweep/pkg/resolve"
	"github.com/AleutianAI/paramsweep/pkg/ux"
)

func newResolver() *resolve.Resolver {
	r := resolve.New(eval.New())
	if preludeKey != "" {
		r = r.WithPreludeKeys(preludeKey)
	}
	return r
}

func runResolve(cmd *cobra.Command, args []string) error {
	inPath := args[0]

	if watchInput {
		if outputPath == "" {
			return fmt.Errorf("--watch requires --output")
		}
		return watchAndResolve(inPath)
	}

	out, err := resolveFile(inPath)
	if err != nil {
		return err
	}
	if outputPath == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(outputPath, out, 0o644); err != nil {
		return fmt.Errorf("write %q: %w", outputPath, err)
	}
	logger.Info("document resolved", "input", inPath, "output", outputPath)
	return nil
}

// resolveFile reads, resolves, and re-encodes one parameter file. With
// --verbatim the prelude and tags are left alone and only the YAML
// formatting is normalized.
func resolveFile(inPath string) ([]byte, error) {
	raw, err := os.ReadFile(inPath)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", inPath, err)
	}
	doc, err := document.DecodeMapping(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", inPath, err)
	}
	if verbatim {
		return document.Encode(doc)
	}
	resolved, _, err := newResolver().Resolve(doc)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", inPath, err)
	}
	return document.Encode(resolved)
}

// watchAndResolve re-resolves the input on every write until interrupted.
// Editors replace files rather than writing in place, so the watch sits on
// the directory and filters for the input name.
func watchAndResolve(inPath string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(inPath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %q: %w", dir, err)
	}

	resolveOnce := func() {
		out, err := resolveFile(inPath)
		if err != nil {
			logger.Error("resolve failed", "input", inPath, "error", err)
			ux.Error(err.Error())
			return
		}
		if err := os.WriteFile(outputPath, out, 0o644); err != nil {
			logger.Error("write failed", "output", outputPath, "error", err)
			return
		}
		logger.Info("document resolved", "input", inPath, "output", outputPath)
		ux.Success(fmt.Sprintf("%s %s %s", inPath, ux.IconArrow, outputPath))
	}
	resolveOnce()

	// Editors fire several events per save; a short debounce collapses
	// them into one resolution.
	var pending *time.Timer
	target := filepath.Clean(inPath)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(100*time.Millisecond, resolveOnce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		}
	}
}
