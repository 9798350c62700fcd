// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package index builds and queries the reference-code index: a
// tree-sitter parser chunks Go source into passages, and a Weaviate
// store makes them retrievable by BM25.
package index

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AleutianForge/services/forge/datatypes"
)

// parseWorkers bounds concurrent file parsing during an index build.
const parseWorkers = 8

// chunkNodeTypes are the top-level declarations extracted as
// individual passages.
var chunkNodeTypes = map[string]bool{
	"function_declaration": true,
	"method_declaration":   true,
	"type_declaration":     true,
	"const_declaration":    true,
	"var_declaration":      true,
	"import_declaration":   true,
}

// Parser turns source files into passages. Go files get hybrid
// treatment: the complete file as one passage plus one passage per
// top-level declaration. Everything else becomes a single passage.
//
// Not safe for concurrent use; build one per goroutine.
type Parser struct {
	inner *sitter.Parser
}

// NewParser builds a parser with the Go grammar loaded.
func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(golang.GetLanguage())
	return &Parser{inner: p}
}

// ParseFile produces the passages for one file. A Go file that fails
// to parse still yields its full-reference passage; broken reference
// material is better than missing reference material.
func (p *Parser) ParseFile(ctx context.Context, path string, content []byte) ([]datatypes.Passage, error) {
	if !strings.HasSuffix(path, ".go") {
		return []datatypes.Passage{{
			Kind:     datatypes.PassageChunk,
			FilePath: path,
			Content:  string(content),
		}}, nil
	}

	passages := []datatypes.Passage{{
		Kind:     datatypes.PassageFullReference,
		FilePath: path,
		Content:  fullReferenceWrap(path, string(content)),
	}}

	tree, err := p.inner.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		slog.Warn("reference file has syntax errors, keeping full file only", "path", path)
		return passages, nil
	}

	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		if child == nil || !chunkNodeTypes[child.Type()] {
			continue
		}
		passages = append(passages, datatypes.Passage{
			Kind:     datatypes.PassageChunk,
			FilePath: path,
			Symbol:   declSymbol(child, content),
			Content:  string(content[child.StartByte():child.EndByte()]),
		})
	}

	return passages, nil
}

// fullReferenceWrap marks a passage as a complete file so the model
// can tell whole-file examples from fragments.
func fullReferenceWrap(path, content string) string {
	return fmt.Sprintf("// ===== COMPLETE FILE: %s =====\n%s", path, content)
}

// declSymbol extracts the declared name from a top-level node, best
// effort. Grouped declarations report their first name.
func declSymbol(node *sitter.Node, content []byte) string {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "identifier", "field_identifier", "type_identifier":
			return string(content[child.StartByte():child.EndByte()])
		case "type_spec", "const_spec", "var_spec":
			if name := child.ChildByFieldName("name"); name != nil {
				return string(content[name.StartByte():name.EndByte()])
			}
		}
	}
	if name := node.ChildByFieldName("name"); name != nil {
		return string(content[name.StartByte():name.EndByte()])
	}
	return ""
}

// ParseDirectory walks a directory tree and parses every regular file
// concurrently. Hidden directories, vendor, and testdata are skipped.
//
// Returns the passages, the number of files parsed, and the first
// error encountered.
func ParseDirectory(ctx context.Context, dir string) ([]datatypes.Passage, int, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != dir && (strings.HasPrefix(name, ".") || name == "vendor" || name == "testdata") {
				return filepath.SkipDir
			}
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("walk %s: %w", dir, err)
	}

	var (
		mu       sync.Mutex
		passages []datatypes.Passage
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parseWorkers)

	for _, path := range paths {
		path := path
		g.Go(func() error {
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			rel, relErr := filepath.Rel(dir, path)
			if relErr != nil {
				rel = path
			}

			parsed, err := NewParser().ParseFile(ctx, rel, content)
			if err != nil {
				return err
			}

			mu.Lock()
			passages = append(passages, parsed...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	slog.Info("reference directory parsed",
		"dir", dir, "files", len(paths), "passages", len(passages))
	return passages, len(paths), nil
}
