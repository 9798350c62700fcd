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
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianForge/services/forge/datatypes"
)

var (
	queryOutputFile string
	queryShowIssues bool
)

var indexCmd = &cobra.Command{
	Use:   "index [directory]",
	Short: "Builds the reference index from a directory on the server",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var resp datatypes.IndexResponse
		if err := postJSON("/v1/index", datatypes.IndexRequest{Directory: args[0]}, &resp); err != nil {
			log.Fatalf("index failed: %v", err)
		}
		fmt.Printf("Indexed %d files into %d passages\n", resp.Files, resp.Passages)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Shows index status and configured backends",
	Run: func(cmd *cobra.Command, args []string) {
		var resp datatypes.StatusResponse
		if err := getJSON("/v1/status", &resp); err != nil {
			log.Fatalf("status failed: %v", err)
		}

		fmt.Printf("Index built:    %v\n", resp.IndexBuilt)
		if resp.IndexBuilt {
			fmt.Printf("Source dir:     %s\n", resp.SourceDir)
			fmt.Printf("Indexed files:  %d\n", resp.IndexedFiles)
			fmt.Printf("Passages:       %d\n", resp.Passages)
		}
		fmt.Printf("Backends:       %s\n", strings.Join(resp.Backends, ", "))
		fmt.Printf("Weaviate:       %s (ready: %v)\n", resp.WeaviateHost, resp.WeaviateReady)
	},
}

var queryCmd = &cobra.Command{
	Use:   "query [prompt]",
	Short: "Generates code for a prompt and prints the best candidate",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var resp datatypes.QueryResponse
		if err := postJSON("/v1/query", datatypes.QueryRequest{Query: strings.Join(args, " ")}, &resp); err != nil {
			log.Fatalf("query failed: %v", err)
		}

		fmt.Fprintf(os.Stderr, "Backend: %s  quality: %.2f  passed: %v\n",
			resp.Backend, resp.Validation.QualityScore, resp.Validation.Passed)
		if resp.Refinement != nil {
			fmt.Fprintf(os.Stderr, "Refinement: %s in %d iteration(s) (%d -> %d issues)\n",
				resp.Refinement.Outcome, len(resp.Refinement.Iterations),
				resp.Refinement.InitialIssues, resp.Refinement.FinalIssues)
		}
		if queryShowIssues && len(resp.Validation.Issues) > 0 {
			fmt.Fprintln(os.Stderr, "Remaining issues:")
			for _, issue := range resp.Validation.Issues {
				fmt.Fprintf(os.Stderr, "  - %s\n", issue)
			}
		}

		if queryOutputFile != "" {
			if err := os.WriteFile(queryOutputFile, []byte(resp.Artifact+"\n"), 0o644); err != nil {
				log.Fatalf("write %s: %v", queryOutputFile, err)
			}
			fmt.Fprintf(os.Stderr, "Wrote artifact to %s\n", queryOutputFile)
			return
		}
		fmt.Println(resp.Artifact)
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare [prompt]",
	Short: "Generates on every backend and shows the ranked results",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var resp datatypes.CompareResponse
		if err := postJSON("/v1/query/compare", datatypes.QueryRequest{Query: strings.Join(args, " ")}, &resp); err != nil {
			log.Fatalf("compare failed: %v", err)
		}

		fmt.Printf("%-4s %-20s %-8s %-8s %-8s %s\n", "RANK", "BACKEND", "SCORE", "QUALITY", "TIME", "STATUS")
		for i, c := range resp.Candidates {
			status := "ok"
			if c.Generation.Failed {
				status = "failed: " + c.Generation.FailureReason
			} else if !c.Validation.Passed {
				status = fmt.Sprintf("%d issue(s)", c.Validation.IssueCount)
			}
			fmt.Printf("%-4d %-20s %-8.3f %-8.2f %-8s %s\n",
				i+1, c.Backend, c.CombinedScore, c.Validation.QualityScore,
				fmt.Sprintf("%.1fs", float64(c.ElapsedMS)/1000.0), status)
		}
	},
}

func init() {
	queryCmd.Flags().StringVarP(&queryOutputFile, "output", "o", "", "Write the artifact to a file instead of stdout")
	queryCmd.Flags().BoolVar(&queryShowIssues, "issues", false, "Print remaining validation issues")
}
