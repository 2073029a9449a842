// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
variantcheck scans a BAM alignment against a FASTA reference, derives a
candidate set of substitutions/deletions/insertions from read pileup, and
reports how it differs from a ground-truth VCF.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/rudyleute/detecting-mutations/orchestrator"
	"github.com/rudyleute/detecting-mutations/report"
)

var (
	minReads       = flag.Int("min-reads", 5, "Minimum live read depth required before a position is analyzed")
	linesPerWindow = flag.Int("lines-per-window", 100, "Number of reference lines scanned per sliding window")
	outPrefix      = flag.String("out", "variantcheck", "Output path prefix; the report is written to <out>.csv")
)

func variantcheckUsage() {
	fmt.Printf("Usage: %s [OPTIONS] bampath fapath vcfpath\n", os.Args[0])
	fmt.Printf("All three paths are resolved against the parent of the current working directory.\n")
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

// resolvePath implements the CLI contract's "resolved against the parent of
// the current working directory" rule (spec section 6), matching
// original_source's formFullPath.
func resolvePath(name string) (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(wd), name), nil
}

func main() {
	flag.Usage = variantcheckUsage
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() != 3 {
		log.Fatalf("expected 3 positional arguments (bampath fapath vcfpath), got %d: '%s'", flag.NArg(), strings.Join(flag.Args(), " "))
	}

	bamPath, err := resolvePath(flag.Arg(0))
	if err != nil {
		log.Fatalf("resolving alignment path: %v", err)
	}
	refPath, err := resolvePath(flag.Arg(1))
	if err != nil {
		log.Fatalf("resolving reference path: %v", err)
	}
	vcfPath, err := resolvePath(flag.Arg(2))
	if err != nil {
		log.Fatalf("resolving ground-truth path: %v", err)
	}

	cfg := orchestrator.Config{MinReads: *minReads, LinesPerWindow: *linesPerWindow}
	result, err := orchestrator.Run(bamPath, refPath, vcfPath, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	csvPath := *outPrefix + ".csv"
	if err := report.Write(csvPath, result); err != nil {
		log.Fatalf("%v", err)
	}
	log.Printf("wrote %s: %d missed, %d additional, %d mismatched", csvPath, len(result.Missed), len(result.Additional), len(result.Mismatched))
}
