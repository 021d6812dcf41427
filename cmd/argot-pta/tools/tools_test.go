// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tools

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/awslabs/ar-go-pta/analysis/config"
	"github.com/awslabs/ar-go-pta/analysis/pta"
	"github.com/awslabs/ar-go-pta/analysis/pta/builder"
	"github.com/awslabs/ar-go-pta/internal/analysistest"
	"github.com/stretchr/testify/require"
)

const program = "../testdata/program.yaml"

func analyze(t *testing.T, args ...string) (*Analysis, error) {
	t.Helper()
	flags, err := NewCommonFlags("test", append([]string{"-no-color"}, args...), "")
	require.NoError(t, err)
	return Analyze(flags)
}

func nodesPerMethod(res *pta.Result) map[string]int {
	count := map[string]int{}
	for _, n := range res.CallGraph.Nodes() {
		count[n.Method.Ref().String()]++
	}
	return count
}

func TestAnalyzeWithConfig(t *testing.T) {
	a, err := analyze(t, "-config", "../testdata/config.yaml", program)
	require.NoError(t, err)
	require.False(t, a.Partial)
	require.Equal(t, "reports", a.Config.ReportsDir)
	count := nodesPerMethod(a.Result)
	// one node per receiver box
	require.Equal(t, 2, count["Box.put"])
	require.Equal(t, 1, count["Box.take"])
	require.Equal(t, 1, count["Walker.walk"])
	require.Equal(t, 1, count["Circle.describe"])
	require.Zero(t, count["Square.describe"])
}

func TestAnnotations(t *testing.T) {
	p, cfg := analysistest.LoadTest(t, "../testdata")
	logger := config.NewLogGroup(cfg)
	logger.SetAllOutput(io.Discard)
	b, err := builder.New(p, nil, cfg, logger)
	require.NoError(t, err)
	res, err := b.Build(context.Background(), builder.EntrypointsFromConfig(cfg))
	require.NoError(t, err)
	expected, err := analysistest.GetExpectedCalls(program)
	require.NoError(t, err)
	require.Len(t, expected, 5)
	analysistest.CheckCalls(t, res.CallGraph, expected)
}

func TestAnalyzeWithEntryFlag(t *testing.T) {
	a, err := analyze(t, "-entry", "Main.main", program)
	require.NoError(t, err)
	count := nodesPerMethod(a.Result)
	require.Equal(t, 1, count["Box.put"])
	require.Equal(t, 1, count["Circle.describe"])
	require.Equal(t, 1, count["Square.describe"])
	require.Len(t, a.Result.CallGraph.Entrypoints(), 1)
}

func TestAnalyzePartial(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("options:\n  log-level: 1\n  max-steps: 1\n"), 0o644))
	a, err := analyze(t, "-config", cfg, "-entry", "Main.main", program)
	require.NoError(t, err)
	require.True(t, a.Partial)
	require.Equal(t, 1, a.Result.Steps)
}

func TestAnalyzeErrors(t *testing.T) {
	_, err := analyze(t, "-entry", "Main.main")
	require.ErrorContains(t, err, "expected one program file")

	_, err = analyze(t, "-entry", "Main.main", "missing.yaml")
	require.ErrorContains(t, err, "could not load program")
	require.Equal(t, "check the path to the program file", HintForErrorMessage(err.Error()))

	_, err = analyze(t, program)
	var cfgErr *pta.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	require.NotEmpty(t, HintForErrorMessage(err.Error()))

	_, err = analyze(t, "-config", "missing-config.yaml", program)
	require.ErrorContains(t, err, "failed to load config file")
}

func TestEntrypointFlags(t *testing.T) {
	var e EntrypointFlags
	require.NoError(t, e.Set("app.Main.main"))
	require.Error(t, e.Set("main"))
	require.Len(t, e, 1)
	require.Equal(t, "app.Main", string(e[0].Class))
	require.Equal(t, "main", e[0].Name)
}
