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

package report

import (
	"encoding/gob"
	"fmt"
	"io"

	"github.com/awslabs/ar-go-pta/analysis/pta"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/klauspost/compress/s2"
)

// A Snapshot is a serializable copy of a result where nodes, keys and sites are replaced by their string
// representation. Snapshots of two runs can be compared even when the programs were loaded separately.
type Snapshot struct {
	// Nodes are the call graph nodes, indexed by node id
	Nodes []string
	Edges []SnapshotEdge
	// PointsTo maps the non-empty pointer keys to their instance keys, in ordinal order
	PointsTo map[string][]string
	Warnings []string
	Steps    int
}

// SnapshotEdge is a call edge between two nodes of a snapshot
type SnapshotEdge struct {
	Caller int
	Site   string
	Callee int
}

// NewSnapshot returns the snapshot of a result
func NewSnapshot(res *pta.Result) *Snapshot {
	s := &Snapshot{PointsTo: map[string][]string{}, Steps: res.Steps}
	for _, n := range res.CallGraph.Nodes() {
		s.Nodes = append(s.Nodes, n.String())
	}
	for _, e := range res.CallGraph.Edges() {
		s.Edges = append(s.Edges, SnapshotEdge{Caller: int(e.Caller), Site: e.Site.String(), Callee: int(e.Callee)})
	}
	pa := res.PointerAnalysis
	for _, pk := range pa.PointerKeys() {
		keys := pa.PointsTo(pk).Keys()
		if len(keys) == 0 {
			continue
		}
		strs := make([]string, len(keys))
		for i, k := range keys {
			strs[i] = k.String()
		}
		s.PointsTo[pk.String()] = strs
	}
	if res.Diagnostics != nil {
		for _, w := range res.Diagnostics.Warnings() {
			s.Warnings = append(s.Warnings, w.String())
		}
	}
	return s
}

// Write encodes the snapshot with gob and compresses it with s2
func (s *Snapshot) Write(w io.Writer) error {
	writer := s2.NewWriter(w)
	if err := gob.NewEncoder(writer).Encode(s); err != nil {
		return fmt.Errorf("could not encode snapshot: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("could not compress snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot decodes a snapshot written by Snapshot.Write
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	s := &Snapshot{}
	if err := gob.NewDecoder(s2.NewReader(r)).Decode(s); err != nil {
		return nil, fmt.Errorf("could not decode snapshot: %w", err)
	}
	return s, nil
}

// Diff returns a human-readable report of the differences between two snapshots, or the empty string if they are
// equal. The number of solver steps is ignored.
func Diff(old, cur *Snapshot) string {
	return cmp.Diff(old, cur, cmpopts.IgnoreFields(Snapshot{}, "Steps"))
}
