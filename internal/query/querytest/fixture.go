// Package querytest holds the consolidated-document fixture the query tests
// and the end-to-end suite seed through POST /process.
package querytest

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/kuitang/agreements-e2e/internal/query"
)

// MTNNNDocumentID is the triple net lease every query case targets.
const MTNNNDocumentID = "MTNNN.pdf"

//go:embed MTNNN.json
var mtnnnJSON []byte

// MTNNNJSON returns the raw POST /process body for the MTNNN lease.
func MTNNNJSON() []byte {
	out := make([]byte, len(mtnnnJSON))
	copy(out, mtnnnJSON)
	return out
}

// MTNNN returns the MTNNN lease as a process request.
func MTNNN() query.ProcessRequest {
	var req query.ProcessRequest
	if err := json.Unmarshal(mtnnnJSON, &req); err != nil {
		panic(fmt.Sprintf("querytest: bad MTNNN fixture: %v", err))
	}
	return req
}
