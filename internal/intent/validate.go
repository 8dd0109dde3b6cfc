package intent

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed plan.cue
var planCUE string

var (
	schemaOnce sync.Once
	schemaVal  cue.Value
	schemaErr  error
)

// planSchema compiles the embedded CUE schema once per process.
func planSchema() (cue.Value, error) {
	schemaOnce.Do(func() {
		ctx := cuecontext.New()
		compiled := ctx.CompileString(planCUE, cue.Filename("plan.cue"))
		if err := compiled.Err(); err != nil {
			schemaErr = fmt.Errorf("compile plan schema: %w", err)
			return
		}
		schemaVal = compiled.LookupPath(cue.ParsePath("#Plan"))
		if err := schemaVal.Err(); err != nil {
			schemaErr = fmt.Errorf("lookup #Plan: %w", err)
		}
	})
	return schemaVal, schemaErr
}

// Decode validates an intent document against the embedded CUE schema and
// decodes it into a Plan. The schema check rejects unknown fields and
// out-of-range operations; semantic validation (do these references
// resolve?) is the engine's job, not ours.
func Decode(data []byte) (*Plan, error) {
	schema, err := planSchema()
	if err != nil {
		return nil, err
	}

	expr, err := cuejson.Extract("intent.json", data)
	if err != nil {
		return nil, fmt.Errorf("parse intent document: %w", err)
	}

	ctx := schema.Context()
	doc := ctx.BuildExpr(expr)
	if err := doc.Err(); err != nil {
		return nil, fmt.Errorf("build intent document: %w", err)
	}

	unified := schema.Unify(doc)
	if err := unified.Validate(cue.Final()); err != nil {
		return nil, fmt.Errorf("intent document does not match schema: %w", err)
	}

	var plan Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("decode intent document: %w", err)
	}
	return &plan, nil
}
