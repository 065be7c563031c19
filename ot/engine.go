package ot

import (
	"fmt"

	"github.com/alimasry/deltadoc/delta"
)

// Engine abstracts the OT collaboration algorithm. Different
// algorithms (Jupiter, Wave, etc.) implement this interface.
type Engine interface {
	// TransformIncoming transforms a client change (created at the given
	// revision) against every server change since that revision, so it
	// can be composed onto the current server document.
	TransformIncoming(change *delta.Delta, revision int, history []*delta.Delta, reg *delta.Registry) (*delta.Delta, error)
}

// JupiterEngine implements the Jupiter OT algorithm: it sequentially
// transforms the incoming change against each server change the
// client hasn't seen, in order.
type JupiterEngine struct{}

func (e *JupiterEngine) TransformIncoming(change *delta.Delta, revision int, history []*delta.Delta, reg *delta.Registry) (*delta.Delta, error) {
	if revision < 0 || revision > len(history) {
		return nil, fmt.Errorf("invalid revision %d (history len %d)", revision, len(history))
	}

	transformed := change
	for i := revision; i < len(history); i++ {
		var err error
		// history[i] already landed on the server, so it wins ties
		// against the still-in-flight client change (priority=true).
		transformed, err = delta.Transform(history[i], transformed, true, reg)
		if err != nil {
			return nil, fmt.Errorf("transform against history[%d]: %w", i, err)
		}
	}
	return transformed, nil
}
