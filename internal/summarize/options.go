package summarize

import (
	"github.com/joseph-ayodele/contracts-analyzer/internal/common"
)

// Bounds are the min/max output length, in words, requested from the capability.
type Bounds struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Options configure one Summarize call.
type Options struct {
	ChunkSize int    // words per chunk sent to the capability
	PerChunk  Bounds // length bounds for every chunk summary
	Final     Bounds // length bounds for the reduction pass; only used when Reduce is set

	// Reduce feeds the combined chunk summaries back through the capability once more.
	Reduce bool
	// MaxReduceDepth bounds the intermediate re-chunking levels run before the final
	// pass while the combined summary is still longer than ChunkSize. 0 disables them.
	MaxReduceDepth int
	// BestEffort turns a failed chunk into an empty contribution instead of failing the call.
	BestEffort bool
}

// Interactive mirrors the single-document view: small chunks, short summaries, no reduction.
func Interactive() Options {
	return Options{
		ChunkSize: 500,
		PerChunk:  Bounds{Min: 30, Max: 100},
	}
}

// Batch mirrors bulk processing: larger chunks and a final reduction pass.
func Batch() Options {
	return Options{
		ChunkSize:      1000,
		PerChunk:       Bounds{Min: 50, Max: 150},
		Final:          Bounds{Min: 80, Max: 250},
		Reduce:         true,
		MaxReduceDepth: 2,
	}
}

// ForMode returns the preset for "interactive" or "batch".
func ForMode(mode string) (Options, error) {
	switch mode {
	case common.SummaryModeInteractive, "":
		return Interactive(), nil
	case common.SummaryModeBatch:
		return Batch(), nil
	}
	return Options{}, common.NewConfigError("summarize", "unknown summary mode "+mode, common.ErrInvalidInput)
}

// Validate reports every invalid field as a configuration error.
func (o Options) Validate() error {
	v := common.NewValidator()
	v.Field("chunk_size", o.ChunkSize, common.Positive)
	o.PerChunk.check(v, "per_chunk")
	if o.Reduce {
		o.Final.check(v, "final")
	}
	v.Field("max_reduce_depth", o.MaxReduceDepth, common.NonNegative)
	return common.ValidateAndReturnError("summarize", v)
}

func (b Bounds) check(v *common.Validator, prefix string) {
	v.Field(prefix+".min", b.Min, common.NonNegative)
	v.Field(prefix+".max", b.Max, common.Positive)
	v.Check(b.Min <= b.Max, prefix, b, "min must not exceed max")
}
