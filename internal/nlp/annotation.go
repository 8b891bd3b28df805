package nlp

import "context"

// Annotation is the per-token output of an external analyzer for one
// sentence. The slices are parallel: index i describes token i. A
// Dependencies entry is the incoming dependency relation label of the
// token; "" means the token has none (e.g. the root).
type Annotation struct {
	Tokens       []string `json:"tokens,omitempty"`
	Lemmas       []string `json:"lemmas"`
	POSTags      []string `json:"pos,omitempty"`
	NERTags      []string `json:"ner,omitempty"`
	Dependencies []string `json:"deps"`
}

// Analyzer produces annotations for sentence text. Annotate must be
// deterministic for a given input so cached results stay valid.
type Analyzer interface {
	Annotate(ctx context.Context, text string) (Annotation, error)
}
