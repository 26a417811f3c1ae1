package mcp

// --- Tool Arguments ---

type CountTokensArgs struct {
	Text     string `json:"text" jsonschema:"The text to tokenize"`
	Encoding string `json:"encoding,omitempty" jsonschema:"tiktoken encoding name. Defaults to 'cl100k_base'"`
}

type CountTokensResult struct {
	Tokens   int    `json:"tokens"`
	Encoding string `json:"encoding"`
}

type RankingDiffArgs struct {
	First  []string `json:"first" jsonschema:"First ranking, best item first"`
	Second []string `json:"second" jsonschema:"Second ranking over the same items"`
}

type RankingDiffResult struct {
	Distance int `json:"distance"` // sum of position shifts
}

type ClassifyArgs struct {
	Text       string   `json:"text" jsonschema:"The text to classify"`
	Categories []string `json:"categories" jsonschema:"Category names, in label index order"`
	Domain     string   `json:"domain" jsonschema:"Field the categories belong to (e.g. 'computer science')"`
	Entity     string   `json:"entity,omitempty" jsonschema:"Noun for one item (e.g. 'abstract'). Defaults to 'text'"`
}

type ClassifyResult struct {
	Class    int    `json:"class"`
	Category string `json:"category"`
	Fallback bool   `json:"fallback"` // true when the answer named no category and the class is random
	Answer   string `json:"answer"`
}

type PseudoSamplesArgs struct {
	Categories []string `json:"categories" jsonschema:"Category names, in label index order"`
	Domain     string   `json:"domain" jsonschema:"Field the categories belong to"`
	Entity     string   `json:"entity,omitempty" jsonschema:"Noun for one sample (e.g. 'abstract'). Defaults to 'text'"`
}

type PseudoSamplesResult struct {
	Samples []string    `json:"samples"`
	Noise   [][]float64 `json:"noise"` // row i: confusion distribution of category i
}
