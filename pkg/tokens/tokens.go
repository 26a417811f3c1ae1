// Package tokens counts sub-word tokens under named tiktoken encodings.
//
// BPE ranks are loaded from the files embedded by tiktoken-go-loader, so
// counting never touches the network.
package tokens

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// DefaultEncoding is used when no encoding name is given.
const DefaultEncoding = "cl100k_base"

var (
	loaderOnce sync.Once
	encodings  sync.Map // name -> *tiktoken.Tiktoken
)

// Count returns the number of tokens of text under the named encoding.
// An empty name selects DefaultEncoding.
func Count(text, encoding string) (int, error) {
	if text == "" {
		return 0, nil
	}
	enc, err := Encoding(encoding)
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}

// Encoding returns the cached tokenizer for name, loading it on first use.
func Encoding(name string) (*tiktoken.Tiktoken, error) {
	if name == "" {
		name = DefaultEncoding
	}
	if v, ok := encodings.Load(name); ok {
		return v.(*tiktoken.Tiktoken), nil
	}

	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})

	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, fmt.Errorf("tokens: unknown encoding %q: %w", name, err)
	}
	v, _ := encodings.LoadOrStore(name, enc)
	return v.(*tiktoken.Tiktoken), nil
}
