package params

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/specialistvlad/dashgridgo/internal/model"
)

// Decode binds a configuration tree onto out, a pointer to a struct with
// json tags. Keys that out does not declare are an error when strict is set.
func Decode(tree map[string]any, out any, strict bool) error {
	b, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("%w: %w", model.ErrConfiguration, err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %w", model.ErrConfiguration, err)
	}
	return nil
}
