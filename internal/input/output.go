package input

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
)

// WriteJSON writes v to path as JSON indented by two spaces.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrap(err, "output: encode")
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "output: write %s", path)
	}
	return nil
}
