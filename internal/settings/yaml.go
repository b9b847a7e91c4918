package settings

import (
	"errors"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/blackwell-systems/workclock/internal/apperr"
)

// Export writes s as a YAML document.
func Export(w io.Writer, s Settings) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return err
	}
	return enc.Close()
}

// Import reads a YAML document produced by Export (or a subset of it) and
// applies it on top of current. Unknown keys are rejected.
func Import(r io.Reader, current Settings) (Settings, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var p Patch
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return current, apperr.Invalid("settings document is empty")
		}
		return current, apperr.Invalid("parsing settings document: %v", err)
	}
	return current.Apply(p)
}
