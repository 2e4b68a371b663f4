// Package strictyaml provides a strict YAML unmarshaller based on `go-yaml/yaml`
package strictyaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Unmarshal takes a byte array and an arbitrary interface as arguments and
// attempts to unmarshal the contents of the byte array into a defined struct.
// Any config keys from the incoming YAML document which do not correspond to
// expected keys in the config struct will result in errors. An empty document
// is also an error, since every config this module reads has required keys.
func Unmarshal(b []byte, yamlObj interface{}) error {
	decoder := yaml.NewDecoder(bytes.NewReader(b))
	decoder.KnownFields(true)

	err := decoder.Decode(yamlObj)
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("unmarshalling YAML: empty document: %w", err)
	}
	return err
}
