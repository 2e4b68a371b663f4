package strictyaml

import (
	"testing"

	"github.com/cairnpki/cairn/test"
)

func TestUnmarshal(t *testing.T) {
	var config struct {
		ChainFile string `yaml:"chainFile"`
		Hostname  string `yaml:"hostname"`
	}

	err := Unmarshal([]byte("chainFile: /tmp/chain.pem\nhostname: www.example.com\n"), &config)
	test.AssertNotError(t, err, "unmarshalling valid config")
	test.AssertEquals(t, config.ChainFile, "/tmp/chain.pem")
	test.AssertEquals(t, config.Hostname, "www.example.com")
}

func TestUnmarshalUnknownKey(t *testing.T) {
	var config struct {
		ChainFile string `yaml:"chainFile"`
	}

	err := Unmarshal([]byte("chainFile: /tmp/chain.pem\nbogusKey: true\n"), &config)
	test.AssertError(t, err, "expected error for unknown key")
	test.AssertContains(t, err.Error(), "not found")
}

func TestUnmarshalEmpty(t *testing.T) {
	var config struct{}
	err := Unmarshal([]byte(""), &config)
	test.AssertError(t, err, "expected error for empty document")
}
